package breaks

import "time"

// HadBreakInInterval reports whether the regular break schedule of a session
// opened at open has a break overlapping [from, to).
func (s Schedule) HadBreakInInterval(open, from, to time.Time) bool {
	if !to.After(from) {
		return false
	}
	cycle := s.Cycle()
	var k int64
	if from.After(open) {
		k = int64(from.Sub(open) / cycle)
	}
	for ; ; k++ {
		breakStart := open.Add(time.Duration(k)*cycle + s.Play)
		if !breakStart.Before(to) {
			return false
		}
		breakEnd := breakStart.Add(s.Break)
		if breakEnd.After(from) {
			return true
		}
	}
}

// HadBreakInInterval applies the default schedule.
func HadBreakInInterval(open, from, to time.Time) bool {
	return DefaultSchedule().HadBreakInInterval(open, from, to)
}

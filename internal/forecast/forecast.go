// Package forecast derives the look-ahead views shown above the floor: which
// regular tables break in the next quarter hours and where each trial
// rotation stands.
package forecast

import (
	"slices"
	"time"

	"tableflow/internal/breaks"
	"tableflow/internal/layout"
	"tableflow/internal/sessions"
	"tableflow/internal/tables"
)

const (
	DefaultSlots = 3
	DefaultStep  = 15 * time.Minute

	flashThreshold = time.Minute
)

// Slot lists the regular tables whose break overlaps [Start, Start+step).
type Slot struct {
	Start  time.Time `json:"start"`
	Label  string    `json:"label"`
	Tables []string  `json:"tables"`
}

// NextSlots returns n slot starts on the step grid of the hour, the first
// strictly after now's minute.
func NextSlots(now time.Time, n int, step time.Duration) []time.Time {
	if n <= 0 || step <= 0 {
		return nil
	}
	minute := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), 0, 0, now.Location())
	elapsed := time.Duration(minute.Minute())*time.Minute + time.Minute
	hour := minute.Add(-time.Duration(minute.Minute()) * time.Minute)
	first := hour.Add((elapsed + step - 1) / step * step)

	out := make([]time.Time, n)
	for i := range out {
		out[i] = first.Add(time.Duration(i) * step)
	}
	return out
}

// UpcomingBreaks checks each slot against the regular sessions in history.
// Sessions still open are treated as running until openUntil.
func UpcomingBreaks(history []sessions.Session, schedule breaks.Schedule, now, openUntil time.Time, n int, step time.Duration) []Slot {
	byTable := make(map[string][]sessions.Session)
	for _, s := range history {
		if _, ok := s.Regime.(breaks.Regular); !ok {
			continue
		}
		byTable[s.TableNumber] = append(byTable[s.TableNumber], s)
	}

	starts := NextSlots(now, n, step)
	out := make([]Slot, 0, len(starts))
	for _, from := range starts {
		to := from.Add(step)
		slot := Slot{Start: from, Label: from.Format("15:04"), Tables: []string{}}
		for number, list := range byTable {
			if breakInSlot(list, schedule, from, to, openUntil) {
				slot.Tables = append(slot.Tables, number)
			}
		}
		slices.SortFunc(slot.Tables, layout.CompareNumbers)
		out = append(out, slot)
	}
	return out
}

// breakInSlot reports whether any of the table's sessions covering [from, to)
// has a break there.
func breakInSlot(list []sessions.Session, schedule breaks.Schedule, from, to, openUntil time.Time) bool {
	for _, s := range list {
		if !s.OpenTime.Before(to) || !s.End(openUntil).After(from) {
			continue
		}
		if schedule.HadBreakInInterval(s.OpenTime, from, to) {
			return true
		}
	}
	return false
}

// Rotation is the live position of one trial table in its seat sequence.
type Rotation struct {
	TableNumber string        `json:"tableNumber"`
	CurrentSeat breaks.Seat   `json:"currentSeat"`
	NextSeat    breaks.Seat   `json:"nextSeat"`
	Remaining   time.Duration `json:"-"`
	Countdown   string        `json:"countdown"`
	Flashing    bool          `json:"isFlashing"`
}

// TrialRotations reports every started trial table, ordered by number.
// Tables with an invalid trial configuration are skipped.
func TrialRotations(live []tables.Table, schedule breaks.Schedule, now time.Time) []Rotation {
	out := []Rotation{}
	for _, t := range live {
		if t.Session == nil {
			continue
		}
		trial, ok := t.Session.Trial()
		if !ok {
			continue
		}
		current, next, started, err := schedule.TrialSeatAt(trial, t.Session.StartTime, now)
		if err != nil || !started {
			continue
		}
		res, err := schedule.EvaluateTrial(trial, t.Session.StartTime, now)
		if err != nil {
			continue
		}
		out = append(out, Rotation{
			TableNumber: t.Number,
			CurrentSeat: current,
			NextSeat:    next,
			Remaining:   res.Remaining,
			Countdown:   breaks.FormatCountdown(res.Remaining),
			Flashing:    res.Remaining <= flashThreshold,
		})
	}
	slices.SortFunc(out, func(a, b Rotation) int {
		return layout.CompareNumbers(a.TableNumber, b.TableNumber)
	})
	return out
}

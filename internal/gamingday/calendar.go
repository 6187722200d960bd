// Package gamingday partitions wall-clock time into gaming days: operational
// periods that start at a fixed hour and run past midnight into the next
// calendar date.
package gamingday

import "time"

const keyLayout = "2006-01-02"

const (
	DefaultStartHour = 12
	DefaultEndHour   = 4
)

// Calendar maps instants onto gaming days. The zero value is not useful; use
// New or Default.
type Calendar struct {
	StartHour int
	EndHour   int
	Location  *time.Location
}

func New(startHour, endHour int, loc *time.Location) Calendar {
	if loc == nil {
		loc = time.Local
	}
	return Calendar{StartHour: startHour, EndHour: endHour, Location: loc}
}

func Default() Calendar {
	return New(DefaultStartHour, DefaultEndHour, time.Local)
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// DayOf returns midnight of the calendar date whose gaming day contains t.
// Anything before StartHour is attributed to the previous date.
func (c Calendar) DayOf(t time.Time) time.Time {
	t = t.In(c.location())
	y, m, d := t.Date()
	if t.Hour() < c.StartHour {
		d--
	}
	return time.Date(y, m, d, 0, 0, 0, 0, c.location())
}

// Key formats a gaming day as YYYY-MM-DD.
func (c Calendar) Key(day time.Time) string {
	return day.In(c.location()).Format(keyLayout)
}

// KeyOf is Key(DayOf(t)).
func (c Calendar) KeyOf(t time.Time) string {
	return c.Key(c.DayOf(t))
}

// ParseKey is the inverse of Key.
func (c Calendar) ParseKey(key string) (time.Time, error) {
	return time.ParseInLocation(keyLayout, key, c.location())
}

// Bounds returns the first instant of the gaming day and the instant at which
// its operating hours end.
func (c Calendar) Bounds(day time.Time) (start, end time.Time) {
	day = day.In(c.location())
	y, m, d := day.Date()
	start = time.Date(y, m, d, c.StartHour, 0, 0, 0, c.location())
	endDay := d
	if c.EndHour <= c.StartHour {
		endDay++
	}
	end = time.Date(y, m, endDay, c.EndHour, 0, 0, 0, c.location())
	return start, end
}

// Contains reports whether t falls inside the operating hours of day,
// both bounds inclusive.
func (c Calendar) Contains(day, t time.Time) bool {
	start, end := c.Bounds(day)
	return !t.Before(start) && !t.After(end)
}

// Intervals slices the operating hours of day into consecutive slots of the
// given length and returns the start of each slot.
func (c Calendar) Intervals(day time.Time, step time.Duration) []time.Time {
	if step <= 0 {
		return nil
	}
	start, end := c.Bounds(day)
	out := make([]time.Time, 0, int(end.Sub(start)/step))
	for t := start; t.Before(end); t = t.Add(step) {
		out = append(out, t)
	}
	return out
}

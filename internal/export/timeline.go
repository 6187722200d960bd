// Package export renders the gaming day for hand-off: a quarter-hour timeline
// of every regular table and a plain-text dump of the activity log.
package export

import (
	"slices"
	"time"

	"tableflow/internal/breaks"
	"tableflow/internal/gamingday"
	"tableflow/internal/layout"
	"tableflow/internal/sessions"
)

const SlotLength = 15 * time.Minute

type Cell string

const (
	CellClosed Cell = "CLOSED"
	CellOpen   Cell = "OPEN"
	CellBreak  Cell = "BREAK"
)

type Row struct {
	Table string `json:"table"`
	Cells []Cell `json:"cells"`
}

// Grid is the timeline of one gaming day: one column per slot, one row per
// table that ran a regular session.
type Grid struct {
	Day     string      `json:"day"`
	Slots   []time.Time `json:"slots"`
	Headers []string    `json:"headers"`
	Rows    []Row       `json:"rows"`
}

// BuildTimeline lays the regular sessions of history over the slots of day.
// Sessions still open run until openUntil.
func BuildTimeline(history []sessions.Session, cal gamingday.Calendar, day time.Time, schedule breaks.Schedule, openUntil time.Time) Grid {
	slots := cal.Intervals(day, SlotLength)
	g := Grid{
		Day:     cal.Key(day),
		Slots:   slots,
		Headers: make([]string, len(slots)),
		Rows:    []Row{},
	}
	for i, s := range slots {
		g.Headers[i] = s.Format("3:04 PM")
	}

	byTable := make(map[string][]sessions.Session)
	for _, s := range history {
		if _, ok := s.Regime.(breaks.Regular); !ok {
			continue
		}
		byTable[s.TableNumber] = append(byTable[s.TableNumber], s)
	}
	numbers := make([]string, 0, len(byTable))
	for n := range byTable {
		numbers = append(numbers, n)
	}
	slices.SortFunc(numbers, layout.CompareNumbers)

	for _, number := range numbers {
		row := Row{Table: number, Cells: make([]Cell, len(slots))}
		for i, from := range slots {
			row.Cells[i] = cellAt(byTable[number], schedule, from, from.Add(SlotLength), openUntil)
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

func cellAt(list []sessions.Session, schedule breaks.Schedule, from, to, openUntil time.Time) Cell {
	for _, s := range list {
		if s.OpenTime.After(to) || !s.End(openUntil).After(from) {
			continue
		}
		if schedule.HadBreakInInterval(s.OpenTime, from, to) {
			return CellBreak
		}
		return CellOpen
	}
	return CellClosed
}

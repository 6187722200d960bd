package tables

import (
	"encoding/json"
	"time"

	"tableflow/internal/breaks"
	"tableflow/internal/layout"
)

const (
	defaultTrialSeats     = 9
	defaultTrialStartSeat = 9
)

// Session is the open session of a table: when play starts (possibly in the
// future) and which break regime applies. LogDay is the gaming day whose
// log holds the session's open entry.
type Session struct {
	StartTime time.Time
	Regime    breaks.Regime
	LogDay    string
}

func (s Session) Trial() (breaks.Trial, bool) {
	t, ok := s.Regime.(breaks.Trial)
	return t, ok
}

// Table is the live record of one physical table. Session is nil exactly when
// Status is closed. The remaining fields are derived on every tick and are
// not authoritative.
type Table struct {
	Number  string
	Status  breaks.Status
	Session *Session

	NextBreakTime  time.Time
	Countdown      string
	CountdownLabel string
	BreakSeat      *breaks.Seat

	Position layout.Position
	Rotation int
}

func NewClosed(lt layout.Table) Table {
	return Table{
		Number:   lt.Number,
		Status:   breaks.StatusClosed,
		Position: lt.Position,
		Rotation: lt.Rotation,
	}
}

func (t Table) IsOpen() bool {
	return t.Session != nil
}

// IsScheduled reports whether the table is open with a start still ahead of now.
func (t Table) IsScheduled(now time.Time) bool {
	return t.Session != nil && t.Session.StartTime.After(now)
}

func (t *Table) close() {
	t.Status = breaks.StatusClosed
	t.Session = nil
	t.clearDerived()
}

func (t *Table) clearDerived() {
	t.NextBreakTime = time.Time{}
	t.Countdown = ""
	t.CountdownLabel = ""
	t.BreakSeat = nil
}

type tableJSON struct {
	TableNumber      string           `json:"tableNumber"`
	Status           breaks.Status    `json:"status"`
	StartTime        *time.Time       `json:"startTime"`
	NextBreakTime    *time.Time       `json:"nextBreakTime"`
	Countdown        string           `json:"countdown"`
	CountdownLabel   string           `json:"countdownLabel"`
	IsTrialBreak     bool             `json:"isTrialBreak"`
	TrialSeats       *int             `json:"trialSeats"`
	TrialStartSeat   *int             `json:"trialStartSeat"`
	CurrentBreakSeat *breaks.Seat     `json:"currentBreakSeat"`
	Position         *layout.Position `json:"position,omitempty"`
	Rotation         int              `json:"rotation,omitempty"`
	LogDay           string           `json:"logGamingDay,omitempty"`
}

func (t Table) MarshalJSON() ([]byte, error) {
	w := tableJSON{
		TableNumber:      t.Number,
		Status:           t.Status,
		Countdown:        t.Countdown,
		CountdownLabel:   t.CountdownLabel,
		CurrentBreakSeat: t.BreakSeat,
		Rotation:         t.Rotation,
	}
	if t.Position != (layout.Position{}) {
		pos := t.Position
		w.Position = &pos
	}
	if !t.NextBreakTime.IsZero() {
		next := t.NextBreakTime
		w.NextBreakTime = &next
	}
	if t.Session != nil {
		start := t.Session.StartTime
		w.StartTime = &start
		w.LogDay = t.Session.LogDay
		if trial, ok := t.Session.Trial(); ok {
			w.IsTrialBreak = true
			w.TrialSeats = &trial.Seats
			w.TrialStartSeat = &trial.StartSeat
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts partial records: missing fields take their closed
// defaults and a trial session without seat counts falls back to 9/9.
func (t *Table) UnmarshalJSON(b []byte) error {
	var w tableJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	out := Table{
		Number:         w.TableNumber,
		Status:         breaks.StatusClosed,
		Countdown:      w.Countdown,
		CountdownLabel: w.CountdownLabel,
		Rotation:       w.Rotation,
	}
	if w.Position != nil {
		out.Position = *w.Position
	}
	if w.StartTime != nil && w.Status != breaks.StatusClosed {
		var regime breaks.Regime = breaks.Regular{}
		if w.IsTrialBreak {
			trial := breaks.Trial{Seats: defaultTrialSeats, StartSeat: defaultTrialStartSeat}
			if w.TrialSeats != nil && *w.TrialSeats > 0 {
				trial.Seats = *w.TrialSeats
			}
			if w.TrialStartSeat != nil && *w.TrialStartSeat > 0 {
				trial.StartSeat = *w.TrialStartSeat
			}
			regime = trial
		}
		out.Session = &Session{StartTime: *w.StartTime, Regime: regime, LogDay: w.LogDay}
		out.Status = w.Status
		if !out.Status.Valid() {
			out.Status = breaks.StatusOpen
		}
		if w.NextBreakTime != nil {
			out.NextBreakTime = *w.NextBreakTime
		}
		out.BreakSeat = w.CurrentBreakSeat
	} else {
		out.Countdown, out.CountdownLabel = "", ""
	}
	*t = out
	return nil
}

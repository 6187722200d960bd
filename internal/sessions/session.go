// Package sessions rebuilds the open/close session history of a gaming day
// from its activity log and the live table state.
package sessions

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tableflow/internal/breaks"
)

var (
	ErrSessionNotFound     = errors.New("session_not_found")
	ErrSessionNotDeletable = errors.New("session_not_deletable")
)

type Status string

const (
	StatusOpen   Status = "Open"
	StatusClosed Status = "Closed"
)

const livePrefix = "current-"

// Session is one open..close span of a table. Sessions without a logged open
// (the table is live but its entry is missing) carry a synthesized id and
// cannot be deleted.
type Session struct {
	SessionID         string
	TableNumber       string
	OpenTime          time.Time
	CloseTime         *time.Time
	Duration          time.Duration
	Regime            breaks.Regime
	Status            Status
	IsCompleteSession bool

	openEntryID  string
	closeEntryID string
}

func (s Session) Synthesized() bool {
	return s.openEntryID == ""
}

// BreakType is the human label of the session regime.
func (s Session) BreakType() string {
	if t, ok := s.Regime.(breaks.Trial); ok {
		return fmt.Sprintf("Trial (%d seats)", t.Seats)
	}
	return "Regular"
}

// End is the close time, or fallback while the session is still open.
func (s Session) End(fallback time.Time) time.Time {
	if s.CloseTime != nil {
		return *s.CloseTime
	}
	return fallback
}

type sessionJSON struct {
	SessionID         string     `json:"sessionId"`
	TableNumber       string     `json:"tableNumber"`
	OpenTime          time.Time  `json:"openTime"`
	CloseTime         *time.Time `json:"closeTime"`
	DurationMinutes   int        `json:"durationMinutes"`
	BreakType         string     `json:"breakType"`
	Status            Status     `json:"status"`
	IsCompleteSession bool       `json:"isCompleteSession"`
}

func (s Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionJSON{
		SessionID:         s.SessionID,
		TableNumber:       s.TableNumber,
		OpenTime:          s.OpenTime,
		CloseTime:         s.CloseTime,
		DurationMinutes:   int((s.Duration + 30*time.Second) / time.Minute),
		BreakType:         s.BreakType(),
		Status:            s.Status,
		IsCompleteSession: s.IsCompleteSession,
	})
}

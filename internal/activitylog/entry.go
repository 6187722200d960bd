package activitylog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tableflow/internal/breaks"
)

type Action string

const (
	ActionOpen  Action = "open"
	ActionClose Action = "close"
)

// Entry is one immutable fact in a day's log. For close entries Timestamp is
// the effective close instant, which may be earlier than the moment the entry
// was written.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	GamingDay string    `json:"gamingDay"`
	Table     string    `json:"table"`
	Action    Action    `json:"action"`

	StartTime      *time.Time `json:"startTime,omitempty"`
	IsTrialBreak   bool       `json:"isTrialBreak,omitempty"`
	TrialSeats     int        `json:"trialSeats,omitempty"`
	TrialStartSeat int        `json:"trialStartSeat,omitempty"`

	Duration *Minutes `json:"duration,omitempty"`
}

// Regime reconstructs the break regime recorded on an open entry.
func (e Entry) Regime() breaks.Regime {
	if e.IsTrialBreak {
		return breaks.Trial{Seats: e.TrialSeats, StartSeat: e.TrialStartSeat}
	}
	return breaks.Regular{}
}

// OpenTime is StartTime for open entries, falling back to Timestamp.
func (e Entry) OpenTime() time.Time {
	if e.StartTime != nil {
		return *e.StartTime
	}
	return e.Timestamp
}

// Minutes is a whole-minute duration. It also decodes the legacy
// "95 minutes" string form.
type Minutes int

func MinutesOf(d time.Duration) Minutes {
	return Minutes((d + 30*time.Second) / time.Minute)
}

func (m Minutes) Duration() time.Duration {
	return time.Duration(m) * time.Minute
}

func (m Minutes) String() string {
	return fmt.Sprintf("%d minutes", int(m))
}

func (m *Minutes) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "minutes"))
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q", s)
		}
		*m = Minutes(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*m = Minutes(n)
	return nil
}

type OpenPayload struct {
	StartTime time.Time
	Regime    breaks.Regime
}

type ClosePayload struct {
	ClosedAt time.Time
	Duration time.Duration
}

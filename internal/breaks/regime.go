package breaks

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrInvalidTrialConfig = errors.New("invalid_trial_config")
	ErrUnknownRegime      = errors.New("unknown_regime")
)

type Status string

const (
	StatusClosed       Status = "closed"
	StatusOpen         Status = "open"
	StatusWarningBreak Status = "warning-break"
	StatusOnBreak      Status = "on-break"
	StatusTrialBreak   Status = "trial-break"
)

func (s Status) Valid() bool {
	switch s {
	case StatusClosed, StatusOpen, StatusWarningBreak, StatusOnBreak, StatusTrialBreak:
		return true
	default:
		return false
	}
}

// Regime is the break regime of an open session: Regular or Trial.
type Regime interface {
	regime()
}

// Regular is the whole-table regime: Play followed by Break, repeating.
type Regular struct{}

// Trial rotates a single-seat break through the table, including the dealer.
type Trial struct {
	Seats     int
	StartSeat int
}

func (Regular) regime() {}
func (Trial) regime()   {}

func (t Trial) Validate() error {
	if t.Seats < 1 {
		return fmt.Errorf("%w: seats=%d", ErrInvalidTrialConfig, t.Seats)
	}
	if t.StartSeat < 1 || t.StartSeat > t.Seats {
		return fmt.Errorf("%w: start seat %d outside 1..%d", ErrInvalidTrialConfig, t.StartSeat, t.Seats)
	}
	return nil
}

// Seat is a seat number in the trial rotation. Dealer marks the dealer slot.
type Seat int

const Dealer Seat = 0

func (s Seat) IsDealer() bool { return s == Dealer }

func (s Seat) String() string {
	if s == Dealer {
		return "D"
	}
	return strconv.Itoa(int(s))
}

func (s Seat) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Seat) UnmarshalText(b []byte) error {
	v := string(b)
	if v == "D" || v == "dealer" {
		*s = Dealer
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fmt.Errorf("invalid seat %q", v)
	}
	*s = Seat(n)
	return nil
}

// Sequence returns the trial break order: StartSeat..Seats, the dealer, then
// 1..StartSeat-1.
func Sequence(seats, startSeat int) []Seat {
	out := make([]Seat, 0, seats+1)
	for i := startSeat; i <= seats; i++ {
		out = append(out, Seat(i))
	}
	out = append(out, Dealer)
	for i := 1; i < startSeat; i++ {
		out = append(out, Seat(i))
	}
	return out
}

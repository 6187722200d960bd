// Package breaks derives a table's break status from its open time and the
// current time. Every function is pure: the same (open, config, now) always
// yields the same result.
package breaks

import (
	"fmt"
	"time"
)

const (
	LabelStartsIn   = "Starts In"
	LabelUntilBreak = "Until Break"
	LabelBreakEnds  = "Break Ends"
)

type Schedule struct {
	Play       time.Duration
	Break      time.Duration
	Warning    time.Duration
	TrialBlock time.Duration
}

func DefaultSchedule() Schedule {
	return Schedule{
		Play:       3 * time.Hour,
		Break:      15 * time.Minute,
		Warning:    14 * time.Minute,
		TrialBlock: 20 * time.Minute,
	}
}

func (s Schedule) Cycle() time.Duration {
	return s.Play + s.Break
}

func (s Schedule) Validate() error {
	if s.Play <= 0 || s.Break <= 0 || s.TrialBlock <= 0 {
		return fmt.Errorf("schedule durations must be positive: play=%s break=%s trial_block=%s", s.Play, s.Break, s.TrialBlock)
	}
	if s.Warning < 0 || s.Warning >= s.Play {
		return fmt.Errorf("warning threshold %s must be within play duration %s", s.Warning, s.Play)
	}
	return nil
}

type Result struct {
	Status         Status
	NextTransition time.Time
	Remaining      time.Duration
	Label          string
	// BreakSeat is set only for a trial session that has started.
	BreakSeat *Seat
}

func (r Result) Countdown() string {
	return FormatCountdown(r.Remaining)
}

func (s Schedule) Evaluate(reg Regime, open, now time.Time) (Result, error) {
	switch r := reg.(type) {
	case Regular:
		return s.EvaluateRegular(open, now), nil
	case Trial:
		return s.EvaluateTrial(r, open, now)
	default:
		return Result{}, fmt.Errorf("%w: %T", ErrUnknownRegime, reg)
	}
}

func (s Schedule) EvaluateRegular(open, now time.Time) Result {
	if now.Before(open) {
		return newResult(StatusOpen, open, now, LabelStartsIn)
	}
	cycle := s.Cycle()
	elapsed := now.Sub(open)
	cycleStart := open.Add(elapsed / cycle * cycle)
	pos := elapsed % cycle

	if pos < s.Play {
		next := cycleStart.Add(s.Play)
		status := StatusOpen
		if s.Play-pos <= s.Warning {
			status = StatusWarningBreak
		}
		return newResult(status, next, now, LabelUntilBreak)
	}
	return newResult(StatusOnBreak, cycleStart.Add(cycle), now, LabelBreakEnds)
}

func (s Schedule) EvaluateTrial(t Trial, open, now time.Time) (Result, error) {
	if err := t.Validate(); err != nil {
		return Result{}, err
	}
	if now.Before(open) {
		return newResult(StatusTrialBreak, open, now, LabelStartsIn), nil
	}
	seq := Sequence(t.Seats, t.StartSeat)
	block := int64(now.Sub(open) / s.TrialBlock)
	seat := seq[block%int64(len(seq))]
	next := open.Add(time.Duration(block+1) * s.TrialBlock)

	res := newResult(StatusTrialBreak, next, now, fmt.Sprintf("Seat %s Break Ends", seat))
	res.BreakSeat = &seat
	return res, nil
}

// TrialSeatAt returns the seat on break at now and the seat that follows it.
// ok is false before the session starts.
func (s Schedule) TrialSeatAt(t Trial, open, now time.Time) (current, next Seat, ok bool, err error) {
	if err := t.Validate(); err != nil {
		return 0, 0, false, err
	}
	if now.Before(open) {
		return 0, 0, false, nil
	}
	seq := Sequence(t.Seats, t.StartSeat)
	block := int64(now.Sub(open) / s.TrialBlock)
	n := int64(len(seq))
	return seq[block%n], seq[(block+1)%n], true, nil
}

func newResult(status Status, next, now time.Time, label string) Result {
	remaining := next.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Status:         status,
		NextTransition: next,
		Remaining:      remaining,
		Label:          label,
	}
}

// FormatCountdown renders a non-negative duration as H:MM:SS, or MM:SS under
// one hour.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	sec := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}

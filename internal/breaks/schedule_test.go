package breaks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)

func TestRegularStatusPartition(t *testing.T) {
	s := DefaultSchedule()

	cases := []struct {
		minute int
		want   Status
	}{
		{0, StatusOpen},
		{100, StatusOpen},
		{165, StatusOpen},
		{166, StatusWarningBreak},
		{179, StatusWarningBreak},
		{180, StatusOnBreak},
		{194, StatusOnBreak},
		{195, StatusOpen},
		{195 + 166, StatusWarningBreak},
		{195 + 180, StatusOnBreak},
	}
	for _, tc := range cases {
		res := s.EvaluateRegular(t0, t0.Add(time.Duration(tc.minute)*time.Minute))
		assert.Equalf(t, tc.want, res.Status, "minute %d", tc.minute)
	}
}

func TestRegularExhaustiveCycle(t *testing.T) {
	s := DefaultSchedule()
	for m := 0; m < 3*195; m++ {
		res := s.EvaluateRegular(t0, t0.Add(time.Duration(m)*time.Minute))
		pos := m % 195
		switch {
		case pos < 166:
			require.Equalf(t, StatusOpen, res.Status, "minute %d", m)
		case pos < 180:
			require.Equalf(t, StatusWarningBreak, res.Status, "minute %d", m)
		default:
			require.Equalf(t, StatusOnBreak, res.Status, "minute %d", m)
		}
		require.True(t, res.NextTransition.After(t0.Add(time.Duration(m)*time.Minute)))
	}
}

func TestRegularNextTransition(t *testing.T) {
	s := DefaultSchedule()

	res := s.EvaluateRegular(t0, t0.Add(time.Hour))
	assert.Equal(t, t0.Add(3*time.Hour), res.NextTransition)
	assert.Equal(t, 2*time.Hour, res.Remaining)
	assert.Equal(t, LabelUntilBreak, res.Label)

	res = s.EvaluateRegular(t0, t0.Add(3*time.Hour+5*time.Minute))
	assert.Equal(t, StatusOnBreak, res.Status)
	assert.Equal(t, t0.Add(3*time.Hour+15*time.Minute), res.NextTransition)
	assert.Equal(t, LabelBreakEnds, res.Label)
}

func TestRegularScheduledFutureOpen(t *testing.T) {
	s := DefaultSchedule()
	open := t0.Add(2 * time.Hour)

	res := s.EvaluateRegular(open, t0)
	assert.Equal(t, StatusOpen, res.Status)
	assert.Equal(t, open, res.NextTransition)
	assert.Equal(t, LabelStartsIn, res.Label)
	assert.Equal(t, "2:00:00", res.Countdown())
}

func TestRegularTableScenario(t *testing.T) {
	s := DefaultSchedule()

	assert.Equal(t, StatusWarningBreak, s.EvaluateRegular(t0, t0.Add(2*time.Hour+50*time.Minute)).Status)
	assert.Equal(t, StatusOnBreak, s.EvaluateRegular(t0, t0.Add(3*time.Hour+10*time.Minute)).Status)

	res := s.EvaluateRegular(t0, t0.Add(3*time.Hour+16*time.Minute))
	assert.Equal(t, StatusOpen, res.Status)
	assert.Equal(t, t0.Add(6*time.Hour+15*time.Minute), res.NextTransition)
}

func TestTrialSequence(t *testing.T) {
	assert.Equal(t, []Seat{9, Dealer, 1, 2, 3, 4, 5, 6, 7, 8}, Sequence(9, 9))
	assert.Equal(t, []Seat{4, 5, 6, Dealer, 1, 2, 3}, Sequence(6, 4))
	assert.Equal(t, []Seat{1, 2, 3, Dealer}, Sequence(3, 1))
}

func TestTrialBlocks(t *testing.T) {
	s := DefaultSchedule()
	trial := Trial{Seats: 9, StartSeat: 9}

	cases := []struct {
		block int
		want  Seat
	}{
		{0, 9},
		{1, Dealer},
		{2, 1},
		{9, 8},
		{10, 9},
		{11, Dealer},
	}
	for _, tc := range cases {
		now := t0.Add(time.Duration(tc.block)*20*time.Minute + 5*time.Minute)
		res, err := s.EvaluateTrial(trial, t0, now)
		require.NoError(t, err)
		require.NotNil(t, res.BreakSeat)
		assert.Equalf(t, tc.want, *res.BreakSeat, "block %d", tc.block)
		assert.Equal(t, StatusTrialBreak, res.Status)
		assert.Equal(t, t0.Add(time.Duration(tc.block+1)*20*time.Minute), res.NextTransition)
	}
}

func TestTrialTableScenario(t *testing.T) {
	s := DefaultSchedule()
	trial := Trial{Seats: 9, StartSeat: 9}

	res, err := s.Evaluate(trial, t0, t0.Add(20*time.Minute))
	require.NoError(t, err)
	assert.True(t, res.BreakSeat.IsDealer())
	assert.Equal(t, "Seat D Break Ends", res.Label)

	res, err = s.Evaluate(trial, t0, t0.Add(40*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, Seat(1), *res.BreakSeat)
	assert.Equal(t, "Seat 1 Break Ends", res.Label)
}

func TestTrialBeforeStart(t *testing.T) {
	s := DefaultSchedule()
	res, err := s.EvaluateTrial(Trial{Seats: 9, StartSeat: 3}, t0, t0.Add(-10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, StatusTrialBreak, res.Status)
	assert.Nil(t, res.BreakSeat)
	assert.Equal(t, t0, res.NextTransition)
	assert.Equal(t, LabelStartsIn, res.Label)
}

func TestTrialInvalidConfig(t *testing.T) {
	s := DefaultSchedule()
	for _, trial := range []Trial{{Seats: 0, StartSeat: 1}, {Seats: 9, StartSeat: 10}, {Seats: 9, StartSeat: 0}} {
		_, err := s.EvaluateTrial(trial, t0, t0)
		assert.ErrorIs(t, err, ErrInvalidTrialConfig)
	}
}

func TestTrialSeatAt(t *testing.T) {
	s := DefaultSchedule()
	cur, next, ok, err := s.TrialSeatAt(Trial{Seats: 9, StartSeat: 9}, t0, t0.Add(25*time.Minute))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Dealer, cur)
	assert.Equal(t, Seat(1), next)

	_, _, ok, err = s.TrialSeatAt(Trial{Seats: 9, StartSeat: 9}, t0, t0.Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)
}

type unknownRegime struct{ Regular }

func TestEvaluateUnknownRegime(t *testing.T) {
	_, err := DefaultSchedule().Evaluate(nil, t0, t0)
	assert.ErrorIs(t, err, ErrUnknownRegime)

	_, err = DefaultSchedule().Evaluate(unknownRegime{}, t0, t0)
	assert.ErrorIs(t, err, ErrUnknownRegime)
}

func TestFormatCountdown(t *testing.T) {
	assert.Equal(t, "00:00", FormatCountdown(-time.Second))
	assert.Equal(t, "04:05", FormatCountdown(4*time.Minute+5*time.Second+300*time.Millisecond))
	assert.Equal(t, "1:00:09", FormatCountdown(time.Hour+9*time.Second))
}

func TestSeatText(t *testing.T) {
	b, err := Dealer.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "D", string(b))

	var s Seat
	require.NoError(t, s.UnmarshalText([]byte("7")))
	assert.Equal(t, Seat(7), s)
	require.NoError(t, s.UnmarshalText([]byte("D")))
	assert.True(t, s.IsDealer())
	assert.Error(t, s.UnmarshalText([]byte("x")))
}

func TestScheduleValidate(t *testing.T) {
	require.NoError(t, DefaultSchedule().Validate())

	bad := DefaultSchedule()
	bad.Warning = 4 * time.Hour
	assert.Error(t, bad.Validate())
}

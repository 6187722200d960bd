package tables

import (
	"time"

	"tableflow/internal/breaks"
	"tableflow/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Recompute derives status, next transition and countdown of every table at
// now. A record the engine cannot evaluate is neutralized (derived fields
// cleared) and the rest of the batch continues.
func (s *Store) Recompute(now time.Time) {
	counts := map[breaks.Status]int{}
	for i := range s.tables {
		t := &s.tables[i]
		s.recomputeOne(t, now)
		counts[t.Status]++
	}
	for _, st := range []breaks.Status{breaks.StatusClosed, breaks.StatusOpen, breaks.StatusWarningBreak, breaks.StatusOnBreak, breaks.StatusTrialBreak} {
		metrics.TablesByStatus.WithLabelValues(string(st)).Set(float64(counts[st]))
	}
}

func (s *Store) recomputeOne(t *Table, now time.Time) {
	if t.Session == nil {
		t.close()
		return
	}
	res, err := s.schedule.Evaluate(t.Session.Regime, t.Session.StartTime, now)
	if err != nil {
		if !s.neutralized[t.Number] {
			log.Warn().Err(err).Str("table", t.Number).Msg("cannot derive table status; leaving it without countdown")
			s.neutralized[t.Number] = true
		}
		t.clearDerived()
		return
	}
	delete(s.neutralized, t.Number)
	t.Status = res.Status
	t.NextBreakTime = res.NextTransition
	t.Countdown = res.Countdown()
	t.CountdownLabel = res.Label
	t.BreakSeat = res.BreakSeat
}

// Package tables holds the live state of every table on the floor: the
// open/close commands, the per-tick recomputation of derived status, and the
// persisted snapshot.
//
// Store is not safe for concurrent use; the floor service serializes commands
// and ticks.
package tables

import (
	"context"
	"fmt"
	"time"

	"tableflow/internal/activitylog"
	"tableflow/internal/breaks"
	"tableflow/internal/idempotency"
	"tableflow/internal/kvstore"
	"tableflow/internal/layout"
	"tableflow/internal/metrics"

	"github.com/rs/zerolog/log"
)

type Store struct {
	kv       kvstore.Store
	log      *activitylog.Log
	guard    *idempotency.Guard
	schedule breaks.Schedule
	layout   layout.Layout

	tables      []Table
	index       map[string]int
	neutralized map[string]bool
}

func NewStore(kv kvstore.Store, alog *activitylog.Log, guard *idempotency.Guard, schedule breaks.Schedule, floor layout.Layout) *Store {
	s := &Store{
		kv:          kv,
		log:         alog,
		guard:       guard,
		schedule:    schedule,
		layout:      floor,
		neutralized: make(map[string]bool),
	}
	s.resetTables()
	return s
}

func (s *Store) resetTables() {
	s.tables = make([]Table, len(s.layout.Tables))
	s.index = make(map[string]int, len(s.layout.Tables))
	for i, lt := range s.layout.Tables {
		s.tables[i] = NewClosed(lt)
		s.index[lt.Number] = i
	}
	s.neutralized = make(map[string]bool)
}

// Tables returns a copy of all tables in layout order.
func (s *Store) Tables() []Table {
	out := make([]Table, len(s.tables))
	copy(out, s.tables)
	return out
}

func (s *Store) Table(number string) (Table, bool) {
	i, ok := s.index[number]
	if !ok {
		return Table{}, false
	}
	return s.tables[i], true
}

func (s *Store) lookup(number string) (*Table, error) {
	i, ok := s.index[number]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, number)
	}
	return &s.tables[i], nil
}

// Load restores the persisted snapshot onto the layout. Tables missing from
// the snapshot stay closed; tables no longer in the layout are dropped.
// A corrupt snapshot is logged and ignored. The idempotency guard is seeded
// from the day's log so a restart does not duplicate entries.
func (s *Store) Load(ctx context.Context) error {
	s.resetTables()
	raw, ok, err := s.kv.Get(ctx, SnapshotKey)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	if ok {
		saved, err := decodeSnapshot(raw)
		if err != nil {
			metrics.StorageCorruptions.WithLabelValues("snapshot").Inc()
			log.Warn().Err(err).Msg("stored table snapshot is unreadable; starting with all tables closed")
		}
		for _, t := range saved {
			i, ok := s.index[t.Number]
			if !ok {
				log.Warn().Str("table", t.Number).Msg("snapshot table not in layout; dropped")
				continue
			}
			t.Position = s.tables[i].Position
			t.Rotation = s.tables[i].Rotation
			s.tables[i] = t
		}
	}
	return s.seedGuard(ctx)
}

// seedGuard claims the close keys of the day's log and the open keys of
// sessions that are still running. An open already followed by its close is
// not claimed, matching what Close releases.
func (s *Store) seedGuard(ctx context.Context) error {
	entries, err := s.log.ReadAll(ctx, s.log.DayKey())
	if err != nil {
		return err
	}
	running := make(map[string][]time.Time)
	for _, e := range entries {
		switch e.Action {
		case activitylog.ActionOpen:
			running[e.Table] = append(running[e.Table], e.OpenTime())
		case activitylog.ActionClose:
			s.guard.Claim(idempotency.CloseKey(e.Table, e.Timestamp))
			running[e.Table] = dropLatest(running[e.Table])
		}
	}
	for table, starts := range running {
		for _, start := range starts {
			s.guard.Claim(idempotency.OpenKey(table, start))
		}
	}
	for _, t := range s.tables {
		if t.Session != nil {
			s.guard.Claim(idempotency.OpenKey(t.Number, t.Session.StartTime))
		}
	}
	return nil
}

// dropLatest removes the latest start, later position winning ties; that is
// the open a close entry pairs with.
func dropLatest(starts []time.Time) []time.Time {
	if len(starts) == 0 {
		return starts
	}
	latest := 0
	for i, st := range starts {
		if !st.Before(starts[latest]) {
			latest = i
		}
	}
	return append(starts[:latest], starts[latest+1:]...)
}

// Persist writes the {version, timestamp, tables} snapshot.
func (s *Store) Persist(ctx context.Context, now time.Time) error {
	raw, err := encodeSnapshot(s.tables, now)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, SnapshotKey, raw)
}

// Open starts a session on a closed table. Re-applying the same open (same
// start and regime) to an already open table is accepted and logs nothing.
func (s *Store) Open(ctx context.Context, number string, start time.Time, regime breaks.Regime, now time.Time) (Table, error) {
	t, err := s.lookup(number)
	if err != nil {
		return Table{}, err
	}
	switch r := regime.(type) {
	case breaks.Regular:
	case breaks.Trial:
		if err := r.Validate(); err != nil {
			return Table{}, fmt.Errorf("%w: %v", ErrInvalidRegime, err)
		}
	default:
		return Table{}, fmt.Errorf("%w: %T", ErrInvalidRegime, regime)
	}

	if t.Session != nil {
		if !t.Session.StartTime.Equal(start) || t.Session.Regime != regime {
			return Table{}, fmt.Errorf("%w: %s since %s", ErrTableAlreadyOpen, number, t.Session.StartTime.Format(time.RFC3339))
		}
	}
	day, err := s.logOpen(ctx, number, start, regime)
	if err != nil {
		return Table{}, err
	}
	if t.Session == nil {
		t.Session = &Session{StartTime: start, Regime: regime, LogDay: day}
		log.Info().Str("table", number).Time("start_time", start).Str("regime", regimeName(regime)).Msg("table opened")
	}
	s.recomputeOne(t, now)
	return *t, nil
}

// logOpen appends the open entry unless it is already logged and returns the
// gaming day it was written to ("" when suppressed).
func (s *Store) logOpen(ctx context.Context, number string, start time.Time, regime breaks.Regime) (string, error) {
	key := idempotency.OpenKey(number, start)
	if !s.guard.Claim(key) {
		metrics.DuplicateWritesSuppressed.WithLabelValues(string(activitylog.ActionOpen)).Inc()
		return "", nil
	}
	e, err := s.log.AppendOpen(ctx, number, activitylog.OpenPayload{StartTime: start, Regime: regime})
	if err != nil {
		s.guard.Forget(key)
		return "", err
	}
	return e.GamingDay, nil
}

// Close ends the table's session at closedAt. Range checks against the
// gaming day belong to the caller; Close only rejects a close before the
// session start.
func (s *Store) Close(ctx context.Context, number string, closedAt time.Time) (Table, error) {
	t, err := s.lookup(number)
	if err != nil {
		return Table{}, err
	}
	if t.Session == nil {
		return Table{}, fmt.Errorf("%w: %s", ErrTableNotOpen, number)
	}
	if closedAt.Before(t.Session.StartTime) {
		return Table{}, fmt.Errorf("%w: %s is before open time %s", ErrInvalidCloseTime,
			closedAt.Format(time.RFC3339), t.Session.StartTime.Format(time.RFC3339))
	}

	key := idempotency.CloseKey(number, closedAt)
	if s.guard.Claim(key) {
		payload := activitylog.ClosePayload{ClosedAt: closedAt, Duration: closedAt.Sub(t.Session.StartTime)}
		if _, err := s.log.AppendClose(ctx, number, payload); err != nil {
			s.guard.Forget(key)
			return Table{}, err
		}
	} else {
		metrics.DuplicateWritesSuppressed.WithLabelValues(string(activitylog.ActionClose)).Inc()
	}
	// the session is over; opening again at the same start is a new session
	s.guard.Forget(idempotency.OpenKey(number, t.Session.StartTime))
	log.Info().Str("table", number).Time("closed_at", closedAt).Msg("table closed")
	t.close()
	delete(s.neutralized, number)
	return *t, nil
}

// CancelScheduled closes a table whose start is still in the future and
// retracts its open entry. It is a no-op (false) for any other table.
func (s *Store) CancelScheduled(ctx context.Context, number string, now time.Time) (bool, error) {
	t, err := s.lookup(number)
	if err != nil {
		return false, err
	}
	if !t.IsScheduled(now) {
		return false, nil
	}
	start := t.Session.StartTime
	for _, day := range cancelDays(t.Session.LogDay, s.log.DayKey()) {
		if _, err := s.log.Remove(ctx, day, number, activitylog.ActionOpen, &start); err != nil {
			return false, err
		}
	}
	s.guard.Forget(idempotency.OpenKey(number, start))
	log.Info().Str("table", number).Time("start_time", start).Msg("scheduled open cancelled")
	t.close()
	delete(s.neutralized, number)
	return true, nil
}

// Reset closes every table, drops the snapshot and the given day's log and
// clears the idempotency guard.
func (s *Store) Reset(ctx context.Context, dayKey string) error {
	if err := s.kv.Remove(ctx, SnapshotKey); err != nil {
		return err
	}
	if err := s.log.Clear(ctx, dayKey); err != nil {
		return err
	}
	s.guard.Reset()
	s.resetTables()
	return nil
}

// cancelDays lists the logs that may hold a scheduled open: the day it was
// written to and the current one. Snapshots from before LogDay was recorded
// only have the latter.
func cancelDays(logDay, current string) []string {
	if logDay == "" || logDay == current {
		return []string{current}
	}
	return []string{logDay, current}
}

func regimeName(r breaks.Regime) string {
	if trial, ok := r.(breaks.Trial); ok {
		return fmt.Sprintf("trial(%d seats, start %d)", trial.Seats, trial.StartSeat)
	}
	return "regular"
}

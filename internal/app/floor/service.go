// Package floor is the single entry point of the table operations. Commands
// and the periodic tick take the same lock, so state changes are applied one
// at a time in arrival order.
package floor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tableflow/internal/activitylog"
	"tableflow/internal/breaks"
	"tableflow/internal/export"
	"tableflow/internal/forecast"
	"tableflow/internal/gamingday"
	"tableflow/internal/metrics"
	"tableflow/internal/sessions"
	"tableflow/internal/tables"

	"github.com/rs/zerolog/log"
)

type Service struct {
	mu       sync.Mutex
	tables   *tables.Store
	log      *activitylog.Log
	cal      gamingday.Calendar
	schedule breaks.Schedule
	now      func() time.Time
	interval time.Duration
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithTickInterval(d time.Duration) Option {
	return func(s *Service) { s.interval = d }
}

func NewService(st *tables.Store, alog *activitylog.Log, cal gamingday.Calendar, schedule breaks.Schedule, opts ...Option) *Service {
	s := &Service{
		tables:   st,
		log:      alog,
		cal:      cal,
		schedule: schedule,
		now:      time.Now,
		interval: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start restores the persisted tables and derives their current state.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tables.Load(ctx); err != nil {
		return err
	}
	now := s.now()
	s.tables.Recompute(now)
	s.persist(ctx, now)
	return nil
}

// Run ticks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	ticker := tables.NewTicker(s.interval, s)
	ticker.Start(ctx)
	<-ctx.Done()
	ticker.Stop()
}

// Tick recomputes every table and persists the snapshot. It never fails;
// storage errors are logged and retried on the next tick.
func (s *Service) Tick(ctx context.Context, _ time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	began := time.Now()
	now := s.now()
	s.tables.Recompute(now)
	s.persist(ctx, now)
	metrics.TickDuration.Observe(time.Since(began).Seconds())
}

func (s *Service) persist(ctx context.Context, now time.Time) {
	if err := s.tables.Persist(ctx, now); err != nil {
		log.Warn().Err(err).Msg("persist tables snapshot failed")
	}
}

func (s *Service) Tables() TablesResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	return TablesResponse{GamingDay: s.cal.KeyOf(now), Now: now, Items: s.tables.Tables()}
}

func (s *Service) OpenTable(ctx context.Context, number string, req OpenRequest) (*TableResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	start := now
	if req.StartTime != nil {
		start = *req.StartTime
	}
	var regime breaks.Regime = breaks.Regular{}
	if req.Trial != nil {
		regime = breaks.Trial{Seats: req.Trial.Seats, StartSeat: req.Trial.StartSeat}
	}
	t, err := s.tables.Open(ctx, number, start, regime, now)
	if err != nil {
		rejected("open", err)
		return nil, err
	}
	s.persist(ctx, now)
	return &TableResponse{Table: t}, nil
}

// CloseTable closes a table now or at a backdated time. A backdated close
// must not precede the open, must not be in the future and must fall inside
// the operating hours of the current gaming day.
func (s *Service) CloseTable(ctx context.Context, number string, req CloseRequest) (*TableResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	current, ok := s.tables.Table(number)
	if !ok {
		rejected("close", ErrTableNotFound)
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, number)
	}
	if !current.IsOpen() {
		rejected("close", ErrTableNotOpen)
		return nil, fmt.Errorf("%w: %s", ErrTableNotOpen, number)
	}
	closedAt := now
	if req.CloseTime != nil {
		closedAt = *req.CloseTime
		if err := s.validateCloseTime(current, closedAt, now); err != nil {
			rejected("close", err)
			return nil, err
		}
	}
	t, err := s.tables.Close(ctx, number, closedAt)
	if err != nil {
		rejected("close", err)
		return nil, err
	}
	s.persist(ctx, now)
	return &TableResponse{Table: t}, nil
}

func (s *Service) validateCloseTime(t tables.Table, closedAt, now time.Time) error {
	if closedAt.Before(t.Session.StartTime) {
		return fmt.Errorf("%w: close time is before open time", ErrInvalidCloseTime)
	}
	if closedAt.After(now) {
		return fmt.Errorf("%w: close time is in the future", ErrInvalidCloseTime)
	}
	day := s.cal.DayOf(now)
	if !s.cal.Contains(day, closedAt) {
		start, end := s.cal.Bounds(day)
		return fmt.Errorf("%w: close time must be within gaming day hours %s to %s",
			ErrInvalidCloseTime, start.Format("2006-01-02 15:04"), end.Format("2006-01-02 15:04"))
	}
	return nil
}

// CancelScheduledOpen reverts an open whose start is still ahead. It reports
// false and changes nothing for any other table.
func (s *Service) CancelScheduledOpen(ctx context.Context, number string) (*CancelResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	ok, err := s.tables.CancelScheduled(ctx, number, now)
	if err != nil {
		rejected("cancel", err)
		return nil, err
	}
	if ok {
		s.persist(ctx, now)
	}
	return &CancelResponse{TableNumber: number, Cancelled: ok}, nil
}

func (s *Service) HistoryData(ctx context.Context) (*HistoryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dayKey, history, err := s.history(ctx, s.now())
	if err != nil {
		return nil, err
	}
	return &HistoryResponse{GamingDay: dayKey, Items: history}, nil
}

func (s *Service) history(ctx context.Context, now time.Time) (string, []sessions.Session, error) {
	dayKey := s.cal.KeyOf(now)
	entries, err := s.log.ReadAll(ctx, dayKey)
	if err != nil {
		return "", nil, err
	}
	return dayKey, sessions.Reconstruct(entries, s.tables.Tables(), now), nil
}

// DeleteSession removes the open entry of a logged session and its paired
// close entry. The live table is left as it is.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) (*DeleteSessionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	dayKey := s.cal.KeyOf(now)
	entries, err := s.log.ReadAll(ctx, dayKey)
	if err != nil {
		return nil, err
	}
	ids, err := sessions.PlanDelete(entries, s.tables.Tables(), now, sessionID)
	if err != nil {
		rejected("delete_session", err)
		return nil, err
	}
	if _, err := s.log.RemoveIDs(ctx, dayKey, ids...); err != nil {
		return nil, err
	}
	log.Info().Str("session_id", sessionID).Strs("entries", ids).Msg("session deleted")
	return &DeleteSessionResponse{SessionID: sessionID, RemovedEntries: ids}, nil
}

// ResetAll closes every table and wipes the current gaming day's log.
func (s *Service) ResetAll(ctx context.Context) (*ResetResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	dayKey := s.cal.KeyOf(now)
	if err := s.tables.Reset(ctx, dayKey); err != nil {
		return nil, err
	}
	s.tables.Recompute(now)
	log.Info().Str("gaming_day", dayKey).Msg("floor reset")
	return &ResetResponse{GamingDay: dayKey}, nil
}

func (s *Service) UpcomingBreaks(ctx context.Context) (*UpcomingBreaksResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	_, history, err := s.history(ctx, now)
	if err != nil {
		return nil, err
	}
	_, end := s.cal.Bounds(s.cal.DayOf(now))
	slots := forecast.UpcomingBreaks(history, s.schedule, now, end, forecast.DefaultSlots, forecast.DefaultStep)
	return &UpcomingBreaksResponse{Items: slots}, nil
}

func (s *Service) TrialRotations() *TrialRotationsResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &TrialRotationsResponse{Items: forecast.TrialRotations(s.tables.Tables(), s.schedule, s.now())}
}

// Timeline builds the quarter-hour grid of the current gaming day.
func (s *Service) Timeline(ctx context.Context) (export.Grid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	_, history, err := s.history(ctx, now)
	if err != nil {
		return export.Grid{}, err
	}
	day := s.cal.DayOf(now)
	_, end := s.cal.Bounds(day)
	return export.BuildTimeline(history, s.cal, day, s.schedule, end), nil
}

func (s *Service) BackupLog(ctx context.Context) (*BackupLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	dayKey := s.cal.KeyOf(now)
	entries, err := s.log.ReadAll(ctx, dayKey)
	if err != nil {
		return nil, err
	}
	return &BackupLog{GamingDay: dayKey, Entries: entries, GeneratedAt: now, Location: s.cal.Location}, nil
}

func rejected(command string, err error) {
	reason := "internal"
	for _, known := range []error{
		ErrTableNotFound, ErrTableAlreadyOpen, ErrTableNotOpen, ErrInvalidRegime,
		ErrInvalidCloseTime, ErrSessionNotFound, ErrSessionNotDeletable,
	} {
		if errors.Is(err, known) {
			reason = known.Error()
			break
		}
	}
	metrics.RejectedCommands.WithLabelValues(command, reason).Inc()
	log.Debug().Err(err).Str("command", command).Msg("command rejected")
}

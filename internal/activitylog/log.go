// Package activitylog is the append-only record of table open/close events,
// partitioned by gaming day (one store key per day).
package activitylog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"tableflow/internal/breaks"
	"tableflow/internal/gamingday"
	"tableflow/internal/kvstore"
	"tableflow/internal/metrics"

	"github.com/rs/zerolog/log"
)

const keyPrefix = "tableflow-logs-"

var ErrInvalidEntry = errors.New("invalid_log_entry")

// Key is the store key holding the log of the given gaming day.
func Key(dayKey string) string {
	return keyPrefix + dayKey
}

type Log struct {
	store kvstore.Store
	cal   gamingday.Calendar
	now   func() time.Time
	mu    sync.Mutex
}

type Option func(*Log)

func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

func New(store kvstore.Store, cal gamingday.Calendar, opts ...Option) *Log {
	l := &Log{store: store, cal: cal, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DayKey returns the partition key of the gaming day containing now.
func (l *Log) DayKey() string {
	return l.cal.KeyOf(l.now())
}

func (l *Log) AppendOpen(ctx context.Context, table string, p OpenPayload) (Entry, error) {
	start := p.StartTime
	e := Entry{Table: table, Action: ActionOpen, StartTime: &start}
	switch r := p.Regime.(type) {
	case breaks.Regular:
	case breaks.Trial:
		e.IsTrialBreak = true
		e.TrialSeats = r.Seats
		e.TrialStartSeat = r.StartSeat
	default:
		return Entry{}, fmt.Errorf("%w: regime %T", ErrInvalidEntry, p.Regime)
	}
	return l.append(ctx, e, time.Time{})
}

func (l *Log) AppendClose(ctx context.Context, table string, p ClosePayload) (Entry, error) {
	mins := MinutesOf(p.Duration)
	e := Entry{Table: table, Action: ActionClose, Duration: &mins}
	return l.append(ctx, e, p.ClosedAt)
}

func (l *Log) append(ctx context.Context, e Entry, at time.Time) (Entry, error) {
	if e.Table == "" {
		return Entry{}, fmt.Errorf("%w: empty table", ErrInvalidEntry)
	}
	now := l.now()
	if at.IsZero() {
		at = now
	}
	e.ID = NewID(e.Table, e.Action, now)
	e.Timestamp = at
	e.GamingDay = l.cal.KeyOf(now)

	l.mu.Lock()
	defer l.mu.Unlock()
	entries, err := l.read(ctx, e.GamingDay)
	if err != nil {
		return Entry{}, err
	}
	entries = append(entries, e)
	if err := l.write(ctx, e.GamingDay, entries); err != nil {
		return Entry{}, err
	}
	metrics.LogEntriesAppended.WithLabelValues(string(e.Action)).Inc()
	log.Debug().Str("table", e.Table).Str("action", string(e.Action)).Str("id", e.ID).Msg("activity logged")
	return e, nil
}

// ReadAll returns the entries of a gaming day in insertion order. A corrupt
// stored value reads as an empty log.
func (l *Log) ReadAll(ctx context.Context, dayKey string) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read(ctx, dayKey)
}

// Remove deletes the entry of table/action whose identifying time (StartTime
// for open, Timestamp for close) equals match. A nil match removes every entry
// of that action for the table.
func (l *Log) Remove(ctx context.Context, dayKey, table string, action Action, match *time.Time) (bool, error) {
	return l.filter(ctx, dayKey, func(e Entry) bool {
		if e.Table != table || e.Action != action {
			return false
		}
		if match == nil {
			return true
		}
		var at time.Time
		if action == ActionOpen {
			if e.StartTime == nil {
				return false
			}
			at = *e.StartTime
		} else {
			at = e.Timestamp
		}
		return at.Equal(*match)
	})
}

// RemoveIDs deletes the entries with the given ids.
func (l *Log) RemoveIDs(ctx context.Context, dayKey string, ids ...string) (bool, error) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return l.filter(ctx, dayKey, func(e Entry) bool {
		_, ok := set[e.ID]
		return ok
	})
}

func (l *Log) Clear(ctx context.Context, dayKey string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Remove(ctx, Key(dayKey))
}

func (l *Log) filter(ctx context.Context, dayKey string, drop func(Entry) bool) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries, err := l.read(ctx, dayKey)
	if err != nil {
		return false, err
	}
	kept := entries[:0]
	for _, e := range entries {
		if !drop(e) {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return false, nil
	}
	return true, l.write(ctx, dayKey, kept)
}

func (l *Log) read(ctx context.Context, dayKey string) ([]Entry, error) {
	raw, ok, err := l.store.Get(ctx, Key(dayKey))
	if err != nil {
		return nil, fmt.Errorf("read log %s: %w", dayKey, err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		metrics.StorageCorruptions.WithLabelValues("log").Inc()
		log.Warn().Err(err).Str("gaming_day", dayKey).Msg("stored activity log is corrupt; treating as empty")
		return nil, nil
	}
	return entries, nil
}

func (l *Log) write(ctx context.Context, dayKey string, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if err := l.store.Set(ctx, Key(dayKey), string(b)); err != nil {
		return fmt.Errorf("write log %s: %w", dayKey, err)
	}
	return nil
}

package sessions

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"tableflow/internal/activitylog"
	"tableflow/internal/tables"
)

type candidate struct {
	open  activitylog.Entry
	close *activitylog.Entry
	seq   int
}

// Reconstruct folds the day's entries into sessions, adds a synthesized
// session for every live table without a running logged session and returns them
// newest first.
//
// A close pairs with the table's unclosed session that opened last (ties go
// to the later log entry). A close with nothing to pair with is dropped.
func Reconstruct(entries []activitylog.Entry, live []tables.Table, now time.Time) []Session {
	var all []*candidate
	byTable := make(map[string][]*candidate)

	for i, e := range entries {
		switch e.Action {
		case activitylog.ActionOpen:
			c := &candidate{open: e, seq: i}
			all = append(all, c)
			byTable[e.Table] = append(byTable[e.Table], c)
		case activitylog.ActionClose:
			var target *candidate
			for _, c := range byTable[e.Table] {
				if c.close != nil {
					continue
				}
				if target == nil || !c.open.OpenTime().Before(target.open.OpenTime()) {
					target = c
				}
			}
			if target != nil {
				closeEntry := e
				target.close = &closeEntry
			}
		}
	}

	out := make([]Session, 0, len(all)+len(live))
	liveStart := make(map[string]time.Time, len(live))
	for _, t := range live {
		if t.Session != nil {
			liveStart[t.Number] = t.Session.StartTime
		}
	}

	for _, c := range all {
		out = append(out, project(c, liveStart, now))
	}

	for _, t := range live {
		if t.Session == nil || hasRunning(byTable[t.Number], t.Session.StartTime) {
			continue
		}
		start := t.Session.StartTime
		out = append(out, Session{
			SessionID:   livePrefix + t.Number + "-" + strconv.FormatInt(start.UnixMilli(), 10),
			TableNumber: t.Number,
			OpenTime:    start,
			Duration:    nonNegative(now.Sub(start)),
			Regime:      t.Session.Regime,
			Status:      StatusOpen,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OpenTime.Equal(out[j].OpenTime) {
			return out[i].OpenTime.After(out[j].OpenTime)
		}
		return out[i].SessionID < out[j].SessionID
	})
	return out
}

func project(c *candidate, liveStart map[string]time.Time, now time.Time) Session {
	open := c.open.OpenTime()
	s := Session{
		SessionID:   c.open.ID,
		TableNumber: c.open.Table,
		OpenTime:    open,
		Regime:      c.open.Regime(),
		Status:      StatusClosed,
		openEntryID: c.open.ID,
	}
	if c.close != nil {
		closedAt := c.close.Timestamp
		s.CloseTime = &closedAt
		s.Duration = nonNegative(closedAt.Sub(open))
		s.IsCompleteSession = true
		s.closeEntryID = c.close.ID
		return s
	}
	s.Duration = nonNegative(now.Sub(open))
	if start, ok := liveStart[c.open.Table]; ok && start.Equal(open) {
		s.Status = StatusOpen
	}
	return s
}

// hasRunning reports whether the table has an unclosed logged session that
// opened at start. A closed one with the same start does not count: the live
// table is a later session reopened at that time.
func hasRunning(cands []*candidate, start time.Time) bool {
	for _, c := range cands {
		if c.close == nil && c.open.OpenTime().Equal(start) {
			return true
		}
	}
	return false
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// PlanDelete returns the ids of the log entries that make up sessionID: its
// open entry and, if paired, its close entry.
func PlanDelete(entries []activitylog.Entry, live []tables.Table, now time.Time, sessionID string) ([]string, error) {
	for _, s := range Reconstruct(entries, live, now) {
		if s.SessionID != sessionID {
			continue
		}
		if s.Synthesized() {
			return nil, fmt.Errorf("%w: %s has no logged entries", ErrSessionNotDeletable, sessionID)
		}
		ids := []string{s.openEntryID}
		if s.closeEntryID != "" {
			ids = append(ids, s.closeEntryID)
		}
		return ids, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
}

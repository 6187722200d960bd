package floor

import (
	"context"
	"testing"
	"time"

	"tableflow/internal/activitylog"
	"tableflow/internal/breaks"
	"tableflow/internal/export"
	"tableflow/internal/gamingday"
	"tableflow/internal/idempotency"
	"tableflow/internal/kvstore"
	"tableflow/internal/layout"
	"tableflow/internal/sessions"
	"tableflow/internal/tables"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// T is a quiet afternoon well inside the 2026-03-15 gaming day.
var T = time.Date(2026, 3, 15, 13, 0, 0, 0, time.UTC)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

type harness struct {
	svc   *Service
	clock *clock
	kv    *kvstore.Memory
	log   *activitylog.Log
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{clock: &clock{now: T}, kv: kvstore.NewMemory()}
	cal := gamingday.New(12, 4, time.UTC)
	h.log = activitylog.New(h.kv, cal, activitylog.WithClock(h.clock.Now))
	store := tables.NewStore(h.kv, h.log, idempotency.NewGuard(), breaks.DefaultSchedule(), layout.Default())
	h.svc = NewService(store, h.log, cal, breaks.DefaultSchedule(), WithClock(h.clock.Now))
	require.NoError(t, h.svc.Start(context.Background()))
	return h
}

func (h *harness) at(d time.Duration) {
	h.clock.now = T.Add(d)
	h.svc.Tick(context.Background(), h.clock.now)
}

func (h *harness) table(t *testing.T, number string) tables.Table {
	t.Helper()
	for _, tb := range h.svc.Tables().Items {
		if tb.Number == number {
			return tb
		}
	}
	t.Fatalf("table %s not in layout", number)
	return tables.Table{}
}

func (h *harness) entries(t *testing.T) []activitylog.Entry {
	t.Helper()
	entries, err := h.log.ReadAll(context.Background(), "2026-03-15")
	require.NoError(t, err)
	return entries
}

func TestRegularTableLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.OpenTable(ctx, "3301", OpenRequest{})
	require.NoError(t, err)

	h.at(2*time.Hour + 50*time.Minute)
	assert.Equal(t, breaks.StatusWarningBreak, h.table(t, "3301").Status)

	h.at(3*time.Hour + 10*time.Minute)
	tb := h.table(t, "3301")
	assert.Equal(t, breaks.StatusOnBreak, tb.Status)
	assert.Equal(t, "Break Ends", tb.CountdownLabel)
	assert.Equal(t, "05:00", tb.Countdown)

	h.at(3*time.Hour + 16*time.Minute)
	tb = h.table(t, "3301")
	assert.Equal(t, breaks.StatusOpen, tb.Status)
	assert.Equal(t, T.Add(6*time.Hour+15*time.Minute), tb.NextBreakTime)

	assert.Len(t, h.entries(t), 1)
}

func TestTrialTableRotation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.OpenTable(ctx, "3302", OpenRequest{Trial: &TrialRequest{Seats: 9, StartSeat: 9}})
	require.NoError(t, err)

	h.at(20 * time.Minute)
	tb := h.table(t, "3302")
	assert.Equal(t, breaks.StatusTrialBreak, tb.Status)
	require.NotNil(t, tb.BreakSeat)
	assert.Equal(t, breaks.Dealer, *tb.BreakSeat)
	assert.Equal(t, "Seat D Break Ends", tb.CountdownLabel)

	h.at(40 * time.Minute)
	tb = h.table(t, "3302")
	require.NotNil(t, tb.BreakSeat)
	assert.Equal(t, breaks.Seat(1), *tb.BreakSeat)

	rot := h.svc.TrialRotations().Items
	require.Len(t, rot, 1)
	assert.Equal(t, breaks.Seat(1), rot[0].CurrentSeat)
	assert.Equal(t, breaks.Seat(2), rot[0].NextSeat)
}

func TestCloseBeforeFutureOpenIsRejected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	start := T.Add(2 * time.Hour)
	_, err := h.svc.OpenTable(ctx, "3301", OpenRequest{StartTime: &start})
	require.NoError(t, err)
	before := h.table(t, "3301")

	closeAt := T.Add(time.Hour)
	_, err = h.svc.CloseTable(ctx, "3301", CloseRequest{CloseTime: &closeAt})
	require.ErrorIs(t, err, ErrInvalidCloseTime)
	assert.Contains(t, err.Error(), "before open time")

	assert.Equal(t, before, h.table(t, "3301"))
	assert.Len(t, h.entries(t), 1)
}

func TestCloseTimeValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	_, err := h.svc.OpenTable(ctx, "3301", OpenRequest{StartTime: &start})
	require.NoError(t, err)

	future := T.Add(time.Minute)
	_, err = h.svc.CloseTable(ctx, "3301", CloseRequest{CloseTime: &future})
	require.ErrorIs(t, err, ErrInvalidCloseTime)
	assert.Contains(t, err.Error(), "in the future")

	// past midnight the previous afternoon is still the current gaming day
	h.at(14 * time.Hour)
	backdated := time.Date(2026, 3, 16, 1, 30, 0, 0, time.UTC)
	resp, err := h.svc.CloseTable(ctx, "3301", CloseRequest{CloseTime: &backdated})
	require.NoError(t, err)
	assert.Equal(t, breaks.StatusClosed, resp.Table.Status)

	entries := h.entries(t)
	require.Len(t, entries, 2)
	assert.Equal(t, backdated, entries[1].Timestamp)
	assert.Equal(t, activitylog.Minutes(810), *entries[1].Duration)

	_, err = h.svc.CloseTable(ctx, "3301", CloseRequest{})
	assert.ErrorIs(t, err, ErrTableNotOpen)
	_, err = h.svc.CloseTable(ctx, "0000", CloseRequest{})
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestCloseOutsideGamingDayHours(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 15, 11, 0, 0, 0, time.UTC)
	_, err := h.svc.OpenTable(ctx, "3301", OpenRequest{StartTime: &start})
	require.NoError(t, err)

	closeAt := time.Date(2026, 3, 15, 11, 30, 0, 0, time.UTC)
	_, err = h.svc.CloseTable(ctx, "3301", CloseRequest{CloseTime: &closeAt})
	require.ErrorIs(t, err, ErrInvalidCloseTime)
	assert.Contains(t, err.Error(), "gaming day hours")
}

func TestOpenTwiceLogsOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	start := T.Add(-30 * time.Minute)

	_, err := h.svc.OpenTable(ctx, "3301", OpenRequest{StartTime: &start})
	require.NoError(t, err)
	h.at(time.Minute)
	_, err = h.svc.OpenTable(ctx, "3301", OpenRequest{StartTime: &start})
	require.NoError(t, err)

	assert.Len(t, h.entries(t), 1)
}

func TestReopenAtSameStartAfterClose(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.OpenTable(ctx, "3301", OpenRequest{})
	require.NoError(t, err)
	h.at(time.Hour)
	_, err = h.svc.CloseTable(ctx, "3301", CloseRequest{})
	require.NoError(t, err)
	start := T
	_, err = h.svc.OpenTable(ctx, "3301", OpenRequest{StartTime: &start})
	require.NoError(t, err)

	h.at(2 * time.Hour)
	assert.Equal(t, breaks.StatusOpen, h.table(t, "3301").Status)
	hist, err := h.svc.HistoryData(ctx)
	require.NoError(t, err)
	require.Len(t, hist.Items, 2)
	open := 0
	for _, s := range hist.Items {
		if s.Status == sessions.StatusOpen {
			open++
			assert.Equal(t, T, s.OpenTime)
		}
	}
	assert.Equal(t, 1, open)

	h.at(3 * time.Hour)
	_, err = h.svc.CloseTable(ctx, "3301", CloseRequest{})
	require.NoError(t, err)
	hist, err = h.svc.HistoryData(ctx)
	require.NoError(t, err)
	require.Len(t, hist.Items, 2)
	var closes []time.Time
	for _, s := range hist.Items {
		require.NotNil(t, s.CloseTime)
		closes = append(closes, *s.CloseTime)
	}
	assert.ElementsMatch(t, []time.Time{T.Add(time.Hour), T.Add(3 * time.Hour)}, closes)
	assert.Len(t, h.entries(t), 4)
}

func TestHistoryAndDeleteSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.OpenTable(ctx, "3301", OpenRequest{})
	require.NoError(t, err)
	h.at(time.Hour)
	_, err = h.svc.CloseTable(ctx, "3301", CloseRequest{})
	require.NoError(t, err)
	h.at(2 * time.Hour)
	_, err = h.svc.OpenTable(ctx, "3301", OpenRequest{})
	require.NoError(t, err)
	h.at(3 * time.Hour)
	_, err = h.svc.CloseTable(ctx, "3301", CloseRequest{})
	require.NoError(t, err)
	_, err = h.svc.OpenTable(ctx, "3305", OpenRequest{})
	require.NoError(t, err)

	hist, err := h.svc.HistoryData(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", hist.GamingDay)
	require.Len(t, hist.Items, 3)
	assert.Equal(t, "3305", hist.Items[0].TableNumber)
	assert.Equal(t, sessions.StatusOpen, hist.Items[0].Status)

	latest := hist.Items[1]
	assert.True(t, latest.IsCompleteSession)
	assert.Equal(t, time.Hour, latest.Duration)

	resp, err := h.svc.DeleteSession(ctx, latest.SessionID)
	require.NoError(t, err)
	assert.Len(t, resp.RemovedEntries, 2)

	hist, err = h.svc.HistoryData(ctx)
	require.NoError(t, err)
	require.Len(t, hist.Items, 2)
	earlier := hist.Items[1]
	assert.Equal(t, "3301", earlier.TableNumber)
	assert.Equal(t, T, earlier.OpenTime)
	require.NotNil(t, earlier.CloseTime)
	assert.Equal(t, T.Add(time.Hour), *earlier.CloseTime)
	assert.Len(t, h.entries(t), 3)

	_, err = h.svc.DeleteSession(ctx, latest.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCancelScheduledOpen(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	start := T.Add(30 * time.Minute)
	_, err := h.svc.OpenTable(ctx, "3301", OpenRequest{StartTime: &start})
	require.NoError(t, err)

	resp, err := h.svc.CancelScheduledOpen(ctx, "3301")
	require.NoError(t, err)
	assert.True(t, resp.Cancelled)
	assert.Empty(t, h.entries(t))
	assert.Equal(t, breaks.StatusClosed, h.table(t, "3301").Status)

	resp, err = h.svc.CancelScheduledOpen(ctx, "3301")
	require.NoError(t, err)
	assert.False(t, resp.Cancelled)
}

func TestResetAll(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.OpenTable(ctx, "3301", OpenRequest{})
	require.NoError(t, err)

	resp, err := h.svc.ResetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", resp.GamingDay)
	assert.Empty(t, h.entries(t))
	assert.Equal(t, breaks.StatusClosed, h.table(t, "3301").Status)

	// the same open is accepted and logged again after a reset
	_, err = h.svc.OpenTable(ctx, "3301", OpenRequest{StartTime: &T})
	require.NoError(t, err)
	assert.Len(t, h.entries(t), 1)
}

func TestStatePersistsAcrossRestart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.OpenTable(ctx, "3301", OpenRequest{})
	require.NoError(t, err)

	cal := gamingday.New(12, 4, time.UTC)
	store := tables.NewStore(h.kv, h.log, idempotency.NewGuard(), breaks.DefaultSchedule(), layout.Default())
	restarted := NewService(store, h.log, cal, breaks.DefaultSchedule(), WithClock(h.clock.Now))
	require.NoError(t, restarted.Start(ctx))

	var found bool
	for _, tb := range restarted.Tables().Items {
		if tb.Number == "3301" {
			found = true
			assert.Equal(t, breaks.StatusOpen, tb.Status)
		}
	}
	assert.True(t, found)

	_, err = restarted.OpenTable(ctx, "3301", OpenRequest{StartTime: &T})
	require.NoError(t, err)
	assert.Len(t, h.entries(t), 1)
}

func TestForecastAndExports(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.OpenTable(ctx, "3301", OpenRequest{})
	require.NoError(t, err)

	h.at(2*time.Hour + 50*time.Minute)
	up, err := h.svc.UpcomingBreaks(ctx)
	require.NoError(t, err)
	require.Len(t, up.Items, 3)
	assert.Equal(t, "16:00", up.Items[0].Label)
	assert.Equal(t, []string{"3301"}, up.Items[0].Tables)

	grid, err := h.svc.Timeline(ctx)
	require.NoError(t, err)
	require.Len(t, grid.Rows, 1)
	assert.Equal(t, export.CellClosed, grid.Rows[0].Cells[0])
	assert.Equal(t, export.CellBreak, grid.Rows[0].Cells[16])

	backup, err := h.svc.BackupLog(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", backup.GamingDay)
	assert.Len(t, backup.Entries, 1)
}

package gamingday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func TestDayOf(t *testing.T) {
	cal := New(12, 4, time.UTC)

	cases := []struct {
		name string
		t    time.Time
		want string
	}{
		{"early morning belongs to previous date", at(2026, 3, 15, 3, 59), "2026-03-14"},
		{"just after start", at(2026, 3, 15, 12, 1), "2026-03-15"},
		{"exactly start hour", at(2026, 3, 15, 12, 0), "2026-03-15"},
		{"exactly end hour", at(2026, 3, 15, 4, 0), "2026-03-14"},
		{"one second before start", time.Date(2026, 3, 15, 11, 59, 59, 0, time.UTC), "2026-03-14"},
		{"midnight", at(2026, 3, 15, 0, 0), "2026-03-14"},
		{"late evening", at(2026, 3, 15, 23, 30), "2026-03-15"},
		{"month rollover", at(2026, 3, 1, 1, 0), "2026-02-28"},
		{"year rollover", at(2027, 1, 1, 2, 0), "2026-12-31"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, cal.KeyOf(tc.t))
		})
	}
}

func TestDayOfUsesCalendarLocation(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	cal := New(12, 4, loc)

	// 20:00 UTC is 04:00 the next day in UTC+8.
	got := cal.KeyOf(at(2026, 3, 15, 20, 0))
	assert.Equal(t, "2026-03-15", got)
}

func TestBounds(t *testing.T) {
	cal := New(12, 4, time.UTC)
	start, end := cal.Bounds(cal.DayOf(at(2026, 3, 15, 18, 0)))

	assert.Equal(t, at(2026, 3, 15, 12, 0), start)
	assert.Equal(t, at(2026, 3, 16, 4, 0), end)
}

func TestContains(t *testing.T) {
	cal := New(12, 4, time.UTC)
	day := cal.DayOf(at(2026, 3, 15, 18, 0))

	assert.True(t, cal.Contains(day, at(2026, 3, 15, 12, 0)))
	assert.True(t, cal.Contains(day, at(2026, 3, 16, 4, 0)))
	assert.False(t, cal.Contains(day, at(2026, 3, 15, 11, 59)))
	assert.False(t, cal.Contains(day, at(2026, 3, 16, 4, 1)))
}

func TestIntervalsCoverOperatingHours(t *testing.T) {
	cal := New(12, 4, time.UTC)
	day := cal.DayOf(at(2026, 3, 15, 18, 0))

	slots := cal.Intervals(day, 15*time.Minute)
	require.Len(t, slots, 64)
	assert.Equal(t, at(2026, 3, 15, 12, 0), slots[0])
	assert.Equal(t, at(2026, 3, 16, 3, 45), slots[63])
}

func TestParseKeyRoundTrip(t *testing.T) {
	cal := New(12, 4, time.UTC)
	day, err := cal.ParseKey("2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14", cal.Key(day))
}

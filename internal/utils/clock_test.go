package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseISO(t *testing.T) {
	t.Run("rfc3339_timestamp", func(t *testing.T) {
		got, err := ParseISO("2026-08-30T14:05:00+07:00")
		require.NoError(t, err)
		assert.Equal(t, 2026, got.Year())
		assert.Equal(t, 14, got.Hour())
	})

	t.Run("bare_date_is_business_midnight", func(t *testing.T) {
		got, err := ParseISO("2026-08-30")
		require.NoError(t, err)
		assert.Equal(t, "2026-08-30T00:00:00+07:00", got.Format(time.RFC3339))
	})

	t.Run("garbage_fails", func(t *testing.T) {
		_, err := ParseISO("30/08/2026")
		assert.Error(t, err)
	})
}

func TestDayRange(t *testing.T) {
	at, err := ParseISO("2026-08-30T23:59:59+07:00")
	require.NoError(t, err)

	start, end := DayRange(at)
	assert.Equal(t, "2026-08-30T00:00:00+07:00", start)
	assert.Equal(t, "2026-08-31T00:00:00+07:00", end)

	// A UTC instant that is already the next day in the business
	// timezone must land in that next day's range.
	utc := time.Date(2026, 8, 30, 18, 30, 0, 0, time.UTC)
	start, _ = DayRange(utc)
	assert.Equal(t, "2026-08-31T00:00:00+07:00", start)
}

// Today must agree with the clock the timestamps are written with, not
// the host's local timezone.
func TestTodayMatchesBusinessClock(t *testing.T) {
	now, err := ParseISO(NowISO())
	require.NoError(t, err)
	assert.Equal(t, now.Format("2006-01-02"), Today())
}

func TestFormatISOUsesBusinessOffset(t *testing.T) {
	utc := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-30T17:00:00+07:00", FormatISO(utc))
}

// Stored timestamps share one fixed offset, so lexicographic order
// must match chronological order; the SQL range queries depend on it.
func TestISOStringsSortChronologically(t *testing.T) {
	earlier := FormatISO(time.Date(2026, 8, 30, 1, 0, 0, 0, time.UTC))
	later := FormatISO(time.Date(2026, 8, 30, 2, 0, 0, 0, time.UTC))
	assert.Less(t, earlier, later)
}

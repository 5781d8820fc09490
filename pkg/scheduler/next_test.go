package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotiwake/pkg/models"
)

func TestNextOccurrenceDayScoped(t *testing.T) {
	// Tuesday 2026-09-01 08:00. A Mon/Wed 06:30 alarm next fires Wednesday.
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	require.Equal(t, time.Tuesday, now.Weekday())

	alarm := models.Alarm{ID: "a1", Time: "06:30", Days: []int{1, 3}, Enabled: true}

	occ, ok := NextOccurrence([]models.Alarm{alarm}, now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 9, 2, 6, 30, 0, 0, time.UTC), occ.At)
	assert.Equal(t, 22*time.Hour+30*time.Minute, occ.Until)
}

func TestNextOccurrenceOneShot(t *testing.T) {
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	later := models.Alarm{ID: "later", Time: "09:15", Enabled: true}
	occ, ok := NextOccurrence([]models.Alarm{later}, now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 9, 1, 9, 15, 0, 0, time.UTC), occ.At)

	// Already past today, so it lands on tomorrow.
	passed := models.Alarm{ID: "passed", Time: "07:00", Enabled: true}
	occ, ok = NextOccurrence([]models.Alarm{passed}, now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 9, 2, 7, 0, 0, 0, time.UTC), occ.At)
}

func TestNextOccurrencePicksSoonest(t *testing.T) {
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	alarms := []models.Alarm{
		{ID: "friday", Time: "06:00", Days: []int{5}, Enabled: true},
		{ID: "tonight", Time: "22:00", Enabled: true},
		{ID: "disabled", Time: "08:30", Enabled: false},
	}

	occ, ok := NextOccurrence(alarms, now)
	require.True(t, ok)
	assert.Equal(t, "tonight", occ.Alarm.ID)
}

func TestNextOccurrenceSkipsUnparseable(t *testing.T) {
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	_, ok := NextOccurrence([]models.Alarm{{ID: "bad", Time: "7:xx", Enabled: true}}, now)
	assert.False(t, ok)

	_, ok = NextOccurrence(nil, now)
	assert.False(t, ok)
}

func TestFormatRelative(t *testing.T) {
	assert.Equal(t, "2h 5m", FormatRelative(2*time.Hour+5*time.Minute))
	assert.Equal(t, "45m", FormatRelative(45*time.Minute))
	assert.Equal(t, "0m", FormatRelative(30*time.Second))
	assert.Equal(t, "0m", FormatRelative(-time.Minute))
}

package businessflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLaunchWindow_UTC(t *testing.T) {
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	w := NewLaunchWindow(now, time.UTC, 24*time.Hour)

	assert.Equal(t, now, w.Now)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), w.Today)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), w.Yesterday)
	assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), w.EndOfToday)
	assert.Equal(t, w.Today, w.EndOfYesterday)
	assert.Equal(t, time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), w.PaymentDeadline)
}

func TestNewLaunchWindow_Location(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:30 UTC on June 2 is still June 1 in New York
	now := time.Date(2025, 6, 2, 2, 30, 0, 0, time.UTC)
	w := NewLaunchWindow(now, loc, 0)

	assert.True(t, w.Today.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, loc)))
	assert.True(t, w.EndOfToday.Equal(time.Date(2025, 6, 2, 0, 0, 0, 0, loc)))
	assert.Equal(t, now.Add(-24*time.Hour), w.PaymentDeadline)
}

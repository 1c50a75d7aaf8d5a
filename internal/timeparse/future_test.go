package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureFutureAlreadyFuture(t *testing.T) {
	now := refNow()
	start := now.Add(2 * time.Hour)
	end := start.Add(time.Hour)

	gotStart, gotEnd, err := EnsureFuture(start, end, now, StepDay)
	require.NoError(t, err)
	assert.True(t, start.Equal(gotStart))
	assert.True(t, end.Equal(gotEnd))
}

func TestEnsureFutureDaySteps(t *testing.T) {
	now := refNow()

	tests := []struct {
		name     string
		start    time.Time
		duration time.Duration
	}{
		{"an hour ago", now.Add(-time.Hour), time.Hour},
		{"exactly now", now, 30 * time.Minute},
		{"three days ago", now.AddDate(0, 0, -3), 90 * time.Minute},
		{"eleven months ago", now.AddDate(0, -11, 0), 2 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			end := tt.start.Add(tt.duration)
			gotStart, gotEnd, err := EnsureFuture(tt.start, end, now, StepDay)
			require.NoError(t, err)

			assert.True(t, gotStart.After(now), "start must be strictly after now")
			assert.Equal(t, tt.duration, gotEnd.Sub(gotStart), "duration preserved exactly")
			assert.Equal(t, tt.start.Hour(), gotStart.Hour(), "clock time preserved by day steps")
			assert.Equal(t, tt.start.Minute(), gotStart.Minute())
		})
	}
}

func TestEnsureFutureYearSteps(t *testing.T) {
	now := refNow()
	start := now.AddDate(-1, 0, -2)
	end := start.Add(time.Hour)

	gotStart, gotEnd, err := EnsureFuture(start, end, now, StepYear)
	require.NoError(t, err)

	assert.True(t, gotStart.After(now))
	assert.Equal(t, time.Hour, gotEnd.Sub(gotStart))
	assert.Equal(t, start.Month(), gotStart.Month(), "year steps keep month and day")
	assert.Equal(t, start.Day(), gotStart.Day())
}

func TestEnsureFutureNeverEqualsNow(t *testing.T) {
	now := refNow()
	// Start exactly one day behind; a single day step lands exactly on now, so
	// a second step is required to satisfy the strict inequality.
	start := now.AddDate(0, 0, -1)
	end := start.Add(time.Hour)

	gotStart, _, err := EnsureFuture(start, end, now, StepDay)
	require.NoError(t, err)
	assert.True(t, gotStart.After(now))
	assert.False(t, gotStart.Equal(now))
}

func TestEnsureFutureCap(t *testing.T) {
	now := refNow()
	// Far enough back that day steps cannot catch up within the cap.
	start := now.AddDate(-5, 0, 0)
	end := start.Add(time.Hour)

	_, _, err := EnsureFuture(start, end, now, StepDay)
	assert.Error(t, err)
}

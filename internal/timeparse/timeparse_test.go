package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kolkata = time.FixedZone("IST", 5*3600+1800)

func refNow() time.Time {
	// A Wednesday.
	return time.Date(2025, 11, 12, 14, 30, 0, 0, kolkata)
}

func TestResolveRelativeKeywords(t *testing.T) {
	now := refNow()

	tests := []struct {
		name     string
		text     string
		expected time.Time
	}{
		{"tomorrow", "show my schedule for tomorrow", now.AddDate(0, 0, 1)},
		{"day after", "what about the day after", now.AddDate(0, 0, 2)},
		{"next week", "meetings next week please", now.AddDate(0, 0, 7)},
		{"yesterday", "what did I have yesterday", now.AddDate(0, 0, -1)},
		{"today", "my events today", now},
		{"no keyword no date", "hey, how are you", now},
		{"tomorrow beats day-after ordering", "tomorrow or the day after?", now.AddDate(0, 0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.text, now)
			assert.True(t, tt.expected.Equal(got), "want %s, got %s", tt.expected, got)
		})
	}
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	now := refNow()
	assert.True(t, now.AddDate(0, 0, 1).Equal(Resolve("Schedule for TOMORROW", now)))
}

func TestResolveKeepsLocation(t *testing.T) {
	now := refNow()
	got := Resolve("tomorrow", now)
	assert.Equal(t, now.Location(), got.Location())
}

func TestResolveIndependentOfWeekday(t *testing.T) {
	// Offsets must hold on every day of the week.
	for d := 0; d < 7; d++ {
		now := refNow().AddDate(0, 0, d)
		assert.True(t, now.AddDate(0, 0, 7).Equal(Resolve("next week", now)), "weekday %s", now.Weekday())
	}
}

func TestNextWeekMonday(t *testing.T) {
	wednesday := refNow()
	require.Equal(t, time.Wednesday, wednesday.Weekday())

	got := NextWeekMonday(wednesday)
	assert.Equal(t, time.Monday, got.Weekday())
	assert.Equal(t, wednesday.AddDate(0, 0, 5).Day(), got.Day())
	assert.Equal(t, 14, got.Hour())

	monday := wednesday.AddDate(0, 0, 5)
	require.Equal(t, time.Monday, monday.Weekday())
	assert.True(t, monday.AddDate(0, 0, 7).Equal(NextWeekMonday(monday)), "Monday rolls a full week")
}

func TestResolveFuzzyDate(t *testing.T) {
	now := refNow()

	got := Resolve("show my schedule on 10 Nov", now)
	assert.Equal(t, 10, got.Day())
	assert.Equal(t, time.November, got.Month())
	assert.Equal(t, now.Year(), got.Year())
	assert.Equal(t, now.Hour(), got.Hour())

	got = Resolve("what's on 2025-12-01", now)
	assert.Equal(t, time.December, got.Month())
	assert.Equal(t, 1, got.Day())
}

func TestParseStamp(t *testing.T) {
	t.Run("explicit offset preserved", func(t *testing.T) {
		got, err := ParseStamp("2025-11-13T16:00:00+05:30", kolkata)
		require.NoError(t, err)
		assert.Equal(t, 16, got.Hour())
		assert.Equal(t, kolkata.String(), got.Location().String())
	})

	t.Run("naive value assumes reference location", func(t *testing.T) {
		got, err := ParseStamp("2025-11-13T16:00:00", kolkata)
		require.NoError(t, err)
		assert.Equal(t, 16, got.Hour())
		_, offset := got.Zone()
		assert.Equal(t, 5*3600+1800, offset)
	})

	t.Run("garbage fails", func(t *testing.T) {
		_, err := ParseStamp("not a time", kolkata)
		assert.Error(t, err)
	})

	t.Run("empty fails", func(t *testing.T) {
		_, err := ParseStamp("", kolkata)
		assert.Error(t, err)
	})
}

func TestParseFuzzyFailure(t *testing.T) {
	_, err := ParseFuzzy("nothing resembling a date here", refNow())
	assert.Error(t, err)
}

func TestResolveLocation(t *testing.T) {
	loc, ok := ResolveLocation("Asia/Kolkata")
	assert.True(t, ok)
	assert.Equal(t, "Asia/Kolkata", loc.String())

	loc, ok = ResolveLocation("Not/AZone")
	assert.False(t, ok)
	assert.Equal(t, time.UTC, loc)

	loc, ok = ResolveLocation("")
	assert.True(t, ok)
	assert.Equal(t, time.UTC, loc)
}

package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(_ context.Context, _, _ string, _ float64) (string, error) {
	f.calls++
	return f.reply, f.err
}

var ist = time.FixedZone("IST", 5*3600+1800)

func testNow() time.Time {
	return time.Date(2025, 11, 12, 10, 0, 0, 0, ist)
}

func newExtractor(t *testing.T, fake *fakeCompleter) *Extractor {
	t.Helper()
	return NewExtractor(fake, 0.15, 0, zaptest.NewLogger(t))
}

func TestExtractCreate(t *testing.T) {
	fake := &fakeCompleter{reply: `{
		"action": "create_event",
		"summary": "Meeting with Aryan",
		"start_time": "2025-11-13T16:00:00+05:30",
		"end_time": "2025-11-13T17:00:00+05:30",
		"description": "Quarterly sync"
	}`}

	result, err := newExtractor(t, fake).Extract(context.Background(), "add meeting with Aryan tomorrow at 4pm", testNow())
	require.NoError(t, err)
	require.NotNil(t, result.Create)
	assert.Nil(t, result.Update)

	draft := result.Create
	assert.Equal(t, "Meeting with Aryan", draft.Title)
	assert.Equal(t, 16, draft.Start.Hour())
	assert.Equal(t, 13, draft.Start.Day())
	assert.Equal(t, time.Hour, draft.End.Sub(draft.Start))
	assert.Equal(t, "Quarterly sync", draft.Description)
	assert.True(t, draft.WantMeetLink, "the word 'meeting' requests a link")
	assert.Equal(t, 1, fake.calls, "exactly one model call")
}

func TestExtractCreateDefaultsEndToStartPlusHour(t *testing.T) {
	fake := &fakeCompleter{reply: `{
		"action": "create_event",
		"summary": "Dentist",
		"start_time": "2025-11-14T09:30:00+05:30"
	}`}

	result, err := newExtractor(t, fake).Extract(context.Background(), "dentist friday 9:30", testNow())
	require.NoError(t, err)
	require.NotNil(t, result.Create)
	assert.Equal(t, time.Hour, result.Create.End.Sub(result.Create.Start))
	assert.False(t, result.Create.WantMeetLink)
}

func TestExtractCreateNaiveTimeAssumesReferenceZone(t *testing.T) {
	fake := &fakeCompleter{reply: `{
		"action": "create_event",
		"summary": "Standup",
		"start_time": "2025-11-13T09:00:00"
	}`}

	result, err := newExtractor(t, fake).Extract(context.Background(), "standup tomorrow 9am", testNow())
	require.NoError(t, err)
	_, offset := result.Create.Start.Zone()
	assert.Equal(t, 5*3600+1800, offset)
}

func TestExtractUpdate(t *testing.T) {
	fake := &fakeCompleter{reply: "Here you go:\n```json\n" + `{
		"action": "update_event",
		"match_summary": "Project review",
		"new_start_time": "2025-11-14T18:00:00+05:30"
	}` + "\n```"}

	result, err := newExtractor(t, fake).Extract(context.Background(), "move project review to 6pm friday", testNow())
	require.NoError(t, err)
	require.NotNil(t, result.Update)
	assert.Nil(t, result.Create)

	draft := result.Update
	assert.Equal(t, "Project review", draft.MatchTitle)
	require.NotNil(t, draft.NewStart)
	assert.Equal(t, 18, draft.NewStart.Hour())
	assert.Nil(t, draft.NewEnd, "unset fields stay nil")
	assert.Empty(t, draft.Description)
}

func TestExtractFailures(t *testing.T) {
	now := testNow()

	tests := []struct {
		name string
		fake *fakeCompleter
	}{
		{"model error", &fakeCompleter{err: errors.New("timeout")}},
		{"no json span", &fakeCompleter{reply: "I couldn't figure that out, sorry."}},
		{"bad json", &fakeCompleter{reply: `{"action": "create_event", `}},
		{"unknown action", &fakeCompleter{reply: `{"action": "delete_event", "summary": "x"}`}},
		{"missing action", &fakeCompleter{reply: `{"summary": "x", "start_time": "2025-11-13T16:00:00+05:30"}`}},
		{"create without start", &fakeCompleter{reply: `{"action": "create_event", "summary": "x"}`}},
		{"create with garbage start", &fakeCompleter{reply: `{"action": "create_event", "summary": "x", "start_time": "sometime"}`}},
		{"update without match title", &fakeCompleter{reply: `{"action": "update_event", "new_start_time": "2025-11-13T16:00:00+05:30"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := newExtractor(t, tt.fake).Extract(context.Background(), "whatever", now)
			assert.Nil(t, result)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrExtraction)
			assert.Equal(t, 1, tt.fake.calls, "never retries")
		})
	}
}

func TestExtractNilCompleter(t *testing.T) {
	e := NewExtractor(nil, 0.15, 0, zaptest.NewLogger(t))
	_, err := e.Extract(context.Background(), "add meeting", testNow())
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtractCreateWithAttendees(t *testing.T) {
	fake := &fakeCompleter{reply: `{
		"action": "create_event",
		"summary": "Design review",
		"start_time": "2025-11-13T15:00:00+05:30",
		"attendees": ["priya@example.com", "dev@example.com"]
	}`}

	result, err := newExtractor(t, fake).Extract(context.Background(), "design review tomorrow at 3pm with priya@example.com and dev@example.com", testNow())
	require.NoError(t, err)
	require.NotNil(t, result.Create)
	assert.Equal(t, []string{"priya@example.com", "dev@example.com"}, result.Create.Attendees)
}

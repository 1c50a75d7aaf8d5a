package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingSender struct {
	mu    sync.Mutex
	err   error
	sent  []string
	to    []string
}

func (r *recordingSender) Send(_ context.Context, recipient, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.to = append(r.to, recipient)
	r.sent = append(r.sent, body)
	return nil
}

func (r *recordingSender) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.sent...)
}

func TestScheduleFutureReminder(t *testing.T) {
	sender := &recordingSender{}
	s := NewScheduler(sender, zaptest.NewLogger(t))
	defer s.Stop()

	now := time.Now()
	s.Schedule("+919876543210", "Standup", now.Add(30*time.Minute), "", 10*time.Minute)

	assert.Equal(t, 1, s.Pending(), "exactly one pending timer")
	assert.Empty(t, sender.messages(), "nothing delivered yet")
}

func TestSchedulePastReminderSkipped(t *testing.T) {
	sender := &recordingSender{}
	s := NewScheduler(sender, zaptest.NewLogger(t))
	defer s.Stop()

	now := time.Now()
	s.Schedule("+919876543210", "Standup", now.Add(-5*time.Minute), "", 10*time.Minute)
	// Start in the future but fire time already behind us.
	s.Schedule("+919876543210", "Standup", now.Add(5*time.Minute), "", 10*time.Minute)

	assert.Equal(t, 0, s.Pending(), "past-dated reminders are never registered")
}

func TestReminderFires(t *testing.T) {
	sender := &recordingSender{}
	s := NewScheduler(sender, zaptest.NewLogger(t))
	defer s.Stop()

	start := time.Now().Add(30 * time.Millisecond)
	s.Schedule("+919876543210", "Standup", start, "https://meet.google.com/abc-defg-hij", 10*time.Millisecond)
	require.Equal(t, 1, s.Pending())

	require.Eventually(t, func() bool {
		return len(sender.messages()) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 0, s.Pending(), "fired timer leaves the registry")
	msg := sender.messages()[0]
	assert.Contains(t, msg, "Standup")
	assert.Contains(t, msg, "https://meet.google.com/abc-defg-hij")
}

func TestReminderDeliveryFailureIsSwallowed(t *testing.T) {
	sender := &recordingSender{err: errors.New("transport down")}
	s := NewScheduler(sender, zaptest.NewLogger(t))
	defer s.Stop()

	s.Schedule("+919876543210", "Standup", time.Now().Add(20*time.Millisecond), "", 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return s.Pending() == 0
	}, time.Second, 5*time.Millisecond)
	// Nothing to assert beyond not panicking: failures are logged and dropped.
}

func TestStopDrainsTimers(t *testing.T) {
	sender := &recordingSender{}
	s := NewScheduler(sender, zaptest.NewLogger(t))

	now := time.Now()
	s.Schedule("+1", "A", now.Add(time.Hour), "", 10*time.Minute)
	s.Schedule("+2", "B", now.Add(2*time.Hour), "", 10*time.Minute)
	require.Equal(t, 2, s.Pending())

	s.Stop()
	assert.Equal(t, 0, s.Pending())
}

func TestConcurrentScheduling(t *testing.T) {
	sender := &recordingSender{}
	s := NewScheduler(sender, zaptest.NewLogger(t))
	defer s.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Schedule("+919876543210", "Burst", time.Now().Add(time.Hour), "", 10*time.Minute)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, s.Pending())
}

// Package reminder schedules one-shot WhatsApp nudges ahead of event start
// times. The pending-timer registry is the process's only long-lived shared
// state; it is not persisted, so a restart drops all pending reminders.
package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sender delivers a message to a user identity.
type Sender interface {
	Send(ctx context.Context, recipient, body string) error
}

const sendTimeout = 30 * time.Second

// Scheduler owns the pending one-shot timers. Safe for concurrent
// registration and firing.
type Scheduler struct {
	sender Sender
	logger *zap.Logger

	mu     sync.Mutex
	timers map[int64]*time.Timer
	nextID int64

	// now is swappable in tests.
	now func() time.Time
}

func NewScheduler(sender Sender, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		sender: sender,
		logger: logger,
		timers: make(map[int64]*time.Timer),
		now:    time.Now,
	}
}

// Schedule registers a reminder firing lead before start. A fire time already
// in the past is skipped silently: that is intent, not an error. Delivery is
// fire-and-forget; the caller never waits on it.
func (s *Scheduler) Schedule(user, title string, start time.Time, meetLink string, lead time.Duration) {
	fireAt := start.Add(-lead)
	wait := fireAt.Sub(s.now())
	if wait <= 0 {
		s.logger.Info("skipping past-dated reminder",
			zap.String("title", title),
			zap.Time("fire_at", fireAt))
		return
	}

	body := fmt.Sprintf("⏰ Reminder: '%s' starts in %d minutes!", title, int(lead.Minutes()))
	if meetLink != "" {
		body += fmt.Sprintf("\n🔗 Join: %s", meetLink)
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.timers[id] = time.AfterFunc(wait, func() {
		s.fire(id, user, title, body)
	})
	s.mu.Unlock()

	s.logger.Info("reminder scheduled",
		zap.String("user", user),
		zap.String("title", title),
		zap.Time("fire_at", fireAt))
}

func (s *Scheduler) fire(id int64, user, title, body string) {
	s.mu.Lock()
	delete(s.timers, id)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := s.sender.Send(ctx, user, body); err != nil {
		// Delivery failures do not propagate anywhere; the event creation
		// reply has long been sent.
		s.logger.Error("reminder delivery failed",
			zap.String("user", user),
			zap.String("title", title),
			zap.Error(err))
		return
	}
	s.logger.Info("reminder sent", zap.String("user", user), zap.String("title", title))
}

// Pending returns the number of registered, not-yet-fired reminders.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop drains every pending timer. Called once on process shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

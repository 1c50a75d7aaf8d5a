package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const stateTTL = 10 * time.Minute

type stateEntry struct {
	whatsappID string
	expiresAt  time.Time
}

// StateCache maps short-lived OAuth state tokens to the WhatsApp identity
// that initiated the link. Tokens are single use.
type StateCache struct {
	mu      sync.Mutex
	entries map[string]stateEntry
	now     func() time.Time
}

func NewStateCache() *StateCache {
	return &StateCache{
		entries: make(map[string]stateEntry),
		now:     time.Now,
	}
}

// Put issues a fresh state token bound to whatsappID.
func (c *StateCache) Put(whatsappID string) string {
	state := uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.prune()
	c.entries[state] = stateEntry{
		whatsappID: whatsappID,
		expiresAt:  c.now().Add(stateTTL),
	}
	return state
}

// Take consumes a state token, returning the bound identity. A token can be
// taken at most once; expired or unknown tokens return false.
func (c *StateCache) Take(state string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[state]
	if !ok {
		return "", false
	}
	delete(c.entries, state)

	if c.now().After(entry.expiresAt) {
		return "", false
	}
	return entry.whatsappID, true
}

// prune drops expired entries. Caller holds the lock.
func (c *StateCache) prune() {
	now := c.now()
	for state, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, state)
		}
	}
}

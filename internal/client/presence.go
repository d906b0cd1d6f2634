package client

import (
	"sort"
	"sync"
	"time"
)

// DefaultTypingTTL bounds how long a typing entry lives without a refresh.
const DefaultTypingTTL = 5 * time.Second

// PresenceTracker maintains per-room sets of currently-typing user ids.
// State is purely transient and never leaves the client. Every entry has a
// pending expiry timer; refreshing or clearing an entry cancels the old
// timer first, so a stale expiry can never fire after newer state landed.
type PresenceTracker struct {
	mu     sync.Mutex
	typing map[string]map[string]bool
	timers map[string]*time.Timer
	ttl    time.Duration
}

func NewPresenceTracker(ttl time.Duration) *PresenceTracker {
	if ttl <= 0 {
		ttl = DefaultTypingTTL
	}
	return &PresenceTracker{
		typing: make(map[string]map[string]bool),
		timers: make(map[string]*time.Timer),
		ttl:    ttl,
	}
}

// Set marks or clears a typing entry. Both directions are idempotent:
// marking twice keeps a single entry, clearing an absent entry is a no-op.
func (p *PresenceTracker) Set(roomID, userID string, typing bool) {
	if typing {
		p.setFor(roomID, userID, p.ttl)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearLocked(roomID, userID)
}

// SetFor marks a typing entry with a custom lifetime. Used for simulated
// participants, whose indicator clears a fixed delay after their message.
func (p *PresenceTracker) SetFor(roomID, userID string, d time.Duration) {
	p.setFor(roomID, userID, d)
}

func (p *PresenceTracker) setFor(roomID, userID string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := roomID + "|" + userID
	if t, ok := p.timers[key]; ok {
		t.Stop()
	}

	if _, ok := p.typing[roomID]; !ok {
		p.typing[roomID] = make(map[string]bool)
	}
	p.typing[roomID][userID] = true

	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		// Only clear if this timer is still the current one for the entry;
		// a newer Set replaced it otherwise.
		if p.timers[key] == timer {
			p.clearLocked(roomID, userID)
		}
	})
	p.timers[key] = timer
}

func (p *PresenceTracker) clearLocked(roomID, userID string) {
	key := roomID + "|" + userID
	if t, ok := p.timers[key]; ok {
		t.Stop()
		delete(p.timers, key)
	}
	if set, ok := p.typing[roomID]; ok {
		delete(set, userID)
		if len(set) == 0 {
			delete(p.typing, roomID)
		}
	}
}

// Typing returns the ids currently typing in a room, sorted for stable
// rendering.
func (p *PresenceTracker) Typing(roomID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	set := p.typing[roomID]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

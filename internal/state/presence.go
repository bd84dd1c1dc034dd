package state

import (
	"sort"
	"sync"
)

// PresenceTracker holds the set of user identities currently considered
// online. It owns membership only; profile data lives with the user
// directory collaborator.
type PresenceTracker struct {
	mu     sync.RWMutex
	online map[string]struct{}
}

// NewPresenceTracker creates an empty tracker.
func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{online: make(map[string]struct{})}
}

// SetOnline replaces the full online set, typically from a presence-sync
// event.
func (p *PresenceTracker) SetOnline(userIDs []string) {
	next := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		next[id] = struct{}{}
	}
	p.mu.Lock()
	p.online = next
	p.mu.Unlock()
}

// IsOnline reports whether the given identity is in the online set.
func (p *PresenceTracker) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.online[userID]
	return ok
}

// Online returns the current online set, sorted for stable output.
func (p *PresenceTracker) Online() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]string, 0, len(p.online))
	for id := range p.online {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

package state

import (
	"sort"
	"sync"
)

// TypingTracker holds, per conversation, the set of users currently
// composing a message. Typing events arrive in frequent bursts and may be
// delivered more than once, so add and remove are idempotent set
// operations. Entries are cleared only by explicit events; no expiry is
// applied.
type TypingTracker struct {
	mu     sync.RWMutex
	typing map[string]map[string]struct{}
}

// NewTypingTracker creates an empty tracker.
func NewTypingTracker() *TypingTracker {
	return &TypingTracker{typing: make(map[string]map[string]struct{})}
}

// SetTyping replaces the full typing set for a conversation.
func (t *TypingTracker) SetTyping(conversationID string, userIDs []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(userIDs) == 0 {
		delete(t.typing, conversationID)
		return
	}
	next := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		next[id] = struct{}{}
	}
	t.typing[conversationID] = next
}

// MarkTyping adds a user to a conversation's typing set. Idempotent.
func (t *TypingTracker) MarkTyping(conversationID, userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.typing[conversationID]
	if !ok {
		set = make(map[string]struct{})
		t.typing[conversationID] = set
	}
	set[userID] = struct{}{}
}

// ClearTyping removes a user from a conversation's typing set. No-op when
// absent.
func (t *TypingTracker) ClearTyping(conversationID, userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.typing[conversationID]
	if !ok {
		return
	}
	delete(set, userID)
	if len(set) == 0 {
		delete(t.typing, conversationID)
	}
}

// Typing returns the users currently composing in a conversation, sorted
// for stable output.
func (t *TypingTracker) Typing(conversationID string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	set := t.typing[conversationID]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// IsTyping reports whether a user is composing in a conversation.
func (t *TypingTracker) IsTyping(conversationID, userID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.typing[conversationID][userID]
	return ok
}

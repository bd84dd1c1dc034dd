package state

import (
	"sync"

	"github.com/carebridgehq/chatsync/internal/chat"
)

// MessageLog holds the ordered, deduplicated message history of every
// conversation the client has touched. The sync engine is the sole writer;
// readers take snapshots. All operations are total: a missing target is a
// silent no-op, never an error, because realtime delivery may reference
// messages the client has not fetched yet.
type MessageLog struct {
	mu   sync.RWMutex
	logs map[string][]chat.Message
	// conv holds messageID -> conversationID for every stored message, so
	// Update and Remove can resolve a message by identity alone.
	conv map[string]string
}

// NewMessageLog creates an empty message log.
func NewMessageLog() *MessageLog {
	return &MessageLog{
		logs: make(map[string][]chat.Message),
		conv: make(map[string]string),
	}
}

// Replace bulk-sets a conversation's log to exactly the given messages,
// deduplicated by identity. When two input records share an identity the
// first occurrence wins. Input order is preserved, never re-sorted.
func (l *MessageLog) Replace(conversationID string, msgs []chat.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, m := range l.logs[conversationID] {
		delete(l.conv, m.ID)
	}

	deduped := make([]chat.Message, 0, len(msgs))
	for _, m := range msgs {
		if _, seen := l.conv[m.ID]; seen {
			continue
		}
		m.ConversationID = conversationID
		l.conv[m.ID] = conversationID
		deduped = append(deduped, m)
	}
	l.logs[conversationID] = deduped
}

// Append inserts a message at the end of its conversation's log. Idempotent:
// if a message with this identity exists anywhere, nothing happens and false
// is returned so redelivered events produce no derived effects. Existing
// entries are never reordered.
func (l *MessageLog) Append(msg chat.Message) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.conv[msg.ID]; exists {
		return false
	}
	l.conv[msg.ID] = msg.ConversationID
	l.logs[msg.ConversationID] = append(l.logs[msg.ConversationID], msg)
	return true
}

// MergeOlderPage prepends an older fetched page to a conversation's log.
// Page entries already present (for example delivered as realtime events
// while the fetch was in flight) are dropped before prepending, so the
// existing suffix, including appended realtime messages, is untouched.
func (l *MessageLog) MergeOlderPage(conversationID string, msgs []chat.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fresh := make([]chat.Message, 0, len(msgs))
	for _, m := range msgs {
		if _, exists := l.conv[m.ID]; exists {
			continue
		}
		m.ConversationID = conversationID
		l.conv[m.ID] = conversationID
		fresh = append(fresh, m)
	}
	if len(fresh) == 0 {
		return
	}
	l.logs[conversationID] = append(fresh, l.logs[conversationID]...)
}

// Update merges a partial patch into the message with the given identity.
// Silent no-op when the message is unknown (an update racing ahead of its
// create event is expected and absorbed).
func (l *MessageLog) Update(messageID string, patch chat.MessagePatch) {
	l.mu.Lock()
	defer l.mu.Unlock()

	convID, ok := l.conv[messageID]
	if !ok {
		return
	}
	log := l.logs[convID]
	for i := range log {
		if log[i].ID != messageID {
			continue
		}
		applyPatch(&log[i], patch)
		return
	}
}

// Remove deletes the message with the given identity. Silent no-op when
// absent.
func (l *MessageLog) Remove(messageID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	convID, ok := l.conv[messageID]
	if !ok {
		return
	}
	delete(l.conv, messageID)
	log := l.logs[convID]
	for i := range log {
		if log[i].ID == messageID {
			l.logs[convID] = append(log[:i:i], log[i+1:]...)
			return
		}
	}
}

// Messages returns a copy of a conversation's log in iteration order.
func (l *MessageLog) Messages(conversationID string) []chat.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	log := l.logs[conversationID]
	out := make([]chat.Message, len(log))
	copy(out, log)
	return out
}

// Get returns a copy of a single message by identity.
func (l *MessageLog) Get(messageID string) (chat.Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	convID, ok := l.conv[messageID]
	if !ok {
		return chat.Message{}, false
	}
	for _, m := range l.logs[convID] {
		if m.ID == messageID {
			return m, true
		}
	}
	return chat.Message{}, false
}

func applyPatch(m *chat.Message, patch chat.MessagePatch) {
	if patch.Status != nil {
		m.Status = *patch.Status
	}
	if patch.Content != nil {
		m.Content = *patch.Content
	}
	for _, r := range patch.ReadBy {
		if hasReceipt(m.ReadBy, r.UserID) {
			continue
		}
		m.ReadBy = append(m.ReadBy, r)
	}
}

func hasReceipt(receipts []chat.ReadReceipt, userID string) bool {
	for _, r := range receipts {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

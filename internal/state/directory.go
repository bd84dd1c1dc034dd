package state

import (
	"sort"
	"sync"

	"github.com/carebridgehq/chatsync/internal/chat"
)

// ConversationDirectory holds the set of known conversations. Ordering by
// recent activity is a pure projection computed on read, so it can never
// drift from the stored activity timestamps. Unread counts come from the
// backend and are stored verbatim; the directory only nudges them in
// response to message and read events, never recomputes them from logs.
type ConversationDirectory struct {
	mu    sync.RWMutex
	convs map[string]chat.Conversation
}

// NewConversationDirectory creates an empty directory.
func NewConversationDirectory() *ConversationDirectory {
	return &ConversationDirectory{
		convs: make(map[string]chat.Conversation),
	}
}

// Replace sets the full conversation list, typically from the initial fetch.
func (d *ConversationDirectory) Replace(convs []chat.Conversation) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.convs = make(map[string]chat.Conversation, len(convs))
	for _, c := range convs {
		d.convs[c.ID] = c
	}
}

// Upsert inserts or overwrites a single conversation.
func (d *ConversationDirectory) Upsert(conv chat.Conversation) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.convs[conv.ID] = conv
}

// UpsertLastMessage sets the conversation's lastMessage preview and bumps
// its activity timestamp to the summary's timestamp. No-op when the
// conversation is unknown: realtime events may race ahead of the list fetch.
func (d *ConversationDirectory) UpsertLastMessage(conversationID string, summary chat.MessageSummary) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.convs[conversationID]
	if !ok {
		return
	}
	c.LastMessage = &summary
	c.LastActivityAt = summary.SentAt
	d.convs[conversationID] = c
}

// IncrementUnread bumps the unread count by one. No-op when unknown.
func (d *ConversationDirectory) IncrementUnread(conversationID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.convs[conversationID]
	if !ok {
		return
	}
	c.UnreadCount++
	d.convs[conversationID] = c
}

// DecrementUnread lowers the unread count by one, never below zero.
func (d *ConversationDirectory) DecrementUnread(conversationID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.convs[conversationID]
	if !ok || c.UnreadCount == 0 {
		return
	}
	c.UnreadCount--
	d.convs[conversationID] = c
}

// SetUnread stores a backend-delivered unread count verbatim.
func (d *ConversationDirectory) SetUnread(conversationID string, count int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.convs[conversationID]
	if !ok {
		return
	}
	c.UnreadCount = count
	d.convs[conversationID] = c
}

// Get returns a copy of a conversation by identity.
func (d *ConversationDirectory) Get(conversationID string) (chat.Conversation, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.convs[conversationID]
	return c, ok
}

// OrderedList returns all conversations sorted by activity timestamp
// descending, ties broken by identity for a stable listing.
func (d *ConversationDirectory) OrderedList() []chat.Conversation {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]chat.Conversation, 0, len(d.convs))
	for _, c := range d.convs {
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LastActivityAt != out[j].LastActivityAt {
			return out[i].LastActivityAt > out[j].LastActivityAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

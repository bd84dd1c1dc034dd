package state

import (
	"testing"

	"github.com/carebridgehq/chatsync/internal/chat"
)

func conv(id string, activity int64) chat.Conversation {
	return chat.Conversation{
		ID:             id,
		Kind:           chat.KindDirect,
		Members:        []chat.Member{{UserID: "u1", Role: "participant"}, {UserID: "u2", Role: "support-worker"}},
		CreatedBy:      "u1",
		LastActivityAt: activity,
	}
}

func TestReplaceAndOrderedList(t *testing.T) {
	d := NewConversationDirectory()
	d.Replace([]chat.Conversation{conv("a", 100), conv("b", 300), conv("c", 200)})

	got := d.OrderedList()
	if len(got) != 3 {
		t.Fatalf("got %d conversations, want 3", len(got))
	}
	for i, want := range []string{"b", "c", "a"} {
		if got[i].ID != want {
			t.Fatalf("order = [%s %s %s], want [b c a]", got[0].ID, got[1].ID, got[2].ID)
		}
	}
}

func TestUpsertLastMessageReorders(t *testing.T) {
	d := NewConversationDirectory()
	d.Replace([]chat.Conversation{conv("a", 100), conv("b", 50)})

	d.UpsertLastMessage("b", chat.MessageSummary{
		ID:      "m9",
		Preview: "hello",
		Sender:  chat.Sender{ID: "u2"},
		Type:    chat.TypeText,
		SentAt:  500,
	})

	got := d.OrderedList()
	if got[0].ID != "b" {
		t.Errorf("first = %q, want b after activity bump", got[0].ID)
	}
	b, _ := d.Get("b")
	if b.LastMessage == nil || b.LastMessage.ID != "m9" {
		t.Errorf("lastMessage = %v, want m9", b.LastMessage)
	}
	if b.LastActivityAt != 500 {
		t.Errorf("lastActivityAt = %d, want 500", b.LastActivityAt)
	}
}

func TestUpsertLastMessageUnknownConversation(t *testing.T) {
	d := NewConversationDirectory()
	d.Replace([]chat.Conversation{conv("a", 100)})

	// Realtime events may race ahead of the list fetch; absorbed silently.
	d.UpsertLastMessage("ghost", chat.MessageSummary{ID: "m1", SentAt: 999})

	if len(d.OrderedList()) != 1 {
		t.Error("unknown conversation must not be materialized")
	}
}

func TestUnreadAccounting(t *testing.T) {
	d := NewConversationDirectory()
	d.Replace([]chat.Conversation{conv("a", 100)})

	d.IncrementUnread("a")
	d.IncrementUnread("a")
	if c, _ := d.Get("a"); c.UnreadCount != 2 {
		t.Errorf("unread = %d, want 2", c.UnreadCount)
	}

	d.DecrementUnread("a")
	if c, _ := d.Get("a"); c.UnreadCount != 1 {
		t.Errorf("unread = %d, want 1", c.UnreadCount)
	}

	// Never below zero.
	d.DecrementUnread("a")
	d.DecrementUnread("a")
	if c, _ := d.Get("a"); c.UnreadCount != 0 {
		t.Errorf("unread = %d, want 0", c.UnreadCount)
	}

	// Backend-delivered counts are stored verbatim.
	d.SetUnread("a", 7)
	if c, _ := d.Get("a"); c.UnreadCount != 7 {
		t.Errorf("unread = %d, want 7", c.UnreadCount)
	}

	// Unknown conversations are no-ops.
	d.IncrementUnread("ghost")
	d.SetUnread("ghost", 3)
	if len(d.OrderedList()) != 1 {
		t.Error("unread ops must not materialize unknown conversations")
	}
}

func TestUpsertNewConversation(t *testing.T) {
	d := NewConversationDirectory()
	d.Upsert(conv("a", 100))
	d.Upsert(conv("b", 200))

	got := d.OrderedList()
	if len(got) != 2 || got[0].ID != "b" {
		t.Errorf("got %v, want b first", got)
	}
}

func TestOrderedListTieBreak(t *testing.T) {
	d := NewConversationDirectory()
	d.Replace([]chat.Conversation{conv("b", 100), conv("a", 100)})

	got := d.OrderedList()
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("tie order = [%s %s], want [a b]", got[0].ID, got[1].ID)
	}
}

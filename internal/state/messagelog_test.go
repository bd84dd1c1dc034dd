package state

import (
	"testing"

	"github.com/carebridgehq/chatsync/internal/chat"
)

func msg(id, convID string, ts int64) chat.Message {
	return chat.Message{
		ID:             id,
		ConversationID: convID,
		Sender:         chat.Sender{ID: "u1", Name: "Ana"},
		Type:           chat.TypeText,
		Content:        "body-" + id,
		Status:         chat.StatusSent,
		CreatedAt:      ts,
	}
}

func ids(msgs []chat.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func assertOrder(t *testing.T, got []chat.Message, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("log has %d messages %v, want %d %v", len(got), ids(got), len(want), want)
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("log order = %v, want %v", ids(got), want)
		}
	}
}

func TestAppendIdempotent(t *testing.T) {
	l := NewMessageLog()
	m := msg("m1", "c1", 10)

	l.Append(m)
	l.Append(m)

	assertOrder(t, l.Messages("c1"), "m1")
}

func TestAppendNeverReorders(t *testing.T) {
	l := NewMessageLog()
	l.Append(msg("m1", "c1", 10))
	l.Append(msg("m2", "c1", 20))
	// Re-appending an older message must not move it.
	l.Append(msg("m1", "c1", 10))
	l.Append(msg("m3", "c1", 30))

	assertOrder(t, l.Messages("c1"), "m1", "m2", "m3")
}

func TestReplacePreservesInputOrder(t *testing.T) {
	l := NewMessageLog()
	l.Replace("c1", []chat.Message{msg("m1", "c1", 10), msg("m2", "c1", 20), msg("m3", "c1", 30)})

	assertOrder(t, l.Messages("c1"), "m1", "m2", "m3")
}

func TestReplaceDedupKeepsFirstOccurrence(t *testing.T) {
	l := NewMessageLog()
	first := msg("m1", "c1", 10)
	first.Content = "first"
	second := msg("m1", "c1", 10)
	second.Content = "second"

	l.Replace("c1", []chat.Message{first, msg("m2", "c1", 20), second})

	got := l.Messages("c1")
	assertOrder(t, got, "m1", "m2")
	if got[0].Content != "first" {
		t.Errorf("content = %q, want first occurrence to win", got[0].Content)
	}
}

func TestReplaceDiscardsPreviousLog(t *testing.T) {
	l := NewMessageLog()
	l.Replace("c1", []chat.Message{msg("m1", "c1", 10)})
	l.Replace("c1", []chat.Message{msg("m2", "c1", 20)})

	assertOrder(t, l.Messages("c1"), "m2")

	// m1 is gone, so appending it again must succeed.
	l.Append(msg("m1", "c1", 10))
	assertOrder(t, l.Messages("c1"), "m2", "m1")
}

// TestPageMergeScenario is the canonical interleaving: page 1 fetched, a
// realtime message appended, then an older page 2 merge-prepended.
func TestPageMergeScenario(t *testing.T) {
	l := NewMessageLog()

	l.Replace("c1", []chat.Message{msg("m1", "c1", 10), msg("m2", "c1", 20)})
	l.Append(msg("m3", "c1", 30))
	l.MergeOlderPage("c1", []chat.Message{msg("m0", "c1", 5)})

	assertOrder(t, l.Messages("c1"), "m0", "m1", "m2", "m3")
}

func TestMergeOlderPageDedupsAgainstExisting(t *testing.T) {
	l := NewMessageLog()
	l.Replace("c1", []chat.Message{msg("m1", "c1", 10)})

	// Page overlaps with what is already loaded.
	l.MergeOlderPage("c1", []chat.Message{msg("m0", "c1", 5), msg("m1", "c1", 10)})

	assertOrder(t, l.Messages("c1"), "m0", "m1")
}

func TestMergeOlderPageAllDuplicatesIsNoOp(t *testing.T) {
	l := NewMessageLog()
	l.Replace("c1", []chat.Message{msg("m1", "c1", 10), msg("m2", "c1", 20)})
	l.MergeOlderPage("c1", []chat.Message{msg("m1", "c1", 10), msg("m2", "c1", 20)})

	assertOrder(t, l.Messages("c1"), "m1", "m2")
}

func TestUpdateMergesFields(t *testing.T) {
	l := NewMessageLog()
	l.Append(msg("m1", "c1", 10))

	read := chat.StatusRead
	l.Update("m1", chat.MessagePatch{
		Status: &read,
		ReadBy: []chat.ReadReceipt{{UserID: "u2", ReadAt: 50}},
	})

	got, ok := l.Get("m1")
	if !ok {
		t.Fatal("message missing after update")
	}
	if got.Status != chat.StatusRead {
		t.Errorf("status = %q, want read", got.Status)
	}
	if len(got.ReadBy) != 1 || got.ReadBy[0].UserID != "u2" {
		t.Errorf("readBy = %v, want receipt from u2", got.ReadBy)
	}
	if got.Content != "body-m1" {
		t.Errorf("content = %q, want untouched", got.Content)
	}
}

func TestUpdateReceiptIdempotent(t *testing.T) {
	l := NewMessageLog()
	l.Append(msg("m1", "c1", 10))

	patch := chat.MessagePatch{ReadBy: []chat.ReadReceipt{{UserID: "u2", ReadAt: 50}}}
	l.Update("m1", patch)
	l.Update("m1", patch)

	got, _ := l.Get("m1")
	if len(got.ReadBy) != 1 {
		t.Errorf("got %d receipts, want 1", len(got.ReadBy))
	}
}

// TestUpdateBeforeCreateRace asserts the documented race behavior: an update
// for a message the client has not seen is silently absorbed, and the later
// create appends the message in its original, un-updated form.
func TestUpdateBeforeCreateRace(t *testing.T) {
	l := NewMessageLog()

	read := chat.StatusRead
	l.Update("m1", chat.MessagePatch{Status: &read})

	l.Append(msg("m1", "c1", 10))

	got, ok := l.Get("m1")
	if !ok {
		t.Fatal("message missing after create")
	}
	if got.Status != chat.StatusSent {
		t.Errorf("status = %q, want sent (early update must be dropped)", got.Status)
	}
}

func TestRemove(t *testing.T) {
	l := NewMessageLog()
	l.Replace("c1", []chat.Message{msg("m1", "c1", 10), msg("m2", "c1", 20), msg("m3", "c1", 30)})

	l.Remove("m2")
	assertOrder(t, l.Messages("c1"), "m1", "m3")

	// Removing an unknown id is a no-op.
	l.Remove("m2")
	l.Remove("never-seen")
	assertOrder(t, l.Messages("c1"), "m1", "m3")

	// A removed id may be appended again (explicit re-delivery).
	l.Append(msg("m2", "c1", 20))
	assertOrder(t, l.Messages("c1"), "m1", "m3", "m2")
}

func TestLogsAreIndependentPerConversation(t *testing.T) {
	l := NewMessageLog()
	l.Append(msg("a1", "c1", 10))
	l.Append(msg("b1", "c2", 10))

	l.Replace("c1", nil)

	if got := l.Messages("c1"); len(got) != 0 {
		t.Errorf("c1 has %d messages, want 0", len(got))
	}
	assertOrder(t, l.Messages("c2"), "b1")
}

func TestMessagesReturnsCopy(t *testing.T) {
	l := NewMessageLog()
	l.Append(msg("m1", "c1", 10))

	snap := l.Messages("c1")
	snap[0].Content = "mutated"

	got, _ := l.Get("m1")
	if got.Content != "body-m1" {
		t.Error("snapshot mutation leaked into the store")
	}
}

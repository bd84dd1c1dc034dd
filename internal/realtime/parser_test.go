package realtime

import (
	"errors"
	"testing"

	"github.com/carebridgehq/chatsync/internal/bus"
	"github.com/carebridgehq/chatsync/internal/chat"
)

func TestParseMessageCreated(t *testing.T) {
	raw := []byte(`{
		"event": "message.created",
		"data": {
			"id": "m1",
			"conversationId": "c1",
			"sender": {"id": "u2", "name": "Bruno"},
			"type": "text",
			"content": "hello",
			"status": "sent",
			"createdAt": 1700000000000
		}
	}`)

	evt, err := Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if evt.Kind != bus.KindMessageCreated {
		t.Errorf("kind = %q, want %q", evt.Kind, bus.KindMessageCreated)
	}
	msg, ok := evt.Payload.(*chat.Message)
	if !ok {
		t.Fatalf("payload type %T, want *chat.Message", evt.Payload)
	}
	if msg.ID != "m1" || msg.ConversationID != "c1" || msg.Sender.ID != "u2" {
		t.Errorf("message = %+v", msg)
	}
}

func TestParseMessageUpdated(t *testing.T) {
	raw := []byte(`{
		"event": "message.updated",
		"data": {
			"messageId": "m1",
			"status": "read",
			"readBy": [{"userId": "u3", "readAt": 1700000001000}]
		}
	}`)

	evt, err := Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	up, ok := evt.Payload.(*chat.MessageUpdate)
	if !ok {
		t.Fatalf("payload type %T, want *chat.MessageUpdate", evt.Payload)
	}
	if up.MessageID != "m1" {
		t.Errorf("messageID = %q, want m1", up.MessageID)
	}
	if up.Patch.Status == nil || *up.Patch.Status != chat.StatusRead {
		t.Errorf("status patch = %v, want read", up.Patch.Status)
	}
	if up.Patch.Content != nil {
		t.Error("content patch should be nil when absent from payload")
	}
	if len(up.Patch.ReadBy) != 1 || up.Patch.ReadBy[0].UserID != "u3" {
		t.Errorf("readBy = %v", up.Patch.ReadBy)
	}
}

func TestParseMessageDeleted(t *testing.T) {
	raw := []byte(`{"event": "message.deleted", "data": {"messageId": "m1", "conversationId": "c1"}}`)

	evt, err := Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	del, ok := evt.Payload.(*chat.MessageDelete)
	if !ok {
		t.Fatalf("payload type %T", evt.Payload)
	}
	if del.MessageID != "m1" || del.ConversationID != "c1" {
		t.Errorf("delete = %+v", del)
	}
}

func TestParsePresenceChanged(t *testing.T) {
	raw := []byte(`{"event": "presence.changed", "data": {"userIds": ["u1", "u2"]}}`)

	evt, err := Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := evt.Payload.(*chat.PresenceUpdate)
	if !ok {
		t.Fatalf("payload type %T", evt.Payload)
	}
	if len(p.UserIDs) != 2 {
		t.Errorf("userIDs = %v, want 2 entries", p.UserIDs)
	}
}

func TestParsePresenceChangedProfileObjects(t *testing.T) {
	// Some backend services emit full profile objects instead of bare IDs.
	raw := []byte(`{"event": "presence.changed", "data": {"userIds": [{"id": "u1", "firstName": "Ana"}, "u2"]}}`)

	evt, err := Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := evt.Payload.(*chat.PresenceUpdate)
	if !ok {
		t.Fatalf("payload type %T", evt.Payload)
	}
	if len(p.UserIDs) != 2 || p.UserIDs[0] != "u1" || p.UserIDs[1] != "u2" {
		t.Errorf("userIDs = %v, want [u1 u2]", p.UserIDs)
	}
}

func TestParseTypingChanged(t *testing.T) {
	raw := []byte(`{"event": "typing.changed", "data": {"conversationId": "c1", "userId": "u2", "isTyping": true}}`)

	evt, err := Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	ty, ok := evt.Payload.(*chat.TypingUpdate)
	if !ok {
		t.Fatalf("payload type %T", evt.Payload)
	}
	if ty.ConversationID != "c1" || ty.UserID != "u2" || !ty.IsTyping {
		t.Errorf("typing = %+v", ty)
	}
}

func TestParseTypingChangedProfileObject(t *testing.T) {
	raw := []byte(`{"event": "typing.changed", "data": {"conversationId": "c1", "userId": {"id": "u2", "firstName": "Bruno"}, "isTyping": false}}`)

	evt, err := Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	ty, ok := evt.Payload.(*chat.TypingUpdate)
	if !ok {
		t.Fatalf("payload type %T", evt.Payload)
	}
	if ty.UserID != "u2" || ty.IsTyping {
		t.Errorf("typing = %+v", ty)
	}
}

func TestParseUnknownEvent(t *testing.T) {
	_, err := Parse([]byte(`{"event": "shift.assigned", "data": {}}`))
	if !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("err = %v, want ErrUnknownEvent", err)
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse([]byte(`not json`)); err == nil {
		t.Error("malformed frame should error")
	}
	if _, err := Parse([]byte(`{"event": "message.created", "data": "nope"}`)); err == nil {
		t.Error("mistyped payload should error")
	}
}

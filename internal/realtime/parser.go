package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/carebridgehq/chatsync/internal/bus"
	"github.com/carebridgehq/chatsync/internal/chat"
)

// ErrUnknownEvent is returned for envelope kinds this client does not
// handle. Callers log and drop; new server-side event types must never
// break the read loop.
var ErrUnknownEvent = errors.New("unknown realtime event")

// envelope is the wire frame of the push feed: an event name plus a
// type-dependent payload.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type messageUpdatedPayload struct {
	MessageID string              `json:"messageId"`
	Status    *chat.MessageStatus `json:"status,omitempty"`
	Content   *string             `json:"content,omitempty"`
	ReadBy    []chat.ReadReceipt  `json:"readBy,omitempty"`
}

type messageDeletedPayload struct {
	MessageID      string `json:"messageId"`
	ConversationID string `json:"conversationId"`
}

// Presence and typing frames reference users either as bare IDs or as
// embedded profile objects depending on which backend service emitted
// them; chat.UserRef absorbs both shapes.
type presenceChangedPayload struct {
	Users []chat.UserRef `json:"userIds"`
}

type typingChangedPayload struct {
	ConversationID string       `json:"conversationId"`
	User           chat.UserRef `json:"userId"`
	IsTyping       bool         `json:"isTyping"`
}

// Parse decodes one push frame into a bus event carrying a typed domain
// payload. The transport framing itself is not interpreted beyond the
// envelope; payload shapes are the backend's published contract.
func Parse(raw []byte) (bus.Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return bus.Event{}, fmt.Errorf("decode envelope: %w", err)
	}

	evt := bus.Event{Timestamp: time.Now()}
	switch env.Event {
	case "message.created":
		var msg chat.Message
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			return bus.Event{}, fmt.Errorf("decode message.created: %w", err)
		}
		evt.Kind = bus.KindMessageCreated
		evt.Payload = &msg

	case "message.updated":
		var p messageUpdatedPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return bus.Event{}, fmt.Errorf("decode message.updated: %w", err)
		}
		evt.Kind = bus.KindMessageUpdated
		evt.Payload = &chat.MessageUpdate{
			MessageID: p.MessageID,
			Patch: chat.MessagePatch{
				Status:  p.Status,
				Content: p.Content,
				ReadBy:  p.ReadBy,
			},
		}

	case "message.deleted":
		var p messageDeletedPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return bus.Event{}, fmt.Errorf("decode message.deleted: %w", err)
		}
		evt.Kind = bus.KindMessageDeleted
		evt.Payload = &chat.MessageDelete{
			MessageID:      p.MessageID,
			ConversationID: p.ConversationID,
		}

	case "presence.changed":
		var p presenceChangedPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return bus.Event{}, fmt.Errorf("decode presence.changed: %w", err)
		}
		ids := make([]string, len(p.Users))
		for i, u := range p.Users {
			ids[i] = u.ID()
		}
		evt.Kind = bus.KindPresenceChanged
		evt.Payload = &chat.PresenceUpdate{UserIDs: ids}

	case "typing.changed":
		var p typingChangedPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return bus.Event{}, fmt.Errorf("decode typing.changed: %w", err)
		}
		evt.Kind = bus.KindTypingChanged
		evt.Payload = &chat.TypingUpdate{
			ConversationID: p.ConversationID,
			UserID:         p.User.ID(),
			IsTyping:       p.IsTyping,
		}

	default:
		return bus.Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}

	return evt, nil
}

package chat

// MessagePatch is a partial update merged into an existing message.
// Nil fields are left untouched; ReadBy entries are appended, skipping
// receipts already present for the same user.
type MessagePatch struct {
	Status  *MessageStatus
	Content *string
	ReadBy  []ReadReceipt
}

// MessageUpdate is the payload of a realtime message.updated event.
type MessageUpdate struct {
	MessageID string
	Patch     MessagePatch
}

// MessageDelete is the payload of a realtime message.deleted event.
type MessageDelete struct {
	MessageID      string
	ConversationID string
}

// PresenceUpdate is the payload of a realtime presence.changed event.
// It carries the full online set, not a delta.
type PresenceUpdate struct {
	UserIDs []string
}

// TypingUpdate is the payload of a realtime typing.changed event.
type TypingUpdate struct {
	ConversationID string
	UserID         string
	IsTyping       bool
}

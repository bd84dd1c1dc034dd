package bus

import "time"

// Event is a domain event published in-process. Kind is dot-namespaced:
//
//	rt.*      inbound realtime events decoded from the push feed
//	chat.*    store-change notifications emitted by the sync engine
//	conn.*    connection state transitions
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// Inbound realtime event kinds, published by the realtime client.
const (
	KindMessageCreated  = "rt.message.created"
	KindMessageUpdated  = "rt.message.updated"
	KindMessageDeleted  = "rt.message.deleted"
	KindPresenceChanged = "rt.presence.changed"
	KindTypingChanged   = "rt.typing.changed"
)

// Store-change notification kinds, published by the sync engine for UI
// collaborators and the cache writer.
const (
	KindDirectoryReplaced   = "chat.directory_replaced"
	KindConversationUpdated = "chat.conversation_updated"
	KindLogMerged           = "chat.log_merged"
	KindChatMessageAppended = "chat.message_appended"
	KindChatMessageUpdated  = "chat.message_updated"
	KindChatMessageDeleted  = "chat.message_deleted"
	KindChatPresence        = "chat.presence_changed"
	KindChatTyping          = "chat.typing_changed"
)

// KindConnStatus is published by the connection state machine.
const KindConnStatus = "conn.status_changed"

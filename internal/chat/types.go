package chat

// ConversationKind distinguishes two-member threads from group threads.
type ConversationKind string

const (
	KindDirect ConversationKind = "direct"
	KindGroup  ConversationKind = "group"
)

// MessageType is the content type of a message.
type MessageType string

const (
	TypeText  MessageType = "text"
	TypeImage MessageType = "image"
	TypeVideo MessageType = "video"
	TypeFile  MessageType = "file"
)

// MessageStatus is the delivery status of a message.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
	StatusFailed    MessageStatus = "failed"
)

// Member is a conversation participant.
type Member struct {
	UserID   string `json:"userId"`
	Role     string `json:"role"`
	JoinedAt int64  `json:"joinedAt"`
}

// Sender carries the display attributes of a message author.
type Sender struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Attachment is a file attached to a message. Upload mechanics are handled
// elsewhere; the engine only carries the resolved references.
type Attachment struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

// ReadReceipt records that a user has read a message.
type ReadReceipt struct {
	UserID string `json:"userId"`
	ReadAt int64  `json:"readAt"`
}

// Message is a synced chat message. ID is server-assigned and immutable.
// Timestamps are unix milliseconds.
type Message struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversationId"`
	Sender         Sender        `json:"sender"`
	Type           MessageType   `json:"type"`
	Content        string        `json:"content"`
	Attachments    []Attachment  `json:"attachments,omitempty"`
	Status         MessageStatus `json:"status"`
	ReadBy         []ReadReceipt `json:"readBy,omitempty"`
	CreatedAt      int64         `json:"createdAt"`
}

// MessageSummary is the lastMessage preview carried on a conversation.
type MessageSummary struct {
	ID      string      `json:"id"`
	Preview string      `json:"preview"`
	Sender  Sender      `json:"sender"`
	Type    MessageType `json:"type"`
	SentAt  int64       `json:"sentAt"`
}

// Conversation is a direct or group thread as seen by the local client.
// UnreadCount is owned by the backend and stored verbatim; the engine only
// adjusts it in response to message and read events.
type Conversation struct {
	ID             string           `json:"id"`
	Kind           ConversationKind `json:"type"`
	Name           string           `json:"name,omitempty"`
	Description    string           `json:"description,omitempty"`
	Members        []Member         `json:"members"`
	CreatedBy      string           `json:"createdBy"`
	LastMessage    *MessageSummary  `json:"lastMessage,omitempty"`
	UnreadCount    int              `json:"unreadCount"`
	LastActivityAt int64            `json:"lastActivityAt"`
}

// Summary derives the lastMessage preview for a conversation from a full
// message, truncating the content the way the backend does.
func (m *Message) Summary() MessageSummary {
	return MessageSummary{
		ID:      m.ID,
		Preview: truncate(m.Content, 100),
		Sender:  m.Sender,
		Type:    m.Type,
		SentAt:  m.CreatedAt,
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

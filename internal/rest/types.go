package rest

import "github.com/carebridgehq/chatsync/internal/chat"

// PageInfo is the pagination block returned by list endpoints.
type PageInfo struct {
	CurrentPage int  `json:"currentPage"`
	TotalCount  int  `json:"totalCount"`
	HasMore     bool `json:"hasMore"`
	Limit       int  `json:"limit"`
}

// ConversationList is the response of GET /chat/conversations.
type ConversationList struct {
	Conversations []chat.Conversation `json:"conversations"`
	Pagination    PageInfo            `json:"pagination"`
}

// MessagePage is the response of GET /chat/conversations/{id}/messages.
// Messages are ordered oldest-first within the page.
type MessagePage struct {
	Messages   []chat.Message `json:"messages"`
	Pagination PageInfo       `json:"pagination"`
}

// CreateConversationRequest is the body of POST /chat/conversations.
type CreateConversationRequest struct {
	Type           chat.ConversationKind `json:"type"`
	MemberIDs      []string              `json:"memberIds"`
	Name           string                `json:"name,omitempty"`
	Description    string                `json:"description,omitempty"`
	OrganizationID string                `json:"organizationId,omitempty"`
}

// SendMessageRequest is the body of POST /chat/conversations/{id}/messages.
type SendMessageRequest struct {
	Type        chat.MessageType  `json:"type"`
	Content     string            `json:"content"`
	Attachments []chat.Attachment `json:"attachments,omitempty"`
}

// ReadConfirmation is the response of PATCH /chat/messages/{id}/read.
type ReadConfirmation struct {
	MessageID string `json:"messageId"`
	UserID    string `json:"userId"`
	ReadAt    int64  `json:"readAt"`
}

package rest

import (
	"context"
	"strconv"
	"time"

	"github.com/carebridgehq/chatsync/internal/chat"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client talks to the care-coordination backend's chat surface. All calls
// are bearer-token authenticated and carry a generated request ID for log
// correlation. Errors are classified into the TransportError / AuthError
// taxonomy; callers decide what to do with them.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates a backend client for the given base URL and token.
func NewClient(baseURL, token string, logger *zap.Logger) *Client {
	h := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(token).
		SetHeader("Accept", "application/json").
		SetTimeout(30 * time.Second)

	h.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader("X-Request-ID", uuid.New().String())
		return nil
	})

	return &Client{http: h, logger: logger}
}

// CreateConversation creates a direct or group conversation.
func (c *Client) CreateConversation(ctx context.Context, req CreateConversationRequest) (*chat.Conversation, error) {
	const op = "create conversation"
	var out chat.Conversation
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/chat/conversations")
	if cerr := classify(op, resp, err); cerr != nil {
		return nil, cerr
	}
	c.logger.Info("conversation created", zap.String("conversation_id", out.ID), zap.String("kind", string(out.Kind)))
	return &out, nil
}

// ListConversations fetches the caller's full conversation list.
func (c *Client) ListConversations(ctx context.Context) (*ConversationList, error) {
	const op = "list conversations"
	var out ConversationList
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/chat/conversations")
	if cerr := classify(op, resp, err); cerr != nil {
		return nil, cerr
	}
	return &out, nil
}

// ListMessages fetches one page of a conversation's history. Page numbers
// start at 1; page 1 is the most recent.
func (c *Client) ListMessages(ctx context.Context, conversationID string, page, limit int) (*MessagePage, error) {
	const op = "list messages"
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	var out MessagePage
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", conversationID).
		SetQueryParams(map[string]string{
			"page":  strconv.Itoa(page),
			"limit": strconv.Itoa(limit),
		}).
		SetResult(&out).
		Get("/chat/conversations/{id}/messages")
	if cerr := classify(op, resp, err); cerr != nil {
		return nil, cerr
	}
	return &out, nil
}

// SendMessage posts a new message and returns the server-materialized record.
func (c *Client) SendMessage(ctx context.Context, conversationID string, req SendMessageRequest) (*chat.Message, error) {
	const op = "send message"
	var out chat.Message
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", conversationID).
		SetBody(req).
		SetResult(&out).
		Post("/chat/conversations/{id}/messages")
	if cerr := classify(op, resp, err); cerr != nil {
		return nil, cerr
	}
	return &out, nil
}

// MarkRead marks a message as read by the current user.
func (c *Client) MarkRead(ctx context.Context, messageID string) (*ReadConfirmation, error) {
	const op = "mark read"
	var out ReadConfirmation
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", messageID).
		SetBody(struct{}{}).
		SetResult(&out).
		Patch("/chat/messages/{id}/read")
	if cerr := classify(op, resp, err); cerr != nil {
		return nil, cerr
	}
	return &out, nil
}

func classify(op string, resp *resty.Response, err error) error {
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	code := resp.StatusCode()
	switch {
	case code == 401 || code == 403:
		return &AuthError{Op: op, StatusCode: code}
	case resp.IsError():
		return &TransportError{Op: op, StatusCode: code}
	}
	return nil
}

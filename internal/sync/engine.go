package sync

import (
	"context"
	"time"

	"github.com/carebridgehq/chatsync/internal/bus"
	"github.com/carebridgehq/chatsync/internal/chat"
	"github.com/carebridgehq/chatsync/internal/rest"
	"github.com/carebridgehq/chatsync/internal/state"
	"go.uber.org/zap"
)

// Backend is the REST surface the engine issues commands through.
// *rest.Client satisfies it; tests substitute a fake.
type Backend interface {
	CreateConversation(ctx context.Context, req rest.CreateConversationRequest) (*chat.Conversation, error)
	ListConversations(ctx context.Context) (*rest.ConversationList, error)
	ListMessages(ctx context.Context, conversationID string, page, limit int) (*rest.MessagePage, error)
	SendMessage(ctx context.Context, conversationID string, req rest.SendMessageRequest) (*chat.Message, error)
	MarkRead(ctx context.Context, messageID string) (*rest.ReadConfirmation, error)
}

// LogMerge is the payload of a chat.log_merged notification: one fetched
// page applied to a conversation's log.
type LogMerge struct {
	ConversationID string
	Messages       []chat.Message
}

// Engine is the synchronization coordinator. It owns the four stores,
// issues REST commands, and applies realtime events from the bus. All
// store writes happen either inside a command method or on the single
// event goroutine; every applied operation is idempotent, so at-least-once
// and out-of-order delivery cannot corrupt state.
type Engine struct {
	backend Backend
	bus     *bus.Bus
	logger  *zap.Logger
	selfID  string

	log      *state.MessageLog
	dir      *state.ConversationDirectory
	presence *state.PresenceTracker
	typing   *state.TypingTracker
	views    *viewRegistry

	cancel context.CancelFunc
}

// NewEngine creates a coordinator for the given local user. selfID is the
// authenticated user's identity; it decides whose messages count as unread.
func NewEngine(backend Backend, b *bus.Bus, selfID string, logger *zap.Logger) *Engine {
	return &Engine{
		backend:  backend,
		bus:      b,
		logger:   logger,
		selfID:   selfID,
		log:      state.NewMessageLog(),
		dir:      state.NewConversationDirectory(),
		presence: state.NewPresenceTracker(),
		typing:   state.NewTypingTracker(),
		views:    newViewRegistry(),
	}
}

// Start subscribes to inbound realtime events on the bus and applies them
// in delivery order on a single goroutine.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	ch, unsub := e.bus.Subscribe("rt.", 256)

	go func() {
		defer unsub()
		for {
			select {
			case evt := <-ch:
				e.handleEvent(evt)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the event goroutine.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
}

// Bootstrap seeds the stores from the local cache before the first network
// fetch, so the client has data to show offline. Later fetches replace the
// seeded state wholesale.
func (e *Engine) Bootstrap(convs []chat.Conversation, logs map[string][]chat.Message) {
	e.dir.Replace(convs)
	for convID, msgs := range logs {
		e.log.Replace(convID, msgs)
	}
}

// --- commands -----------------------------------------------------------

// LoadConversations fetches the conversation list and replaces the
// directory. On failure the directory is left untouched and the error is
// returned to the caller; no retry is attempted here.
func (e *Engine) LoadConversations(ctx context.Context) error {
	list, err := e.backend.ListConversations(ctx)
	if err != nil {
		return err
	}
	e.dir.Replace(list.Conversations)
	e.publish(bus.KindDirectoryReplaced, list.Conversations)
	e.logger.Info("conversation directory loaded", zap.Int("conversations", len(list.Conversations)))
	return nil
}

// OpenConversation fetches one page of a conversation's history. Page 1
// replaces the log; later pages are merge-prepended without disturbing
// messages appended by realtime events in the meantime. Returns the page
// metadata so the caller knows whether more history exists.
func (e *Engine) OpenConversation(ctx context.Context, conversationID string, page, limit int) (*rest.MessagePage, error) {
	prev := e.views.current(conversationID)
	target := ViewLoadingInitial
	if page > 1 {
		target = ViewLoadingPage
	}
	if err := e.views.transition(conversationID, target); err != nil {
		e.logger.Debug("view transition skipped", zap.Error(err))
	}

	fetched, err := e.backend.ListMessages(ctx, conversationID, page, limit)
	if err != nil {
		e.views.revert(conversationID, prev)
		return nil, err
	}

	if page <= 1 {
		e.log.Replace(conversationID, fetched.Messages)
	} else {
		e.log.MergeOlderPage(conversationID, fetched.Messages)
	}
	if err := e.views.transition(conversationID, ViewReady); err != nil {
		e.views.revert(conversationID, ViewReady)
	}

	e.publish(bus.KindLogMerged, &LogMerge{ConversationID: conversationID, Messages: fetched.Messages})
	return fetched, nil
}

// Send posts a message. The message is materialized locally only after the
// server confirms it; a failed send mutates nothing and is not retried.
func (e *Engine) Send(ctx context.Context, conversationID string, msgType chat.MessageType, content string, attachments []chat.Attachment) (*chat.Message, error) {
	if err := e.views.transition(conversationID, ViewSending); err != nil {
		e.logger.Debug("view transition skipped", zap.Error(err))
	}

	msg, err := e.backend.SendMessage(ctx, conversationID, rest.SendMessageRequest{
		Type:        msgType,
		Content:     content,
		Attachments: attachments,
	})
	if err != nil {
		if terr := e.views.transition(conversationID, ViewSendFailed); terr != nil {
			e.logger.Debug("view transition skipped", zap.Error(terr))
		}
		return nil, err
	}

	e.log.Append(*msg)
	e.dir.UpsertLastMessage(msg.ConversationID, msg.Summary())
	if err := e.views.transition(conversationID, ViewReady); err != nil {
		e.logger.Debug("view transition skipped", zap.Error(err))
	}

	e.publish(bus.KindChatMessageAppended, msg)
	e.publishConversation(msg.ConversationID)
	return msg, nil
}

// MarkRead marks a message as read. On confirmation the message's status
// and receipt list are updated and the owning conversation's unread count
// is lowered by one.
func (e *Engine) MarkRead(ctx context.Context, messageID string) error {
	conf, err := e.backend.MarkRead(ctx, messageID)
	if err != nil {
		return err
	}

	read := chat.StatusRead
	e.log.Update(messageID, chat.MessagePatch{
		Status: &read,
		ReadBy: []chat.ReadReceipt{{UserID: conf.UserID, ReadAt: conf.ReadAt}},
	})

	if msg, ok := e.log.Get(messageID); ok {
		e.dir.DecrementUnread(msg.ConversationID)
		e.publish(bus.KindChatMessageUpdated, &msg)
		e.publishConversation(msg.ConversationID)
	}
	return nil
}

// CreateConversation creates a new thread and adds it to the directory.
func (e *Engine) CreateConversation(ctx context.Context, req rest.CreateConversationRequest) (*chat.Conversation, error) {
	conv, err := e.backend.CreateConversation(ctx, req)
	if err != nil {
		return nil, err
	}
	e.dir.Upsert(*conv)
	e.publish(bus.KindConversationUpdated, conv)
	return conv, nil
}

// --- realtime event application -----------------------------------------

func (e *Engine) handleEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.KindMessageCreated:
		msg, ok := evt.Payload.(*chat.Message)
		if !ok {
			return
		}
		e.applyMessageCreated(msg)
	case bus.KindMessageUpdated:
		up, ok := evt.Payload.(*chat.MessageUpdate)
		if !ok {
			return
		}
		e.applyMessageUpdated(up)
	case bus.KindMessageDeleted:
		del, ok := evt.Payload.(*chat.MessageDelete)
		if !ok {
			return
		}
		e.log.Remove(del.MessageID)
		e.publish(bus.KindChatMessageDeleted, del)
	case bus.KindPresenceChanged:
		p, ok := evt.Payload.(*chat.PresenceUpdate)
		if !ok {
			return
		}
		e.presence.SetOnline(p.UserIDs)
		e.publish(bus.KindChatPresence, p)
	case bus.KindTypingChanged:
		ty, ok := evt.Payload.(*chat.TypingUpdate)
		if !ok {
			return
		}
		if ty.IsTyping {
			e.typing.MarkTyping(ty.ConversationID, ty.UserID)
		} else {
			e.typing.ClearTyping(ty.ConversationID, ty.UserID)
		}
		e.publish(bus.KindChatTyping, ty)
	}
}

func (e *Engine) applyMessageCreated(msg *chat.Message) {
	// A redelivered create is fully absorbed: no log entry, no unread bump,
	// no notification.
	if !e.log.Append(*msg) {
		return
	}
	e.dir.UpsertLastMessage(msg.ConversationID, msg.Summary())
	if msg.Sender.ID != e.selfID {
		e.dir.IncrementUnread(msg.ConversationID)
	}
	e.publish(bus.KindChatMessageAppended, msg)
	e.publishConversation(msg.ConversationID)
}

func (e *Engine) applyMessageUpdated(up *chat.MessageUpdate) {
	e.log.Update(up.MessageID, up.Patch)
	// An update for a message we have not fetched is a benign race; a later
	// full page fetch reconciles it.
	if msg, ok := e.log.Get(up.MessageID); ok {
		e.publish(bus.KindChatMessageUpdated, &msg)
	}
}

// --- read surface -------------------------------------------------------

// Conversations returns the directory ordered by most recent activity.
func (e *Engine) Conversations() []chat.Conversation {
	return e.dir.OrderedList()
}

// Conversation returns one conversation by identity.
func (e *Engine) Conversation(conversationID string) (chat.Conversation, bool) {
	return e.dir.Get(conversationID)
}

// Messages returns a snapshot of a conversation's message log.
func (e *Engine) Messages(conversationID string) []chat.Message {
	return e.log.Messages(conversationID)
}

// IsOnline reports whether a user is currently online.
func (e *Engine) IsOnline(userID string) bool {
	return e.presence.IsOnline(userID)
}

// TypingUsers returns who is composing in a conversation.
func (e *Engine) TypingUsers(conversationID string) []string {
	return e.typing.Typing(conversationID)
}

// ViewState returns the view session state of a conversation.
func (e *Engine) ViewState(conversationID string) ViewState {
	return e.views.current(conversationID)
}

func (e *Engine) publish(kind string, payload any) {
	e.bus.Publish(bus.Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
}

func (e *Engine) publishConversation(conversationID string) {
	if conv, ok := e.dir.Get(conversationID); ok {
		e.publish(bus.KindConversationUpdated, &conv)
	}
}

package cache

import (
	"context"

	"github.com/carebridgehq/chatsync/internal/bus"
	"github.com/carebridgehq/chatsync/internal/chat"
	"github.com/carebridgehq/chatsync/internal/sync"
	"go.uber.org/zap"
)

// Writer persists the engine's store-change notifications into the cache.
// It subscribes to chat.* events on the bus, so the engine stays unaware
// of persistence entirely. Write failures are logged and skipped; the
// cache self-heals on later notifications.
type Writer struct {
	db     *DB
	bus    *bus.Bus
	logger *zap.Logger
	cancel context.CancelFunc
}

// NewWriter creates a cache writer.
func NewWriter(db *DB, b *bus.Bus, logger *zap.Logger) *Writer {
	return &Writer{db: db, bus: b, logger: logger}
}

// Start subscribes to store-change notifications.
func (w *Writer) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	ch, unsub := w.bus.Subscribe("chat.", 256)

	go func() {
		defer unsub()
		for {
			select {
			case evt := <-ch:
				w.handleEvent(evt)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the writer.
func (w *Writer) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
}

func (w *Writer) handleEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.KindDirectoryReplaced:
		convs, ok := evt.Payload.([]chat.Conversation)
		if !ok {
			return
		}
		for i := range convs {
			if err := w.db.UpsertConversation(&convs[i]); err != nil {
				w.logger.Warn("failed to cache conversation", zap.Error(err), zap.String("conversation_id", convs[i].ID))
			}
		}
	case bus.KindConversationUpdated:
		conv, ok := evt.Payload.(*chat.Conversation)
		if !ok {
			return
		}
		if err := w.db.UpsertConversation(conv); err != nil {
			w.logger.Warn("failed to cache conversation", zap.Error(err), zap.String("conversation_id", conv.ID))
		}
	case bus.KindLogMerged:
		merge, ok := evt.Payload.(*sync.LogMerge)
		if !ok {
			return
		}
		for i := range merge.Messages {
			if err := w.db.UpsertMessage(&merge.Messages[i]); err != nil {
				w.logger.Warn("failed to cache message", zap.Error(err), zap.String("msg_id", merge.Messages[i].ID))
			}
		}
	case bus.KindChatMessageAppended, bus.KindChatMessageUpdated:
		msg, ok := evt.Payload.(*chat.Message)
		if !ok {
			return
		}
		if err := w.db.UpsertMessage(msg); err != nil {
			w.logger.Warn("failed to cache message", zap.Error(err), zap.String("msg_id", msg.ID))
		}
	case bus.KindChatMessageDeleted:
		del, ok := evt.Payload.(*chat.MessageDelete)
		if !ok {
			return
		}
		if err := w.db.DeleteMessage(del.MessageID); err != nil {
			w.logger.Warn("failed to drop cached message", zap.Error(err), zap.String("msg_id", del.MessageID))
		}
	}
}

package cache

import (
	"github.com/carebridgehq/chatsync/internal/chat"
	"github.com/carebridgehq/chatsync/internal/sync"
	"go.uber.org/zap"
)

// warmStartLogLimit bounds how much history is seeded per conversation.
const warmStartLogLimit = 50

// WarmStart seeds the engine's stores from the cache so the client has a
// conversation list and recent history before the first network fetch.
// Errors are logged, not fatal: a cold start without cached data is the
// same as a first run.
func WarmStart(db *DB, engine *sync.Engine, logger *zap.Logger) {
	convs, err := db.ListConversations(0)
	if err != nil {
		logger.Warn("warm start skipped", zap.Error(err))
		return
	}
	if len(convs) == 0 {
		return
	}

	logs := make(map[string][]chat.Message, len(convs))
	for _, c := range convs {
		msgs, err := db.RecentMessages(c.ID, warmStartLogLimit)
		if err != nil {
			logger.Warn("skipping cached log", zap.Error(err), zap.String("conversation_id", c.ID))
			continue
		}
		if len(msgs) > 0 {
			logs[c.ID] = msgs
		}
	}

	engine.Bootstrap(convs, logs)
	logger.Info("warm start complete", zap.Int("conversations", len(convs)), zap.Int("seeded_logs", len(logs)))
}

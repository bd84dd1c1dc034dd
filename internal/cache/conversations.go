package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/carebridgehq/chatsync/internal/chat"
)

// UpsertConversation inserts or overwrites a cached conversation record.
func (db *DB) UpsertConversation(c *chat.Conversation) error {
	members, err := json.Marshal(c.Members)
	if err != nil {
		return fmt.Errorf("marshal members: %w", err)
	}
	var lastMsg any
	if c.LastMessage != nil {
		data, err := json.Marshal(c.LastMessage)
		if err != nil {
			return fmt.Errorf("marshal last message: %w", err)
		}
		lastMsg = string(data)
	}

	_, err = db.Exec(`
		INSERT INTO conversations (id, kind, name, description, created_by, unread_count, last_activity_at, members_json, last_message_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			name = excluded.name,
			description = excluded.description,
			created_by = excluded.created_by,
			unread_count = excluded.unread_count,
			last_activity_at = excluded.last_activity_at,
			members_json = excluded.members_json,
			last_message_json = excluded.last_message_json,
			updated_at = excluded.updated_at`,
		c.ID, c.Kind, c.Name, c.Description, c.CreatedBy, c.UnreadCount,
		c.LastActivityAt, string(members), lastMsg, time.Now().UnixMilli())
	return err
}

// ListConversations returns cached conversations sorted by activity
// timestamp descending.
func (db *DB) ListConversations(limit int) ([]chat.Conversation, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(`
		SELECT id, kind, name, description, created_by, unread_count, last_activity_at, members_json, last_message_json
		FROM conversations
		ORDER BY last_activity_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var convs []chat.Conversation
	for rows.Next() {
		var c chat.Conversation
		var members string
		var lastMsg *string
		if err := rows.Scan(&c.ID, &c.Kind, &c.Name, &c.Description, &c.CreatedBy,
			&c.UnreadCount, &c.LastActivityAt, &members, &lastMsg); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(members), &c.Members); err != nil {
			return nil, fmt.Errorf("unmarshal members for %s: %w", c.ID, err)
		}
		if lastMsg != nil {
			var summary chat.MessageSummary
			if err := json.Unmarshal([]byte(*lastMsg), &summary); err != nil {
				return nil, fmt.Errorf("unmarshal last message for %s: %w", c.ID, err)
			}
			c.LastMessage = &summary
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

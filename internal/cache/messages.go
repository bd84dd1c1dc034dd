package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/carebridgehq/chatsync/internal/chat"
)

// UpsertMessage inserts or overwrites a cached message (idempotent on id).
func (db *DB) UpsertMessage(m *chat.Message) error {
	attachments, err := json.Marshal(m.Attachments)
	if err != nil {
		return fmt.Errorf("marshal attachments: %w", err)
	}
	readBy, err := json.Marshal(m.ReadBy)
	if err != nil {
		return fmt.Errorf("marshal read receipts: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO messages (id, conversation_id, sender_id, sender_name, sender_avatar_url, message_type, content, status, attachments_json, read_by_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			status = excluded.status,
			attachments_json = excluded.attachments_json,
			read_by_json = excluded.read_by_json,
			updated_at = excluded.updated_at`,
		m.ID, m.ConversationID, m.Sender.ID, m.Sender.Name, m.Sender.AvatarURL,
		m.Type, m.Content, m.Status, string(attachments), string(readBy),
		m.CreatedAt, time.Now().UnixMilli())
	return err
}

// DeleteMessage removes a cached message. No-op when absent.
func (db *DB) DeleteMessage(messageID string) error {
	_, err := db.Exec(`DELETE FROM messages WHERE id = ?`, messageID)
	return err
}

// RecentMessages returns the newest messages of a conversation in ascending
// creation order, ready to seed a message log.
func (db *DB) RecentMessages(conversationID string, limit int) ([]chat.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT id, conversation_id, sender_id, sender_name, sender_avatar_url, message_type, content, status, attachments_json, read_by_json, created_at
		FROM (
			SELECT * FROM messages
			WHERE conversation_id = ?
			ORDER BY created_at DESC
			LIMIT ?
		)
		ORDER BY created_at ASC`, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []chat.Message
	for rows.Next() {
		var m chat.Message
		var attachments, readBy string
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Sender.ID, &m.Sender.Name,
			&m.Sender.AvatarURL, &m.Type, &m.Content, &m.Status,
			&attachments, &readBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(attachments), &m.Attachments); err != nil {
			return nil, fmt.Errorf("unmarshal attachments for %s: %w", m.ID, err)
		}
		if err := json.Unmarshal([]byte(readBy), &m.ReadBy); err != nil {
			return nil, fmt.Errorf("unmarshal read receipts for %s: %w", m.ID, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

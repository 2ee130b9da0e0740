package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/buihongduc132/bhd-gemini-ctx/internal/extractor"
)

// WriteConversation writes a structured conversation and its messages in one
// transaction. Tables: conversations, conversation_messages.
func (s *Store) WriteConversation(ctx context.Context, conv extractor.Conversation) (uuid.UUID, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	convID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO conversations (id, title, source_url, extracted_at, message_count, created_at)
		VALUES ($1, $2, $3, $4, $5, now())`,
		convID, conv.Title, conv.URL, conv.ExtractedAt, conv.MessageCount,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert conversation: %w", err)
	}

	for i, msg := range conv.Messages {
		_, err = tx.Exec(ctx, `
			INSERT INTO conversation_messages (id, conversation_id, message_ref, position, sender, content, message_type, sent_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.New(), convID, msg.ID, i, string(msg.Sender), msg.Content, string(msg.Kind), msg.Timestamp,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert message: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}

	return convID, nil
}

// GetConversation fetches a stored conversation and its messages in position
// order.
func (s *Store) GetConversation(ctx context.Context, id uuid.UUID) (extractor.Conversation, error) {
	var conv extractor.Conversation
	row := s.pool.QueryRow(ctx, `
		SELECT title, source_url, extracted_at, message_count
		FROM conversations WHERE id = $1`, id)
	if err := row.Scan(&conv.Title, &conv.URL, &conv.ExtractedAt, &conv.MessageCount); err != nil {
		return extractor.Conversation{}, fmt.Errorf("scan conversation: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT message_ref, sender, content, message_type, sent_at
		FROM conversation_messages WHERE conversation_id = $1
		ORDER BY position`, id)
	if err != nil {
		return extractor.Conversation{}, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	conv.Messages = []extractor.Message{}
	for rows.Next() {
		var msg extractor.Message
		var sender, kind string
		if err := rows.Scan(&msg.ID, &sender, &msg.Content, &kind, &msg.Timestamp); err != nil {
			return extractor.Conversation{}, fmt.Errorf("scan message: %w", err)
		}
		msg.Sender = extractor.Sender(sender)
		msg.Kind = extractor.MessageKind(kind)
		conv.Messages = append(conv.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return extractor.Conversation{}, fmt.Errorf("iterate messages: %w", err)
	}
	return conv, nil
}

type ConversationRow struct {
	ID           uuid.UUID
	Title        string
	SourceURL    string
	ExtractedAt  string
	MessageCount int
	CreatedAt    time.Time
}

// ListConversations returns conversation headers, most recent first.
func (s *Store) ListConversations(ctx context.Context, limit int) ([]ConversationRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, source_url, extracted_at, message_count, created_at
		FROM conversations ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	out := []ConversationRow{}
	for rows.Next() {
		var c ConversationRow
		if err := rows.Scan(&c.ID, &c.Title, &c.SourceURL, &c.ExtractedAt, &c.MessageCount, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}
	return out, nil
}

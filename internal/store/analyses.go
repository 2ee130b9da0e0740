package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/buihongduc132/bhd-gemini-ctx/internal/analyzer"
)

// WriteAnalysis stores a per-conversation analysis linked to a stored
// conversation. Table: conversation_analyses.
func (s *Store) WriteAnalysis(ctx context.Context, conversationID uuid.UUID, a analyzer.Analysis) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO conversation_analyses (id, conversation_id, message_count, user_count, assistant_count,
			mean_length, median_length, min_length, max_length,
			code_block_count, question_count, technical_terms, topics, insights, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now())`,
		id, conversationID, a.Totals.MessageCount, a.Totals.UserCount, a.Totals.AssistantCount,
		a.LengthStats.Mean, a.LengthStats.Median, a.LengthStats.Min, a.LengthStats.Max,
		a.CodeBlockCount, a.QuestionCount, a.UniqueTechnicalTerms, a.UniqueTopics, a.Insights,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert analysis: %w", err)
	}
	return id, nil
}

type AnalysisRow struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	MessageCount   int
	UserCount      int
	AssistantCount int
	CodeBlockCount int
	QuestionCount  int
	TechnicalTerms []string
	Topics         []string
	Insights       []string
}

// GetAnalysis fetches the most recent analysis for a conversation.
func (s *Store) GetAnalysis(ctx context.Context, conversationID uuid.UUID) (*AnalysisRow, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, conversation_id, message_count, user_count, assistant_count,
			code_block_count, question_count, technical_terms, topics, insights
		FROM conversation_analyses WHERE conversation_id = $1
		ORDER BY created_at DESC LIMIT 1`, conversationID)

	var a AnalysisRow
	err := row.Scan(&a.ID, &a.ConversationID, &a.MessageCount, &a.UserCount, &a.AssistantCount,
		&a.CodeBlockCount, &a.QuestionCount, &a.TechnicalTerms, &a.Topics, &a.Insights)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

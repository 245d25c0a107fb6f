package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"
)

// ChatStore persists conversation turns in append order.
type ChatStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewChatStore(db *surrealdb.DB, logger *common.Logger) *ChatStore {
	return &ChatStore{
		db:     db,
		logger: logger,
	}
}

func (s *ChatStore) Append(ctx context.Context, message *models.ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	sql := "UPSERT type::record('chat_message', $id) CONTENT $message"
	vars := map[string]any{"id": message.ID, "message": message}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.ChatMessage](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to append chat message after retries: %w", err)
		}
	}
	return nil
}

// List returns the user's conversation in chronological order. A non-empty
// portfolioID scopes the thread to that portfolio; an empty one selects the
// general advisory thread.
func (s *ChatStore) List(ctx context.Context, userID, portfolioID string) ([]*models.ChatMessage, error) {
	sql := "SELECT * FROM chat_message WHERE user_id = $user_id AND portfolio_id = $portfolio_id ORDER BY created_at ASC"
	vars := map[string]any{"user_id": userID, "portfolio_id": portfolioID}

	results, err := surrealdb.Query[[]models.ChatMessage](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}

	var messages []*models.ChatMessage
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			messages = append(messages, &(*results)[0].Result[i])
		}
	}
	return messages, nil
}

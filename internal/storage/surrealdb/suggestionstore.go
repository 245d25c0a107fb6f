package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// SuggestionStore persists pending portfolio suggestions between the turn
// that produced them and the user's accept or reject.
type SuggestionStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewSuggestionStore(db *surrealdb.DB, logger *common.Logger) *SuggestionStore {
	return &SuggestionStore{
		db:     db,
		logger: logger,
	}
}

func (s *SuggestionStore) Save(ctx context.Context, suggestion *models.PortfolioSuggestion) error {
	if suggestion.CreatedAt.IsZero() {
		suggestion.CreatedAt = time.Now().UTC()
	}

	sql := "UPSERT type::record('suggestion', $id) CONTENT $suggestion"
	vars := map[string]any{"id": suggestion.ID, "suggestion": suggestion}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.PortfolioSuggestion](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to save suggestion after retries: %w", err)
		}
	}
	return nil
}

func (s *SuggestionStore) Get(ctx context.Context, userID, suggestionID string) (*models.PortfolioSuggestion, error) {
	suggestion, err := surrealdb.Select[models.PortfolioSuggestion](ctx, s.db, surrealmodels.NewRecordID("suggestion", suggestionID))
	if err != nil {
		return nil, fmt.Errorf("failed to select suggestion: %w", err)
	}
	if suggestion == nil || suggestion.ID == "" || suggestion.UserID != userID {
		return nil, fmt.Errorf("suggestion %s: %w", suggestionID, models.ErrNotFound)
	}
	return suggestion, nil
}

// Consume deletes the suggestion and returns its prior state in one
// statement. The second caller for the same ID gets models.ErrNotFound,
// which is what makes accepting a suggestion at-most-once.
func (s *SuggestionStore) Consume(ctx context.Context, userID, suggestionID string) (*models.PortfolioSuggestion, error) {
	sql := "DELETE type::record('suggestion', $id) WHERE user_id = $user_id RETURN BEFORE"
	vars := map[string]any{"id": suggestionID, "user_id": userID}

	results, err := surrealdb.Query[[]models.PortfolioSuggestion](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to consume suggestion: %w", err)
	}
	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return &(*results)[0].Result[0], nil
	}
	return nil, fmt.Errorf("suggestion %s: %w", suggestionID, models.ErrNotFound)
}

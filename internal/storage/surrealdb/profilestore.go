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

// ProfileStore persists investor profiles, one record per user.
type ProfileStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewProfileStore(db *surrealdb.DB, logger *common.Logger) *ProfileStore {
	return &ProfileStore{
		db:     db,
		logger: logger,
	}
}

func (s *ProfileStore) Get(ctx context.Context, userID string) (*models.InvestorProfile, error) {
	profile, err := surrealdb.Select[models.InvestorProfile](ctx, s.db, surrealmodels.NewRecordID("profile", userID))
	if err != nil {
		return nil, fmt.Errorf("failed to select profile: %w", err)
	}
	if profile == nil || profile.UserID == "" {
		return nil, fmt.Errorf("profile %s: %w", userID, models.ErrNotFound)
	}
	return profile, nil
}

func (s *ProfileStore) Save(ctx context.Context, profile *models.InvestorProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = profile.UpdatedAt
	}

	sql := "UPSERT type::record('profile', $id) CONTENT $profile"
	vars := map[string]any{"id": profile.UserID, "profile": profile}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.InvestorProfile](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to save profile after retries: %w", err)
		}
	}
	return nil
}

// TryInitChat flips first_chat_initiated from false to true in a single
// conditional update. It returns true only for the caller that performed
// the flip, so concurrent chat initializations greet at most once.
func (s *ProfileStore) TryInitChat(ctx context.Context, userID string) (bool, error) {
	sql := "UPDATE type::record('profile', $id) SET first_chat_initiated = true WHERE first_chat_initiated = false RETURN AFTER"
	vars := map[string]any{"id": userID}

	results, err := surrealdb.Query[[]models.InvestorProfile](ctx, s.db, sql, vars)
	if err != nil {
		return false, fmt.Errorf("failed to mark chat initiated: %w", err)
	}
	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return true, nil
	}
	return false, nil
}

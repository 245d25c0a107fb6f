// Package profile accumulates investor context from conversation turns and
// serves it back as prompt context for the suggestion engine.
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
}

func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Get returns the user's profile, creating the default one on first access
// so callers never see a missing profile for a valid user.
func (s *Service) Get(ctx context.Context, userID string) (*models.InvestorProfile, error) {
	profile, err := s.storage.ProfileStore().Get(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	profile = models.NewInvestorProfile(userID)
	if err := s.storage.ProfileStore().Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return profile, nil
}

// Update validates and persists edits made through the profile form.
// FirstChatInitiated is owned by the chat flow and preserved from storage.
func (s *Service) Update(ctx context.Context, profile *models.InvestorProfile) (*models.InvestorProfile, error) {
	if profile.UserID == "" {
		return nil, fmt.Errorf("user id is required: %w", models.ErrValidation)
	}
	switch profile.RiskTolerance {
	case "", models.RiskConservative, models.RiskModerate, models.RiskAggressive:
	default:
		return nil, fmt.Errorf("unknown risk tolerance %q: %w", profile.RiskTolerance, models.ErrValidation)
	}
	if profile.ROIExpectations < 0 {
		return nil, fmt.Errorf("roi expectations cannot be negative: %w", models.ErrValidation)
	}
	if profile.TimeHorizonYears < 0 {
		return nil, fmt.Errorf("time horizon cannot be negative: %w", models.ErrValidation)
	}
	for _, g := range profile.LiquidityRequirements {
		if g.Name == "" {
			return nil, fmt.Errorf("goal name is required: %w", models.ErrValidation)
		}
	}

	existing, err := s.Get(ctx, profile.UserID)
	if err != nil {
		return nil, err
	}
	profile.FirstChatInitiated = existing.FirstChatInitiated
	profile.CreatedAt = existing.CreatedAt
	if profile.LiquidityRequirements == nil {
		profile.LiquidityRequirements = []models.Goal{}
	}

	if err := s.storage.ProfileStore().Save(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.Debug().Str("user_id", profile.UserID).Msg("Profile updated")
	return profile, nil
}

// ExtractAndMerge parses a free-text user turn for profile facts and merges
// them in. Best-effort: when nothing parses, the profile is returned
// unchanged with a nil error.
func (s *Service) ExtractAndMerge(ctx context.Context, userID, text string) (*models.InvestorProfile, error) {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	changed := mergeExtracted(profile, extractFacts(text))
	if !changed {
		return profile, nil
	}

	if err := s.storage.ProfileStore().Save(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.Debug().Str("user_id", userID).Msg("Profile enriched from chat turn")
	return profile, nil
}

var _ interfaces.ProfileService = (*Service)(nil)

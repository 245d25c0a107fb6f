// Package portfolio owns suggestion acceptance, manual portfolio CRUD,
// investing, and export.
package portfolio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

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

// Accept turns a pending suggestion into a durable portfolio. The suggestion
// is consumed atomically, so two accepts of the same ID create exactly one
// portfolio; the loser gets models.ErrNotFound.
func (s *Service) Accept(ctx context.Context, userID, suggestionID, name, goal string) (*models.Portfolio, error) {
	if suggestionID == "" {
		return nil, fmt.Errorf("suggestion id is required: %w", models.ErrValidation)
	}

	suggestion, err := s.storage.SuggestionStore().Consume(ctx, userID, suggestionID)
	if err != nil {
		return nil, err
	}

	if err := models.ValidateAllocations(suggestion.Allocations); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), models.ErrValidation)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = "AI Portfolio " + time.Now().Format("Jan 2006")
	}

	now := time.Now().UTC()
	portfolio := &models.Portfolio{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            name,
		Goal:            strings.TrimSpace(goal),
		Type:            models.PortfolioTypeAI,
		RiskTolerance:   suggestion.RiskTolerance,
		ROIExpectations: suggestion.ROIExpectations,
		Allocations:     suggestion.Allocations,
		Holdings:        []models.Holding{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.storage.PortfolioStore().Save(ctx, portfolio); err != nil {
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("portfolio_id", portfolio.ID).
		Str("suggestion_id", suggestionID).
		Msg("Suggestion accepted into portfolio")
	return portfolio, nil
}

// Create builds a manual portfolio from the builder form.
func (s *Service) Create(ctx context.Context, userID string, input interfaces.CreatePortfolioInput) (*models.Portfolio, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("portfolio name is required: %w", models.ErrValidation)
	}
	switch input.RiskTolerance {
	case "", models.RiskConservative, models.RiskModerate, models.RiskAggressive:
	default:
		return nil, fmt.Errorf("unknown risk tolerance %q: %w", input.RiskTolerance, models.ErrValidation)
	}
	if err := models.ValidateAllocations(input.Allocations); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), models.ErrValidation)
	}

	now := time.Now().UTC()
	portfolio := &models.Portfolio{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            input.Name,
		Goal:            strings.TrimSpace(input.Goal),
		Type:            models.PortfolioTypeManual,
		RiskTolerance:   input.RiskTolerance,
		ROIExpectations: input.ROIExpectations,
		Allocations:     input.Allocations,
		Holdings:        []models.Holding{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.storage.PortfolioStore().Save(ctx, portfolio); err != nil {
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Str("portfolio_id", portfolio.ID).Msg("Manual portfolio created")
	return portfolio, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*models.Portfolio, error) {
	return s.storage.PortfolioStore().Get(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string) ([]*models.Portfolio, error) {
	return s.storage.PortfolioStore().List(ctx, userID)
}

// UpdateAllocations replaces a portfolio's target allocations. Holdings are
// untouched; rebalancing existing positions is the investor's call.
func (s *Service) UpdateAllocations(ctx context.Context, userID, id string, allocs []models.Allocation) (*models.Portfolio, error) {
	if err := models.ValidateAllocations(allocs); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), models.ErrValidation)
	}

	portfolio, err := s.storage.PortfolioStore().Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	portfolio.Allocations = allocs
	if err := s.storage.PortfolioStore().Save(ctx, portfolio); err != nil {
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}
	return portfolio, nil
}

// Invest records a cash contribution, split across holdings pro-rata by
// target allocation.
func (s *Service) Invest(ctx context.Context, userID, id string, amount float64) (*models.Portfolio, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("investment amount must be positive: %w", models.ErrValidation)
	}

	portfolio, err := s.storage.PortfolioStore().Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, alloc := range portfolio.Allocations {
		slice := amount * alloc.AllocationPct / 100
		idx := findHolding(portfolio.Holdings, alloc.Ticker)
		if idx < 0 {
			portfolio.Holdings = append(portfolio.Holdings, models.Holding{
				Ticker:      alloc.Ticker,
				Invested:    slice,
				LastUpdated: now,
			})
			continue
		}
		portfolio.Holdings[idx].Invested += slice
		portfolio.Holdings[idx].LastUpdated = now
	}

	portfolio.TotalInvested += amount
	portfolio.CurrentValue = portfolio.TotalInvested

	if err := s.storage.PortfolioStore().Save(ctx, portfolio); err != nil {
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("portfolio_id", id).
		Float64("amount", amount).
		Msg("Investment recorded")
	return portfolio, nil
}

// Delete removes a portfolio. The caller must echo the portfolio's exact
// name to confirm.
func (s *Service) Delete(ctx context.Context, userID, id, confirmName string) error {
	portfolio, err := s.storage.PortfolioStore().Get(ctx, userID, id)
	if err != nil {
		return err
	}

	if confirmName != portfolio.Name {
		return fmt.Errorf("confirmation name does not match portfolio name: %w", models.ErrValidation)
	}

	if err := s.storage.PortfolioStore().Delete(ctx, userID, id); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", userID).Str("portfolio_id", id).Msg("Portfolio deleted")
	return nil
}

func findHolding(holdings []models.Holding, ticker string) int {
	for i := range holdings {
		if holdings[i].Ticker == ticker {
			return i
		}
	}
	return -1
}

var _ interfaces.PortfolioService = (*Service)(nil)

package interfaces

import (
	"context"

	"github.com/bobmcallan/folio/internal/models"
)

// ProfileService accumulates investor context from conversation turns and
// serves it back as prompt context.
type ProfileService interface {
	Get(ctx context.Context, userID string) (*models.InvestorProfile, error)
	Update(ctx context.Context, profile *models.InvestorProfile) (*models.InvestorProfile, error)

	// ExtractAndMerge parses a free-text user turn for profile facts and
	// merges them in. Best-effort: when nothing parses, the profile is
	// returned unchanged with a nil error.
	ExtractAndMerge(ctx context.Context, userID, text string) (*models.InvestorProfile, error)

	// PromptContext serializes the profile (plus portfolio context when
	// scoped) into the textual block consumed by the suggestion engine.
	PromptContext(ctx context.Context, userID, portfolioID string) (string, error)
}

// ChatService owns the conversation log and suggestion orchestration.
type ChatService interface {
	// InitIfEmpty appends a one-time greeting for a fresh user. Returns nil
	// on every call after the first successful one.
	InitIfEmpty(ctx context.Context, userID string) (*models.ChatMessage, error)
	List(ctx context.Context, userID, portfolioID string) ([]*models.ChatMessage, error)
	Send(ctx context.Context, userID, portfolioID, text string) (*models.ChatReply, error)
	Reject(ctx context.Context, userID, suggestionID string) error
}

// CreatePortfolioInput carries the manual-builder fields.
type CreatePortfolioInput struct {
	Name            string              `json:"name"`
	Goal            string              `json:"goal"`
	RiskTolerance   string              `json:"risk_tolerance"`
	ROIExpectations float64             `json:"roi_expectations"`
	Allocations     []models.Allocation `json:"allocations"`
}

// PortfolioService owns acceptance, CRUD, investing, and export.
type PortfolioService interface {
	Accept(ctx context.Context, userID, suggestionID, name, goal string) (*models.Portfolio, error)
	Create(ctx context.Context, userID string, input CreatePortfolioInput) (*models.Portfolio, error)
	Get(ctx context.Context, userID, id string) (*models.Portfolio, error)
	List(ctx context.Context, userID string) ([]*models.Portfolio, error)
	UpdateAllocations(ctx context.Context, userID, id string, allocs []models.Allocation) (*models.Portfolio, error)
	Invest(ctx context.Context, userID, id string, amount float64) (*models.Portfolio, error)
	Delete(ctx context.Context, userID, id, confirmName string) error
	ExportCSV(ctx context.Context, userID, id string) ([]byte, error)
	ExportJSON(ctx context.Context, userID, id string) ([]byte, error)
	RenderAllocationChart(ctx context.Context, userID, id string) ([]byte, error)
}

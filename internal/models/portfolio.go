package models

import (
	"fmt"
	"math"
	"time"
)

// PortfolioType records how a portfolio was created.
type PortfolioType string

const (
	PortfolioTypeAI     PortfolioType = "ai"
	PortfolioTypeManual PortfolioType = "manual"
)

// AllocationSumTolerance is the absolute tolerance on the 100% allocation sum.
const AllocationSumTolerance = 0.1

// Allocation is a target percentage of portfolio value assigned to one ticker.
type Allocation struct {
	Ticker        string  `json:"ticker"`
	AllocationPct float64 `json:"allocation_percentage"`
	AssetType     string  `json:"asset_type,omitempty"`
	Sector        string  `json:"sector,omitempty"`
}

// Holding is a realized position, distinct from a target allocation.
// Tracked by invested dollars; unit counts would need a price feed.
type Holding struct {
	Ticker      string    `json:"ticker"`
	Invested    float64   `json:"invested"`
	LastUpdated time.Time `json:"last_updated"`
}

// Portfolio is a durable user portfolio, created either by accepting an AI
// suggestion or through the manual builder.
type Portfolio struct {
	ID              string        `json:"portfolio_id"`
	UserID          string        `json:"user_id"`
	Name            string        `json:"name"`
	Goal            string        `json:"goal,omitempty"`
	Type            PortfolioType `json:"type"`
	RiskTolerance   string        `json:"risk_tolerance,omitempty"`
	ROIExpectations float64       `json:"roi_expectations,omitempty"`
	Allocations     []Allocation  `json:"allocations"`
	Holdings        []Holding     `json:"holdings"`
	TotalInvested   float64       `json:"total_invested"`
	CurrentValue    float64       `json:"current_value"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// PortfolioSuggestion is an AI-proposed, not-yet-committed allocation set.
// Ephemeral: consumed on accept or reject.
type PortfolioSuggestion struct {
	ID     string `json:"suggestion_id"`
	UserID string `json:"user_id"`
	// PortfolioID records the chat scope the suggestion was minted in, so
	// follow-up turns land in the same thread.
	PortfolioID     string       `json:"portfolio_id,omitempty"`
	RiskTolerance   string       `json:"risk_tolerance,omitempty"`
	ROIExpectations float64      `json:"roi_expectations,omitempty"`
	Allocations     []Allocation `json:"allocations"`
	Rationale       string       `json:"rationale,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// ValidateAllocations checks an allocation set before persistence: at least
// one entry, non-empty tickers, positive percentages, and a total within
// 100 ± AllocationSumTolerance.
func ValidateAllocations(allocs []Allocation) error {
	if len(allocs) == 0 {
		return fmt.Errorf("at least one allocation is required")
	}

	sum := 0.0
	for i, a := range allocs {
		if a.Ticker == "" {
			return fmt.Errorf("allocation %d: ticker is required", i)
		}
		if a.AllocationPct <= 0 {
			return fmt.Errorf("allocation %s: percentage must be positive, got %.2f", a.Ticker, a.AllocationPct)
		}
		sum += a.AllocationPct
	}

	if math.Abs(sum-100.0) > AllocationSumTolerance {
		return fmt.Errorf("allocation percentages must sum to 100 (±%.1f), got %.2f", AllocationSumTolerance, sum)
	}
	return nil
}

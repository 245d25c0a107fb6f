package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/folio/internal/models"
)

// PromptContext serializes the user's accumulated profile (plus portfolio
// state when the conversation is scoped to one) into the textual block fed
// to the suggestion engine. Unknown fields render as "not yet known" so the
// engine asks for them instead of guessing.
func (s *Service) PromptContext(ctx context.Context, userID, portfolioID string) (string, error) {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Investor profile:\n")

	if profile.RiskTolerance != "" {
		fmt.Fprintf(&sb, "- Risk tolerance: %s\n", profile.RiskTolerance)
	} else {
		sb.WriteString("- Risk tolerance: not yet known\n")
	}

	if profile.ROIExpectations > 0 {
		fmt.Fprintf(&sb, "- Target annual return: %.1f%%\n", profile.ROIExpectations)
	} else {
		sb.WriteString("- Target annual return: not yet known\n")
	}

	if profile.TimeHorizonYears > 0 {
		fmt.Fprintf(&sb, "- Time horizon: %d years\n", profile.TimeHorizonYears)
	}

	if len(profile.LiquidityRequirements) > 0 {
		sb.WriteString("- Goals:\n")
		for _, g := range profile.LiquidityRequirements {
			fmt.Fprintf(&sb, "  - %s\n", g.Describe())
		}
	} else {
		sb.WriteString("- Goals: none recorded\n")
	}

	if len(profile.SectorPreferences) > 0 {
		fmt.Fprintf(&sb, "- Preferred sectors: %s\n", strings.Join(profile.SectorPreferences, ", "))
	}

	if portfolioID != "" {
		if err := s.appendPortfolioContext(ctx, &sb, userID, portfolioID); err != nil {
			return "", err
		}
	}

	return sb.String(), nil
}

func (s *Service) appendPortfolioContext(ctx context.Context, sb *strings.Builder, userID, portfolioID string) error {
	portfolio, err := s.storage.PortfolioStore().Get(ctx, userID, portfolioID)
	if err != nil {
		// A stale scope is not fatal; the engine just gets no portfolio block.
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return err
	}

	fmt.Fprintf(sb, "\nCurrent portfolio %q (goal: %s):\n", portfolio.Name, portfolio.Goal)
	for _, a := range portfolio.Allocations {
		fmt.Fprintf(sb, "- %s: %.1f%%", a.Ticker, a.AllocationPct)
		if a.Sector != "" {
			fmt.Fprintf(sb, " (%s)", a.Sector)
		}
		sb.WriteString("\n")
	}
	if portfolio.TotalInvested > 0 {
		fmt.Fprintf(sb, "- Total invested: $%.2f\n", portfolio.TotalInvested)
	}
	return nil
}

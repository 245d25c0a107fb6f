package chat

import (
	"encoding/json"
	"strings"

	"github.com/bobmcallan/folio/internal/models"
)

type suggestionPayload struct {
	RiskTolerance   string              `json:"risk_tolerance"`
	ROIExpectations float64             `json:"roi_expectations"`
	Allocations     []models.Allocation `json:"allocations"`
	Rationale       string              `json:"rationale"`
}

// parseSuggestion extracts a portfolio suggestion from the engine's reply.
// Returns the suggestion (nil when none was proposed or the JSON was
// malformed) and the narrative text with the JSON block removed. A nil
// suggestion with unclipped text means the reply renders as plain chat.
func parseSuggestion(raw string) (*models.PortfolioSuggestion, string) {
	block, narrative := extractJSONBlock(raw)
	if block == "" {
		return nil, strings.TrimSpace(raw)
	}

	var payload suggestionPayload
	if err := json.Unmarshal([]byte(block), &payload); err != nil {
		return nil, strings.TrimSpace(raw)
	}

	if err := models.ValidateAllocations(payload.Allocations); err != nil {
		return nil, strings.TrimSpace(raw)
	}

	suggestion := &models.PortfolioSuggestion{
		RiskTolerance:   payload.RiskTolerance,
		ROIExpectations: payload.ROIExpectations,
		Allocations:     payload.Allocations,
		Rationale:       payload.Rationale,
	}

	narrative = strings.TrimSpace(narrative)
	if narrative == "" {
		narrative = "Here's a portfolio suggestion based on what you've told me."
	}
	return suggestion, narrative
}

// extractJSONBlock finds the first fenced JSON block in the reply and
// returns it alongside the surrounding text. Falls back to treating the
// whole reply as JSON when it starts with a brace.
func extractJSONBlock(raw string) (block, rest string) {
	for _, fence := range []string{"```json", "```"} {
		start := strings.Index(raw, fence)
		if start < 0 {
			continue
		}
		after := raw[start+len(fence):]
		end := strings.Index(after, "```")
		if end < 0 {
			continue
		}
		candidate := strings.TrimSpace(after[:end])
		if !strings.HasPrefix(candidate, "{") {
			continue
		}
		rest = raw[:start] + after[end+3:]
		return candidate, rest
	}

	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return trimmed, ""
	}
	return "", raw
}

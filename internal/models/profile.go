package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Risk tolerance values for InvestorProfile.RiskTolerance.
const (
	RiskConservative = "conservative"
	RiskModerate     = "moderate"
	RiskAggressive   = "aggressive"
)

// Goal is one entry in a profile's liquidity requirements. Legacy records
// stored goals as plain strings; newer records store structured objects.
// UnmarshalJSON accepts both, so consumers only ever see the struct shape.
type Goal struct {
	Name         string   `json:"goal_name"`
	TargetAmount *float64 `json:"target_amount,omitempty"`
	Priority     string   `json:"priority,omitempty"`
}

// UnmarshalJSON normalizes a plain string entry into {goal_name: s}.
func (g *Goal) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		g.Name = s
		g.TargetAmount = nil
		g.Priority = ""
		return nil
	}

	type goalAlias Goal
	var a goalAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*g = Goal(a)
	return nil
}

// Describe returns a human-readable one-line description of the goal.
func (g Goal) Describe() string {
	var sb strings.Builder
	sb.WriteString(g.Name)
	if g.TargetAmount != nil {
		sb.WriteString(" (target $")
		sb.WriteString(trimFloat(*g.TargetAmount))
		sb.WriteString(")")
	}
	if g.Priority != "" {
		sb.WriteString(" [priority: ")
		sb.WriteString(g.Priority)
		sb.WriteString("]")
	}
	return sb.String()
}

// InvestorProfile is the accumulated per-user context used to personalize
// AI prompts. One mutable record per user, created at registration.
type InvestorProfile struct {
	UserID                string   `json:"user_id"`
	RiskTolerance         string   `json:"risk_tolerance,omitempty"`
	ROIExpectations       float64  `json:"roi_expectations,omitempty"` // target annual return %
	TimeHorizonYears      int      `json:"time_horizon_years,omitempty"`
	LiquidityRequirements []Goal   `json:"liquidity_requirements"`
	SectorPreferences     []string `json:"sector_preferences,omitempty"`
	FirstChatInitiated    bool     `json:"first_chat_initiated"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewInvestorProfile returns the default profile created at registration.
func NewInvestorProfile(userID string) *InvestorProfile {
	now := time.Now()
	return &InvestorProfile{
		UserID:                userID,
		LiquidityRequirements: []Goal{},
		FirstChatInitiated:    false,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

// HasGoal reports whether a goal with exactly this name (after trimming
// whitespace) is already recorded. Dedupe is exact-match only.
func (p *InvestorProfile) HasGoal(name string) bool {
	name = strings.TrimSpace(name)
	for _, g := range p.LiquidityRequirements {
		if strings.TrimSpace(g.Name) == name {
			return true
		}
	}
	return false
}

// HasSector reports whether a sector preference is already recorded
// (case-insensitive).
func (p *InvestorProfile) HasSector(sector string) bool {
	for _, s := range p.SectorPreferences {
		if strings.EqualFold(s, sector) {
			return true
		}
	}
	return false
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

package profile

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bobmcallan/folio/internal/models"
)

// extractedFacts is the result of scanning one user turn.
type extractedFacts struct {
	riskTolerance    string
	roiExpectations  float64
	timeHorizonYears int
	goals            []models.Goal
	sectors          []string
}

var (
	roiPattern     = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	horizonPattern = regexp.MustCompile(`(\d+)\s*(?:\-|\s)?\s*(?:years?|yrs?)\b`)
	amountPattern  = regexp.MustCompile(`\$\s*([\d,]+(?:\.\d+)?)\s*([kKmM])?`)
)

// riskKeywords maps mention phrases to canonical risk tolerance values.
// First match wins.
var riskKeywords = []struct {
	phrase string
	value  string
}{
	{"very conservative", models.RiskConservative},
	{"conservative", models.RiskConservative},
	{"low risk", models.RiskConservative},
	{"low-risk", models.RiskConservative},
	{"cautious", models.RiskConservative},
	{"risk averse", models.RiskConservative},
	{"moderate", models.RiskModerate},
	{"balanced", models.RiskModerate},
	{"medium risk", models.RiskModerate},
	{"aggressive", models.RiskAggressive},
	{"high risk", models.RiskAggressive},
	{"high-risk", models.RiskAggressive},
	{"risky", models.RiskAggressive},
}

// goalKeywords maps mention phrases to canonical goal names.
var goalKeywords = []struct {
	phrase string
	name   string
}{
	{"retirement", "Retirement planning"},
	{"retire", "Retirement planning"},
	{"house", "House purchase"},
	{"home", "House purchase"},
	{"down payment", "House purchase"},
	{"education", "Education"},
	{"college", "Education"},
	{"university", "Education"},
	{"emergency fund", "Emergency fund"},
	{"rainy day", "Emergency fund"},
	{"travel", "Travel"},
	{"vacation", "Travel"},
	{"wedding", "Wedding"},
}

// sectorKeywords maps mention phrases to canonical sector names.
var sectorKeywords = []struct {
	phrase string
	name   string
}{
	{"technology", "technology"},
	{"tech stocks", "technology"},
	{"tech companies", "technology"},
	{"healthcare", "healthcare"},
	{"health care", "healthcare"},
	{"pharma", "healthcare"},
	{"energy", "energy"},
	{"renewables", "energy"},
	{"financials", "finance"},
	{"finance", "finance"},
	{"banking", "finance"},
	{"real estate", "real estate"},
	{"property", "real estate"},
	{"consumer", "consumer"},
	{"utilities", "utilities"},
	{"industrials", "industrials"},
	{"materials", "materials"},
}

// extractFacts scans a user message for profile-relevant statements.
func extractFacts(text string) extractedFacts {
	lower := strings.ToLower(text)
	var facts extractedFacts

	for _, rk := range riskKeywords {
		if strings.Contains(lower, rk.phrase) {
			facts.riskTolerance = rk.value
			break
		}
	}

	// A percentage only counts as an ROI target when the turn talks about
	// returns; bare percentages ("put 60% in bonds") are allocation talk.
	if strings.Contains(lower, "return") || strings.Contains(lower, "roi") ||
		strings.Contains(lower, "grow") || strings.Contains(lower, "yield") {
		if m := roiPattern.FindStringSubmatch(lower); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 && v <= 100 {
				facts.roiExpectations = v
			}
		}
	}

	if m := horizonPattern.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v > 0 && v <= 80 {
			facts.timeHorizonYears = v
		}
	}

	target := extractAmount(lower)
	for _, gk := range goalKeywords {
		if strings.Contains(lower, gk.phrase) {
			goal := models.Goal{Name: gk.name}
			if target != nil {
				goal.TargetAmount = target
			}
			facts.goals = appendGoal(facts.goals, goal)
		}
	}

	for _, sk := range sectorKeywords {
		if strings.Contains(lower, sk.phrase) {
			facts.sectors = appendSector(facts.sectors, sk.name)
		}
	}

	return facts
}

func extractAmount(lower string) *float64 {
	m := amountPattern.FindStringSubmatch(lower)
	if m == nil {
		return nil
	}
	raw := strings.ReplaceAll(m[1], ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return nil
	}
	switch strings.ToLower(m[2]) {
	case "k":
		v *= 1_000
	case "m":
		v *= 1_000_000
	}
	return &v
}

func appendGoal(goals []models.Goal, goal models.Goal) []models.Goal {
	for _, g := range goals {
		if g.Name == goal.Name {
			return goals
		}
	}
	return append(goals, goal)
}

func appendSector(sectors []string, sector string) []string {
	for _, s := range sectors {
		if strings.EqualFold(s, sector) {
			return sectors
		}
	}
	return append(sectors, sector)
}

// mergeExtracted folds parsed facts into the profile. Scalars already set
// by the user are never overwritten from chat; list entries dedupe by
// exact goal name and case-insensitive sector. Returns whether anything
// changed.
func mergeExtracted(p *models.InvestorProfile, facts extractedFacts) bool {
	changed := false

	if facts.riskTolerance != "" && p.RiskTolerance == "" {
		p.RiskTolerance = facts.riskTolerance
		changed = true
	}
	if facts.roiExpectations > 0 && p.ROIExpectations == 0 {
		p.ROIExpectations = facts.roiExpectations
		changed = true
	}
	if facts.timeHorizonYears > 0 && p.TimeHorizonYears == 0 {
		p.TimeHorizonYears = facts.timeHorizonYears
		changed = true
	}

	for _, goal := range facts.goals {
		if !p.HasGoal(goal.Name) {
			p.LiquidityRequirements = append(p.LiquidityRequirements, goal)
			changed = true
		}
	}

	for _, sector := range facts.sectors {
		if !p.HasSector(sector) {
			p.SectorPreferences = append(p.SectorPreferences, sector)
			changed = true
		}
	}

	return changed
}

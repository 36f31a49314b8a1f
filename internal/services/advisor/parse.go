package advisor

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/bobmcallan/vanguard/internal/models"
)

// defaultSplit backfills a plan response that omits its allocation strategy.
var defaultSplit = models.AllocationSplit{Safe: 20, Growth: 60, Speculative: 20}

// defaultAssets backfills a plan response that omits its suggested assets.
func defaultAssets() *models.SuggestedAssets {
	return &models.SuggestedAssets{
		Safe:        []string{"FD/Bonds"},
		Growth:      []string{"ETFs"},
		Speculative: []string{"Crypto"},
	}
}

// analysisResponse is the expected JSON shape of an analysis.
type analysisResponse struct {
	Summary              *string  `json:"summary"`
	Recommendations      []string `json:"recommendations"`
	PortfolioSuggestions []string `json:"portfolio_suggestions"`
	RiskScore            *float64 `json:"risk_score"`
	DiversificationScore *float64 `json:"diversification_score"`
}

// planResponse is the expected JSON shape of a plan.
type planResponse struct {
	IsFeasible               *bool                             `json:"is_feasible"`
	FeasibilityScore         *float64                          `json:"feasibility_score"`
	ProjectedTotal           *float64                          `json:"projected_total"`
	YearlyData               []models.ProjectionYear           `json:"yearly_data"`
	ExecutiveSummary         string                            `json:"executive_summary"`
	Recommendations          []string                          `json:"recommendations"`
	ActionablePlan           []models.InvestmentRecommendation `json:"actionable_plan"`
	AllocationStrategy       *models.AllocationSplit           `json:"allocation_strategy"`
	SuggestedAssets          *models.SuggestedAssets           `json:"suggested_assets"`
	CurrentPortfolioAnalysis *alignmentResponse                `json:"current_portfolio_analysis"`
}

type alignmentResponse struct {
	AlignmentScore         *float64                `json:"alignment_score"`
	CurrentAllocation      *models.AllocationSplit `json:"current_allocation"`
	AlignmentAnalysis      string                  `json:"alignment_analysis"`
	RebalancingSuggestions []string                `json:"rebalancing_suggestions"`
}

// stripFences removes markdown code fences a model may wrap JSON in.
func stripFences(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}

// parseAnalysisResponse validates and normalizes an analysis response.
// The response must be a JSON object with a summary.
func parseAnalysisResponse(response string) (*models.AnalysisResult, error) {
	var data analysisResponse
	if err := json.Unmarshal([]byte(stripFences(response)), &data); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}
	if data.Summary == nil {
		return nil, fmt.Errorf("analysis response has no summary")
	}

	return &models.AnalysisResult{
		Summary:              *data.Summary,
		Recommendations:      nonNil(data.Recommendations),
		PortfolioSuggestions: nonNil(data.PortfolioSuggestions),
		RiskScore:            scoreOr(data.RiskScore, 50),
		DiversificationScore: scoreOr(data.DiversificationScore, 50),
	}, nil
}

// parsePlanResponse validates and normalizes a plan response. The response
// must be a JSON object with a projected total; every other field is
// backfilled with a safe default when omitted.
func parsePlanResponse(response string, in models.PlanInput) (*models.PlanResult, error) {
	var data planResponse
	if err := json.Unmarshal([]byte(stripFences(response)), &data); err != nil {
		return nil, fmt.Errorf("failed to parse plan response: %w", err)
	}
	if data.ProjectedTotal == nil {
		return nil, fmt.Errorf("plan response has no projected total")
	}

	total := *data.ProjectedTotal
	result := &models.PlanResult{
		ProjectedTotal:   total,
		ExecutiveSummary: data.ExecutiveSummary,
		YearlyData:       data.YearlyData,
		Recommendations:  nonNil(data.Recommendations),
		ActionablePlan:   data.ActionablePlan,
	}
	if result.YearlyData == nil {
		result.YearlyData = []models.ProjectionYear{}
	}
	if result.ActionablePlan == nil {
		result.ActionablePlan = []models.InvestmentRecommendation{}
	}

	if data.IsFeasible != nil {
		result.IsFeasible = *data.IsFeasible
	} else {
		result.IsFeasible = total >= in.TargetGoal
	}
	if data.FeasibilityScore != nil {
		result.FeasibilityScore = clampScore(*data.FeasibilityScore)
	} else {
		result.FeasibilityScore = feasibilityScore(total, in.TargetGoal)
	}

	split := defaultSplit
	if data.AllocationStrategy != nil {
		split = normalizeSplit(*data.AllocationStrategy, defaultSplit)
	}
	result.AllocationStrategy = &split

	result.SuggestedAssets = defaultAssets()
	if sa := data.SuggestedAssets; sa != nil {
		result.SuggestedAssets = &models.SuggestedAssets{
			Safe:        nonNil(sa.Safe),
			Growth:      nonNil(sa.Growth),
			Speculative: nonNil(sa.Speculative),
		}
	}

	if a := data.CurrentPortfolioAnalysis; a != nil && in.IncludeCurrentPortfolio {
		alignment := &models.PortfolioAlignment{
			AlignmentScore:         scoreOr(a.AlignmentScore, 0),
			AlignmentAnalysis:      a.AlignmentAnalysis,
			RebalancingSuggestions: nonNil(a.RebalancingSuggestions),
		}
		if a.CurrentAllocation != nil {
			alignment.CurrentAllocation = normalizeSplit(*a.CurrentAllocation, models.AllocationSplit{})
		}
		result.CurrentPortfolioAnalysis = alignment
	}

	return result, nil
}

// normalizeSplit clamps negative parts to zero and scales the split to sum
// to 100. A split with nothing positive in it is replaced by fallback.
func normalizeSplit(s, fallback models.AllocationSplit) models.AllocationSplit {
	s.Safe = math.Max(0, s.Safe)
	s.Growth = math.Max(0, s.Growth)
	s.Speculative = math.Max(0, s.Speculative)

	sum := s.Sum()
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return fallback
	}
	return models.AllocationSplit{
		Safe:        s.Safe / sum * 100,
		Growth:      s.Growth / sum * 100,
		Speculative: s.Speculative / sum * 100,
	}
}

// clampScore rounds v and bounds it to 0-100.
func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Min(100, math.Max(0, v))))
}

func scoreOr(v *float64, def int) int {
	if v == nil {
		return def
	}
	return clampScore(*v)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

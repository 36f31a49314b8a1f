package advisor

import (
	"fmt"
	"math"

	"github.com/bobmcallan/vanguard/internal/models"
	"github.com/bobmcallan/vanguard/internal/services/portfolio"
)

// Annual growth rates used by the local projection.
var fallbackRates = map[models.RiskProfile]float64{
	models.RiskConservative: 0.04,
	models.RiskModerate:     0.07,
	models.RiskAggressive:   0.10,
}

// fallbackStrategy is the allocation the local plan recommends.
var fallbackStrategy = models.AllocationSplit{Safe: 30, Growth: 50, Speculative: 20}

// rebalanceThreshold is the bucket drift in percentage points that earns a suggestion.
const rebalanceThreshold = 5.0

// FallbackAnalysis is the fixed analysis returned when the model is unavailable.
func FallbackAnalysis() *models.AnalysisResult {
	return &models.AnalysisResult{
		Summary: "Unable to connect to AI Advisor. Please verify your API key.",
		Recommendations: []string{
			"Maintain current positions until connection is restored.",
			"Monitor market news manually.",
		},
		PortfolioSuggestions: []string{
			"Review asset allocation manually.",
			"Check internet connection.",
		},
		RiskScore:            50,
		DiversificationScore: 50,
		Fallback:             true,
	}
}

// FallbackRate returns the annual growth rate assumed for a risk profile.
// Unknown profiles get the conservative rate.
func FallbackRate(r models.RiskProfile) float64 {
	if rate, ok := fallbackRates[r]; ok {
		return rate
	}
	return fallbackRates[models.RiskConservative]
}

// Project compounds the plan yearly: each year adds twelve monthly
// contributions, then grows the balance by rate.
func Project(in models.PlanInput, rate float64) []models.ProjectionYear {
	years := make([]models.ProjectionYear, 0, max(in.DurationYears, 0))
	value := in.InitialAmount
	invested := in.InitialAmount
	yearly := in.MonthlyContribution * 12

	for y := 1; y <= in.DurationYears; y++ {
		value = (value + yearly) * (1 + rate)
		invested += yearly
		years = append(years, models.ProjectionYear{Year: y, Invested: invested, Projected: value})
	}
	return years
}

// FallbackPlan computes a deterministic plan without the model.
func FallbackPlan(in models.PlanInput) *models.PlanResult {
	years := Project(in, FallbackRate(in.RiskProfile))
	total := in.InitialAmount
	if len(years) > 0 {
		total = years[len(years)-1].Projected
	}

	strategy := fallbackStrategy
	result := &models.PlanResult{
		IsFeasible:       total >= in.TargetGoal,
		FeasibilityScore: feasibilityScore(total, in.TargetGoal),
		ProjectedTotal:   total,
		YearlyData:       years,
		ExecutiveSummary: "Based on historical averages, your plan requires disciplined contributions. Consider diversifying to optimize returns.",
		Recommendations: []string{
			"Increase monthly contributions to secure goal.",
			"Review risk tolerance.",
		},
		AllocationStrategy: &strategy,
		SuggestedAssets: &models.SuggestedAssets{
			Safe:        []string{"Government Bonds", "Fixed Deposits (FD)"},
			Growth:      []string{"S&P 500 ETF", "Total World Stock ETF"},
			Speculative: []string{"Bitcoin", "Sector-specific ETFs"},
		},
		ActionablePlan: []models.InvestmentRecommendation{
			fallbackPosition("S&P 500 ETF", models.PlanCategoryStock, 0.5, in, "Core growth driver"),
			fallbackPosition("Government Bonds/FD", models.PlanCategoryFixedIncome, 0.3, in, "Stability and safety"),
			fallbackPosition("Bitcoin/Eth", models.PlanCategoryCrypto, 0.2, in, "High potential returns"),
		},
		Fallback: true,
	}

	if in.IncludeCurrentPortfolio && len(in.CurrentPortfolio) > 0 {
		result.CurrentPortfolioAnalysis = compareAllocation(in.CurrentPortfolio, strategy)
	}
	return result
}

// feasibilityScore is round(100 × total / goal) capped at 100. A non-positive
// goal is trivially met.
func feasibilityScore(total, goal float64) int {
	if goal <= 0 {
		return 100
	}
	return clampScore(100 * total / goal)
}

func fallbackPosition(name, category string, share float64, in models.PlanInput, rationale string) models.InvestmentRecommendation {
	return models.InvestmentRecommendation{
		AssetName:         name,
		Category:          category,
		InitialAllocation: in.InitialAmount * share,
		MonthlyAllocation: in.MonthlyContribution * share,
		Rationale:         rationale,
	}
}

// compareAllocation scores how close the linked portfolio's buckets are to
// target: 100 minus half the total absolute drift.
func compareAllocation(valued []models.ValuedHolding, target models.AllocationSplit) *models.PortfolioAlignment {
	current := portfolio.Buckets(portfolio.Allocate(valued))

	drift := []struct {
		bucket string
		diff   float64
	}{
		{"safe", current.Safe - target.Safe},
		{"growth", current.Growth - target.Growth},
		{"speculative", current.Speculative - target.Speculative},
	}

	l1 := 0.0
	suggestions := []string{}
	for _, d := range drift {
		l1 += math.Abs(d.diff)
		switch {
		case d.diff > rebalanceThreshold:
			suggestions = append(suggestions, fmt.Sprintf("Reduce %s allocation by %.0f%%.", d.bucket, d.diff))
		case d.diff < -rebalanceThreshold:
			suggestions = append(suggestions, fmt.Sprintf("Increase %s allocation by %.0f%%.", d.bucket, -d.diff))
		}
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, "Current allocation is within 5% of the target in every bucket.")
	}

	return &models.PortfolioAlignment{
		AlignmentScore:    clampScore(100 - l1/2),
		CurrentAllocation: current,
		AlignmentAnalysis: fmt.Sprintf(
			"Your portfolio is %.0f%% safe, %.0f%% growth and %.0f%% speculative against a target of %.0f/%.0f/%.0f.",
			current.Safe, current.Growth, current.Speculative,
			target.Safe, target.Growth, target.Speculative,
		),
		RebalancingSuggestions: suggestions,
	}
}

package models

// RiskProfile is the coarse risk setting used for prompts and fallback growth rates
type RiskProfile string

const (
	RiskConservative RiskProfile = "Conservative"
	RiskModerate     RiskProfile = "Moderate"
	RiskAggressive   RiskProfile = "Aggressive"
)

// ValidRiskProfile reports whether r is one of the three known profiles.
func ValidRiskProfile(r RiskProfile) bool {
	switch r {
	case RiskConservative, RiskModerate, RiskAggressive:
		return true
	}
	return false
}

// PlanInput holds the planner form values.
type PlanInput struct {
	InitialAmount           float64         `json:"initial_amount" validate:"gte=0,lte=1000000000000"`
	MonthlyContribution     float64         `json:"monthly_contribution" validate:"gte=0,lte=1000000000000"`
	TargetGoal              float64         `json:"target_goal" validate:"gt=0,lte=1000000000000"`
	DurationYears           int             `json:"duration_years" validate:"gte=1,lte=100"`
	RiskProfile             RiskProfile     `json:"risk_profile" validate:"required,oneof=Conservative Moderate Aggressive"`
	SafetyNet               float64         `json:"safety_net" validate:"gte=0,lte=1000000000000"`
	IncludeCurrentPortfolio bool            `json:"include_current_portfolio"`
	CurrentPortfolio        []ValuedHolding `json:"current_portfolio,omitempty" validate:"-"`
}

// ProjectionYear is one year of a projected plan.
type ProjectionYear struct {
	Year      int     `json:"year"`
	Invested  float64 `json:"invested"`
	Projected float64 `json:"projected"`
}

// Actionable-plan categories
const (
	PlanCategoryStock       = "Stock"
	PlanCategoryCrypto      = "Crypto"
	PlanCategoryFixedIncome = "Fixed Income"
	PlanCategoryCash        = "Cash"
)

// InvestmentRecommendation is a dollar-exact allocation to one named asset.
type InvestmentRecommendation struct {
	AssetName         string  `json:"asset_name"`
	Category          string  `json:"category"`
	InitialAllocation float64 `json:"initial_allocation"`
	MonthlyAllocation float64 `json:"monthly_allocation"`
	Rationale         string  `json:"rationale"`
}

// AllocationSplit is a percentage split across the three buckets.
// The parts are expected, not guaranteed, to sum to 100.
type AllocationSplit struct {
	Safe        float64 `json:"safe"`
	Growth      float64 `json:"growth"`
	Speculative float64 `json:"speculative"`
}

// Sum returns the total of the three parts.
func (a AllocationSplit) Sum() float64 {
	return a.Safe + a.Growth + a.Speculative
}

// SuggestedAssets names example assets for each bucket.
type SuggestedAssets struct {
	Safe        []string `json:"safe"`
	Growth      []string `json:"growth"`
	Speculative []string `json:"speculative"`
}

// PortfolioAlignment compares the user's current allocation with the plan.
type PortfolioAlignment struct {
	AlignmentScore         int             `json:"alignment_score"`
	CurrentAllocation      AllocationSplit `json:"current_allocation"`
	AlignmentAnalysis      string          `json:"alignment_analysis"`
	RebalancingSuggestions []string        `json:"rebalancing_suggestions"`
}

// PlanResult is the generated investment plan.
type PlanResult struct {
	IsFeasible               bool                       `json:"is_feasible"`
	FeasibilityScore         int                        `json:"feasibility_score"`
	ProjectedTotal           float64                    `json:"projected_total"`
	YearlyData               []ProjectionYear           `json:"yearly_data"`
	ExecutiveSummary         string                     `json:"executive_summary"`
	Recommendations          []string                   `json:"recommendations"`
	ActionablePlan           []InvestmentRecommendation `json:"actionable_plan"`
	AllocationStrategy       *AllocationSplit           `json:"allocation_strategy"`
	SuggestedAssets          *SuggestedAssets           `json:"suggested_assets"`
	CurrentPortfolioAnalysis *PortfolioAlignment        `json:"current_portfolio_analysis,omitempty"`
	Fallback                 bool                       `json:"fallback"`
}

// AnalysisResult is the AI portfolio analysis.
type AnalysisResult struct {
	Summary              string   `json:"summary"`
	Recommendations      []string `json:"recommendations"`
	PortfolioSuggestions []string `json:"portfolio_suggestions"`
	RiskScore            int      `json:"risk_score"`
	DiversificationScore int      `json:"diversification_score"`
	Fallback             bool     `json:"fallback"`
}

// AnalysisRequest carries the state embedded in an analysis prompt.
type AnalysisRequest struct {
	Holdings    []ValuedHolding `json:"holdings"`
	RiskProfile RiskProfile     `json:"risk_profile"`
	Indices     []MarketIndex   `json:"indices"`
	News        []NewsItem      `json:"news"`
}

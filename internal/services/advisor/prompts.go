package advisor

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/vanguard/internal/models"
)

// buildAnalysisPrompt creates the prompt for a portfolio analysis.
func buildAnalysisPrompt(req models.AnalysisRequest) string {
	var sb strings.Builder

	sb.WriteString("You are an experienced financial advisor reviewing a client's portfolio.\n\n")

	sb.WriteString("Market indices today:\n")
	for _, idx := range req.Indices {
		sb.WriteString(fmt.Sprintf("- %s: %s%%\n", idx.Name, signed(idx.Change)))
	}

	sb.WriteString("\nRecent headlines:\n")
	for _, n := range req.News {
		sb.WriteString(fmt.Sprintf("- %s (%s, %s)\n", n.Title, n.Source, n.Sentiment))
	}

	sb.WriteString(fmt.Sprintf("\nClient risk tolerance: %s\n", req.RiskProfile))

	sb.WriteString("\nClient holdings:\n")
	if len(req.Holdings) == 0 {
		sb.WriteString("- (none)\n")
	}
	for _, h := range req.Holdings {
		sb.WriteString(fmt.Sprintf("- %g units of %s (%s) worth $%.2f\n", h.Amount, h.Symbol, h.Category, h.Value))
	}

	sb.WriteString(`
Assess the portfolio against current market conditions and the client's risk tolerance.

Return a JSON object with:
- "summary": a short assessment of allocation health in light of the headlines
- "recommendations": 3-4 specific actions (buy, sell, hold or rebalance)
- "portfolio_suggestions": 2-3 concrete allocation changes, e.g. "Reduce crypto exposure by 5%"
- "risk_score": integer 0-100, where 100 is highest risk
- "diversification_score": integer 0-100, where 100 is fully diversified

Return ONLY the JSON object, no markdown code fences, no explanation`)

	return sb.String()
}

// buildPlanPrompt creates the prompt for an investment plan.
func buildPlanPrompt(in models.PlanInput) string {
	var sb strings.Builder

	sb.WriteString("You are a wealth planner producing a long-term investment projection.\n\n")
	sb.WriteString("Plan parameters:\n")
	sb.WriteString(fmt.Sprintf("- Initial investment: $%.2f\n", in.InitialAmount))
	sb.WriteString(fmt.Sprintf("- Monthly contribution: $%.2f\n", in.MonthlyContribution))
	sb.WriteString(fmt.Sprintf("- Target goal: $%.2f\n", in.TargetGoal))
	sb.WriteString(fmt.Sprintf("- Horizon: %d years\n", in.DurationYears))
	sb.WriteString(fmt.Sprintf("- Risk profile: %s\n", in.RiskProfile))
	sb.WriteString(fmt.Sprintf("- Safety net to keep in safe assets: $%.2f\n", in.SafetyNet))

	linked := in.IncludeCurrentPortfolio && len(in.CurrentPortfolio) > 0
	if linked {
		total := 0.0
		for _, h := range in.CurrentPortfolio {
			total += h.Value
		}
		sb.WriteString(fmt.Sprintf("\nThe client has linked an existing portfolio worth $%.2f:\n", total))
		for _, h := range in.CurrentPortfolio {
			sb.WriteString(fmt.Sprintf("- %s (%s): $%.2f\n", h.Symbol, h.Category, h.Value))
		}
	}

	sb.WriteString(`
Tasks:
1. Project the value year by year ("yearly_data": year, invested, projected).
2. Decide whether the target is reachable ("is_feasible", "feasibility_score" 0-100, "projected_total").
3. Propose a safe / growth / speculative split in percent ("allocation_strategy") and example assets for each ("suggested_assets").
4. Build an "actionable_plan" naming at least 3 distinct assets, each with the exact dollars taken from the initial investment ("initial_allocation") and from each monthly contribution ("monthly_allocation"), a category of Stock, Crypto, Fixed Income or Cash, and a one-line rationale. Use fixed deposits or bonds for safe money, stocks or ETFs for growth, crypto for speculation.
`)
	if linked {
		sb.WriteString(`5. Compare the linked portfolio with the proposed split in "current_portfolio_analysis" (alignment_score 0-100, current_allocation, alignment_analysis, rebalancing_suggestions).
`)
	}

	sb.WriteString(`
Constraints:
- "executive_summary" under 100 words
- at most 5 "recommendations"
- at most 5 names per "suggested_assets" list

Return ONLY the JSON object, no markdown code fences, no explanation`)

	return sb.String()
}

func signed(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%g", v)
	}
	return fmt.Sprintf("%g", v)
}

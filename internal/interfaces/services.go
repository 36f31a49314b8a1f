package interfaces

import (
	"context"

	"github.com/bobmcallan/vanguard/internal/models"
)

// AdvisorService produces AI portfolio analyses and investment plans.
// Neither method fails: transport or parse errors yield local fallbacks.
type AdvisorService interface {
	// AnalyzePortfolio reviews valued holdings against market context and risk profile
	AnalyzePortfolio(ctx context.Context, req models.AnalysisRequest) *models.AnalysisResult

	// GeneratePlan projects an investment plan for the given input
	GeneratePlan(ctx context.Context, input models.PlanInput) *models.PlanResult
}

// Package advisor produces AI portfolio analyses and investment plans,
// falling back to locally computed results whenever the completion call
// is unavailable or returns something unusable.
package advisor

import (
	"context"
	"time"

	"github.com/bobmcallan/vanguard/internal/common"
	"github.com/bobmcallan/vanguard/internal/interfaces"
	"github.com/bobmcallan/vanguard/internal/models"
)

// Compile-time interface check
var _ interfaces.AdvisorService = (*Service)(nil)

// Service implements AdvisorService
type Service struct {
	gemini interfaces.GeminiClient
	logger *common.Logger
}

// NewService creates a new advisor service. A nil client is valid: every
// request is then answered by the local fallback.
func NewService(gemini interfaces.GeminiClient, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		gemini: gemini,
		logger: logger,
	}
}

// AnalyzePortfolio asks the model for a portfolio analysis. It never fails;
// on any error the fixed fallback analysis is returned.
func (s *Service) AnalyzePortfolio(ctx context.Context, req models.AnalysisRequest) *models.AnalysisResult {
	if s.gemini == nil {
		s.logger.Debug().Msg("No advisor client configured, using fallback analysis")
		return FallbackAnalysis()
	}

	start := time.Now()
	response, err := s.gemini.GenerateJSON(ctx, buildAnalysisPrompt(req), analysisSchema())
	if err != nil {
		s.logger.Warn().Err(err).Msg("Portfolio analysis failed, using fallback")
		return FallbackAnalysis()
	}

	result, err := parseAnalysisResponse(response)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Portfolio analysis response rejected, using fallback")
		return FallbackAnalysis()
	}

	s.logger.Info().
		Int("holdings", len(req.Holdings)).
		Str("risk_profile", string(req.RiskProfile)).
		Int("risk_score", result.RiskScore).
		Dur("elapsed", time.Since(start)).
		Msg("Portfolio analysis generated")
	return result
}

// GeneratePlan asks the model for an investment plan. It never fails; on any
// error the deterministic projection from FallbackPlan is returned.
func (s *Service) GeneratePlan(ctx context.Context, in models.PlanInput) *models.PlanResult {
	if s.gemini == nil {
		s.logger.Debug().Msg("No advisor client configured, using fallback plan")
		return FallbackPlan(in)
	}

	start := time.Now()
	response, err := s.gemini.GenerateJSON(ctx, buildPlanPrompt(in), planSchema())
	if err != nil {
		s.logger.Warn().Err(err).Msg("Plan generation failed, using fallback")
		return FallbackPlan(in)
	}

	result, err := parsePlanResponse(response, in)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Plan response rejected, using fallback")
		return FallbackPlan(in)
	}

	s.logger.Info().
		Float64("target_goal", in.TargetGoal).
		Int("years", in.DurationYears).
		Bool("feasible", result.IsFeasible).
		Dur("elapsed", time.Since(start)).
		Msg("Investment plan generated")
	return result
}

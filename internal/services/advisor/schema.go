package advisor

import (
	"google.golang.org/genai"

	"github.com/bobmcallan/vanguard/internal/models"
)

func stringList() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
}

func splitSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"safe":        {Type: genai.TypeNumber},
			"growth":      {Type: genai.TypeNumber},
			"speculative": {Type: genai.TypeNumber},
		},
	}
}

// analysisSchema constrains the analysis response shape.
func analysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary":               {Type: genai.TypeString},
			"recommendations":       stringList(),
			"portfolio_suggestions": stringList(),
			"risk_score":            {Type: genai.TypeInteger},
			"diversification_score": {Type: genai.TypeInteger},
		},
		Required: []string{"summary"},
	}
}

// planSchema constrains the plan response shape.
func planSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"is_feasible":       {Type: genai.TypeBoolean},
			"feasibility_score": {Type: genai.TypeInteger},
			"projected_total":   {Type: genai.TypeNumber},
			"yearly_data": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"year":      {Type: genai.TypeInteger},
						"invested":  {Type: genai.TypeNumber},
						"projected": {Type: genai.TypeNumber},
					},
				},
			},
			"executive_summary":   {Type: genai.TypeString},
			"recommendations":     stringList(),
			"allocation_strategy": splitSchema(),
			"suggested_assets": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"safe":        stringList(),
					"growth":      stringList(),
					"speculative": stringList(),
				},
			},
			"actionable_plan": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"asset_name": {Type: genai.TypeString},
						"category": {
							Type: genai.TypeString,
							Enum: []string{
								models.PlanCategoryStock,
								models.PlanCategoryCrypto,
								models.PlanCategoryFixedIncome,
								models.PlanCategoryCash,
							},
						},
						"initial_allocation": {Type: genai.TypeNumber},
						"monthly_allocation": {Type: genai.TypeNumber},
						"rationale":          {Type: genai.TypeString},
					},
				},
			},
			"current_portfolio_analysis": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"alignment_score":         {Type: genai.TypeInteger},
					"current_allocation":      splitSchema(),
					"alignment_analysis":      {Type: genai.TypeString},
					"rebalancing_suggestions": stringList(),
				},
			},
		},
		Required: []string{"projected_total"},
	}
}

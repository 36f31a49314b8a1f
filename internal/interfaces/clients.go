// Package interfaces defines service contracts for Vanguard
package interfaces

import (
	"context"

	"google.golang.org/genai"
)

// GeminiClient provides access to the Gemini completion API
type GeminiClient interface {
	// GenerateJSON generates a JSON document constrained by schema
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

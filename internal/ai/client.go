package ai

import (
	"context"

	genai "github.com/google/generative-ai-go/genai"
)

// Generator is the upstream completion model. When schema is non-nil the
// model is constrained to emit JSON conforming to it.
type Generator interface {
	Generate(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
	GenerateVision(ctx context.Context, prompt string, image []byte, format string, schema *genai.Schema) (string, error)
}

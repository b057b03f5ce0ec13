package genai

import "context"

// Generator is the language-model capability consumed by the assistant core.
//
// Generate returns the raw model output for a prompt. No structural
// guarantee is made about the output; callers own all validation. The model
// is treated as adversarial input.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

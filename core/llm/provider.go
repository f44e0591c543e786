package llm

import "context"

// Generator produces free-form text from a prompt
type Generator interface {
	Generate(ctx context.Context, system string, prompt string) (string, error)
}

// StructuredGenerator produces output constrained to JSON.
// Callers validate the returned string against their own schema.
type StructuredGenerator interface {
	GenerateJSON(ctx context.Context, system string, prompt string) (string, error)
}

// GenerateFunc adapts a function to the Generator interface
type GenerateFunc func(ctx context.Context, system string, prompt string) (string, error)

func (f GenerateFunc) Generate(ctx context.Context, system string, prompt string) (string, error) {
	return f(ctx, system, prompt)
}

// GenerateJSONFunc adapts a function to the StructuredGenerator interface
type GenerateJSONFunc func(ctx context.Context, system string, prompt string) (string, error)

func (f GenerateJSONFunc) GenerateJSON(ctx context.Context, system string, prompt string) (string, error) {
	return f(ctx, system, prompt)
}

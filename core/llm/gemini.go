package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the model used for grading, rewriting and generation
const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini is a Generator and StructuredGenerator backed by the Gemini API
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGemini creates a Gemini provider. An empty model selects
// DefaultGeminiModel.
func NewGemini(ctx context.Context, apiKey string, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{
		client:      client,
		model:       model,
		temperature: 0.7,
	}, nil
}

// Generate produces free-form text for the prompt
func (g *Gemini) Generate(ctx context.Context, system string, prompt string) (string, error) {
	return g.generate(ctx, system, prompt, "")
}

// GenerateJSON produces output with the JSON response MIME type set, so the
// model is constrained to emit a single JSON value
func (g *Gemini) GenerateJSON(ctx context.Context, system string, prompt string) (string, error) {
	return g.generate(ctx, system, prompt, "application/json")
}

func (g *Gemini) generate(ctx context.Context, system string, prompt string, responseMIMEType string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if responseMIMEType != "" {
		config.ResponseMIMEType = responseMIMEType
	}

	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		config,
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	return strings.TrimSpace(resp.Text()), nil
}

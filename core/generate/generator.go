package generate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BasmaFrajElhadi/unirag/core/llm"
	"github.com/BasmaFrajElhadi/unirag/model"
)

const answerPrompt = `You are an expert on Egyptian public universities.
Use the following document excerpts to answer the user query.
Do not make assumptions; only provide information present in the documents.

Document Context:
%s

Instructions:
- Answer clearly and concisely.
- Include any relevant details like faculty names, contact info, admission requirements, or location if available in the context.
- Keep your answer in a readable paragraph format.`

// Generator produces the final grounded answer from filtered context
type Generator struct {
	generator llm.Generator
	retries   int
	log       *slog.Logger
}

// NewGenerator creates an answer generator. retries is the number of
// additional attempts after the first generation failure.
func NewGenerator(generator llm.Generator, retries int, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if retries < 0 {
		retries = 0
	}
	return &Generator{
		generator: generator,
		retries:   retries,
		log:       logger,
	}
}

// Generate produces an answer grounded in the given context, citing only
// sources present in it. An empty context short-circuits to the fixed
// insufficient-information answer without invoking the model, so the model
// is never asked to answer ungrounded. The provenance is stamped by the
// caller, which knows which pipeline branch produced the context.
func (g *Generator) Generate(ctx context.Context, query string, sources []model.Source, provenance model.Provenance) (*model.Answer, error) {
	if len(sources) == 0 {
		return model.InsufficientAnswer(), nil
	}

	contextParts := make([]string, 0, len(sources))
	sourceIDs := make([]string, 0, len(sources))
	for _, source := range sources {
		if source.Text != "" {
			contextParts = append(contextParts, source.Text)
		}
		sourceIDs = append(sourceIDs, source.ID)
	}

	system := fmt.Sprintf(answerPrompt, strings.Join(contextParts, "\n\n"))

	var text string
	var err error
	for attempt := 0; attempt <= g.retries; attempt++ {
		text, err = g.generator.Generate(ctx, system, query)
		if err == nil && strings.TrimSpace(text) != "" {
			break
		}
		if err == nil {
			err = fmt.Errorf("empty generation output")
		}
		g.log.Warn("answer generation attempt failed",
			slog.Int("attempt", attempt+1), slog.Any("error", err))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrGenerationFailure, err)
	}

	if provenance == model.ProvenanceFallback || provenance == model.ProvenanceMixed {
		text = model.FallbackPreamble + text
	}

	return &model.Answer{
		Text:       text,
		Sources:    sourceIDs,
		Provenance: provenance,
	}, nil
}

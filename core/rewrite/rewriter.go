package rewrite

import (
	"context"
	"log/slog"
	"strings"

	"github.com/BasmaFrajElhadi/unirag/core/keywords"
	"github.com/BasmaFrajElhadi/unirag/core/llm"
)

const rewritePrompt = `You are a query rewriter that converts user questions into short, direct search queries.
Rules:
- Output only the rewritten query text (no explanations or extra sentences)
- Keep it under 15 words
- Focus on clarity and relevant keywords only`

// Rewriter reformulates underspecified queries into retrieval-friendly ones
type Rewriter struct {
	generator llm.Generator
	log       *slog.Logger
}

// NewRewriter creates a query rewriter on top of a generator
func NewRewriter(generator llm.Generator, logger *slog.Logger) *Rewriter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Rewriter{
		generator: generator,
		log:       logger,
	}
}

// Rewrite returns an improved form of the query. It must not fail the
// pipeline: on any error the original query is returned unchanged.
func (r *Rewriter) Rewrite(ctx context.Context, query string) string {
	if r.generator == nil {
		return query
	}

	prompt := "Here is the initial question:\n\n" + query + "\nFormulate an improved question."
	rewritten, err := r.generator.Generate(ctx, rewritePrompt, prompt)
	if err != nil {
		r.log.Warn("query rewrite failed, using original query", slog.Any("error", err))
		return query
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return query
	}
	return rewritten
}

// Compress reduces a query to its top n keywords for the web fallback
func (r *Rewriter) Compress(query string, n int) string {
	return keywords.Compress(query, n)
}

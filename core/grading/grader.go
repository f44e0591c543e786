package grading

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/BasmaFrajElhadi/unirag/core/llm"
	"github.com/BasmaFrajElhadi/unirag/model"
)

const gradePrompt = `You are a grader assessing the relevance of a retrieved document to a user question about Egyptian public universities.
If the document contains keywords or semantic meaning related to the question, grade it as relevant.
Answer with a JSON object matching exactly this schema:
{"binary_score": "yes" or "no", "rationale": "one short sentence"}`

const strictGradePrompt = gradePrompt + `
Your previous output did not parse. Respond with ONLY the JSON object, no markdown fences, no surrounding text.`

// gradeSchema is the structured output contract of one grading call
type gradeSchema struct {
	BinaryScore string `json:"binary_score"`
	Rationale   string `json:"rationale"`
}

// Grader classifies retrieved chunks as relevant or irrelevant to a query
type Grader struct {
	generator llm.StructuredGenerator
	log       *slog.Logger
}

// NewGrader creates a relevance grader on top of a structured generator
func NewGrader(generator llm.StructuredGenerator, logger *slog.Logger) *Grader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Grader{
		generator: generator,
		log:       logger,
	}
}

// Grade classifies one chunk. A failed call or unparseable output gets one
// retry: the stricter prompt when there was output that did not parse, the
// original prompt when the call itself failed. A second failure defaults to
// irrelevant, so unparseable judgments trigger fallback instead of being
// trusted.
func (g *Grader) Grade(ctx context.Context, query string, chunk *model.Chunk) model.GradeResult {
	prompt := fmt.Sprintf("Retrieved document:\n\n%s\n\nUser question: %s", chunk.Content, query)

	retryPrompt := strictGradePrompt
	raw, err := g.generator.GenerateJSON(ctx, gradePrompt, prompt)
	if err != nil {
		// No output to correct, so the strict re-ask would mislead
		// the model about a previous answer.
		retryPrompt = gradePrompt
		g.log.Warn("grading call failed, retrying",
			slog.String("chunk_rid", chunk.RID.String()), slog.Any("error", err))
	} else {
		verdict, parseErr := parseVerdict(raw)
		if parseErr == nil {
			return model.GradeOk(verdict)
		}
		g.log.Warn("grading output failed to parse, retrying with strict prompt",
			slog.String("chunk_rid", chunk.RID.String()), slog.Any("error", parseErr))
	}

	raw, retryErr := g.generator.GenerateJSON(ctx, retryPrompt, prompt)
	if retryErr != nil {
		return model.GradeParseError(fmt.Errorf("%w: %w", model.ErrGradingParse, retryErr))
	}

	verdict, parseErr := parseVerdict(raw)
	if parseErr != nil {
		return model.GradeParseError(fmt.Errorf("%w: %w", model.ErrGradingParse, parseErr))
	}
	return model.GradeOk(verdict)
}

// GradeAll grades chunks concurrently with the given bound and returns one
// GradedChunk per input chunk, in input order. Grading is independent per
// chunk; a cancelled or expired context defaults all pending verdicts to
// irrelevant instead of raising.
func (g *Grader) GradeAll(ctx context.Context, query string, chunks []*model.Chunk, concurrency int) []model.GradedChunk {
	if concurrency <= 0 {
		concurrency = 1
	}

	graded := make([]model.GradedChunk, len(chunks))
	semaphore := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk *model.Chunk) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				graded[i] = model.GradedChunk{Chunk: chunk, Relevant: false, Rationale: "grading timed out"}
				return
			}

			if ctx.Err() != nil {
				graded[i] = model.GradedChunk{Chunk: chunk, Relevant: false, Rationale: "grading timed out"}
				return
			}

			result := g.Grade(ctx, query, chunk)
			graded[i] = model.GradedChunk{
				Chunk:     chunk,
				Relevant:  result.Verdict.Relevant,
				Rationale: result.Verdict.Rationale,
			}
		}(i, chunk)
	}
	wg.Wait()

	return graded
}

// parseVerdict validates raw model output against the grading schema
func parseVerdict(raw string) (model.GradeVerdict, error) {
	raw = stripFences(raw)

	var parsed gradeSchema
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return model.GradeVerdict{}, fmt.Errorf("invalid grading json: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(parsed.BinaryScore)) {
	case "yes":
		return model.GradeVerdict{Relevant: true, Rationale: parsed.Rationale}, nil
	case "no":
		return model.GradeVerdict{Relevant: false, Rationale: parsed.Rationale}, nil
	default:
		return model.GradeVerdict{}, fmt.Errorf("binary_score must be yes or no, got %q", parsed.BinaryScore)
	}
}

// stripFences removes a surrounding markdown code fence if present
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(raw, "```")
	}
	return strings.TrimSpace(raw)
}

package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/BasmaFrajElhadi/unirag/core/websearch"
	"github.com/BasmaFrajElhadi/unirag/model"
)

// Retriever is the retrieval collaborator of the engine
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int, threshold float64) ([]*model.RetrievalResult, error)
}

// Grader is the relevance grading collaborator of the engine
type Grader interface {
	GradeAll(ctx context.Context, query string, chunks []*model.Chunk, concurrency int) []model.GradedChunk
}

// Rewriter is the query rewriting collaborator of the engine
type Rewriter interface {
	Rewrite(ctx context.Context, query string) string
	Compress(query string, n int) string
}

// Generator is the answer generation collaborator of the engine
type Generator interface {
	Generate(ctx context.Context, query string, sources []model.Source, provenance model.Provenance) (*model.Answer, error)
}

// History receives the completed query/answer pair after a terminal state
type History interface {
	Append(ctx context.Context, query model.Query, answer *model.Answer) error
}

// Engine is the corrective RAG pipeline orchestrator. Per query it runs
//
//	START -> REWRITE (optional) -> RETRIEVE -> GRADE -> DECIDE
//	      -> {GENERATE_LOCAL | FALLBACK_SEARCH -> GENERATE_FALLBACK}
//	      -> DONE | FAILED
//
// Every external call runs under a bounded timeout; a timed out or failed
// stage yields an empty stage result instead of aborting the query. Engines
// hold no per-query state, so one engine can serve concurrent queries.
type Engine struct {
	retriever Retriever
	grader    Grader
	rewriter  Rewriter
	fallback  websearch.Provider
	generator Generator
	history   History
	sinks     []Sink
	config    model.PipelineConfig
	log       *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithRewriter sets the query rewriting collaborator
func WithRewriter(rewriter Rewriter) Option {
	return func(e *Engine) { e.rewriter = rewriter }
}

// WithFallback sets the web search fallback provider
func WithFallback(provider websearch.Provider) Option {
	return func(e *Engine) { e.fallback = provider }
}

// WithHistory sets the chat history collaborator
func WithHistory(history History) Option {
	return func(e *Engine) { e.history = history }
}

// WithSinks sets the trace sinks
func WithSinks(sinks ...Sink) Option {
	return func(e *Engine) { e.sinks = sinks }
}

// WithLogger sets the engine logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.log = logger }
}

// NewEngine creates a pipeline engine. The configuration is passed in
// explicitly so tests can run with mocked collaborators and deterministic
// settings.
func NewEngine(retriever Retriever, grader Grader, generator Generator, config model.PipelineConfig, opts ...Option) *Engine {
	e := &Engine{
		retriever: retriever,
		grader:    grader,
		generator: generator,
		config:    config,
		log:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Answer runs the full pipeline for one query. It always returns a
// well-formed answer and trace; stage failures degrade the result but are
// never surfaced as errors. On caller cancellation the partial trace is
// discarded, not persisted.
func (e *Engine) Answer(ctx context.Context, query model.Query) (*model.Answer, *model.AnswerTrace) {
	trace := model.NewAnswerTrace(query)

	query = e.rewriteStage(ctx, query, trace)

	retrieved := e.retrieveStage(ctx, query, trace)

	var relevant []model.GradedChunk
	if len(retrieved) > 0 {
		relevant = e.gradeStage(ctx, query, retrieved, trace)
	}

	useLocal := len(relevant) >= e.config.RelevanceThreshold
	e.addStage(trace, model.StageDecide, time.Now(), model.Metadata{
		"relevant_count":      len(relevant),
		"relevance_threshold": e.config.RelevanceThreshold,
		"local":               useLocal,
	}, nil)

	sources := make([]model.Source, 0, len(relevant))
	for _, graded := range relevant {
		sources = append(sources, model.Source{
			ID:   graded.Chunk.RID.String(),
			Text: graded.Chunk.Content,
		})
	}

	provenance := model.ProvenanceLocal
	if !useLocal {
		fallbackResults := e.fallbackStage(ctx, query, trace)
		for _, result := range fallbackResults {
			sources = append(sources, model.Source{
				ID:   result.SourceURL,
				Text: result.Snippet,
			})
		}

		switch {
		case len(relevant) > 0 && len(fallbackResults) > 0:
			provenance = model.ProvenanceMixed
		case len(fallbackResults) > 0:
			provenance = model.ProvenanceFallback
		case len(relevant) > 0:
			// Fallback came back empty but some chunks passed the
			// gate, so the answer is still locally grounded.
			provenance = model.ProvenanceLocal
		default:
			provenance = model.ProvenanceNone
		}
	}

	answer, failed := e.generateStage(ctx, query, sources, provenance, trace)

	terminal := model.StageDone
	if failed {
		terminal = model.StageFailed
	}
	e.addStage(trace, terminal, time.Now(), nil, nil)
	trace.Finish(answer)

	if ctx.Err() != nil {
		// Caller cancelled: abandon the query without persisting the
		// partial trace or the answer.
		return answer, trace
	}

	e.emitTrace(trace)
	e.appendHistory(query, answer)

	return answer, trace
}

// rewriteStage optionally rewrites the query before retrieval. Rewriting
// never fails the pipeline; without a rewriter or in off mode the query
// passes through unchanged.
func (e *Engine) rewriteStage(ctx context.Context, query model.Query, trace *model.AnswerTrace) model.Query {
	if e.rewriter == nil || e.config.RewriteMode == model.RewriteOff {
		return query
	}
	if e.config.RewriteMode == model.RewriteAuto && !ambiguous(query.Raw) {
		return query
	}

	started := time.Now()
	stageCtx, cancel := context.WithTimeout(ctx, e.config.RewriteTimeout)
	defer cancel()

	rewritten := e.rewriter.Rewrite(stageCtx, query.Raw)
	if rewritten != query.Raw {
		query = query.WithRewritten(rewritten)
		trace.RewrittenQuery = rewritten
	}

	e.addStage(trace, model.StageRewrite, started, model.Metadata{
		"rewritten": query.Rewritten != "",
	}, nil)

	return query
}

// retrieveStage performs similarity search. An unavailable or timed out
// chunk store is treated as zero retrieved chunks.
func (e *Engine) retrieveStage(ctx context.Context, query model.Query, trace *model.AnswerTrace) []*model.RetrievalResult {
	started := time.Now()
	stageCtx, cancel := context.WithTimeout(ctx, e.config.RetrieveTimeout)
	defer cancel()

	retrieved, err := e.retriever.Retrieve(stageCtx, query.Text(), e.config.TopK, e.config.SimilarityThreshold)
	if err != nil {
		e.log.Warn("retrieval unavailable, treating as zero chunks",
			slog.String("query_id", query.ID.String()), slog.Any("error", err))
		e.addStage(trace, model.StageRetrieve, started, model.Metadata{"chunk_count": 0}, model.ErrRetrievalUnavailable)
		return nil
	}

	chunkIDs := make([]string, len(retrieved))
	for i, result := range retrieved {
		chunkIDs[i] = result.Chunk.RID.String()
	}
	e.addStage(trace, model.StageRetrieve, started, model.Metadata{
		"chunk_count": len(retrieved),
		"chunk_rids":  chunkIDs,
	}, nil)

	return retrieved
}

// gradeStage grades every retrieved chunk and returns the relevant ones
func (e *Engine) gradeStage(ctx context.Context, query model.Query, retrieved []*model.RetrievalResult, trace *model.AnswerTrace) []model.GradedChunk {
	started := time.Now()
	stageCtx, cancel := context.WithTimeout(ctx, e.config.GradeTimeout)
	defer cancel()

	chunks := make([]*model.Chunk, len(retrieved))
	for i, result := range retrieved {
		chunks[i] = result.Chunk
	}

	graded := e.grader.GradeAll(stageCtx, query.Text(), chunks, e.config.GradeConcurrency)

	verdicts := make(model.Metadata, len(graded))
	var relevant []model.GradedChunk
	for _, gradedChunk := range graded {
		verdicts[gradedChunk.Chunk.RID.String()] = gradedChunk.Relevant
		if gradedChunk.Relevant {
			relevant = append(relevant, gradedChunk)
		}
	}

	e.addStage(trace, model.StageGrade, started, model.Metadata{
		"verdicts":       verdicts,
		"relevant_count": len(relevant),
	}, nil)

	return relevant
}

// fallbackStage runs the web search fallback. Provider errors and empty
// results are treated identically: generation proceeds with whatever
// context is available.
func (e *Engine) fallbackStage(ctx context.Context, query model.Query, trace *model.AnswerTrace) []websearch.Result {
	started := time.Now()
	trace.FallbackUsed = true

	if e.fallback == nil {
		e.addStage(trace, model.StageFallbackSearch, started, model.Metadata{"result_count": 0}, model.ErrFallbackUnavailable)
		return nil
	}

	stageCtx, cancel := context.WithTimeout(ctx, e.config.FallbackTimeout)
	defer cancel()

	searchQuery := query.Text()
	if e.rewriter != nil && e.config.FallbackKeywords > 0 {
		searchQuery = e.rewriter.Compress(searchQuery, e.config.FallbackKeywords)
	}

	results, err := e.fallback.Search(stageCtx, searchQuery)
	if err != nil {
		e.log.Warn("fallback search unavailable, proceeding with empty context",
			slog.String("query_id", query.ID.String()), slog.Any("error", err))
		e.addStage(trace, model.StageFallbackSearch, started, model.Metadata{"result_count": 0}, model.ErrFallbackUnavailable)
		return nil
	}

	e.addStage(trace, model.StageFallbackSearch, started, model.Metadata{
		"search_query": searchQuery,
		"result_count": len(results),
	}, nil)

	return results
}

// generateStage produces the final answer. Failed generation after the
// retry budget yields the insufficient-information answer and marks the
// query FAILED rather than surfacing a partial or garbled answer.
func (e *Engine) generateStage(ctx context.Context, query model.Query, sources []model.Source, provenance model.Provenance, trace *model.AnswerTrace) (*model.Answer, bool) {
	started := time.Now()
	stageCtx, cancel := context.WithTimeout(ctx, e.config.GenerateTimeout)
	defer cancel()

	answer, err := e.generator.Generate(stageCtx, query.Raw, sources, provenance)
	if err != nil {
		e.log.Error("answer generation failed",
			slog.String("query_id", query.ID.String()), slog.Any("error", err))
		e.addStage(trace, model.StageGenerate, started, nil, model.ErrGenerationFailure)
		return model.InsufficientAnswer(), true
	}

	e.addStage(trace, model.StageGenerate, started, model.Metadata{
		"provenance":   string(answer.Provenance),
		"source_count": len(answer.Sources),
	}, nil)

	return answer, false
}

func (e *Engine) addStage(trace *model.AnswerTrace, stage model.Stage, started time.Time, detail model.Metadata, err error) {
	trace.AddStage(stage, started, detail, err)
	e.log.Debug("pipeline stage finished",
		slog.String("query_id", trace.QueryID.String()),
		slog.String("stage", string(stage)))
}

// appendHistory stores the completed query/answer pair. History failures
// are logged, never propagated.
func (e *Engine) appendHistory(query model.Query, answer *model.Answer) {
	if e.history == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.history.Append(ctx, query, answer); err != nil && !errors.Is(err, context.Canceled) {
		e.log.Warn("appending chat history failed",
			slog.String("query_id", query.ID.String()), slog.Any("error", err))
	}
}

// ambiguous is the heuristic for auto rewrite mode: very short queries and
// queries without any university-domain term are considered underspecified
func ambiguous(query string) bool {
	if len(strings.Fields(query)) <= 3 {
		return true
	}

	lower := strings.ToLower(query)
	for _, term := range []string{
		"university", "faculty", "admission", "tuition", "college",
		"campus", "degree", "program", "scholarship",
	} {
		if strings.Contains(lower, term) {
			return false
		}
	}
	return true
}

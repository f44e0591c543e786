package unirag

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/BasmaFrajElhadi/unirag/core/engine"
	"github.com/BasmaFrajElhadi/unirag/core/generate"
	"github.com/BasmaFrajElhadi/unirag/core/grading"
	"github.com/BasmaFrajElhadi/unirag/core/llm"
	"github.com/BasmaFrajElhadi/unirag/core/pipeline"
	"github.com/BasmaFrajElhadi/unirag/core/retrieval"
	"github.com/BasmaFrajElhadi/unirag/core/rewrite"
	"github.com/BasmaFrajElhadi/unirag/core/websearch"
	"github.com/BasmaFrajElhadi/unirag/database"
	"github.com/BasmaFrajElhadi/unirag/helper"
	"github.com/BasmaFrajElhadi/unirag/model"
	loadSql "github.com/BasmaFrajElhadi/unirag/sql"
)

// Options configures a UniRAG instance beyond the database connection
type Options struct {
	// GoogleAPIKey enables the Gemini-backed grader, rewriter and
	// generator. Without it the answer pipeline is unavailable and only
	// ingestion and search work.
	GoogleAPIKey string
	// GeminiModel overrides the default Gemini model
	GeminiModel string
	// GroqAPIKey enables the web search fallback
	GroqAPIKey string
	// Pipeline holds the answer pipeline tunables; zero value selects
	// model.DefaultPipelineConfig()
	Pipeline *model.PipelineConfig
	// EmbeddingDim is the dimension of the chunk embeddings; zero selects
	// the default embedder's dimension
	EmbeddingDim int
}

// UniRAG provides a unified interface to the corrective RAG system for
// Egyptian public universities: the knowledge base handlers, the ingestion
// pipeline and the answer engine
type UniRAG struct {
	DB        *helper.Database
	Documents *database.DocumentsDBHandler
	Chunks    *database.ChunksDBHandler
	History   *database.HistoryDBHandler
	Traces    *database.TracesDBHandler
	Pipeline  *pipeline.Pipeline // Optional chunking/embedding pipeline
	Engine    *engine.Engine     // Answer pipeline, nil without an API key
	// Logging
	log *slog.Logger
}

// New creates a UniRAG instance with all handlers initialized
func New(ctx context.Context, config *helper.DatabaseConfiguration, opts Options) (*UniRAG, error) {
	// Logger
	handlerOpts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, handlerOpts))

	// Initialize database
	db := helper.NewDatabase("unirag", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	embeddingDim := opts.EmbeddingDim
	if embeddingDim == 0 {
		embeddingDim = pipeline.EmbeddingDim
	}

	// Create all handlers in the correct order (documents first, then chunks)
	// force=false to not reload if functions already exist
	documents, err := database.NewDocumentsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create documents handler", err)
	}

	chunks, err := database.NewChunksDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	history, err := database.NewHistoryDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create history handler", err)
	}

	traces, err := database.NewTracesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create traces handler", err)
	}

	u := &UniRAG{
		DB:        db,
		Documents: documents,
		Chunks:    chunks,
		History:   history,
		Traces:    traces,
		log:       logger,
	}

	pipelineConfig := model.DefaultPipelineConfig()
	if opts.Pipeline != nil {
		pipelineConfig = *opts.Pipeline
	}

	if opts.GoogleAPIKey != "" {
		if err := u.UseDefaultPipeline(); err != nil {
			return nil, err
		}

		gemini, err := llm.NewGemini(ctx, opts.GoogleAPIKey, opts.GeminiModel)
		if err != nil {
			return nil, helper.NewError("create gemini provider", err)
		}

		engineOpts := []engine.Option{
			engine.WithRewriter(rewrite.NewRewriter(gemini, logger)),
			engine.WithHistory(history),
			engine.WithSinks(&engine.SlogSink{Logger: logger}, &engine.DBSink{Writer: traces, Logger: logger}),
			engine.WithLogger(logger),
		}

		if opts.GroqAPIKey != "" {
			groq, err := websearch.NewGroqProvider(opts.GroqAPIKey)
			if err != nil {
				return nil, helper.NewError("create groq provider", err)
			}
			engineOpts = append(engineOpts, engine.WithFallback(groq))
		}

		u.Engine = engine.NewEngine(
			retrieval.NewRetriever(chunks, u.Pipeline.Embedder, logger),
			grading.NewGrader(gemini, logger),
			generate.NewGenerator(gemini, pipelineConfig.GenerateRetries, logger),
			pipelineConfig,
			engineOpts...,
		)
	}

	return u, nil
}

// Close closes the database connection
func (u *UniRAG) Close() error {
	if u.DB != nil && u.DB.Instance != nil {
		return u.DB.Instance.Close()
	}
	return nil
}

// SetPipeline sets the ingestion pipeline for document processing
func (u *UniRAG) SetPipeline(p *pipeline.Pipeline) {
	u.Pipeline = p
}

// UseDefaultPipeline sets up the default section chunking and local
// embedding pipeline (all-MiniLM-L6-v2, 384 dimensions)
func (u *UniRAG) UseDefaultPipeline() error {
	if u.Pipeline != nil {
		return nil
	}

	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	u.Pipeline = pipeline.NewPipeline(pipeline.DefaultChunker(), embedder)
	return nil
}

// IngestDocument processes a scraped university page by:
// 1. Inserting the document metadata (without content)
// 2. Processing the content into embedded chunks using the pipeline
// 3. Inserting all chunks with the document ID
// Returns the number of chunks inserted and any error encountered.
func (u *UniRAG) IngestDocument(doc *model.Document) (int, error) {
	if u.Pipeline == nil {
		return 0, helper.NewError("ingest document", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}

	if doc.Content == "" {
		return 0, helper.NewError("ingest document", fmt.Errorf("document content is empty"))
	}

	// Store content temporarily and clear it before DB insert
	content := doc.Content
	doc.Content = ""

	if err := u.Documents.InsertDocument(doc); err != nil {
		return 0, helper.NewError("insert document", err)
	}

	u.log.Info("Inserted document",
		slog.String("document_rid", doc.RID.String()),
		slog.String("university", doc.University),
		slog.String("title", doc.Title))

	doc.Content = content
	chunks, err := u.Pipeline.Process(doc)
	doc.Content = ""
	if err != nil {
		return 0, helper.NewError("process chunks", err)
	}

	u.log.Info("Processed document into chunks",
		slog.Int("num_chunks", len(chunks)),
		slog.String("document_rid", doc.RID.String()))

	for i, chunk := range chunks {
		chunk.DocumentID = doc.ID
		if err := u.Chunks.InsertChunk(chunk); err != nil {
			return i, helper.NewError(fmt.Sprintf("insert chunk %d", i), err)
		}
	}

	return len(chunks), nil
}

// Search performs vector similarity search over the knowledge base
func (u *UniRAG) Search(ctx context.Context, query string, topK int, threshold float64) ([]*model.RetrievalResult, error) {
	if u.Pipeline == nil || u.Pipeline.Embedder == nil {
		return nil, helper.NewError("vector search", fmt.Errorf("pipeline with embedder not set, use SetPipeline() first"))
	}

	retriever := retrieval.NewRetriever(u.Chunks, u.Pipeline.Embedder, u.log)
	return retriever.Retrieve(ctx, query, topK, threshold)
}

// Answer runs the corrective RAG pipeline for a single question
func (u *UniRAG) Answer(ctx context.Context, question string) (*model.Answer, *model.AnswerTrace, error) {
	if u.Engine == nil {
		return nil, nil, helper.NewError("answer", fmt.Errorf("engine not initialized, a Google API key is required"))
	}

	answer, trace := u.Engine.Answer(ctx, model.NewQuery(question))
	return answer, trace, nil
}

// AnswerInSession runs the pipeline for a question within a chat session,
// so the query/answer pair lands in that session's history
func (u *UniRAG) AnswerInSession(ctx context.Context, sessionID string, question string) (*model.Answer, *model.AnswerTrace, error) {
	if u.Engine == nil {
		return nil, nil, helper.NewError("answer", fmt.Errorf("engine not initialized, a Google API key is required"))
	}

	answer, trace := u.Engine.Answer(ctx, model.NewSessionQuery(sessionID, question))
	return answer, trace, nil
}

// NewSessionID generates a fresh chat session id
func (u *UniRAG) NewSessionID() string {
	return database.NewSessionID()
}

// RecentTraces returns the most recent persisted pipeline traces
func (u *UniRAG) RecentTraces(limit int) ([]*database.StoredTrace, error) {
	return u.Traces.SelectRecentTraces(limit)
}

// TracesForQuery returns the persisted traces of one query
func (u *UniRAG) TracesForQuery(queryID uuid.UUID) ([]*database.StoredTrace, error) {
	return u.Traces.SelectTracesByQuery(queryID)
}

// ChangeIndexType changes the vector index type between HNSW and IVFFlat
func (u *UniRAG) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	return u.Chunks.ChangeIndexType(ctx, indexType, params)
}

package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BasmaFrajElhadi/unirag/core/pipeline"
	"github.com/BasmaFrajElhadi/unirag/model"
)

// ChunkStore is the boundary to the vector store. The retriever depends
// only on this contract, not on a specific storage engine. Implementations
// must be safe for concurrent read access.
type ChunkStore interface {
	SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*model.Chunk, error)
}

// Retriever embeds a query and performs similarity search over the chunk store
type Retriever struct {
	store ChunkStore
	embed pipeline.EmbedFunc
	log   *slog.Logger
}

// NewRetriever creates a retriever over a chunk store and an embedder
func NewRetriever(store ChunkStore, embed pipeline.EmbedFunc, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Retriever{
		store: store,
		embed: embed,
		log:   logger,
	}
}

// Retrieve returns the top-k chunks most similar to the query, ordered by
// descending similarity and filtered by the similarity threshold
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, threshold float64) ([]*model.RetrievalResult, error) {
	if r.store == nil || r.embed == nil {
		return nil, fmt.Errorf("%w: retriever needs a chunk store and an embedder", model.ErrRetrievalUnavailable)
	}

	embedding, err := r.embed(query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", model.ErrRetrievalUnavailable, err)
	}

	chunks, err := r.store.SelectChunksBySimilarity(ctx, embedding, topK, threshold)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrRetrievalUnavailable, err)
	}

	results := make([]*model.RetrievalResult, len(chunks))
	for i, chunk := range chunks {
		similarity := 0.0
		if chunk.Similarity != nil {
			similarity = *chunk.Similarity
		}
		results[i] = &model.RetrievalResult{
			Chunk:      chunk,
			Similarity: similarity,
		}
	}

	r.log.Debug("retrieved chunks", slog.Int("count", len(results)), slog.String("query", query))

	return results, nil
}

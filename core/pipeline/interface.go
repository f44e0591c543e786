package pipeline

import (
	"fmt"

	"github.com/BasmaFrajElhadi/unirag/model"
)

// ChunkFunc is a function that splits cleaned document text into ordered chunks
type ChunkFunc func(text string) ([]ChunkCandidate, error)

// EmbedFunc is a function that generates a fixed-length embedding for text.
// Implementations must be deterministic for identical input and safe for
// concurrent read access.
type EmbedFunc func(text string) ([]float32, error)

// ChunkCandidate represents a chunk produced by a chunker before embedding
type ChunkCandidate struct {
	Content    string
	SectionTag string
	ChunkIndex int
	Metadata   map[string]interface{}
}

// Pipeline combines chunking and embedding for document ingestion
type Pipeline struct {
	Chunker  ChunkFunc
	Embedder EmbedFunc
}

// NewPipeline creates a new ingestion pipeline
func NewPipeline(chunker ChunkFunc, embedder EmbedFunc) *Pipeline {
	return &Pipeline{
		Chunker:  chunker,
		Embedder: embedder,
	}
}

// Process splits a document's content into chunks, embeds each chunk and
// stamps the document's source metadata onto it. The document itself is
// not modified.
func (p *Pipeline) Process(doc *model.Document) ([]*model.Chunk, error) {
	if p.Chunker == nil || p.Embedder == nil {
		return nil, fmt.Errorf("pipeline needs both a chunker and an embedder")
	}

	candidates, err := p.Chunker(doc.Content)
	if err != nil {
		return nil, err
	}

	chunks := make([]*model.Chunk, 0, len(candidates))
	for _, candidate := range candidates {
		embedding, err := p.Embedder(candidate.Content)
		if err != nil {
			return nil, err
		}

		index := candidate.ChunkIndex
		chunks = append(chunks, &model.Chunk{
			Content:    candidate.Content,
			SourceURL:  doc.SourceURL,
			University: doc.University,
			SectionTag: candidate.SectionTag,
			Embedding:  embedding,
			ChunkIndex: &index,
			Metadata:   candidate.Metadata,
		})
	}

	return chunks, nil
}

// EmbedQuery embeds a query string with the pipeline's embedder
func (p *Pipeline) EmbedQuery(query string) ([]float32, error) {
	if p.Embedder == nil {
		return nil, fmt.Errorf("pipeline has no embedder")
	}
	return p.Embedder(query)
}

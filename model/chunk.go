package model

import (
	"time"

	"github.com/google/uuid"
)

// Chunk represents a retrievable unit of source text from a university page.
// Chunks are created once during ingestion and read-only afterwards.
type Chunk struct {
	ID         int       `json:"id"`
	RID        uuid.UUID `json:"rid"`
	DocumentID int64     `json:"document_id"`
	Content    string    `json:"content"`
	SourceURL  string    `json:"source_url"`
	University string    `json:"university"`
	SectionTag string    `json:"section_tag,omitempty"`
	Embedding  []float32 `json:"embedding,omitempty"`
	ChunkIndex *int      `json:"chunk_index,omitempty"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	// Result-only, set by similarity search
	Similarity *float64 `json:"similarity,omitempty"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Document represents one scraped and cleaned university source page.
// The Content field is only used during ingestion and not stored in the
// database; the chunks carry the retrievable text.
type Document struct {
	ID         int64     `json:"id"`
	RID        uuid.UUID `json:"rid"`
	Title      string    `json:"title"`
	SourceURL  string    `json:"source_url"`
	University string    `json:"university"`
	Content    string    `json:"content,omitempty" db:"-"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

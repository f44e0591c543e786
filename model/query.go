package model

import (
	"time"

	"github.com/google/uuid"
)

// Query represents a single user question. It is immutable once created;
// a rewritten form is attached via WithRewritten which returns a copy.
type Query struct {
	ID        uuid.UUID `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Raw       string    `json:"raw"`
	Rewritten string    `json:"rewritten,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewQuery creates a query with a fresh id
func NewQuery(text string) Query {
	return Query{
		ID:        uuid.New(),
		Raw:       text,
		CreatedAt: time.Now(),
	}
}

// NewSessionQuery creates a query bound to a chat session
func NewSessionQuery(sessionID string, text string) Query {
	q := NewQuery(text)
	q.SessionID = sessionID
	return q
}

// WithRewritten returns a copy of the query with the rewritten form set
func (q Query) WithRewritten(rewritten string) Query {
	q.Rewritten = rewritten
	return q
}

// Text returns the rewritten form if present, otherwise the raw text
func (q Query) Text() string {
	if q.Rewritten != "" {
		return q.Rewritten
	}
	return q.Raw
}

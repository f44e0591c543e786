package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewQuery(t *testing.T) {
	t.Run("Assigns a fresh id and timestamp", func(t *testing.T) {
		query := NewQuery("What are the tuition fees?")

		assert.NotEqual(t, uuid.Nil, query.ID)
		assert.Equal(t, "What are the tuition fees?", query.Raw)
		assert.Empty(t, query.SessionID)
		assert.False(t, query.CreatedAt.IsZero())
	})

	t.Run("Session query carries its session id", func(t *testing.T) {
		query := NewSessionQuery("session_123", "any question")

		assert.Equal(t, "session_123", query.SessionID)
		assert.Equal(t, "any question", query.Raw)
	})
}

func TestWithRewritten(t *testing.T) {
	t.Run("Returns a copy and leaves the original untouched", func(t *testing.T) {
		original := NewQuery("how do I get in?")

		rewritten := original.WithRewritten("cairo university admission requirements")

		assert.Empty(t, original.Rewritten, "Expected the original query to stay unmodified")
		assert.Equal(t, "cairo university admission requirements", rewritten.Rewritten)
		assert.Equal(t, original.ID, rewritten.ID, "Expected the copy to keep the query id")
	})
}

func TestText(t *testing.T) {
	t.Run("Prefers the rewritten form", func(t *testing.T) {
		query := NewQuery("how do I get in?").WithRewritten("admission requirements")

		assert.Equal(t, "admission requirements", query.Text())
	})

	t.Run("Falls back to the raw text", func(t *testing.T) {
		query := NewQuery("how do I get in?")

		assert.Equal(t, "how do I get in?", query.Text())
	})
}

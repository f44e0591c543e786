package websearch

import "context"

// Result is one web search result used as fallback grounding
type Result struct {
	Snippet   string `json:"snippet"`
	SourceURL string `json:"source_url"`
}

// Provider is a live web search used only when local retrieval fails the
// relevance gate. Implementations must bound result count and latency;
// the engine treats provider errors and empty results identically.
type Provider interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// SearchFunc adapts a function to the Provider interface
type SearchFunc func(ctx context.Context, query string) ([]Result, error)

func (f SearchFunc) Search(ctx context.Context, query string) ([]Result, error) {
	return f(ctx, query)
}

package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
)

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	defaultGroqModel   = "groq/compound"
	defaultMaxResults  = 5
)

// GroqProvider performs web search through Groq's compound model via its
// OpenAI-compatible chat completions endpoint
type GroqProvider struct {
	apiKey     string
	baseURL    string
	model      string
	maxResults int
	client     *http.Client
}

// GroqOption configures a GroqProvider
type GroqOption func(*GroqProvider)

// WithGroqBaseURL overrides the API base URL (used in tests)
func WithGroqBaseURL(baseURL string) GroqOption {
	return func(p *GroqProvider) {
		p.baseURL = baseURL
	}
}

// WithGroqModel overrides the model name
func WithGroqModel(model string) GroqOption {
	return func(p *GroqProvider) {
		p.model = model
	}
}

// WithMaxResults bounds the number of returned results
func WithMaxResults(n int) GroqOption {
	return func(p *GroqProvider) {
		p.maxResults = n
	}
}

// NewGroqProvider creates a Groq-backed web search provider
func NewGroqProvider(apiKey string, opts ...GroqOption) (*GroqProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("groq api key is required")
	}

	provider := &GroqProvider{
		apiKey:     apiKey,
		baseURL:    defaultGroqBaseURL,
		model:      defaultGroqModel,
		maxResults: defaultMaxResults,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(provider)
	}

	return provider, nil
}

type groqRequest struct {
	Model    string    `json:"model"`
	Messages []groqMsg `json:"messages"`
	Stream   bool      `json:"stream"`
}

type groqMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

var urlPattern = regexp.MustCompile(`https?://[^\s)\]>"']+`)

// Search asks the compound model to search the web for the query. The
// model's answer becomes the first result's snippet; links it cites become
// additional results so they can be surfaced as sources.
func (p *GroqProvider) Search(ctx context.Context, query string) ([]Result, error) {
	endpoint := strings.TrimRight(p.baseURL, "/") + "/chat/completions"
	reqBody := groqRequest{
		Model:    p.model,
		Messages: []groqMsg{{Role: "user", Content: query}},
		Stream:   false,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("groq request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var out groqResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("groq response has no choices")
	}

	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return nil, nil
	}

	var links []string
	seen := map[string]bool{}
	for _, url := range urlPattern.FindAllString(content, -1) {
		url = strings.TrimRight(url, ".,;")
		if seen[url] {
			continue
		}
		seen[url] = true
		links = append(links, url)
	}

	// The snippet cites the first link the model used; without any cited
	// links a websearch: placeholder keeps the source id from being
	// mistaken for a chunk id or a real URL.
	snippetURL := "websearch:" + p.model
	if len(links) > 0 {
		snippetURL = links[0]
		links = links[1:]
	}

	results := []Result{{Snippet: content, SourceURL: snippetURL}}
	for _, url := range links {
		if len(results) >= p.maxResults {
			break
		}
		results = append(results, Result{SourceURL: url})
	}

	return results, nil
}

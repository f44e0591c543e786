package model

import "time"

// RewriteMode controls when the query rewriter runs before retrieval
type RewriteMode string

const (
	// RewriteOff never rewrites before retrieval; the rewriter is still
	// used to compress the query before web fallback
	RewriteOff RewriteMode = "off"
	// RewriteAuto rewrites only queries the ambiguity heuristic flags
	RewriteAuto RewriteMode = "auto"
	// RewriteAlways rewrites every query before retrieval
	RewriteAlways RewriteMode = "always"
)

// PipelineConfig holds all tunables of the answer pipeline.
// It is passed explicitly into the engine constructor so tests can run
// with mocked collaborators and deterministic settings.
type PipelineConfig struct {
	// Retrieval parameters
	TopK                int     `json:"top_k"`
	SimilarityThreshold float64 `json:"similarity_threshold"`

	// Relevance gate: minimum count of graded-relevant chunks required
	// to answer from the local knowledge base
	RelevanceThreshold int `json:"relevance_threshold"`

	// Query rewriting
	RewriteMode RewriteMode `json:"rewrite_mode"`

	// Keyword compression of the query before web fallback
	FallbackKeywords int `json:"fallback_keywords"`

	// Per-stage timeouts; a stage exceeding its timeout is treated as
	// empty/failed, not as a crash
	RewriteTimeout  time.Duration `json:"rewrite_timeout"`
	RetrieveTimeout time.Duration `json:"retrieve_timeout"`
	GradeTimeout    time.Duration `json:"grade_timeout"`
	FallbackTimeout time.Duration `json:"fallback_timeout"`
	GenerateTimeout time.Duration `json:"generate_timeout"`

	// Concurrency bound for fan-out grading of retrieved chunks
	GradeConcurrency int `json:"grade_concurrency"`

	// Additional generation attempts after the first failure
	GenerateRetries int `json:"generate_retries"`
}

// DefaultPipelineConfig returns a sensible default configuration
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		TopK:                5,
		SimilarityThreshold: 0.7,
		RelevanceThreshold:  1,
		RewriteMode:         RewriteAuto,
		FallbackKeywords:    10,
		RewriteTimeout:      5 * time.Second,
		RetrieveTimeout:     5 * time.Second,
		GradeTimeout:        10 * time.Second,
		FallbackTimeout:     8 * time.Second,
		GenerateTimeout:     15 * time.Second,
		GradeConcurrency:    5,
		GenerateRetries:     1,
	}
}

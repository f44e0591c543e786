package model

import "errors"

// Stage-local error taxonomy. All of these are absorbed by the engine and
// converted into explicit empty or degraded stage results; none of them
// escapes the Answer call.
var (
	// ErrRetrievalUnavailable marks an unreachable or timed out chunk
	// store; treated as zero retrieved chunks
	ErrRetrievalUnavailable = errors.New("chunk store unavailable")

	// ErrGradingParse marks grading output that failed schema validation
	// after the retry; the chunk defaults to irrelevant
	ErrGradingParse = errors.New("grading output failed schema validation")

	// ErrFallbackUnavailable marks a web search provider error or
	// timeout; the pipeline proceeds with empty fallback context
	ErrFallbackUnavailable = errors.New("fallback search unavailable")

	// ErrGenerationFailure marks an exhausted generation retry budget;
	// surfaced as a failed answer with provenance none
	ErrGenerationFailure = errors.New("answer generation failed")
)

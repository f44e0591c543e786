package model

import (
	"time"

	"github.com/google/uuid"
)

// Stage names the steps of the answer pipeline
type Stage string

const (
	StageRewrite        Stage = "rewrite"
	StageRetrieve       Stage = "retrieve"
	StageGrade          Stage = "grade"
	StageDecide         Stage = "decide"
	StageFallbackSearch Stage = "fallback_search"
	StageGenerate       Stage = "generate"
	StageDone           Stage = "done"
	StageFailed         Stage = "failed"
)

// StageRecord is the trace entry for one executed pipeline stage
type StageRecord struct {
	Stage     Stage         `json:"stage"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Detail    Metadata      `json:"detail,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// AnswerTrace is the ordered record of every stage executed for one query.
// It is owned by the engine for the duration of the query and handed to the
// trace sinks and chat history once the query reaches a terminal stage.
type AnswerTrace struct {
	QueryID        uuid.UUID     `json:"query_id"`
	SessionID      string        `json:"session_id,omitempty"`
	Query          string        `json:"query"`
	RewrittenQuery string        `json:"rewritten_query,omitempty"`
	Stages         []StageRecord `json:"stages"`
	FallbackUsed   bool          `json:"fallback_used"`
	FinalSources   []string      `json:"final_sources,omitempty"`
	Provenance     Provenance    `json:"provenance,omitempty"`
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     time.Time     `json:"finished_at"`
}

// NewAnswerTrace creates a trace for a query
func NewAnswerTrace(query Query) *AnswerTrace {
	return &AnswerTrace{
		QueryID:   query.ID,
		SessionID: query.SessionID,
		Query:     query.Raw,
		StartedAt: time.Now(),
	}
}

// AddStage appends a stage record and returns it for further detail
func (t *AnswerTrace) AddStage(stage Stage, startedAt time.Time, detail Metadata, err error) {
	record := StageRecord{
		Stage:     stage,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Detail:    detail,
	}
	if err != nil {
		record.Error = err.Error()
	}
	t.Stages = append(t.Stages, record)
}

// HasStage reports whether the given stage was executed
func (t *AnswerTrace) HasStage(stage Stage) bool {
	for _, record := range t.Stages {
		if record.Stage == stage {
			return true
		}
	}
	return false
}

// StageIndex returns the position of the first record of the given stage,
// or -1 if the stage was not executed
func (t *AnswerTrace) StageIndex(stage Stage) int {
	for i, record := range t.Stages {
		if record.Stage == stage {
			return i
		}
	}
	return -1
}

// Finish stamps the terminal state of the trace
func (t *AnswerTrace) Finish(answer *Answer) {
	t.FinishedAt = time.Now()
	if answer != nil {
		t.FinalSources = answer.Sources
		t.Provenance = answer.Provenance
	}
}

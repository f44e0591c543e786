package model

// GradeVerdict is the structured output of one relevance grading call
type GradeVerdict struct {
	Relevant  bool   `json:"relevant"`
	Rationale string `json:"rationale,omitempty"`
}

// GradeResult is a tagged parse result of a grading call.
// Either the verdict parsed (Ok) or it did not (ParseErr set), in which
// case the verdict defaults to irrelevant so unparseable judgments are
// never trusted.
type GradeResult struct {
	Verdict  GradeVerdict
	ParseErr error
}

// GradeOk creates a successfully parsed grade result
func GradeOk(verdict GradeVerdict) GradeResult {
	return GradeResult{Verdict: verdict}
}

// GradeParseError creates a failed-parse grade result with the
// fail-closed irrelevant verdict
func GradeParseError(err error) GradeResult {
	return GradeResult{
		Verdict:  GradeVerdict{Relevant: false, Rationale: "grading output could not be parsed"},
		ParseErr: err,
	}
}

// Ok reports whether the grading output parsed against the schema
func (r GradeResult) Ok() bool {
	return r.ParseErr == nil
}

// GradedChunk is a chunk with its relevance verdict stamped on.
// The verdict lives here and not on the Chunk to keep chunks immutable.
type GradedChunk struct {
	Chunk     *Chunk `json:"chunk"`
	Relevant  bool   `json:"relevant"`
	Rationale string `json:"rationale,omitempty"`
}

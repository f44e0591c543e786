package model

// Source is one unit of grounding context handed to the answer generator:
// a gate-passed chunk or a fallback search result
type Source struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

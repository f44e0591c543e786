package model

// Provenance indicates where an answer's grounding came from
type Provenance string

const (
	ProvenanceLocal    Provenance = "local"
	ProvenanceFallback Provenance = "fallback"
	ProvenanceMixed    Provenance = "mixed"
	ProvenanceNone     Provenance = "none"
)

// InsufficientInformationText is the fixed answer returned when neither the
// knowledge base nor the web fallback produced any usable context
const InsufficientInformationText = "I'm sorry, I don't have enough information to answer that question about Egyptian public universities."

// FallbackPreamble prefixes answers generated from web search results
// instead of the local knowledge base
const FallbackPreamble = "I couldn't get any data from the documents I had, so I searched the internet and this is what I found:\n\n"

// Answer is the final grounded answer for one query
type Answer struct {
	Text       string     `json:"text"`
	Sources    []string   `json:"sources,omitempty"`
	Provenance Provenance `json:"provenance"`
}

// InsufficientAnswer returns the fixed insufficient-information answer
// with no sources and provenance none
func InsufficientAnswer() *Answer {
	return &Answer{
		Text:       InsufficientInformationText,
		Provenance: ProvenanceNone,
	}
}

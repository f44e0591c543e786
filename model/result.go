package model

// RetrievalResult represents a chunk retrieved for a query,
// ordered by descending similarity
type RetrievalResult struct {
	Chunk      *Chunk  `json:"chunk"`
	Similarity float64 `json:"similarity"`
}

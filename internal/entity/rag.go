package entity

// RAGSearchRequest is sent to a remote retrieval service
type RAGSearchRequest struct {
	Query    string `json:"query"`
	Category string `json:"category,omitempty"`
	TopK     int    `json:"top_k"`
}

type RAGPassage struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type RAGSearchResponse struct {
	Passages []RAGPassage `json:"passages"`
}

// Passage is an indexed chunk stored in the vector table
type Passage struct {
	ID         string
	Source     string
	Category   *Category
	Page       int
	ChunkIndex int
	Text       string
	Embedding  []float32
}

package embedding

import "context"

// Embedder turns queries and passages into vectors of Dimensions length
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

var (
	_ Embedder = &GeminiEmbedder{}
	_ Embedder = &MockEmbedder{}
)

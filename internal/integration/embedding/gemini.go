package embedding

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Dimensions of text-embedding-004 vectors, matching the passages table
const Dimensions = 768

// maxBatch is the Gemini limit of contents per batch request
const maxBatch = 100

// GeminiEmbedder turns text into vectors with a Gemini embedding model
type GeminiEmbedder struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

func NewGeminiEmbedder(client *genai.Client, model string, logger *zap.Logger) *GeminiEmbedder {
	return &GeminiEmbedder{
		client: client,
		model:  model,
		logger: logger,
	}
}

// EmbedQuery embeds a search query
func (e *GeminiEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	em := e.client.EmbeddingModel(e.model)
	em.TaskType = genai.TaskTypeRetrievalQuery

	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embed query: empty embedding")
	}

	return res.Embedding.Values, nil
}

// EmbedDocuments embeds passages for indexing, preserving input order
func (e *GeminiEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	em := e.client.EmbeddingModel(e.model)
	em.TaskType = genai.TaskTypeRetrievalDocument

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := min(start+maxBatch, len(texts))

		batch := em.NewBatch()
		for _, t := range texts[start:end] {
			batch.AddContent(genai.Text(t))
		}

		res, err := em.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("embed documents %d-%d: %w", start, end, err)
		}
		if len(res.Embeddings) != end-start {
			return nil, fmt.Errorf("embed documents: got %d vectors for %d texts", len(res.Embeddings), end-start)
		}

		for _, emb := range res.Embeddings {
			vectors = append(vectors, emb.Values)
		}

		ctxzap.Debug(ctx, "embedded batch", zap.Int("from", start), zap.Int("to", end))
	}

	return vectors, nil
}

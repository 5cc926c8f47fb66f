package rag

import (
	"context"
	"fmt"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector returns canned passages for local runs without an index
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Search(ctx context.Context, q entity.SearchQuery) ([]entity.RetrievedPassage, error) {
	ctxzap.Info(ctx, "[MOCK] searching passages",
		zap.String("category", string(q.Category)),
		zap.Int("k", q.K),
	)

	passages := make([]entity.RetrievedPassage, 0, q.K)
	for i := 1; i <= q.K; i++ {
		passages = append(passages, entity.RetrievedPassage{
			Text:   fmt.Sprintf("Mock passage %d about %s.", i, q.Category),
			Source: fmt.Sprintf("mock-%d.pdf", (i+1)/2),
		})
	}
	return passages, nil
}

package rag

import (
	"context"
	"fmt"
	"net/http"

	"github.com/futig/lawgpt-backend/internal/config"
	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/futig/lawgpt-backend/internal/integration/common"
	pkghttp "github.com/futig/lawgpt-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector retrieves passages from a remote retrieval service
type Connector struct {
	config    config.RAGConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.RAGConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Search asks the service for the top-k passages.
// POST {search_endpoint} with {query, category, top_k}
func (c *Connector) Search(ctx context.Context, q entity.SearchQuery) ([]entity.RetrievedPassage, error) {
	req := &entity.RAGSearchRequest{
		Query:    q.Text,
		Category: string(q.Category),
		TopK:     q.K,
	}

	var resp entity.RAGSearchResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, c.config.SearchEndpoint, req, &resp); err != nil {
		return nil, fmt.Errorf("rag search: %w", err)
	}

	passages := make([]entity.RetrievedPassage, 0, len(resp.Passages))
	for _, p := range resp.Passages {
		passages = append(passages, entity.RetrievedPassage{
			Text:   p.Text,
			Source: p.Metadata["source"],
		})
	}

	ctxzap.Debug(ctx, "rag search completed", zap.Int("passages", len(passages)))
	return passages, nil
}

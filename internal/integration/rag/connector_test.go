package rag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/futig/lawgpt-backend/internal/config"
	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConnector_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)

		var req entity.RAGSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "What is bail?", req.Query)
		assert.Equal(t, "Criminal Law", req.Category)
		assert.Equal(t, 4, req.TopK)

		_ = json.NewEncoder(w).Encode(entity.RAGSearchResponse{Passages: []entity.RAGPassage{
			{Text: "one", Metadata: map[string]string{"source": "crpc.pdf"}},
			{Text: "two"},
		}})
	}))
	defer srv.Close()

	c := NewConnector(config.RAGConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{Url: srv.URL, RequestTimeout: time.Second},
		SearchEndpoint:   "/search",
	}, zap.NewNop())

	passages, err := c.Search(context.Background(), entity.SearchQuery{Text: "What is bail?", Category: "Criminal Law", K: 4})
	require.NoError(t, err)
	assert.Equal(t, []entity.RetrievedPassage{{Text: "one", Source: "crpc.pdf"}, {Text: "two"}}, passages)
}

func TestConnector_SearchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewConnector(config.RAGConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{Url: srv.URL, RequestTimeout: time.Second},
		SearchEndpoint:   "/search",
	}, zap.NewNop())

	_, err := c.Search(context.Background(), entity.SearchQuery{Text: "q", K: 4})
	assert.ErrorContains(t, err, "HTTP 500")
}

func TestMockConnector_Search(t *testing.T) {
	passages, err := NewMockConnector(zap.NewNop()).Search(context.Background(), entity.SearchQuery{Category: "Cyber Law", K: 4})
	require.NoError(t, err)
	assert.Len(t, passages, 4)
	assert.Equal(t, "mock-1.pdf", passages[1].Source)
}

package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder(t *testing.T) {
	m := NewMockEmbedder()
	ctx := context.Background()

	q, err := m.EmbedQuery(ctx, "What is bail")
	require.NoError(t, err)
	assert.Len(t, q, Dimensions)

	docs, err := m.EmbedDocuments(ctx, []string{"what is BAIL", ""})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, q, docs[0])
	assert.Equal(t, float32(1), docs[1][0])
}

package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exchange(i int) entity.Exchange {
	return entity.Exchange{Question: fmt.Sprintf("q%d", i), Answer: fmt.Sprintf("a%d", i)}
}

func TestCacheStore_EmptyWindow(t *testing.T) {
	s := NewCacheStore(2, time.Minute)

	w, err := s.Window(context.Background(), "new")
	require.NoError(t, err)
	assert.Empty(t, w)
	assert.NotNil(t, w)
}

func TestCacheStore_KeepsLastK(t *testing.T) {
	ctx := context.Background()
	s := NewCacheStore(2, time.Minute)

	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Append(ctx, "s1", exchange(i)))
	}

	w, err := s.Window(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []entity.Exchange{exchange(2), exchange(3)}, w)
}

func TestCacheStore_SessionsIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewCacheStore(2, time.Minute)

	require.NoError(t, s.Append(ctx, "a", exchange(1)))
	require.NoError(t, s.Append(ctx, "b", exchange(2)))

	a, _ := s.Window(ctx, "a")
	b, _ := s.Window(ctx, "b")
	assert.Equal(t, []entity.Exchange{exchange(1)}, a)
	assert.Equal(t, []entity.Exchange{exchange(2)}, b)
	assert.Equal(t, 2, s.Sessions())
}

func TestCacheStore_WindowIsACopy(t *testing.T) {
	ctx := context.Background()
	s := NewCacheStore(2, time.Minute)
	require.NoError(t, s.Append(ctx, "s1", exchange(1)))

	w, _ := s.Window(ctx, "s1")
	w[0].Answer = "mutated"

	again, _ := s.Window(ctx, "s1")
	assert.Equal(t, "a1", again[0].Answer)
}

func TestCacheStore_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	s := NewCacheStore(2, 20*time.Millisecond)
	require.NoError(t, s.Append(ctx, "s1", exchange(1)))

	time.Sleep(40 * time.Millisecond)

	w, err := s.Window(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, w)
}

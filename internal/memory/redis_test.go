package memory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestRedisStore_EmptyWindow(t *testing.T) {
	_, client := newTestRedis(t)
	s := NewRedisStore(client, 2, time.Minute)

	w, err := s.Window(context.Background(), "new")
	require.NoError(t, err)
	assert.Empty(t, w)
	assert.NotNil(t, w)
}

func TestRedisStore_KeepsLastK(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	s := NewRedisStore(client, 2, time.Minute)

	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Append(ctx, "s1", exchange(i)))
	}

	w, err := s.Window(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []entity.Exchange{exchange(2), exchange(3)}, w)

	stored, err := mr.List(keyPrefix + "s1")
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestRedisStore_SessionsIsolated(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	s := NewRedisStore(client, 2, time.Minute)

	require.NoError(t, s.Append(ctx, "a", exchange(1)))
	require.NoError(t, s.Append(ctx, "b", exchange(2)))

	wa, err := s.Window(ctx, "a")
	require.NoError(t, err)
	wb, err := s.Window(ctx, "b")
	require.NoError(t, err)

	assert.Equal(t, []entity.Exchange{exchange(1)}, wa)
	assert.Equal(t, []entity.Exchange{exchange(2)}, wb)
}

func TestRedisStore_ExpiresIdleSession(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	s := NewRedisStore(client, 2, time.Minute)

	require.NoError(t, s.Append(ctx, "s1", exchange(1)))

	// a read inside the ttl extends the session
	mr.FastForward(50 * time.Second)
	w, err := s.Window(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, w, 1)

	mr.FastForward(50 * time.Second)
	w, err = s.Window(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, w, 1)

	mr.FastForward(61 * time.Second)
	w, err = s.Window(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, w)
	assert.False(t, mr.Exists(keyPrefix+"s1"))
}

func TestRedisLocker_Exclusive(t *testing.T) {
	_, client := newTestRedis(t)
	first := NewRedisLocker(client, time.Minute)
	second := NewRedisLocker(client, time.Minute)

	unlock, err := first.Lock(context.Background(), "s1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = second.Lock(ctx, "s1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// other sessions are not affected
	unlockOther, err := second.Lock(context.Background(), "s2")
	require.NoError(t, err)
	unlockOther()

	unlock()
	unlock, err = second.Lock(context.Background(), "s1")
	require.NoError(t, err)
	unlock()
}

func TestRedisLocker_WaiterAcquiresAfterRelease(t *testing.T) {
	_, client := newTestRedis(t)
	l := NewRedisLocker(client, time.Minute)

	unlock, err := l.Lock(context.Background(), "s1")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		u, err := l.Lock(ctx, "s1")
		if err == nil {
			u()
			close(acquired)
		}
	}()

	time.Sleep(50 * time.Millisecond)
	unlock()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never acquired the released lock")
	}
}

func TestRedisLocker_ReleaseKeepsForeignLock(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedisLocker(client, time.Second)

	stale, err := l.Lock(context.Background(), "s1")
	require.NoError(t, err)

	// the holder outlived its ttl and someone else took over
	mr.FastForward(2 * time.Second)
	fresh, err := l.Lock(context.Background(), "s1")
	require.NoError(t, err)
	token, err := mr.Get(lockPrefix + "s1")
	require.NoError(t, err)

	stale()
	assert.True(t, mr.Exists(lockPrefix+"s1"))
	current, err := mr.Get(lockPrefix + "s1")
	require.NoError(t, err)
	assert.Equal(t, token, current)

	fresh()
	assert.False(t, mr.Exists(lockPrefix+"s1"))
}

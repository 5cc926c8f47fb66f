package memory

import (
	"context"
	"sync"
	"time"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/patrickmn/go-cache"
)

// CacheStore keeps windows in process memory. A session that is not touched
// for ttl is evicted; everything is lost on shutdown.
type CacheStore struct {
	mu     sync.Mutex
	cache  *cache.Cache
	window int
	ttl    time.Duration
}

func NewCacheStore(window int, ttl time.Duration) *CacheStore {
	return &CacheStore{
		cache:  cache.New(ttl, ttl/2+time.Second),
		window: window,
		ttl:    ttl,
	}
}

func (s *CacheStore) Window(_ context.Context, sessionID string) ([]entity.Exchange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Get(sessionID)
	if !ok {
		return []entity.Exchange{}, nil
	}
	exchanges := v.([]entity.Exchange)
	// reading refreshes the session lifetime
	s.cache.Set(sessionID, exchanges, s.ttl)

	out := make([]entity.Exchange, len(exchanges))
	copy(out, exchanges)
	return out, nil
}

func (s *CacheStore) Append(_ context.Context, sessionID string, ex entity.Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exchanges []entity.Exchange
	if v, ok := s.cache.Get(sessionID); ok {
		exchanges = v.([]entity.Exchange)
	}

	next := make([]entity.Exchange, 0, len(exchanges)+1)
	next = append(next, exchanges...)
	next = append(next, ex)
	s.cache.Set(sessionID, trim(next, s.window), s.ttl)
	return nil
}

// Sessions reports the number of live sessions
func (s *CacheStore) Sessions() int {
	return s.cache.ItemCount()
}

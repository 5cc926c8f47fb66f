package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "chat_memory:"

// RedisStore keeps windows in a Redis list per session, shared by all replicas
type RedisStore struct {
	client *redis.Client
	window int
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, window int, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, window: window, ttl: ttl}
}

func (s *RedisStore) Window(ctx context.Context, sessionID string) ([]entity.Exchange, error) {
	key := keyPrefix + sessionID

	raw, err := s.client.LRange(ctx, key, int64(-s.window), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}

	exchanges := make([]entity.Exchange, 0, len(raw))
	for _, item := range raw {
		var ex entity.Exchange
		if err := json.Unmarshal([]byte(item), &ex); err != nil {
			return nil, fmt.Errorf("decode exchange: %w", err)
		}
		exchanges = append(exchanges, ex)
	}

	if len(raw) > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return nil, fmt.Errorf("expire %s: %w", key, err)
		}
	}

	return exchanges, nil
}

func (s *RedisStore) Append(ctx context.Context, sessionID string, ex entity.Exchange) error {
	key := keyPrefix + sessionID

	payload, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("encode exchange: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		pipe.LTrim(ctx, key, int64(-s.window), -1)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append to %s: %w", key, err)
	}
	return nil
}

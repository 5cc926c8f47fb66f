// Package memory keeps the sliding window of recent exchanges per chat session.
package memory

import (
	"context"

	"github.com/futig/lawgpt-backend/internal/entity"
)

// Store is a per-session window of the last k exchanges, oldest first
type Store interface {
	Window(ctx context.Context, sessionID string) ([]entity.Exchange, error)
	Append(ctx context.Context, sessionID string, ex entity.Exchange) error
}

// trim keeps the last k exchanges
func trim(exchanges []entity.Exchange, k int) []entity.Exchange {
	if len(exchanges) <= k {
		return exchanges
	}
	return exchanges[len(exchanges)-k:]
}

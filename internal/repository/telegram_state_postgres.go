package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/futig/lawgpt-backend/internal/telegram/state"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ state.Storage = &TelegramSessionRepository{}

// TelegramSessionRepository handles telegram user to chat session mapping persistence
type TelegramSessionRepository struct {
	db *pgxpool.Pool
}

// NewTelegramStateRepository creates a new telegram session repository
func NewTelegramStateRepository(db *pgxpool.Pool) *TelegramSessionRepository {
	return &TelegramSessionRepository{db: db}
}

// Get retrieves telegram session by user ID
func (r *TelegramSessionRepository) Get(ctx context.Context, userID int64) (*state.TelegramSession, error) {
	var (
		s   state.TelegramSession
		raw []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT user_id, session_id, state_data, created_at, updated_at
		FROM telegram_sessions
		WHERE user_id = $1`, userID,
	).Scan(&s.UserID, &s.SessionID, &raw, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("telegram session %d: %w", userID, state.ErrNotFound)
		}
		return nil, fmt.Errorf("query telegram session: %w", err)
	}

	s.StateData = json.RawMessage(raw)
	if len(s.StateData) == 0 {
		s.StateData = json.RawMessage("{}")
	}

	return &s, nil
}

// Set saves telegram session
func (r *TelegramSessionRepository) Set(ctx context.Context, s *state.TelegramSession) error {
	stateData := []byte(s.StateData)
	if len(stateData) == 0 {
		stateData = []byte("{}")
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO telegram_sessions (user_id, session_id, state_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			session_id = EXCLUDED.session_id,
			state_data = EXCLUDED.state_data,
			updated_at = EXCLUDED.updated_at`,
		s.UserID, s.SessionID, stateData, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert telegram session: %w", err)
	}

	return nil
}

// Delete removes telegram session
func (r *TelegramSessionRepository) Delete(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM telegram_sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete telegram session: %w", err)
	}

	return nil
}

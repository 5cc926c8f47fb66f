package repository

import (
	"context"
	"fmt"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChatMessageRepository persists completed chat turns for transcript export
type ChatMessageRepository interface {
	SaveEntry(ctx context.Context, entry entity.TranscriptEntry) error
	ListBySession(ctx context.Context, sessionID string) ([]entity.TranscriptEntry, error)
}

var _ ChatMessageRepository = &ChatMessagePostgres{}

// ChatMessagePostgres implements ChatMessageRepository using PostgreSQL
type ChatMessagePostgres struct {
	db *pgxpool.Pool
}

func NewChatMessagePostgres(db *pgxpool.Pool) *ChatMessagePostgres {
	return &ChatMessagePostgres{db: db}
}

func (r *ChatMessagePostgres) SaveEntry(ctx context.Context, e entity.TranscriptEntry) error {
	sources := e.Sources
	if sources == nil {
		sources = []string{}
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO chat_messages
			(id, session_id, user_id, query, category, language, answer, sources, rejected, created_at)
		VALUES ($1::uuid, $2, $3::uuid, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.SessionID, e.UserID, e.Query, string(e.Category), e.Language,
		e.Answer, sources, e.Rejected, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}

	return nil
}

func (r *ChatMessagePostgres) ListBySession(ctx context.Context, sessionID string) ([]entity.TranscriptEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, session_id, user_id::text, query, category, language, answer, sources, rejected, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer rows.Close()

	var entries []entity.TranscriptEntry
	for rows.Next() {
		var (
			e        entity.TranscriptEntry
			category string
		)
		if err := rows.Scan(
			&e.ID, &e.SessionID, &e.UserID, &e.Query, &category, &e.Language,
			&e.Answer, &e.Sources, &e.Rejected, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		e.Category = entity.Category(category)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat messages: %w", err)
	}

	return entries, nil
}

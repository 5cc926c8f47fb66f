package chat

import (
	"context"

	"github.com/futig/lawgpt-backend/internal/entity"
)

type ChatUsecase interface {
	RunChatTurn(ctx context.Context, turn entity.ChatTurn, opts entity.ChatOptions) (*entity.ChatResult, error)
	ValidateCategory(category entity.Category) error
	Categories() []string
	Languages() map[string]string
	NewSession(ctx context.Context) string
	Transcript(ctx context.Context, sessionID string) ([]entity.TranscriptEntry, error)
}

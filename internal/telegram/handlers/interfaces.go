package handlers

import (
	"context"

	"github.com/futig/lawgpt-backend/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ChatUsecase defines the chat operations used by the Telegram handlers
type ChatUsecase interface {
	RunChatTurn(ctx context.Context, turn entity.ChatTurn, opts entity.ChatOptions) (*entity.ChatResult, error)
	ValidateCategory(category entity.Category) error
	ValidateLanguage(language string) error
	Categories() []string
	LanguageNames() []string
}

// BotAPI is the subset of *tgbotapi.BotAPI the handlers call
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

package telegram

import (
	"context"
	"fmt"

	"github.com/futig/lawgpt-backend/internal/config"
	"github.com/futig/lawgpt-backend/internal/telegram/bot"
	"github.com/futig/lawgpt-backend/internal/telegram/handlers"
	"github.com/futig/lawgpt-backend/internal/telegram/keyboard"
	"github.com/futig/lawgpt-backend/internal/telegram/state"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot initializes the telegram bot with all dependencies.
// newSessionID generates chat session IDs for new and reset users.
func NewBot(
	cfg *config.TelegramConfig,
	storage state.Storage,
	chatUC handlers.ChatUsecase,
	newSessionID func() string,
	logger *zap.Logger,
) (Bot, error) {
	stateManager := state.NewManager(storage, newSessionID)

	b, err := bot.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	api := b.GetAPI()
	kb := keyboard.NewBuilder()

	b.RegisterHandler(handlers.NewCommandHandler(api, stateManager, chatUC, kb, logger))
	b.RegisterHandler(handlers.NewCallbackHandler(api, stateManager, chatUC, kb, logger))
	b.RegisterHandler(handlers.NewQuestionHandler(api, stateManager, chatUC, kb, logger))

	logger.Info("telegram bot initialized successfully")

	return b, nil
}

package handlers

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// typingInterval keeps the indicator alive, Telegram drops it after 5 seconds
const typingInterval = 4 * time.Second

// TypingNotifier sends periodic "typing" actions to show bot activity
type TypingNotifier struct {
	bot      BotAPI
	chatID   int64
	done     chan struct{}
	logger   *zap.Logger
	once     sync.Once
	stopOnce sync.Once
}

// NewTypingNotifier creates a new typing indicator
func NewTypingNotifier(bot BotAPI, chatID int64, logger *zap.Logger) *TypingNotifier {
	return &TypingNotifier{
		bot:    bot,
		chatID: chatID,
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Start begins sending typing indicators until Stop or ctx is done
func (t *TypingNotifier) Start(ctx context.Context) {
	t.once.Do(func() {
		t.send("failed to send initial typing action")

		go func() {
			ticker := time.NewTicker(typingInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					t.send("failed to send typing action")
				case <-t.done:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	})
}

// Stop stops sending typing indicators
func (t *TypingNotifier) Stop() {
	t.stopOnce.Do(func() { close(t.done) })
}

func (t *TypingNotifier) send(failMsg string) {
	action := tgbotapi.NewChatAction(t.chatID, tgbotapi.ChatTyping)
	if _, err := t.bot.Request(action); err != nil {
		t.logger.Warn(failMsg,
			zap.Error(err),
			zap.Int64("chat_id", t.chatID),
		)
	}
}

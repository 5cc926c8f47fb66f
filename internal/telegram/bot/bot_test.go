package bot

import (
	"testing"

	"github.com/futig/lawgpt-backend/internal/telegram/handlers"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(text string, entities ...tgbotapi.MessageEntity) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 5,
		From:      &tgbotapi.User{ID: 7},
		Chat:      &tgbotapi.Chat{ID: 9},
		Text:      text,
		Entities:  entities,
	}}
}

func TestNormalize(t *testing.T) {
	t.Run("command", func(t *testing.T) {
		kind, msg := normalize(message("/category Cyber Law", tgbotapi.MessageEntity{Type: "bot_command", Offset: 0, Length: 9}))
		require.NotNil(t, msg)
		assert.Equal(t, handlers.HandlerStateCommand, kind)
		assert.Equal(t, "category", msg.Command)
		assert.Equal(t, "Cyber Law", msg.CommandArgs)
	})

	t.Run("question", func(t *testing.T) {
		kind, msg := normalize(message("Can I get bail?"))
		require.NotNil(t, msg)
		assert.Equal(t, handlers.HandlerStateQuestion, kind)
		assert.Equal(t, int64(9), msg.ChatID)
		assert.Equal(t, int64(7), msg.UserID)
	})

	t.Run("non-text", func(t *testing.T) {
		kind, msg := normalize(message(""))
		require.NotNil(t, msg)
		assert.Empty(t, kind)
	})

	t.Run("callback", func(t *testing.T) {
		kind, msg := normalize(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb",
			From:    &tgbotapi.User{ID: 7},
			Message: &tgbotapi.Message{MessageID: 3, Chat: &tgbotapi.Chat{ID: 9}},
			Data:    "cat:1",
		}})
		require.NotNil(t, msg)
		assert.Equal(t, handlers.HandlerStateCallback, kind)
		assert.Equal(t, "cat:1", msg.CallbackData)
		assert.Equal(t, "cb", msg.CallbackID)
	})

	t.Run("empty update", func(t *testing.T) {
		_, msg := normalize(tgbotapi.Update{})
		assert.Nil(t, msg)
	})
}

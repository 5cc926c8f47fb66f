package handlers

import (
	"context"

	"github.com/futig/lawgpt-backend/internal/telegram/keyboard"
	"github.com/futig/lawgpt-backend/internal/telegram/state"
)

// Handler kinds, one handler is registered per kind
const (
	HandlerStateCommand  = "COMMAND"
	HandlerStateCallback = "CALLBACK"
	HandlerStateQuestion = "QUESTION"
)

// Message represents a normalized Telegram message
type Message struct {
	ChatID       int64
	UserID       int64
	MessageID    int
	Text         string
	Command      string
	CommandArgs  string
	CallbackData string
	CallbackID   string
}

// Handler defines the interface for kind-specific handlers
type Handler interface {
	// Handle processes a message of this kind
	Handle(ctx context.Context, msg *Message) error

	// GetState returns the kind this handler manages
	GetState() string
}

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	stateName     string
	messageSender *MessageSender
	stateManager  *state.Manager
	chatUC        ChatUsecase
	keyboard      *keyboard.Builder
}

// GetState implements Handler
func (h *BaseHandler) GetState() string {
	return h.stateName
}

// sendMessage is a convenience wrapper for messageSender.Send
func (h *BaseHandler) sendMessage(chatID int64, text string, markup interface{}) {
	if h.messageSender != nil {
		h.messageSender.Send(chatID, text, markup)
	}
}

// validStates defines all valid handler kinds
var validStates = map[string]bool{
	HandlerStateCommand:  true,
	HandlerStateCallback: true,
	HandlerStateQuestion: true,
}

// IsValidState checks if a kind is valid for handler registration
func IsValidState(state string) bool {
	_, ok := validStates[state]
	return ok
}

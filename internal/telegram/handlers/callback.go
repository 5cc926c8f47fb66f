package handlers

import (
	"context"

	"github.com/futig/lawgpt-backend/internal/telegram/keyboard"
	"github.com/futig/lawgpt-backend/internal/telegram/render"
	"github.com/futig/lawgpt-backend/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// CallbackHandler handles inline keyboard button presses
type CallbackHandler struct {
	BaseHandler
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(
	api BotAPI,
	stateManager *state.Manager,
	chatUC ChatUsecase,
	keyboard *keyboard.Builder,
	logger *zap.Logger,
) *CallbackHandler {
	return &CallbackHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateCallback,
			messageSender: NewMessageSender(api, logger),
			stateManager:  stateManager,
			chatUC:        chatUC,
			keyboard:      keyboard,
		},
	}
}

// Handle implements Handler
func (h *CallbackHandler) Handle(ctx context.Context, msg *Message) error {
	data, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		ctxzap.Warn(ctx, "invalid callback data",
			zap.Error(err),
			zap.String("data", msg.CallbackData),
		)
		h.messageSender.AnswerCallback(msg.CallbackID, render.ErrInvalidCallback)
		return nil
	}

	ctxzap.Info(ctx, "callback query received",
		zap.String("action", data.Action),
		zap.String("value", data.Value),
		zap.Int64("user_id", msg.UserID),
	)

	switch data.Action {
	case keyboard.ActionCategory:
		return h.handleCategory(ctx, msg, data)
	case keyboard.ActionLanguage:
		return h.handleLanguage(ctx, msg, data.Value)
	default:
		h.messageSender.AnswerCallback(msg.CallbackID, render.ErrInvalidCallback)
		return nil
	}
}

func (h *CallbackHandler) handleCategory(ctx context.Context, msg *Message, cb *keyboard.CallbackData) error {
	categories := h.chatUC.Categories()

	idx, err := cb.Index(len(categories))
	if err != nil {
		ctxzap.Warn(ctx, "stale category callback", zap.Error(err))
		h.messageSender.AnswerCallback(msg.CallbackID, render.ErrInvalidCallback)
		return nil
	}
	category := categories[idx]

	session, data, err := h.stateManager.Ensure(ctx, msg.UserID)
	if err != nil {
		return err
	}

	data.Category = category
	data.LastMessageID = msg.MessageID
	if err := h.stateManager.Save(ctx, session, data); err != nil {
		return err
	}

	h.messageSender.AnswerCallback(msg.CallbackID, category)
	h.sendMessage(msg.ChatID, render.RenderCategorySelected(category), nil)
	return nil
}

func (h *CallbackHandler) handleLanguage(ctx context.Context, msg *Message, language string) error {
	if err := h.chatUC.ValidateLanguage(language); err != nil {
		h.messageSender.AnswerCallback(msg.CallbackID, render.ErrInvalidLanguage)
		return nil
	}

	session, data, err := h.stateManager.Ensure(ctx, msg.UserID)
	if err != nil {
		return err
	}

	data.Language = language
	data.LastMessageID = msg.MessageID
	if err := h.stateManager.Save(ctx, session, data); err != nil {
		return err
	}

	h.messageSender.AnswerCallback(msg.CallbackID, language)
	h.sendMessage(msg.ChatID, render.RenderLanguageSelected(language), nil)
	return nil
}

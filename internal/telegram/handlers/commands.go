package handlers

import (
	"context"
	"strings"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/futig/lawgpt-backend/internal/telegram/keyboard"
	"github.com/futig/lawgpt-backend/internal/telegram/render"
	"github.com/futig/lawgpt-backend/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// CommandHandler handles slash commands
type CommandHandler struct {
	BaseHandler
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(
	api BotAPI,
	stateManager *state.Manager,
	chatUC ChatUsecase,
	keyboard *keyboard.Builder,
	logger *zap.Logger,
) *CommandHandler {
	return &CommandHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateCommand,
			messageSender: NewMessageSender(api, logger),
			stateManager:  stateManager,
			chatUC:        chatUC,
			keyboard:      keyboard,
		},
	}
}

// Handle implements Handler
func (h *CommandHandler) Handle(ctx context.Context, msg *Message) error {
	ctxzap.Info(ctx, "command received",
		zap.String("command", msg.Command),
		zap.Int64("user_id", msg.UserID),
	)

	switch msg.Command {
	case "start":
		return h.handleStart(ctx, msg)
	case "help":
		h.sendMessage(msg.ChatID, render.MsgHelp, nil)
	case "category":
		return h.handleCategory(ctx, msg)
	case "language":
		return h.handleLanguage(ctx, msg)
	case "reset":
		return h.handleReset(ctx, msg)
	default:
		h.sendMessage(msg.ChatID, render.ErrUnknownCommand, nil)
	}

	return nil
}

func (h *CommandHandler) handleStart(ctx context.Context, msg *Message) error {
	_, data, err := h.stateManager.Ensure(ctx, msg.UserID)
	if err != nil {
		return err
	}

	h.sendMessage(msg.ChatID, render.MsgWelcome, h.keyboard.CategoryKeyboard(h.chatUC.Categories(), data.Category))
	return nil
}

// handleCategory shows the category keyboard, or selects the category
// given as argument, e.g. "/category Cyber Law"
func (h *CommandHandler) handleCategory(ctx context.Context, msg *Message) error {
	session, data, err := h.stateManager.Ensure(ctx, msg.UserID)
	if err != nil {
		return err
	}

	arg := strings.TrimSpace(msg.CommandArgs)
	if arg == "" {
		h.sendMessage(msg.ChatID, render.MsgChooseCategory, h.keyboard.CategoryKeyboard(h.chatUC.Categories(), data.Category))
		return nil
	}

	if err := h.chatUC.ValidateCategory(entity.Category(arg)); err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	data.Category = arg
	if err := h.stateManager.Save(ctx, session, data); err != nil {
		return err
	}

	h.sendMessage(msg.ChatID, render.RenderCategorySelected(arg), nil)
	return nil
}

func (h *CommandHandler) handleLanguage(ctx context.Context, msg *Message) error {
	session, data, err := h.stateManager.Ensure(ctx, msg.UserID)
	if err != nil {
		return err
	}

	arg := strings.TrimSpace(msg.CommandArgs)
	if arg == "" {
		h.sendMessage(msg.ChatID, render.MsgChooseLanguage, h.keyboard.LanguageKeyboard(h.chatUC.LanguageNames(), data.Language))
		return nil
	}

	if err := h.chatUC.ValidateLanguage(arg); err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	data.Language = arg
	if err := h.stateManager.Save(ctx, session, data); err != nil {
		return err
	}

	h.sendMessage(msg.ChatID, render.RenderLanguageSelected(arg), nil)
	return nil
}

func (h *CommandHandler) handleReset(ctx context.Context, msg *Message) error {
	if _, err := h.stateManager.Reset(ctx, msg.UserID); err != nil {
		return err
	}

	h.sendMessage(msg.ChatID, render.MsgSessionReset, nil)
	return nil
}

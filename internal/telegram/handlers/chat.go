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

// QuestionHandler answers free-text legal questions
type QuestionHandler struct {
	BaseHandler
	api    BotAPI
	logger *zap.Logger
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(
	api BotAPI,
	stateManager *state.Manager,
	chatUC ChatUsecase,
	keyboard *keyboard.Builder,
	logger *zap.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateQuestion,
			messageSender: NewMessageSender(api, logger),
			stateManager:  stateManager,
			chatUC:        chatUC,
			keyboard:      keyboard,
		},
		api:    api,
		logger: logger,
	}
}

// Handle implements Handler. Each question runs through the category-checked
// chat pipeline under the user's chat session.
func (h *QuestionHandler) Handle(ctx context.Context, msg *Message) error {
	query := strings.TrimSpace(msg.Text)
	if query == "" {
		h.sendMessage(msg.ChatID, render.MsgTextOnly, nil)
		return nil
	}

	session, data, err := h.stateManager.Ensure(ctx, msg.UserID)
	if err != nil {
		return err
	}

	if data.Category == "" {
		h.sendMessage(msg.ChatID, render.MsgNoCategory, h.keyboard.CategoryKeyboard(h.chatUC.Categories(), ""))
		return nil
	}

	started, err := h.stateManager.TryStartProcessing(ctx, session, data)
	if err != nil {
		return err
	}
	if !started {
		h.sendMessage(msg.ChatID, render.MsgBusy, nil)
		return nil
	}
	defer func() {
		if err := h.stateManager.FinishProcessing(context.WithoutCancel(ctx), msg.UserID); err != nil {
			ctxzap.Error(ctx, "failed to clear processing flag",
				zap.Error(err),
				zap.Int64("user_id", msg.UserID),
			)
		}
	}()

	typing := NewTypingNotifier(h.api, msg.ChatID, h.logger)
	typing.Start(ctx)
	defer typing.Stop()

	language := data.Language
	if language == "" {
		language = entity.DefaultLanguage
	}

	result, err := h.chatUC.RunChatTurn(ctx, entity.ChatTurn{
		Query:     query,
		Category:  entity.Category(data.Category),
		Language:  language,
		SessionID: session.SessionID,
	}, entity.ChatOptions{StrictCategoryCheck: true})
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	h.sendMessage(msg.ChatID, render.RenderAnswer(result.Answer, result.Sources), nil)
	return nil
}

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/futig/lawgpt-backend/internal/api/middleware"
	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/futig/lawgpt-backend/internal/pkg/formatter"
	"github.com/futig/lawgpt-backend/internal/pkg/logger"
	"github.com/futig/lawgpt-backend/internal/pkg/response"
	"github.com/futig/lawgpt-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// maxBodyBytes bounds chat request bodies, prior messages included
const maxBodyBytes = 1 << 20

// genericChatError is the only detail clients see for pipeline failures
const genericChatError = "failed to process chat request"

type Handler struct {
	usecase    ChatUsecase
	validator  *validator.Validator
	formatters *formatter.Factory
}

func NewHandler(usecase ChatUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:    usecase,
		validator:  validator,
		formatters: formatter.NewFactory(),
	}
}

// Chat handles POST /api/chat/ - general chat entry, no category check
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Chat")
	h.runTurn(ctx, w, r, false)
}

// CategoryChat handles POST /api/categories/chat - category-restricted entry
func (h *Handler) CategoryChat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CategoryChat")
	h.runTurn(ctx, w, r, true)
}

func (h *Handler) runTurn(ctx context.Context, w http.ResponseWriter, r *http.Request, strict bool) {
	var req entity.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateChatRequest(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
		return
	}

	ctx = logger.AddFields(ctx,
		zap.String("session_id", req.SessionID),
		zap.String("category", req.Category),
		zap.String("language", req.Language),
	)

	// The restricted entry refuses unknown categories before any model call
	if strict {
		if err := h.usecase.ValidateCategory(entity.Category(req.Category)); err != nil {
			h.handleUsecaseError(ctx, w, err)
			return
		}
	}

	opts := entity.ChatOptions{StrictCategoryCheck: strict}
	if user, ok := middleware.UserFromContext(ctx); ok {
		opts.UserID = &user.ID
	}

	ctxzap.Debug(ctx, "running chat turn", zap.Bool("strict", strict), zap.Int("prior_messages", len(req.Messages)))

	result, err := h.usecase.RunChatTurn(ctx, entity.ChatTurn{
		Query:         req.Query,
		Category:      entity.Category(req.Category),
		Language:      req.Language,
		SessionID:     req.SessionID,
		PriorMessages: req.Messages,
	}, opts)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	sources := result.Sources
	if sources == nil {
		sources = []string{}
	}

	response.Success(w, entity.ChatResponse{
		Answer:  result.Answer,
		Sources: sources,
	})
}

// CreateSession handles POST /api/chat/session
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateSession")

	sessionID := h.usecase.NewSession(ctx)
	ctxzap.Info(ctx, "chat session created", zap.String("session_id", sessionID))

	response.Success(w, entity.CreateSessionResponse{SessionID: sessionID})
}

// GetTranscript handles GET /api/chat/session/{id}/transcript?format=
func (h *Handler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", "GetTranscript"),
	)

	formatParam := r.URL.Query().Get("format")
	if formatParam == "" {
		formatParam = string(entity.FormatMarkdown)
	}

	format := entity.ResultFormat(formatParam)
	if !format.IsValid() {
		h.respondError(ctx, w, http.StatusBadRequest, "format must be one of: markdown, pdf, docx",
			fmt.Errorf("%w: format %q", entity.ErrInvalidParameter, formatParam))
		return
	}

	entries, err := h.usecase.Transcript(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	if owner, ok := transcriptOwner(entries); ok {
		user, authed := middleware.UserFromContext(ctx)
		if !authed {
			w.Header().Set("WWW-Authenticate", "Bearer")
			h.respondError(ctx, w, http.StatusUnauthorized, entity.ErrInvalidToken.Error(),
				fmt.Errorf("%w: transcript of an attributed session", entity.ErrInvalidToken))
			return
		}
		if user.ID != owner {
			h.respondError(ctx, w, http.StatusForbidden, entity.ErrTranscriptForbidden.Error(),
				fmt.Errorf("%w: owner %s, caller %s", entity.ErrTranscriptForbidden, owner, user.ID))
			return
		}
	}

	fmtr, err := h.formatters.Create(format)
	if err != nil {
		h.respondError(ctx, w, http.StatusNotImplemented, "format not implemented", err)
		return
	}

	out, err := fmtr.Format(&entity.Transcript{SessionID: sessionID, Entries: entries})
	if err != nil {
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to format transcript", err)
		return
	}

	ctxzap.Info(ctx, "transcript exported", zap.String("format", string(format)), zap.Int("entries", len(entries)))

	filename := validator.SanitizeFilename("chat-" + sessionID + fmtr.FileExtension())
	response.Attachment(w, fmtr.ContentType(), filename, out)
}

// transcriptOwner returns the user the session's turns were attributed to.
// Any attributed turn makes the whole session private to that user.
func transcriptOwner(entries []entity.TranscriptEntry) (string, bool) {
	for _, e := range entries {
		if e.UserID != nil && *e.UserID != "" {
			return *e.UserID, true
		}
	}
	return "", false
}

// ListCategories handles GET /api/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	response.Success(w, entity.CategoryResponse{Categories: h.usecase.Categories()})
}

// ListLanguages handles GET /api/languages
func (h *Handler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	response.Success(w, entity.LanguageResponse{Languages: h.usecase.Languages()})
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Warn(ctx, message, zap.Error(err))
	}
	response.Error(w, status, message)
}

// handleUsecaseError maps use case errors to HTTP statuses. Pipeline
// failures get a generic message, details stay in the logs.
func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidCategory),
		errors.Is(err, entity.ErrInvalidLanguage),
		errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrInvalidFormat):
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, entity.ErrSessionNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "session not found", err)
	case errors.Is(err, entity.ErrUpstreamTimeout), errors.Is(err, context.DeadlineExceeded):
		h.respondError(ctx, w, http.StatusGatewayTimeout, genericChatError, err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, genericChatError, err)
	}
}

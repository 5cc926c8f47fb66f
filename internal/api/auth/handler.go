package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futig/lawgpt-backend/internal/api/middleware"
	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/futig/lawgpt-backend/internal/pkg/logger"
	"github.com/futig/lawgpt-backend/internal/pkg/response"
	"github.com/futig/lawgpt-backend/internal/pkg/validator"
	authuc "github.com/futig/lawgpt-backend/internal/usecase/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

type Handler struct {
	usecase   AuthUsecase
	validator *validator.Validator
}

func NewHandler(usecase AuthUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// Signup handles POST /api/auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Signup")

	var req entity.SignupRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateSignup(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
		return
	}

	user, err := h.usecase.Signup(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, entity.SignupResponse{User: authuc.ToUserResponse(user)})
}

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Login")

	var req entity.LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateLogin(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
		return
	}

	token, user, err := h.usecase.Login(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, entity.LoginResponse{
		AccessToken: token,
		TokenType:   authuc.TokenType,
		User:        authuc.ToUserResponse(user),
	})
}

// Me handles GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, entity.ErrInvalidToken.Error())
		return
	}

	response.Success(w, authuc.ToUserResponse(user))
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Warn(ctx, message, zap.Error(err))
	}
	response.Error(w, status, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrEmailTaken):
		h.respondError(ctx, w, http.StatusBadRequest, "Email already registered", err)
	case errors.Is(err, entity.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		h.respondError(ctx, w, http.StatusUnauthorized, "Incorrect email or password", err)
	case errors.Is(err, entity.ErrInactiveUser):
		h.respondError(ctx, w, http.StatusForbidden, "Inactive user", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/futig/lawgpt-backend/internal/pkg/logger"
	"github.com/futig/lawgpt-backend/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type contextKey string

const userKey contextKey = "user"

// Authenticator resolves a bearer token to its user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// RequireAuth rejects requests without a valid bearer token
func RequireAuth(auth Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", "Bearer")
				response.Error(w, http.StatusUnauthorized, entity.ErrInvalidToken.Error())
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			switch {
			case errors.Is(err, entity.ErrInactiveUser):
				response.Error(w, http.StatusForbidden, err.Error())
				return
			case errors.Is(err, entity.ErrInvalidToken):
				w.Header().Set("WWW-Authenticate", "Bearer")
				response.Error(w, http.StatusUnauthorized, entity.ErrInvalidToken.Error())
				return
			case err != nil:
				ctxzap.Error(r.Context(), "failed to authenticate request", zap.Error(err))
				response.Error(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}

// OptionalAuth attaches the user when a valid bearer token is present
// and lets every request through
func OptionalAuth(auth Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				ctxzap.Debug(r.Context(), "ignoring invalid bearer token", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
		})
	}
}

// UserFromContext returns the authenticated user, if any
func UserFromContext(ctx context.Context) (*entity.User, bool) {
	user, ok := ctx.Value(userKey).(*entity.User)
	return user, ok && user != nil
}

func withUser(ctx context.Context, user *entity.User) context.Context {
	ctx = logger.AddFields(ctx, zap.String("user_id", user.ID))
	return context.WithValue(ctx, userKey, user)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	authapi "github.com/futig/lawgpt-backend/internal/api/auth"
	chatapi "github.com/futig/lawgpt-backend/internal/api/chat"
	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/futig/lawgpt-backend/internal/pkg/validator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubChat struct{}

func (stubChat) RunChatTurn(context.Context, entity.ChatTurn, entity.ChatOptions) (*entity.ChatResult, error) {
	return &entity.ChatResult{Answer: "ok"}, nil
}
func (stubChat) ValidateCategory(entity.Category) error { return nil }
func (stubChat) Categories() []string { return []string{"Cyber Law"} }
func (stubChat) Languages() map[string]string { return map[string]string{"English": "en"} }
func (stubChat) NewSession(context.Context) string { return "s" }
func (stubChat) Transcript(context.Context, string) ([]entity.TranscriptEntry, error) {
	return nil, entity.ErrSessionNotFound
}

type stubAuth struct{}

func (stubAuth) Signup(context.Context, *entity.SignupRequest) (*entity.User, error) {
	return &entity.User{}, nil
}
func (stubAuth) Login(context.Context, *entity.LoginRequest) (string, *entity.User, error) {
	return "t", &entity.User{}, nil
}
func (stubAuth) Authenticate(context.Context, string) (*entity.User, error) {
	return nil, entity.ErrInvalidToken
}

func newTestRouter(t *testing.T, cfg RouterConfig) http.Handler {
	t.Helper()
	v := validator.New()
	return SetupRouter(cfg,
		chatapi.NewHandler(stubChat{}, v),
		authapi.NewHandler(stubAuth{}, v),
		stubAuth{},
		prometheus.NewRegistry(),
		zap.NewNop(),
	)
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t, RouterConfig{})

	rec := get(h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body entity.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, Version, body.Version)

	assert.Equal(t, http.StatusOK, get(h, "/").Code)
	assert.Equal(t, http.StatusOK, get(h, "/metrics").Code)
	assert.Equal(t, http.StatusOK, get(h, "/api/categories/").Code)
	assert.Equal(t, http.StatusUnauthorized, get(h, "/api/auth/me").Code)
}

func TestRouter_Static(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.css"), []byte("body { color: navy } /* LawGPT */"), 0o644))

	h := newTestRouter(t, RouterConfig{StaticDir: dir})

	rec := get(h, "/static/app.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "LawGPT")
}

func TestRouter_RateLimit(t *testing.T) {
	h := newTestRouter(t, RouterConfig{RateLimit: 1, RateWindow: time.Minute})

	assert.Equal(t, http.StatusOK, get(h, "/api/languages").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(h, "/api/languages").Code)
	// Health checks are not limited
	assert.Equal(t, http.StatusOK, get(h, "/health").Code)
}

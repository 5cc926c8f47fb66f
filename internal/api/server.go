package api

import (
	"net/http"
	"os"
	"time"

	authapi "github.com/futig/lawgpt-backend/internal/api/auth"
	chatapi "github.com/futig/lawgpt-backend/internal/api/chat"
	"github.com/futig/lawgpt-backend/internal/api/docs"
	"github.com/futig/lawgpt-backend/internal/api/middleware"
	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/futig/lawgpt-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Version is reported by /health
const Version = "1.0.0"

// RouterConfig holds the router-level settings
type RouterConfig struct {
	CORSOrigins []string
	StaticDir   string
	DocsPath    string
	RateLimit   int
	RateWindow  time.Duration
	Timeout     time.Duration
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(
	cfg RouterConfig,
	chatHandler *chatapi.Handler,
	authHandler *authapi.Handler,
	authenticator middleware.Authenticator,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.DocsPath == "" {
		cfg.DocsPath = docs.SpecPath
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(chimiddleware.Timeout(cfg.Timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, entity.HealthResponse{Status: "healthy", Version: Version})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"message": "Welcome to the LawGPT API"})
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if cfg.StaticDir != "" {
		if _, err := os.Stat(cfg.StaticDir); err == nil {
			r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
		} else {
			logger.Warn("static directory not found, /static disabled", zap.String("dir", cfg.StaticDir))
		}
	}

	docs.RegisterRoutes(r, cfg.DocsPath)

	// API routes are rate limited per client IP
	r.Group(func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateWindow))
		}

		chatapi.RegisterRoutes(r, chatHandler, middleware.OptionalAuth(authenticator))
		authapi.RegisterRoutes(r, authHandler, middleware.RequireAuth(authenticator))
	})

	return r
}

package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/lawgpt-backend/internal/api"
	authapi "github.com/futig/lawgpt-backend/internal/api/auth"
	chatapi "github.com/futig/lawgpt-backend/internal/api/chat"
	"github.com/futig/lawgpt-backend/internal/api/docs"
	"github.com/futig/lawgpt-backend/internal/config"
	"github.com/futig/lawgpt-backend/internal/ingest"
	"github.com/futig/lawgpt-backend/internal/pkg/validator"
	"github.com/futig/lawgpt-backend/internal/repository"
	"github.com/futig/lawgpt-backend/internal/telegram"
	"go.uber.org/zap"
)

// pipelineCalls bounds the upstream calls of one chat turn:
// relevance, retrieval, answer and translation
const pipelineCalls = 4

// Build creates the HTTP application for the environment given by the -env flag
func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	c, err := loadCore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger := c.logger

	logger.Info("Building HTTP server", zap.String("server_addr", cfg.ServerAddr))

	// Setup API handlers
	v := validator.New()
	chatHandler := chatapi.NewHandler(c.chatUC, v)
	authHandler := authapi.NewHandler(c.authUC, v)
	logger.Info("API handlers initialized")

	requestTimeout := pipelineCalls*cfg.ChatCfg.CallTimeout + 5*time.Second

	// Setup router
	router := api.SetupRouter(api.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		StaticDir:   cfg.StaticDir,
		DocsPath:    docs.SpecPath,
		RateLimit:   cfg.AuthCfg.RateLimit,
		RateWindow:  cfg.AuthCfg.RateWindow,
		Timeout:     requestTimeout,
	}, chatHandler, authHandler, c.authUC, c.registry, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		core:   c,
		logger: logger,
	}, nil
}

// TelegramApp is a telegram bot with the resources it holds
type TelegramApp struct {
	Bot    telegram.Bot
	Logger *zap.Logger
	core   *core
}

// Close releases database and client connections
func (t *TelegramApp) Close() error {
	return t.core.close()
}

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (*TelegramApp, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.TelegramCfg.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required to run the bot")
	}

	c, err := loadCore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	stateRepo := repository.NewTelegramStateRepository(c.db)

	bot, err := telegram.NewBot(&cfg.TelegramCfg, stateRepo, c.chatUC, func() string {
		return c.chatUC.NewSession(ctx)
	}, c.logger)
	if err != nil {
		_ = c.close()
		return nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	c.logger.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &TelegramApp{Bot: bot, Logger: c.logger, core: c}, nil
}

// Ingestor loads documents into the passage index
type Ingestor struct {
	Loader  *ingest.Loader
	Indexer *ingest.Indexer
	Logger  *zap.Logger
	core    *core
}

// Count returns the number of indexed passages
func (i *Ingestor) Count(ctx context.Context) (int64, error) {
	return i.core.passages.Count(ctx)
}

func (i *Ingestor) Close() error {
	return i.core.close()
}

// BuildIngestor wires the ingestion pipeline for the given environment
func BuildIngestor(environment string, batchSize int) (*Ingestor, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfigFor(environment)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	c, err := loadCore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if c.passages == nil {
		_ = c.close()
		return nil, fmt.Errorf("ingestion needs an embedder: set GOOGLE_API_KEY or ENABLE_MOCKS")
	}

	splitter, err := ingest.NewSplitter(cfg.ChatCfg.ChunkSize, cfg.ChatCfg.ChunkOverlap)
	if err != nil {
		_ = c.close()
		return nil, fmt.Errorf("create splitter: %w", err)
	}

	return &Ingestor{
		Loader:  ingest.NewLoader(cfg.Categories),
		Indexer: ingest.NewIndexer(c.embedder, c.passages, splitter, batchSize, &cfg.EmbeddingCfg.Retry),
		Logger:  c.logger,
		core:    c,
	}, nil
}

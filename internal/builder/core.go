package builder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/futig/lawgpt-backend/internal/config"
	"github.com/futig/lawgpt-backend/internal/integration/embedding"
	"github.com/futig/lawgpt-backend/internal/integration/llm"
	"github.com/futig/lawgpt-backend/internal/integration/rag"
	"github.com/futig/lawgpt-backend/internal/memory"
	"github.com/futig/lawgpt-backend/internal/pkg/logger"
	"github.com/futig/lawgpt-backend/internal/pkg/metrics"
	"github.com/futig/lawgpt-backend/internal/repository"
	"github.com/futig/lawgpt-backend/internal/usecase/auth"
	"github.com/futig/lawgpt-backend/internal/usecase/chat"
	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// core holds the components shared by the HTTP server, the telegram bot
// and the ingestion command
type core struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *pgxpool.Pool
	redis    *redis.Client
	genai    *genai.Client
	registry *prometheus.Registry

	embedder embedding.Embedder
	passages *repository.PassagePgvector
	chatUC   *chat.ChatUsecase
	authUC   *auth.AuthUsecase
}

// close releases connections in reverse order of creation
func (c *core) close() error {
	var errs []error
	if c.genai != nil {
		if err := c.genai.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close genai client: %w", err))
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if c.db != nil {
		c.db.Close()
	}
	return errors.Join(errs...)
}

func loadCore(ctx context.Context, cfg *config.Config) (*core, error) {
	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	c := &core{cfg: cfg, logger: log}
	if err := c.init(ctx); err != nil {
		_ = c.close()
		return nil, err
	}

	return c, nil
}

func (c *core) init(ctx context.Context) error {
	cfg, log := c.cfg, c.logger

	log.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.Bool("mocks", cfg.EnableMocks),
	)

	// Setup database connection
	db, err := setupDatabase(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("setup database: %w", err)
	}
	c.db = db

	// Run database migrations
	log.Info("Running database migrations")
	if err := repository.RunMigrations(cfg.DatabaseURL, repository.DefaultMigrationsSource); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("Database migrations completed successfully")

	c.registry = prometheus.NewRegistry()
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(c.registry)

	if !cfg.EnableMocks && cfg.GoogleAPIKey != "" {
		client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GoogleAPIKey))
		if err != nil {
			return fmt.Errorf("create genai client: %w", err)
		}
		c.genai = client
	}

	// Language models
	var model, translationModel chat.LanguageModel
	if cfg.EnableMocks {
		log.Info("Using mock connectors for external services")
		model = llm.NewMockConnector(log)
		c.embedder = embedding.NewMockEmbedder()
	} else {
		log.Info("Using real connectors for external services", zap.String("llm_provider", cfg.LLMCfg.Provider))
		model, translationModel = c.languageModels()
		if c.genai != nil {
			c.embedder = embedding.NewGeminiEmbedder(c.genai, cfg.EmbeddingCfg.Model, log)
		}
	}

	// Retriever
	var retriever chat.Retriever
	switch {
	case cfg.EnableMocks:
		retriever = rag.NewMockConnector(log)
	case cfg.RAGCfg.Backend == "http":
		retriever = rag.NewConnector(cfg.RAGCfg, log)
	default:
		c.passages = repository.NewPassagePgvector(db, c.embedder, embedding.Dimensions, cfg.ChatCfg.CategoryBoost)
		retriever = c.passages
	}
	if c.passages == nil && c.embedder != nil {
		c.passages = repository.NewPassagePgvector(db, c.embedder, embedding.Dimensions, cfg.ChatCfg.CategoryBoost)
	}

	// Conversation memory
	var store chat.MemoryStore
	var chatOpts []chat.Option
	switch cfg.ChatCfg.MemoryBackend {
	case "redis":
		rdb, err := setupRedis(ctx, cfg.RedisURL, log)
		if err != nil {
			return fmt.Errorf("setup redis: %w", err)
		}
		c.redis = rdb
		store = memory.NewRedisStore(rdb, cfg.ChatCfg.MemoryWindow, cfg.ChatCfg.MemoryTTL)
		lockTTL := pipelineCalls*cfg.ChatCfg.CallTimeout + 5*time.Second
		chatOpts = append(chatOpts, chat.WithSessionLocker(memory.NewRedisLocker(rdb, lockTTL)))
	default:
		cacheStore := memory.NewCacheStore(cfg.ChatCfg.MemoryWindow, cfg.ChatCfg.MemoryTTL)
		metrics.RegisterSessionGauge(c.registry, cacheStore.Sessions)
		store = cacheStore
	}
	log.Info("Conversation memory initialized", zap.String("backend", cfg.ChatCfg.MemoryBackend))

	// Initialize use cases
	c.chatUC = chat.NewUsecase(
		chat.Config{
			Categories:        cfg.Categories,
			Languages:         cfg.Languages,
			RetrievalK:        cfg.ChatCfg.RetrievalK,
			MemoryWindow:      cfg.ChatCfg.MemoryWindow,
			CallTimeout:       cfg.ChatCfg.CallTimeout,
			EnableTranslation: cfg.ChatCfg.EnableTranslation,
		},
		retriever,
		model,
		translationModel,
		store,
		nil,
		repository.NewChatMessagePostgres(db),
		m,
		log,
		chatOpts...,
	)

	c.authUC = auth.NewUsecase(
		auth.Config{
			JWTSecret:      cfg.AuthCfg.JWTSecret,
			AccessTokenTTL: cfg.AuthCfg.AccessTokenTTL,
			BcryptCost:     cfg.AuthCfg.BcryptCost,
		},
		repository.NewUserPostgres(db),
		log,
	)
	log.Info("Use cases initialized")

	return nil
}

// languageModels returns the answering model and, when configured, a
// separate translation model from the same provider
func (c *core) languageModels() (chat.LanguageModel, chat.LanguageModel) {
	cfg := c.cfg.LLMCfg

	if cfg.Provider == "gemini" {
		model := llm.NewGeminiConnector(c.genai, cfg.Model, cfg.Temperature, c.logger)
		if cfg.TranslationModel == "" {
			return model, nil
		}
		return model, llm.NewGeminiConnector(c.genai, cfg.TranslationModel, cfg.Temperature, c.logger)
	}

	client := llm.NewGroqClient(c.cfg.GroqAPIKey, cfg.GroqBaseURL)
	model := llm.NewGroqConnector(client, cfg.Model, cfg.Temperature, c.logger)
	if cfg.TranslationModel == "" {
		return model, nil
	}
	return model, llm.NewGroqConnector(client, cfg.TranslationModel, cfg.Temperature, c.logger)
}

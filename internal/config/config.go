package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/lawgpt-backend/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr  string   `env:"SERVER_ADDR,notEmpty"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	StaticDir   string   `env:"STATIC_DIR" envDefault:"static"`

	// Database configuration
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
	DBConnectRetry      pkgRetry.RetryConfig `envPrefix:"DB_CONNECT_RETRY_"`

	// Redis is only required for the redis memory backend
	RedisURL string `env:"REDIS_URL"`

	// Chat pipeline configuration
	ChatCfg ChatConfig `envPrefix:"CHAT_"`

	// External service configurations
	LLMCfg       LLMConfig          `envPrefix:"LLM_"`
	EmbeddingCfg EmbeddingConfig    `envPrefix:"EMBEDDING_"`
	RAGCfg       RAGConnectorConfig `envPrefix:"RAG_"`

	// API keys
	GoogleAPIKey string `env:"GOOGLE_API_KEY"`
	GroqAPIKey   string `env:"GROQ_API_KEY"`

	// Auth configuration
	AuthCfg AuthConfig `envPrefix:"AUTH_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Telegram bot configuration (optional)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Legal categories and languages (loaded from YAML file)
	Categories []string
	Languages  map[string]string

	// Environment (set from flag, not from env var)
	Environment string
}

// ChatConfig configures the retrieval pipeline
type ChatConfig struct {
	RetrievalK        int           `env:"RETRIEVAL_K" envDefault:"4"`
	MemoryWindow      int           `env:"MEMORY_WINDOW" envDefault:"2"`
	MemoryTTL         time.Duration `env:"MEMORY_TTL" envDefault:"30m"`
	MemoryBackend     string        `env:"MEMORY_BACKEND" envDefault:"cache"`
	EnableTranslation bool          `env:"ENABLE_TRANSLATION" envDefault:"true"`
	CallTimeout       time.Duration `env:"CALL_TIMEOUT" envDefault:"30s"`
	CategoryBoost     float64       `env:"CATEGORY_BOOST" envDefault:"0.05"`
	ChunkSize         int           `env:"CHUNK_SIZE" envDefault:"1000"`
	ChunkOverlap      int           `env:"CHUNK_OVERLAP" envDefault:"200"`
	CategoriesFile    string        `env:"CATEGORIES_FILE" envDefault:"internal/config/categories.yaml"`
}

// LLMConfig selects the language model provider
type LLMConfig struct {
	Provider         string  `env:"PROVIDER" envDefault:"groq"`
	Model            string  `env:"MODEL" envDefault:"llama3-70b-8192"`
	TranslationModel string  `env:"TRANSLATION_MODEL"`
	Temperature      float32 `env:"TEMPERATURE" envDefault:"0.2"`
	GroqBaseURL      string  `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
}

type EmbeddingConfig struct {
	Model string               `env:"MODEL" envDefault:"text-embedding-004"`
	Retry pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// RAGConnectorConfig configures the retriever backend.
// Backend "pgvector" searches the local passages table,
// "http" delegates to a remote retrieval service.
type RAGConnectorConfig struct {
	HTTPClientConfig
	Backend        string `env:"BACKEND" envDefault:"pgvector"`
	SearchEndpoint string `env:"SEARCH_ENDPOINT" envDefault:"/search"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"30s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

type AuthConfig struct {
	JWTSecret      string        `env:"JWT_SECRET,notEmpty"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"24h"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"12"`
	RateLimit      int           `env:"RATE_LIMIT" envDefault:"60"`
	RateWindow     time.Duration `env:"RATE_WINDOW" envDefault:"1m"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken           string `env:"BOT_TOKEN"`
	UpdateTimeout      int    `env:"UPDATE_TIMEOUT" envDefault:"60"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int    `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    int    `env:"SHUTDOWN_TIMEOUT" envDefault:"30"` // seconds
}

// LoadConfig parses the -env flag and loads configuration for it
func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	return LoadConfigFor(*envFlag)
}

// LoadConfigFor loads configuration for the given environment name.
// Commands with their own flag parsing call it directly.
func LoadConfigFor(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := loadCatalog(cfg); err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	// Validate chat pipeline configuration
	if cfg.ChatCfg.RetrievalK < 1 || cfg.ChatCfg.RetrievalK > 50 {
		errors = append(errors, fmt.Sprintf("CHAT_RETRIEVAL_K must be between 1 and 50, got %d", cfg.ChatCfg.RetrievalK))
	}

	if cfg.ChatCfg.MemoryWindow < 1 || cfg.ChatCfg.MemoryWindow > 20 {
		errors = append(errors, fmt.Sprintf("CHAT_MEMORY_WINDOW must be between 1 and 20, got %d", cfg.ChatCfg.MemoryWindow))
	}

	if cfg.ChatCfg.CallTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("CHAT_CALL_TIMEOUT must be positive, got %s", cfg.ChatCfg.CallTimeout))
	}

	if cfg.ChatCfg.ChunkOverlap < 0 || cfg.ChatCfg.ChunkOverlap >= cfg.ChatCfg.ChunkSize {
		errors = append(errors, fmt.Sprintf("CHAT_CHUNK_OVERLAP must be between 0 and CHAT_CHUNK_SIZE(%d), got %d", cfg.ChatCfg.ChunkSize, cfg.ChatCfg.ChunkOverlap))
	}

	switch cfg.ChatCfg.MemoryBackend {
	case "cache":
	case "redis":
		if cfg.RedisURL == "" {
			errors = append(errors, "REDIS_URL is required when CHAT_MEMORY_BACKEND=redis")
		}
	default:
		errors = append(errors, fmt.Sprintf("CHAT_MEMORY_BACKEND must be cache or redis, got %q", cfg.ChatCfg.MemoryBackend))
	}

	// Validate external services, mocks need no credentials
	if !cfg.EnableMocks {
		switch cfg.LLMCfg.Provider {
		case "gemini":
			if cfg.GoogleAPIKey == "" {
				errors = append(errors, "GOOGLE_API_KEY is required for LLM_PROVIDER=gemini")
			}
		case "groq":
			if cfg.GroqAPIKey == "" {
				errors = append(errors, "GROQ_API_KEY is required for LLM_PROVIDER=groq")
			}
		default:
			errors = append(errors, fmt.Sprintf("LLM_PROVIDER must be gemini or groq, got %q", cfg.LLMCfg.Provider))
		}

		switch cfg.RAGCfg.Backend {
		case "pgvector":
			if cfg.GoogleAPIKey == "" {
				errors = append(errors, "GOOGLE_API_KEY is required for embeddings with RAG_BACKEND=pgvector")
			}
		case "http":
			if cfg.RAGCfg.Url == "" {
				errors = append(errors, "RAG_SERVICE_URL is required for RAG_BACKEND=http")
			}
		default:
			errors = append(errors, fmt.Sprintf("RAG_BACKEND must be pgvector or http, got %q", cfg.RAGCfg.Backend))
		}
	}

	// Validate Database configuration
	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
		errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		ServerAddr:  ":8000",
		DatabaseURL: "postgres://localhost/lawgpt",
		DBMaxConns:  25,
		DBMinConns:  5,
		EnableMocks: true,
		ChatCfg: ChatConfig{
			RetrievalK:    4,
			MemoryWindow:  2,
			MemoryBackend: "cache",
			CallTimeout:   30 * time.Second,
			ChunkSize:     1000,
			ChunkOverlap:  200,
		},
		LLMCfg: LLMConfig{Provider: "groq"},
		RAGCfg: RAGConnectorConfig{Backend: "pgvector"},
		TelegramCfg: TelegramConfig{
			RateLimitPerMinute: 20,
		},
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "retrieval k out of range",
			mutate:  func(c *Config) { c.ChatCfg.RetrievalK = 0 },
			wantErr: "CHAT_RETRIEVAL_K",
		},
		{
			name:    "overlap not below chunk size",
			mutate:  func(c *Config) { c.ChatCfg.ChunkOverlap = 1000 },
			wantErr: "CHAT_CHUNK_OVERLAP",
		},
		{
			name:    "redis backend without url",
			mutate:  func(c *Config) { c.ChatCfg.MemoryBackend = "redis" },
			wantErr: "REDIS_URL",
		},
		{
			name:    "unknown memory backend",
			mutate:  func(c *Config) { c.ChatCfg.MemoryBackend = "disk" },
			wantErr: "CHAT_MEMORY_BACKEND",
		},
		{
			name: "groq without key",
			mutate: func(c *Config) {
				c.EnableMocks = false
				c.GoogleAPIKey = "g"
			},
			wantErr: "GROQ_API_KEY",
		},
		{
			name: "http retriever without url",
			mutate: func(c *Config) {
				c.EnableMocks = false
				c.GroqAPIKey = "k"
				c.RAGCfg.Backend = "http"
			},
			wantErr: "RAG_SERVICE_URL",
		},
		{
			name: "real providers configured",
			mutate: func(c *Config) {
				c.EnableMocks = false
				c.GroqAPIKey = "k"
				c.GoogleAPIKey = "g"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadCatalog_DefaultsWhenMissing(t *testing.T) {
	catalog, err := ReadCatalog(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, defaultCategories, catalog.Categories)
	assert.Equal(t, "hi", catalog.Languages["Hindi"])
}

func TestReadCatalog_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	content := "categories:\n  - Tax Law\n  - Labour Law\nlanguages:\n  English: en\n  Tamil: ta\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	catalog, err := ReadCatalog(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Tax Law", "Labour Law"}, catalog.Categories)
	assert.Equal(t, map[string]string{"English": "en", "Tamil": "ta"}, catalog.Languages)
}

func TestReadCatalog_Invalid(t *testing.T) {
	dir := t.TempDir()

	dup := filepath.Join(dir, "dup.yaml")
	require.NoError(t, os.WriteFile(dup, []byte("categories: [Cyber Law, Cyber Law]\n"), 0o600))
	_, err := ReadCatalog(dup)
	assert.ErrorContains(t, err, "duplicate category")

	noEnglish := filepath.Join(dir, "lang.yaml")
	require.NoError(t, os.WriteFile(noEnglish, []byte("languages:\n  Hindi: hi\n"), 0o600))
	_, err = ReadCatalog(noEnglish)
	assert.ErrorContains(t, err, "English")

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("categories: [unterminated\n"), 0o600))
	_, err = ReadCatalog(broken)
	assert.Error(t, err)
}

func TestGetEnvFile(t *testing.T) {
	assert.Equal(t, ".env.prod", getEnvFile("production"))
	assert.Equal(t, ".env.local", getEnvFile("dev"))
	assert.Equal(t, ".env.staging", getEnvFile("staging"))
}

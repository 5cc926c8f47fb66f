package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// GroqConnector talks to Groq through its OpenAI compatible API
type GroqConnector struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// NewGroqClient builds an OpenAI client pointed at baseURL
func NewGroqClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return openai.NewClientWithConfig(cfg)
}

func NewGroqConnector(client *openai.Client, model string, temperature float32, logger *zap.Logger) *GroqConnector {
	return &GroqConnector{
		client:      client,
		model:       model,
		temperature: temperature,
		logger:      logger,
	}
}

func (c *GroqConnector) Generate(ctx context.Context, prompt entity.Prompt) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if prompt.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt.User,
	})

	ctxzap.Debug(ctx, "calling groq",
		zap.String("model", c.model),
		zap.String("purpose", string(prompt.Purpose)),
	)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("groq completion: status %d: %w", apiErr.HTTPStatusCode, err)
		}
		return "", fmt.Errorf("groq completion: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", entity.ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

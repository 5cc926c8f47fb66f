package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/google/generative-ai-go/genai"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// GeminiConnector completes prompts with a Gemini generative model
type GeminiConnector struct {
	client      *genai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

func NewGeminiConnector(client *genai.Client, model string, temperature float32, logger *zap.Logger) *GeminiConnector {
	return &GeminiConnector{
		client:      client,
		model:       model,
		temperature: temperature,
		logger:      logger,
	}
}

func (c *GeminiConnector) Generate(ctx context.Context, prompt entity.Prompt) (string, error) {
	// GenerativeModel carries per-call state, so every call gets its own
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(c.temperature)
	if prompt.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(prompt.System)}}
	}

	ctxzap.Debug(ctx, "calling gemini",
		zap.String("model", c.model),
		zap.String("purpose", string(prompt.Purpose)),
	)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt.User))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop && cand.FinishReason != genai.FinishReasonUnspecified {
			ctxzap.Warn(ctx, "gemini stopped early", zap.String("finish_reason", cand.FinishReason.String()))
		}
	}

	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return "", entity.ErrEmptyResponse
	}

	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

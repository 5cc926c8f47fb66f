package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector answers without a model. Every query is judged relevant.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Generate(ctx context.Context, prompt entity.Prompt) (string, error) {
	ctxzap.Info(ctx, "[MOCK] generating completion", zap.String("purpose", string(prompt.Purpose)))

	switch prompt.Purpose {
	case entity.PurposeRelevance:
		return "YES", nil
	case entity.PurposeTranslation:
		return "[translated] " + lastParagraph(prompt.User), nil
	default:
		return fmt.Sprintf(
			"This is a mock answer to %q. Configure LLM_PROVIDER with real credentials to get grounded answers.",
			questionOf(prompt.User),
		), nil
	}
}

func lastParagraph(s string) string {
	if i := strings.Index(s, "\n\n"); i >= 0 {
		return s[i+2:]
	}
	return s
}

func questionOf(user string) string {
	const marker = "Question: "
	i := strings.LastIndex(user, marker)
	if i < 0 {
		return user
	}
	q := user[i+len(marker):]
	if j := strings.Index(q, "\n"); j >= 0 {
		q = q[:j]
	}
	return q
}

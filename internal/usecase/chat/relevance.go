package chat

import (
	"context"
	"strings"

	"github.com/futig/lawgpt-backend/internal/entity"
)

// ExactMatchClassifier asks the model for a bare YES/NO verdict.
// Only a response that is exactly "YES" after trimming and upper-casing
// counts as relevant; anything else rejects.
type ExactMatchClassifier struct {
	llm LanguageModel
}

func NewExactMatchClassifier(llm LanguageModel) *ExactMatchClassifier {
	return &ExactMatchClassifier{llm: llm}
}

func (c *ExactMatchClassifier) CheckRelevance(
	ctx context.Context, query string, category entity.Category,
) (entity.RelevanceVerdict, error) {
	response, err := c.llm.Generate(ctx, relevancePrompt(query, category))
	if err != nil {
		return entity.RelevanceVerdict{}, err
	}

	if strings.ToUpper(strings.TrimSpace(response)) == "YES" {
		return entity.RelevanceVerdict{IsRelevant: true}, nil
	}

	return entity.RelevanceVerdict{
		IsRelevant:       false,
		RejectionMessage: rejectionMessage(category),
	}, nil
}

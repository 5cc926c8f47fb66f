package chat

import (
	"context"
	"strings"

	"github.com/futig/lawgpt-backend/internal/entity"
)

// Translator renders English answers into the requested language
type Translator struct {
	llm     LanguageModel
	enabled bool
	guard   guard
}

// MaybeTranslate returns answer untouched for English or when translation
// is switched off. A failed translation is returned as an error, never
// replaced by the English text.
func (t *Translator) MaybeTranslate(ctx context.Context, answer, target string) (string, error) {
	if !t.enabled || target == "" || strings.EqualFold(target, entity.DefaultLanguage) {
		return answer, nil
	}

	var translated string
	err := t.guard.run(ctx, entity.StageTranslation, func(ctx context.Context) error {
		var err error
		translated, err = t.llm.Generate(ctx, translationPrompt(answer, target))
		if err == nil && strings.TrimSpace(translated) == "" {
			return entity.ErrEmptyResponse
		}
		return err
	})
	if err != nil {
		return "", err
	}

	return translated, nil
}

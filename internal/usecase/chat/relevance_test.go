package chat

import (
	"context"
	"testing"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExactMatchClassifier(t *testing.T) {
	tests := []struct {
		response string
		relevant bool
	}{
		{"YES", true},
		{"yes", true},
		{"  Yes \n", true},
		{"NO", false},
		{"YES.", false},
		{"YES, it is related", false},
		{"Maybe", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.response, func(t *testing.T) {
			llm := newFakeLLM()
			llm.responses[entity.PurposeRelevance] = tt.response

			verdict, err := NewExactMatchClassifier(llm).CheckRelevance(context.Background(), "What is bail?", "Criminal Law")
			require.NoError(t, err)

			assert.Equal(t, tt.relevant, verdict.IsRelevant)
			if tt.relevant {
				assert.Empty(t, verdict.RejectionMessage)
			} else {
				assert.Contains(t, verdict.RejectionMessage, "'Criminal Law' category")
			}
			assert.Equal(t, 1, llm.count(entity.PurposeRelevance))
		})
	}
}

func TestExactMatchClassifier_PromptNamesCategoryAndQuery(t *testing.T) {
	llm := newFakeLLM()

	_, err := NewExactMatchClassifier(llm).CheckRelevance(context.Background(), "Is phishing a crime?", "Cyber Law")
	require.NoError(t, err)

	p := llm.lastPrompt(entity.PurposeRelevance)
	assert.Contains(t, p.User, "Cyber Law")
	assert.Contains(t, p.User, "Is phishing a crime?")
	assert.Contains(t, p.System, "YES or NO")
}

func TestExactMatchClassifier_PropagatesError(t *testing.T) {
	llm := newFakeLLM()
	llm.errs[entity.PurposeRelevance] = errBoom

	_, err := NewExactMatchClassifier(llm).CheckRelevance(context.Background(), "q", "Cyber Law")
	assert.ErrorIs(t, err, errBoom)
}

func TestHistoryFromMessages(t *testing.T) {
	messages := []entity.Message{
		{Role: "assistant", Content: "Welcome"},
		{Role: "user", Content: "q1"},
		{Role: "assistant", Content: "a1"},
		{Role: "user", Content: "q2"},
		{Role: "bot", Content: "a2"},
		{Role: "user", Content: "q3"},
		{Role: "assistant", Content: "a3"},
		{Role: "user", Content: "dangling"},
	}

	history := historyFromMessages(messages, 2)
	assert.Equal(t, []entity.Exchange{
		{Question: "q2", Answer: "a2"},
		{Question: "q3", Answer: "a3"},
	}, history)
}

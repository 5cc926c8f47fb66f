package chat

import (
	"fmt"
	"strings"

	"github.com/futig/lawgpt-backend/internal/entity"
)

const relevanceSystemPrompt = `You are a strict classifier for a legal assistant.
You decide whether a user's question belongs to a given legal category.
Reply with exactly one word: YES or NO. Do not explain your answer.`

const answerSystemPrompt = `You are LawGPT, a legal information assistant for Indian law.
Use the following pieces of context to answer the question at the end.
If you don't know the answer, just say that you don't know, don't try to make up an answer.
Stay within the legal category given to you and keep the answer clear and practical.`

const translationSystemPrompt = `You are a professional legal translator.
Translate the text faithfully and keep legal terms, section numbers and names intact.
Only provide the translation, no explanations.`

const rejectionTemplate = "I'm sorry, but your question doesn't appear to be related to the '%s' category. " +
	"Please ask a question about %s or switch to a category that matches your question."

func relevancePrompt(query string, category entity.Category) entity.Prompt {
	return entity.Prompt{
		Purpose: entity.PurposeRelevance,
		System:  relevanceSystemPrompt,
		User: fmt.Sprintf(
			"Legal category: %s\nQuestion: %s\n\nIs this question related to the %s category? Answer YES or NO.",
			category, query, category,
		),
	}
}

func rejectionMessage(category entity.Category) string {
	return fmt.Sprintf(rejectionTemplate, category, category)
}

func answerPrompt(category entity.Category, history []entity.Exchange, passages []entity.RetrievedPassage, query string) entity.Prompt {
	var b strings.Builder

	if category != "" {
		fmt.Fprintf(&b, "Legal category: %s\n\n", category)
	}

	if len(history) > 0 {
		b.WriteString("Chat history:\n")
		for _, ex := range history {
			fmt.Fprintf(&b, "Human: %s\nAssistant: %s\n", ex.Question, ex.Answer)
		}
		b.WriteString("\n")
	}

	b.WriteString("Context:\n")
	if len(passages) == 0 {
		b.WriteString("(no relevant documents found)\n")
	}
	for i, p := range passages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(p.Text)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nQuestion: %s\nHelpful Answer:", query)

	return entity.Prompt{
		Purpose: entity.PurposeAnswer,
		System:  answerSystemPrompt,
		User:    b.String(),
	}
}

func translationPrompt(text, target string) entity.Prompt {
	return entity.Prompt{
		Purpose: entity.PurposeTranslation,
		System:  translationSystemPrompt,
		User: fmt.Sprintf(
			"Translate the following text from %s to %s.\n\n%s",
			entity.DefaultLanguage, target, text,
		),
	}
}

// historyFromMessages pairs client supplied user/assistant messages into exchanges
func historyFromMessages(messages []entity.Message, k int) []entity.Exchange {
	var (
		history []entity.Exchange
		pending *string
	)
	for _, m := range messages {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		switch strings.ToLower(m.Role) {
		case "user", "human":
			pending = &content
		case "assistant", "bot", "ai":
			if pending != nil {
				history = append(history, entity.Exchange{Question: *pending, Answer: content})
				pending = nil
			}
		}
	}
	if len(history) > k {
		history = history[len(history)-k:]
	}
	return history
}

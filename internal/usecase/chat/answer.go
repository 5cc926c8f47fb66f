package chat

import (
	"context"
	"strings"
	"time"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Answerer grounds the model on retrieved passages and the session memory
type Answerer struct {
	retriever Retriever
	llm       LanguageModel
	memory    MemoryStore
	k         int
	window    int
	guard     guard
	now       func() time.Time
}

// Answer retrieves passages, generates an answer and records the exchange.
// The returned sources are deduplicated in first-seen order.
func (a *Answerer) Answer(ctx context.Context, turn entity.ChatTurn) (string, []string, error) {
	var passages []entity.RetrievedPassage
	err := a.guard.run(ctx, entity.StageRetrieval, func(ctx context.Context) error {
		var err error
		passages, err = a.retriever.Search(ctx, entity.SearchQuery{
			Text:     turn.Query,
			Category: turn.Category,
			K:        a.k,
		})
		return err
	})
	if err != nil {
		return "", nil, err
	}

	var history []entity.Exchange
	err = a.guard.run(ctx, entity.StageMemory, func(ctx context.Context) error {
		var err error
		history, err = a.memory.Window(ctx, turn.SessionID)
		return err
	})
	if err != nil {
		return "", nil, err
	}
	if len(history) == 0 && len(turn.PriorMessages) > 0 {
		history = historyFromMessages(turn.PriorMessages, a.window)
	}

	ctxzap.Debug(ctx, "answering",
		zap.Int("passages", len(passages)),
		zap.Int("history", len(history)),
	)

	var answer string
	err = a.guard.run(ctx, entity.StageGeneration, func(ctx context.Context) error {
		var err error
		answer, err = a.llm.Generate(ctx, answerPrompt(turn.Category, history, passages, turn.Query))
		if err == nil && strings.TrimSpace(answer) == "" {
			return entity.ErrEmptyResponse
		}
		return err
	})
	if err != nil {
		return "", nil, err
	}

	err = a.guard.run(ctx, entity.StageMemory, func(ctx context.Context) error {
		return a.memory.Append(ctx, turn.SessionID, entity.Exchange{
			Question:  turn.Query,
			Answer:    answer,
			CreatedAt: a.now(),
		})
	})
	if err != nil {
		return "", nil, err
	}

	return answer, dedupSources(passages), nil
}

// dedupSources keeps the first occurrence of every non-empty source
func dedupSources(passages []entity.RetrievedPassage) []string {
	sources := make([]string, 0, len(passages))
	seen := make(map[string]struct{}, len(passages))
	for _, p := range passages {
		if p.Source == "" {
			continue
		}
		if _, ok := seen[p.Source]; ok {
			continue
		}
		seen[p.Source] = struct{}{}
		sources = append(sources, p.Source)
	}
	return sources
}

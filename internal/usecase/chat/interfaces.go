package chat

import (
	"context"

	"github.com/futig/lawgpt-backend/internal/entity"
)

// Retriever returns the top-k passages for a query, most relevant first
type Retriever interface {
	Search(ctx context.Context, q entity.SearchQuery) ([]entity.RetrievedPassage, error)
}

// LanguageModel completes a single prompt. An empty completion is an error.
type LanguageModel interface {
	Generate(ctx context.Context, prompt entity.Prompt) (string, error)
}

type MemoryStore interface {
	Window(ctx context.Context, sessionID string) ([]entity.Exchange, error)
	Append(ctx context.Context, sessionID string, ex entity.Exchange) error
}

// RelevanceClassifier decides whether a query belongs to a legal category
type RelevanceClassifier interface {
	CheckRelevance(ctx context.Context, query string, category entity.Category) (entity.RelevanceVerdict, error)
}

type TranscriptRepository interface {
	SaveEntry(ctx context.Context, entry entity.TranscriptEntry) error
	ListBySession(ctx context.Context, sessionID string) ([]entity.TranscriptEntry, error)
}

// SessionLocker serializes turns of one session. Lock blocks until the
// session is free or ctx is done and returns the release func.
type SessionLocker interface {
	Lock(ctx context.Context, sessionID string) (func(), error)
}

package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/futig/lawgpt-backend/internal/pkg/keylock"
	"github.com/futig/lawgpt-backend/internal/pkg/metrics"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Config tunes the pipeline
type Config struct {
	Categories        []string
	Languages         map[string]string
	RetrievalK        int
	MemoryWindow      int
	CallTimeout       time.Duration
	EnableTranslation bool
	// LockTimeout bounds the wait for a concurrent turn of the same session.
	// Zero means turnCalls*CallTimeout.
	LockTimeout time.Duration
}

// turnCalls is the number of guarded upstream calls one turn can make
const turnCalls = 4

// Option customizes a ChatUsecase
type Option func(*ChatUsecase)

// WithSessionLocker replaces the in-process session lock, e.g. with one
// shared by every replica
func WithSessionLocker(l SessionLocker) Option {
	return func(uc *ChatUsecase) { uc.locks = l }
}

// ChatUsecase runs chat turns: relevance gate, retrieval-augmented
// answering and translation, serialized per session
type ChatUsecase struct {
	classifier  RelevanceClassifier
	answerer    *Answerer
	translator  *Translator
	transcripts TranscriptRepository
	locks       SessionLocker
	lockWait    time.Duration
	guard       guard
	metrics     *metrics.Metrics

	categories map[entity.Category]struct{}
	catList    []string
	languages  map[string]string
	logger     *zap.Logger
}

// NewUsecase creates a new chat use case. translationLLM may be the same
// model as llm; classifier defaults to ExactMatchClassifier over llm and
// transcripts may be nil to disable recording.
func NewUsecase(
	cfg Config,
	retriever Retriever,
	llm LanguageModel,
	translationLLM LanguageModel,
	memory MemoryStore,
	classifier RelevanceClassifier,
	transcripts TranscriptRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
	opts ...Option,
) *ChatUsecase {
	if classifier == nil {
		classifier = NewExactMatchClassifier(llm)
	}
	if translationLLM == nil {
		translationLLM = llm
	}

	g := guard{timeout: cfg.CallTimeout, metrics: m}

	categories := make(map[entity.Category]struct{}, len(cfg.Categories))
	for _, c := range cfg.Categories {
		categories[entity.Category(c)] = struct{}{}
	}

	lockWait := cfg.LockTimeout
	if lockWait <= 0 {
		lockWait = turnCalls * cfg.CallTimeout
	}

	uc := &ChatUsecase{
		classifier: classifier,
		answerer: &Answerer{
			retriever: retriever,
			llm:       llm,
			memory:    memory,
			k:         cfg.RetrievalK,
			window:    cfg.MemoryWindow,
			guard:     g,
			now:       time.Now,
		},
		translator: &Translator{
			llm:     translationLLM,
			enabled: cfg.EnableTranslation,
			guard:   g,
		},
		transcripts: transcripts,
		locks:       keylock.New(),
		lockWait:    lockWait,
		guard:       g,
		metrics:     m,
		categories:  categories,
		catList:     append([]string(nil), cfg.Categories...),
		languages:   cfg.Languages,
		logger:      logger,
	}
	for _, o := range opts {
		o(uc)
	}

	return uc
}

// RunChatTurn executes one turn of the pipeline.
// A relevance rejection is a normal result with Rejected set and no sources.
func (uc *ChatUsecase) RunChatTurn(ctx context.Context, turn entity.ChatTurn, opts entity.ChatOptions) (*entity.ChatResult, error) {
	if strings.TrimSpace(turn.Query) == "" {
		return nil, fmt.Errorf("query: %w", entity.ErrMissingField)
	}
	if strings.TrimSpace(turn.SessionID) == "" {
		return nil, fmt.Errorf("session_id: %w", entity.ErrMissingField)
	}
	if turn.Language == "" {
		turn.Language = entity.DefaultLanguage
	}
	if err := uc.ValidateLanguage(turn.Language); err != nil {
		return nil, err
	}
	if opts.StrictCategoryCheck {
		if err := uc.ValidateCategory(turn.Category); err != nil {
			return nil, err
		}
	}

	unlock, err := uc.lockSession(ctx, turn.SessionID)
	if err != nil {
		uc.metrics.Turn(metrics.OutcomeFailed)
		return nil, err
	}
	defer unlock()

	result, err := uc.runLocked(ctx, turn, opts)
	if err != nil {
		uc.metrics.Turn(metrics.OutcomeFailed)
		return nil, err
	}

	if result.Rejected {
		uc.metrics.Turn(metrics.OutcomeRejected)
	} else {
		uc.metrics.Turn(metrics.OutcomeCompleted)
	}

	uc.record(ctx, turn, opts, result)

	return result, nil
}

// lockSession waits for earlier turns of the session to finish.
// A wait that outlives lockWait or ctx fails as an upstream timeout.
func (uc *ChatUsecase) lockSession(ctx context.Context, sessionID string) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, uc.lockWait)
	defer cancel()

	unlock, err := uc.locks.Lock(lockCtx, sessionID)
	if err == nil {
		return unlock, nil
	}

	timedOut := errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(lockCtx.Err(), context.DeadlineExceeded)
	ctxzap.Warn(ctx, "session lock not acquired",
		zap.String("session_id", sessionID),
		zap.Bool("timeout", timedOut),
		zap.Error(err),
	)

	return nil, &entity.UpstreamError{Stage: entity.StageSession, Timeout: timedOut, Err: err}
}

func (uc *ChatUsecase) runLocked(ctx context.Context, turn entity.ChatTurn, opts entity.ChatOptions) (*entity.ChatResult, error) {
	if opts.StrictCategoryCheck {
		var verdict entity.RelevanceVerdict
		err := uc.guard.run(ctx, entity.StageRelevance, func(ctx context.Context) error {
			var err error
			verdict, err = uc.classifier.CheckRelevance(ctx, turn.Query, turn.Category)
			return err
		})
		if err != nil {
			return nil, err
		}

		if !verdict.IsRelevant {
			ctxzap.Info(ctx, "query rejected by relevance gate",
				zap.String("category", string(turn.Category)))
			return &entity.ChatResult{
				Answer:   verdict.RejectionMessage,
				Sources:  []string{},
				Rejected: true,
			}, nil
		}
	}

	answer, sources, err := uc.answerer.Answer(ctx, turn)
	if err != nil {
		return nil, err
	}

	final, err := uc.translator.MaybeTranslate(ctx, answer, turn.Language)
	if err != nil {
		return nil, err
	}

	return &entity.ChatResult{Answer: final, Sources: sources}, nil
}

// record persists the completed turn. Failures are logged only.
func (uc *ChatUsecase) record(ctx context.Context, turn entity.ChatTurn, opts entity.ChatOptions, result *entity.ChatResult) {
	if uc.transcripts == nil {
		return
	}

	entry := entity.TranscriptEntry{
		ID:        uuid.New().String(),
		SessionID: turn.SessionID,
		UserID:    opts.UserID,
		Query:     turn.Query,
		Category:  turn.Category,
		Language:  turn.Language,
		Answer:    result.Answer,
		Sources:   result.Sources,
		Rejected:  result.Rejected,
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.transcripts.SaveEntry(ctx, entry); err != nil {
		ctxzap.Warn(ctx, "failed to record transcript", zap.Error(err))
	}
}

// ValidateCategory checks the category against the configured set
func (uc *ChatUsecase) ValidateCategory(category entity.Category) error {
	if _, ok := uc.categories[category]; !ok {
		return fmt.Errorf("%w: %q", entity.ErrInvalidCategory, category)
	}
	return nil
}

// ValidateLanguage checks the language against the supported set
func (uc *ChatUsecase) ValidateLanguage(language string) error {
	if _, ok := uc.languages[language]; !ok {
		return fmt.Errorf("%w: %q", entity.ErrInvalidLanguage, language)
	}
	return nil
}

// Categories returns the configured categories in configuration order
func (uc *ChatUsecase) Categories() []string {
	return append([]string(nil), uc.catList...)
}

// Languages returns supported languages mapped to their codes
func (uc *ChatUsecase) Languages() map[string]string {
	out := make(map[string]string, len(uc.languages))
	for name, code := range uc.languages {
		out[name] = code
	}
	return out
}

// LanguageNames returns supported language names, English first
func (uc *ChatUsecase) LanguageNames() []string {
	names := make([]string, 0, len(uc.languages))
	for name := range uc.languages {
		if name != entity.DefaultLanguage {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append([]string{entity.DefaultLanguage}, names...)
}

// NewSession returns a fresh session identifier
func (uc *ChatUsecase) NewSession(_ context.Context) string {
	return uuid.New().String()
}

// Transcript returns the recorded turns of a session, oldest first
func (uc *ChatUsecase) Transcript(ctx context.Context, sessionID string) ([]entity.TranscriptEntry, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session_id: %w", entity.ErrMissingField)
	}
	if uc.transcripts == nil {
		return nil, entity.ErrSessionNotFound
	}

	entries, err := uc.transcripts.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list transcript: %w", err)
	}
	if len(entries) == 0 {
		return nil, entity.ErrSessionNotFound
	}

	return entries, nil
}

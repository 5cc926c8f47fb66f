package chat

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/futig/lawgpt-backend/internal/memory"
	"go.uber.org/zap"
)

type fakeRetriever struct {
	mu       sync.Mutex
	passages []entity.RetrievedPassage
	err      error
	calls    int
	queries  []entity.SearchQuery
}

func (f *fakeRetriever) Search(_ context.Context, q entity.SearchQuery) ([]entity.RetrievedPassage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.passages, nil
}

func (f *fakeRetriever) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeLLM answers by prompt purpose and counts calls per purpose
type fakeLLM struct {
	mu        sync.Mutex
	responses map[entity.PromptPurpose]string
	errs      map[entity.PromptPurpose]error
	block     map[entity.PromptPurpose]bool
	delay     time.Duration
	calls     map[entity.PromptPurpose]int
	prompts   []entity.Prompt

	inflight    int32
	maxInflight int32
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{
		responses: map[entity.PromptPurpose]string{
			entity.PurposeRelevance:   "YES",
			entity.PurposeAnswer:      "Bail is the conditional release of an accused person.",
			entity.PurposeTranslation: "जमानत एक अभियुक्त व्यक्ति की सशर्त रिहाई है।",
		},
		errs:  map[entity.PromptPurpose]error{},
		block: map[entity.PromptPurpose]bool{},
		calls: map[entity.PromptPurpose]int{},
	}
}

func (f *fakeLLM) Generate(ctx context.Context, p entity.Prompt) (string, error) {
	n := atomic.AddInt32(&f.inflight, 1)
	defer atomic.AddInt32(&f.inflight, -1)
	for {
		m := atomic.LoadInt32(&f.maxInflight)
		if n <= m || atomic.CompareAndSwapInt32(&f.maxInflight, m, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls[p.Purpose]++
	f.prompts = append(f.prompts, p)
	resp, err, block, delay := f.responses[p.Purpose], f.errs[p.Purpose], f.block[p.Purpose], f.delay
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return resp, err
}

func (f *fakeLLM) count(p entity.PromptPurpose) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[p]
}

func (f *fakeLLM) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeLLM) lastPrompt(p entity.PromptPurpose) entity.Prompt {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.prompts) - 1; i >= 0; i-- {
		if f.prompts[i].Purpose == p {
			return f.prompts[i]
		}
	}
	return entity.Prompt{}
}

type failingMemory struct {
	windowErr error
	appendErr error
}

func (m *failingMemory) Window(context.Context, string) ([]entity.Exchange, error) {
	return nil, m.windowErr
}

func (m *failingMemory) Append(context.Context, string, entity.Exchange) error {
	return m.appendErr
}

type fakeTranscripts struct {
	mu      sync.Mutex
	entries []entity.TranscriptEntry
	err     error
}

func (f *fakeTranscripts) SaveEntry(_ context.Context, e entity.TranscriptEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeTranscripts) ListBySession(_ context.Context, sessionID string) ([]entity.TranscriptEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.TranscriptEntry
	for _, e := range f.entries {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

var errBoom = errors.New("boom")

type harness struct {
	uc          *ChatUsecase
	retriever   *fakeRetriever
	llm         *fakeLLM
	memory      MemoryStore
	transcripts *fakeTranscripts
	ucOpts      []Option
}

type harnessOption func(*Config, *harness)

func withTranslationDisabled() harnessOption {
	return func(c *Config, _ *harness) { c.EnableTranslation = false }
}

func withTimeout(d time.Duration) harnessOption {
	return func(c *Config, _ *harness) { c.CallTimeout = d }
}

func withMemory(m MemoryStore) harnessOption {
	return func(_ *Config, h *harness) { h.memory = m }
}

func withLockTimeout(d time.Duration) harnessOption {
	return func(c *Config, _ *harness) { c.LockTimeout = d }
}

func withLocker(l SessionLocker) harnessOption {
	return func(_ *Config, h *harness) { h.ucOpts = append(h.ucOpts, WithSessionLocker(l)) }
}

func newHarness(opts ...harnessOption) *harness {
	cfg := Config{
		Categories: []string{
			"Know Your Rights", "Criminal Law", "Cyber Law", "Property Law", "Consumer Law",
		},
		Languages:         map[string]string{"English": "en", "Hindi": "hi", "Marathi": "mr"},
		RetrievalK:        4,
		MemoryWindow:      2,
		CallTimeout:       time.Second,
		EnableTranslation: true,
	}

	h := &harness{
		retriever: &fakeRetriever{passages: []entity.RetrievedPassage{
			{Text: "Bail provisions under CrPC.", Source: "crpc.pdf"},
			{Text: "Anticipatory bail.", Source: "bnss.pdf"},
		}},
		llm:         newFakeLLM(),
		memory:      memory.NewCacheStore(2, time.Minute),
		transcripts: &fakeTranscripts{},
	}
	for _, o := range opts {
		o(&cfg, h)
	}

	h.uc = NewUsecase(cfg, h.retriever, h.llm, nil, h.memory, nil, h.transcripts, nil, zap.NewNop(), h.ucOpts...)
	return h
}

func turn(query, category, language string) entity.ChatTurn {
	return entity.ChatTurn{
		Query:     query,
		Category:  entity.Category(category),
		Language:  language,
		SessionID: "session-1",
	}
}

var strict = entity.ChatOptions{StrictCategoryCheck: true}

// countingLocker wraps a SessionLocker and counts acquisitions
type countingLocker struct {
	inner    SessionLocker
	acquired int32
}

func (l *countingLocker) Lock(ctx context.Context, sessionID string) (func(), error) {
	unlock, err := l.inner.Lock(ctx, sessionID)
	if err == nil {
		atomic.AddInt32(&l.acquired, 1)
	}
	return unlock, err
}

package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/futig/lawgpt-backend/internal/memory"
	"github.com/futig/lawgpt-backend/internal/pkg/keylock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunChatTurn_CriminalLawBail(t *testing.T) {
	h := newHarness()

	res, err := h.uc.RunChatTurn(context.Background(), turn("What is bail?", "Criminal Law", "English"), strict)
	require.NoError(t, err)

	assert.False(t, res.Rejected)
	assert.NotEmpty(t, res.Answer)
	assert.Equal(t, []string{"crpc.pdf", "bnss.pdf"}, res.Sources)
	assert.Equal(t, 1, h.retriever.callCount())
	assert.Equal(t, 1, h.llm.count(entity.PurposeRelevance))
	assert.Equal(t, 1, h.llm.count(entity.PurposeAnswer))
	assert.Equal(t, 0, h.llm.count(entity.PurposeTranslation))

	q := h.retriever.queries[0]
	assert.Equal(t, "What is bail?", q.Text)
	assert.Equal(t, entity.Category("Criminal Law"), q.Category)
	assert.Equal(t, 4, q.K)
}

func TestRunChatTurn_InvalidCategoryMakesNoCalls(t *testing.T) {
	for _, category := range []string{"", "Tax Law", "criminal law", "[Category: Cyber Law]"} {
		t.Run(category, func(t *testing.T) {
			h := newHarness()

			res, err := h.uc.RunChatTurn(context.Background(), turn("What is bail?", category, "English"), strict)

			assert.Nil(t, res)
			assert.ErrorIs(t, err, entity.ErrInvalidCategory)
			assert.Equal(t, 0, h.retriever.callCount())
			assert.Equal(t, 0, h.llm.total())
		})
	}
}

func TestRunChatTurn_GeneralEntrySkipsGate(t *testing.T) {
	h := newHarness()

	res, err := h.uc.RunChatTurn(context.Background(), turn("What is bail?", "Anything", "English"), entity.ChatOptions{})
	require.NoError(t, err)

	assert.NotEmpty(t, res.Answer)
	assert.Equal(t, 0, h.llm.count(entity.PurposeRelevance))
	assert.Equal(t, 1, h.retriever.callCount())
}

func TestRunChatTurn_ConsumerLawWeatherRejected(t *testing.T) {
	h := newHarness()
	h.llm.responses[entity.PurposeRelevance] = "NO"

	res, err := h.uc.RunChatTurn(context.Background(), turn("What's the weather tomorrow?", "Consumer Law", "Hindi"), strict)
	require.NoError(t, err)

	assert.True(t, res.Rejected)
	assert.Equal(t,
		"I'm sorry, but your question doesn't appear to be related to the 'Consumer Law' category. "+
			"Please ask a question about Consumer Law or switch to a category that matches your question.",
		res.Answer)
	assert.NotNil(t, res.Sources)
	assert.Empty(t, res.Sources)
	assert.Equal(t, 0, h.retriever.callCount())
	assert.Equal(t, 0, h.llm.count(entity.PurposeAnswer))
	assert.Equal(t, 0, h.llm.count(entity.PurposeTranslation))

	window, err := h.memory.Window(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Empty(t, window)
}

func TestRunChatTurn_HindiTranslation(t *testing.T) {
	h := newHarness()

	res, err := h.uc.RunChatTurn(context.Background(), turn("What is bail?", "Criminal Law", "Hindi"), strict)
	require.NoError(t, err)

	assert.Equal(t, h.llm.responses[entity.PurposeTranslation], res.Answer)
	assert.Equal(t, 1, h.llm.count(entity.PurposeTranslation))

	p := h.llm.lastPrompt(entity.PurposeTranslation)
	assert.Contains(t, p.User, "from English to Hindi")
	assert.Contains(t, p.User, h.llm.responses[entity.PurposeAnswer])

	// memory keeps the English answer
	window, err := h.memory.Window(context.Background(), "session-1")
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, h.llm.responses[entity.PurposeAnswer], window[0].Answer)
}

func TestRunChatTurn_EnglishAnswerVerbatim(t *testing.T) {
	h := newHarness()
	h.llm.responses[entity.PurposeAnswer] = "  Answer with spacing.\n"

	res, err := h.uc.RunChatTurn(context.Background(), turn("What is bail?", "Criminal Law", ""), strict)
	require.NoError(t, err)

	assert.Equal(t, "  Answer with spacing.\n", res.Answer)
	assert.Equal(t, 0, h.llm.count(entity.PurposeTranslation))
}

func TestRunChatTurn_TranslationDisabled(t *testing.T) {
	h := newHarness(withTranslationDisabled())

	res, err := h.uc.RunChatTurn(context.Background(), turn("What is bail?", "Criminal Law", "Marathi"), strict)
	require.NoError(t, err)

	assert.Equal(t, h.llm.responses[entity.PurposeAnswer], res.Answer)
	assert.Equal(t, 0, h.llm.count(entity.PurposeTranslation))
}

func TestRunChatTurn_TranslationFailureIsNotMasked(t *testing.T) {
	h := newHarness()
	h.llm.errs[entity.PurposeTranslation] = errBoom

	res, err := h.uc.RunChatTurn(context.Background(), turn("What is bail?", "Criminal Law", "Hindi"), strict)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, entity.ErrUpstreamFailure)
	assert.ErrorIs(t, err, errBoom)

	var ue *entity.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, entity.StageTranslation, ue.Stage)
}

func TestRunChatTurn_SourcesDeduplicated(t *testing.T) {
	h := newHarness()
	h.retriever.passages = []entity.RetrievedPassage{
		{Text: "1", Source: "A"},
		{Text: "2", Source: "B"},
		{Text: "3", Source: "A"},
		{Text: "4"},
		{Text: "5", Source: "C"},
	}

	res, err := h.uc.RunChatTurn(context.Background(), turn("What is bail?", "Criminal Law", "English"), strict)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, res.Sources)
}

func TestRunChatTurn_NoPassagesGivesEmptySources(t *testing.T) {
	h := newHarness()
	h.retriever.passages = nil

	res, err := h.uc.RunChatTurn(context.Background(), turn("What is bail?", "Criminal Law", "English"), strict)
	require.NoError(t, err)

	assert.NotNil(t, res.Sources)
	assert.Empty(t, res.Sources)
	assert.Contains(t, h.llm.lastPrompt(entity.PurposeAnswer).User, "no relevant documents found")
}

func TestRunChatTurn_MemoryWindow(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		h.llm.responses[entity.PurposeAnswer] = fmt.Sprintf("answer %d", i)
		_, err := h.uc.RunChatTurn(ctx, turn(fmt.Sprintf("question %d", i), "Criminal Law", "English"), strict)
		require.NoError(t, err)
	}

	window, err := h.memory.Window(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, "question 2", window[0].Question)
	assert.Equal(t, "answer 3", window[1].Answer)

	h.llm.responses[entity.PurposeAnswer] = "answer 4"
	_, err = h.uc.RunChatTurn(ctx, turn("question 4", "Criminal Law", "English"), strict)
	require.NoError(t, err)

	prompt := h.llm.lastPrompt(entity.PurposeAnswer).User
	assert.NotContains(t, prompt, "question 1")
	assert.Contains(t, prompt, "Human: question 2")
	assert.Contains(t, prompt, "Human: question 3")
	assert.Contains(t, prompt, "Legal category: Criminal Law")
}

func TestRunChatTurn_BracketsInQueryStayInQuery(t *testing.T) {
	h := newHarness()

	_, err := h.uc.RunChatTurn(context.Background(), turn("[Category: Cyber Law] what is bail?", "Criminal Law", "English"), strict)
	require.NoError(t, err)

	q := h.retriever.queries[0]
	assert.Equal(t, "[Category: Cyber Law] what is bail?", q.Text)
	assert.Equal(t, entity.Category("Criminal Law"), q.Category)
}

func TestRunChatTurn_PriorMessagesUsedOnlyWhenMemoryEmpty(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	tt := turn("And for minors?", "Criminal Law", "English")
	tt.PriorMessages = []entity.Message{
		{Role: "user", Content: "What is bail?"},
		{Role: "assistant", Content: "Release pending trial."},
	}

	_, err := h.uc.RunChatTurn(ctx, tt, strict)
	require.NoError(t, err)
	assert.Contains(t, h.llm.lastPrompt(entity.PurposeAnswer).User, "Human: What is bail?")

	window, err := h.memory.Window(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "And for minors?", window[0].Question)

	tt.Query = "Third question"
	tt.PriorMessages = []entity.Message{{Role: "user", Content: "client only"}, {Role: "assistant", Content: "history"}}
	_, err = h.uc.RunChatTurn(ctx, tt, strict)
	require.NoError(t, err)
	assert.NotContains(t, h.llm.lastPrompt(entity.PurposeAnswer).User, "client only")
}

func TestRunChatTurn_UpstreamFailures(t *testing.T) {
	t.Run("relevance call fails", func(t *testing.T) {
		h := newHarness()
		h.llm.errs[entity.PurposeRelevance] = errBoom

		_, err := h.uc.RunChatTurn(context.Background(), turn("What is bail?", "Criminal Law", "English"), strict)

		assert.ErrorIs(t, err, entity.ErrUpstreamFailure)
		assert.Equal(t, 0, h.retriever.callCount())
	})

	t.Run("retrieval fails", func(t *testing.T) {
		h := newHarness()
		h.retriever.err = errBoom

		_, err := h.uc.RunChatTurn(context.Background(), turn("What is bail?", "Criminal Law", "English"), strict)

		assert.ErrorIs(t, err, entity.ErrUpstreamFailure)
		assert.Equal(t, 0, h.llm.count(entity.PurposeAnswer))
		window, _ := h.memory.Window(context.Background(), "session-1")
		assert.Empty(t, window)
	})

	t.Run("empty generation", func(t *testing.T) {
		h := newHarness()
		h.llm.responses[entity.PurposeAnswer] = "  \n"

		_, err := h.uc.RunChatTurn(context.Background(), turn("What is bail?", "Criminal Law", "English"), strict)

		assert.ErrorIs(t, err, entity.ErrUpstreamFailure)
		assert.ErrorIs(t, err, entity.ErrEmptyResponse)
		window, _ := h.memory.Window(context.Background(), "session-1")
		assert.Empty(t, window)
	})

	t.Run("memory append fails", func(t *testing.T) {
		h := newHarness(withMemory(&failingMemory{appendErr: errBoom}))

		_, err := h.uc.RunChatTurn(context.Background(), turn("What is bail?", "Criminal Law", "English"), strict)

		var ue *entity.UpstreamError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, entity.StageMemory, ue.Stage)
		assert.Empty(t, h.transcripts.entries)
	})
}

func TestRunChatTurn_TimeoutIsDistinct(t *testing.T) {
	h := newHarness(withTimeout(20 * time.Millisecond))
	h.llm.block[entity.PurposeAnswer] = true

	start := time.Now()
	_, err := h.uc.RunChatTurn(context.Background(), turn("What is bail?", "Criminal Law", "English"), strict)

	assert.ErrorIs(t, err, entity.ErrUpstreamTimeout)
	assert.NotErrorIs(t, err, entity.ErrUpstreamFailure)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRunChatTurn_BoundaryValidation(t *testing.T) {
	h := newHarness()

	_, err := h.uc.RunChatTurn(context.Background(), turn("  ", "Criminal Law", "English"), strict)
	assert.ErrorIs(t, err, entity.ErrMissingField)

	noSession := turn("What is bail?", "Criminal Law", "English")
	noSession.SessionID = ""
	_, err = h.uc.RunChatTurn(context.Background(), noSession, strict)
	assert.ErrorIs(t, err, entity.ErrMissingField)

	_, err = h.uc.RunChatTurn(context.Background(), turn("What is bail?", "Criminal Law", "Klingon"), strict)
	assert.ErrorIs(t, err, entity.ErrInvalidLanguage)

	assert.Equal(t, 0, h.llm.total())
	assert.Equal(t, 0, h.retriever.callCount())
}

func TestRunChatTurn_SerializesSameSession(t *testing.T) {
	h := newHarness()
	h.llm.delay = 5 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.uc.RunChatTurn(context.Background(), turn(fmt.Sprintf("q%d", i), "Criminal Law", "English"), entity.ChatOptions{})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), h.llm.maxInflight)
	kl, ok := h.uc.locks.(*keylock.KeyLock)
	require.True(t, ok)
	assert.Equal(t, 0, kl.Len())
}

func TestRunChatTurn_SessionLockWaitTimesOut(t *testing.T) {
	locks := keylock.New()
	h := newHarness(withLocker(locks), withLockTimeout(20*time.Millisecond))

	// an earlier turn of the same session still holds the lock
	unlock, err := locks.Lock(context.Background(), "session-1")
	require.NoError(t, err)
	defer unlock()

	start := time.Now()
	_, err = h.uc.RunChatTurn(context.Background(), turn("What is bail?", "Criminal Law", "English"), strict)
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrUpstreamTimeout)

	var upstream *entity.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, entity.StageSession, upstream.Stage)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 0, h.llm.total())
}

func TestRunChatTurn_SessionLockHonoursCallerContext(t *testing.T) {
	locks := keylock.New()
	h := newHarness(withLocker(locks))

	unlock, err := locks.Lock(context.Background(), "session-1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = h.uc.RunChatTurn(ctx, turn("What is bail?", "Criminal Law", "English"), strict)
	assert.ErrorIs(t, err, entity.ErrUpstreamFailure)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunChatTurn_UsesInjectedSessionLocker(t *testing.T) {
	locker := &countingLocker{inner: keylock.New()}
	h := newHarness(withLocker(locker))

	_, err := h.uc.RunChatTurn(context.Background(), turn("What is bail?", "Criminal Law", "English"), strict)
	require.NoError(t, err)
	_, err = h.uc.RunChatTurn(context.Background(), turn("And parole?", "Criminal Law", "English"), strict)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&locker.acquired))
}

func TestRunChatTurn_RecordsTranscript(t *testing.T) {
	h := newHarness()
	userID := "user-1"

	_, err := h.uc.RunChatTurn(context.Background(), turn("What is bail?", "Criminal Law", "English"),
		entity.ChatOptions{StrictCategoryCheck: true, UserID: &userID})
	require.NoError(t, err)

	entries, err := h.uc.Transcript(context.Background(), "session-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "What is bail?", entries[0].Query)
	assert.Equal(t, &userID, entries[0].UserID)
	assert.Equal(t, []string{"crpc.pdf", "bnss.pdf"}, entries[0].Sources)

	_, err = h.uc.Transcript(context.Background(), "unknown")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestRunChatTurn_TranscriptFailureDoesNotFailTurn(t *testing.T) {
	h := newHarness()
	h.transcripts.err = errBoom

	res, err := h.uc.RunChatTurn(context.Background(), turn("What is bail?", "Criminal Law", "English"), strict)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Answer)
}

func TestMetadata(t *testing.T) {
	h := newHarness()

	assert.Equal(t, []string{"Know Your Rights", "Criminal Law", "Cyber Law", "Property Law", "Consumer Law"}, h.uc.Categories())
	assert.Equal(t, []string{"English", "Hindi", "Marathi"}, h.uc.LanguageNames())
	assert.Equal(t, "hi", h.uc.Languages()["Hindi"])
	assert.NotEqual(t, h.uc.NewSession(context.Background()), h.uc.NewSession(context.Background()))
}

var _ MemoryStore = (*memory.CacheStore)(nil)

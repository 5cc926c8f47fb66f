package ingest

import (
	"context"
	"fmt"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/futig/lawgpt-backend/internal/pkg/logger"
	pkgRetry "github.com/futig/lawgpt-backend/internal/pkg/retry"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const DefaultBatchSize = 100

type DocumentEmbedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

type PassageWriter interface {
	InsertBatch(ctx context.Context, passages []entity.Passage) error
	Truncate(ctx context.Context) error
}

// Stats summarizes an indexing run
type Stats struct {
	Pages    int
	Passages int
	Batches  int
}

// Indexer chunks pages, embeds the chunks and writes them to the passage store
type Indexer struct {
	embedder  DocumentEmbedder
	passages  PassageWriter
	splitter  *Splitter
	batchSize int
	retry     *pkgRetry.RetryConfig
}

func NewIndexer(
	embedder DocumentEmbedder,
	passages PassageWriter,
	splitter *Splitter,
	batchSize int,
	retryCfg *pkgRetry.RetryConfig,
) *Indexer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if retryCfg == nil {
		retryCfg = pkgRetry.DefaultRetryConfig()
	}

	return &Indexer{
		embedder:  embedder,
		passages:  passages,
		splitter:  splitter,
		batchSize: batchSize,
		retry:     retryCfg,
	}
}

// Chunk splits pages into passages. ChunkIndex counts chunks per source file.
func (ix *Indexer) Chunk(pages []Page) []entity.Passage {
	var passages []entity.Passage
	next := make(map[string]int)

	for _, p := range pages {
		for _, text := range ix.splitter.Split(p.Text) {
			passages = append(passages, entity.Passage{
				ID:         uuid.New().String(),
				Source:     p.Source,
				Category:   p.Category,
				Page:       p.Number,
				ChunkIndex: next[p.Source],
				Text:       text,
			})
			next[p.Source]++
		}
	}

	return passages
}

// Index writes pages into the passage store, optionally clearing it first
func (ix *Indexer) Index(ctx context.Context, pages []Page, reset bool) (*Stats, error) {
	ctx = logger.WithAction(ctx, "index_passages")

	if reset {
		if err := ix.passages.Truncate(ctx); err != nil {
			return nil, fmt.Errorf("reset index: %w", err)
		}
		ctxzap.Info(ctx, "passage index cleared")
	}

	passages := ix.Chunk(pages)
	stats := &Stats{Pages: len(pages)}

	for start := 0; start < len(passages); start += ix.batchSize {
		end := min(start+ix.batchSize, len(passages))
		batch := passages[start:end]

		if err := ix.embed(ctx, batch); err != nil {
			return stats, fmt.Errorf("embed passages %d-%d: %w", start, end, err)
		}
		if err := ix.passages.InsertBatch(ctx, batch); err != nil {
			return stats, fmt.Errorf("insert passages %d-%d: %w", start, end, err)
		}

		stats.Passages += len(batch)
		stats.Batches++
		ctxzap.Info(ctx, "indexed batch",
			zap.Int("from", start),
			zap.Int("to", end),
			zap.Int("total", len(passages)),
		)
	}

	return stats, nil
}

func (ix *Indexer) embed(ctx context.Context, batch []entity.Passage) error {
	texts := make([]string, len(batch))
	for i, p := range batch {
		texts[i] = p.Text
	}

	var vectors [][]float32
	err := ix.retry.Do(ctx, func() error {
		var err error
		vectors, err = ix.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			ctxzap.Warn(ctx, "embedding attempt failed", zap.Error(err))
		}
		return err
	})
	if err != nil {
		return err
	}

	if len(vectors) != len(batch) {
		return fmt.Errorf("got %d vectors for %d passages", len(vectors), len(batch))
	}
	for i := range batch {
		batch[i].Embedding = vectors[i]
	}

	return nil
}

package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QueryEmbedder turns a search query into a vector
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// PassageRepository defines the interface for the indexed passages table
type PassageRepository interface {
	Search(ctx context.Context, q entity.SearchQuery) ([]entity.RetrievedPassage, error)
	InsertBatch(ctx context.Context, passages []entity.Passage) error
	Truncate(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}

var _ PassageRepository = &PassagePgvector{}

// candidateFactor sizes the nearest-neighbour scan relative to k so the
// category boost can promote passages from outside the raw top k
const candidateFactor = 5

// PassagePgvector searches passages by cosine distance. Passages tagged with
// the requested category get their distance reduced by categoryBoost.
type PassagePgvector struct {
	db            *pgxpool.Pool
	embedder      QueryEmbedder
	dimensions    int
	categoryBoost float64
}

func NewPassagePgvector(db *pgxpool.Pool, embedder QueryEmbedder, dimensions int, categoryBoost float64) *PassagePgvector {
	return &PassagePgvector{
		db:            db,
		embedder:      embedder,
		dimensions:    dimensions,
		categoryBoost: categoryBoost,
	}
}

func (r *PassagePgvector) Search(ctx context.Context, q entity.SearchQuery) ([]entity.RetrievedPassage, error) {
	embedding, err := r.embedder.EmbedQuery(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(embedding) != r.dimensions {
		return nil, fmt.Errorf("embedding must be %d dimensions, got %d", r.dimensions, len(embedding))
	}

	limit := q.K * candidateFactor
	rows, err := r.db.Query(ctx, `
		SELECT text, COALESCE(source, ''), COALESCE(category, ''), embedding <=> $1::vector
		FROM passages
		ORDER BY embedding <=> $1::vector
		LIMIT $2`,
		formatVector(embedding), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query passages: %w", err)
	}
	defer rows.Close()

	candidates := make([]candidate, 0, limit)
	for rows.Next() {
		var c candidate
		if err := rows.Scan(&c.passage.Text, &c.passage.Source, &c.category, &c.distance); err != nil {
			return nil, fmt.Errorf("scan passage: %w", err)
		}
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passages: %w", err)
	}

	return rerank(candidates, q.Category, r.categoryBoost, q.K), nil
}

// candidate is a passage from the nearest-neighbour scan with its raw distance
type candidate struct {
	passage  entity.RetrievedPassage
	category string
	distance float64
}

// rerank subtracts boost from the distance of passages tagged with category
// and returns the k closest. Ties keep the scan order.
func rerank(candidates []candidate, category entity.Category, boost float64, k int) []entity.RetrievedPassage {
	score := func(c candidate) float64 {
		if category != "" && c.category == string(category) {
			return c.distance - boost
		}
		return c.distance
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return score(candidates[i]) < score(candidates[j])
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}

	passages := make([]entity.RetrievedPassage, 0, len(candidates))
	for _, c := range candidates {
		passages = append(passages, c.passage)
	}
	return passages
}

// InsertBatch writes passages in a single round trip
func (r *PassagePgvector) InsertBatch(ctx context.Context, passages []entity.Passage) error {
	batch := &pgx.Batch{}
	for _, p := range passages {
		var category *string
		if p.Category != nil {
			c := string(*p.Category)
			category = &c
		}
		var source *string
		if p.Source != "" {
			source = &p.Source
		}

		batch.Queue(`
			INSERT INTO passages (id, source, category, page, chunk_index, text, embedding)
			VALUES ($1::uuid, $2, $3, $4, $5, $6, $7::vector)`,
			p.ID, source, category, p.Page, p.ChunkIndex, p.Text, formatVector(p.Embedding),
		)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert passages: %w", err)
	}

	return nil
}

func (r *PassagePgvector) Truncate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `TRUNCATE passages`); err != nil {
		return fmt.Errorf("truncate passages: %w", err)
	}
	return nil
}

func (r *PassagePgvector) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM passages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count passages: %w", err)
	}
	return n, nil
}

// formatVector renders an embedding in pgvector text form
func formatVector(embedding []float32) string {
	var b strings.Builder
	b.Grow(len(embedding) * 10)
	b.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

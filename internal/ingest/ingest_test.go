package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/futig/lawgpt-backend/internal/entity"
	pkgRetry "github.com/futig/lawgpt-backend/internal/pkg/retry"
	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePDF(t *testing.T, path string, pages ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		doc.AddPage()
		doc.Cell(40, 10, text)
	}
	require.NoError(t, doc.OutputFileAndClose(path))
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, filepath.Join(dir, "Criminal Law", "ipc.pdf"), "Theft is punishable", "Cheating is punishable")
	writePDF(t, filepath.Join(dir, "misc", "notes.pdf"), "General notes")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.pdf"), []byte("not a pdf"), 0o644))

	loader := NewLoader([]string{"Criminal Law", "Cyber Law"})
	pages, files, err := loader.Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, files)
	require.Len(t, pages, 3)

	bySource := map[string][]Page{}
	for _, p := range pages {
		bySource[p.Source] = append(bySource[p.Source], p)
	}

	ipc := bySource["ipc.pdf"]
	require.Len(t, ipc, 2)
	require.NotNil(t, ipc[0].Category)
	assert.Equal(t, entity.Category("Criminal Law"), *ipc[0].Category)
	assert.Equal(t, 1, ipc[0].Number)
	assert.Equal(t, 2, ipc[1].Number)
	assert.Contains(t, ipc[0].Text, "Theft")

	notes := bySource["notes.pdf"]
	require.Len(t, notes, 1)
	assert.Nil(t, notes[0].Category)
}

func TestLoader_MissingDir(t *testing.T) {
	_, _, err := NewLoader(nil).Load(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

type fakeEmbedder struct {
	failures int
	calls    int
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("quota exceeded")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i)}
	}
	return out, nil
}

type fakeWriter struct {
	batches   [][]entity.Passage
	truncated bool
}

func (f *fakeWriter) InsertBatch(_ context.Context, passages []entity.Passage) error {
	f.batches = append(f.batches, append([]entity.Passage(nil), passages...))
	return nil
}

func (f *fakeWriter) Truncate(context.Context) error {
	f.truncated = true
	return nil
}

func fastRetry() *pkgRetry.RetryConfig {
	return &pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond}
}

func testPages() []Page {
	cat := entity.Category("Cyber Law")
	return []Page{
		{Source: "it-act.pdf", Category: &cat, Number: 1, Text: "aaa\n\nbbb\n\nccc"},
		{Source: "it-act.pdf", Category: &cat, Number: 2, Text: "ddd"},
		{Source: "other.pdf", Number: 1, Text: "eee"},
	}
}

func TestIndexer_Index(t *testing.T) {
	splitter, err := NewSplitter(5, 0)
	require.NoError(t, err)

	embedder := &fakeEmbedder{failures: 1}
	writer := &fakeWriter{}
	ix := NewIndexer(embedder, writer, splitter, 2, fastRetry())

	stats, err := ix.Index(context.Background(), testPages(), true)
	require.NoError(t, err)

	assert.True(t, writer.truncated)
	assert.Equal(t, 3, stats.Pages)
	assert.Equal(t, 5, stats.Passages)
	assert.Equal(t, 3, stats.Batches)
	require.Len(t, writer.batches, 3)
	assert.Len(t, writer.batches[2], 1)

	first := writer.batches[0][0]
	assert.Equal(t, "aaa", first.Text)
	assert.Equal(t, "it-act.pdf", first.Source)
	assert.NotEmpty(t, first.ID)
	assert.NotNil(t, first.Embedding)

	fourth := writer.batches[1][1]
	assert.Equal(t, "ddd", fourth.Text)
	assert.Equal(t, 2, fourth.Page)
	assert.Equal(t, 3, fourth.ChunkIndex)

	last := writer.batches[2][0]
	assert.Equal(t, "other.pdf", last.Source)
	assert.Equal(t, 0, last.ChunkIndex)
	assert.Nil(t, last.Category)
}

func TestIndexer_EmbeddingGivesUp(t *testing.T) {
	splitter, err := NewSplitter(1000, 200)
	require.NoError(t, err)

	embedder := &fakeEmbedder{failures: 10}
	writer := &fakeWriter{}
	ix := NewIndexer(embedder, writer, splitter, 10, fastRetry())

	_, err = ix.Index(context.Background(), testPages(), false)
	require.Error(t, err)

	assert.Equal(t, 3, embedder.calls)
	assert.False(t, writer.truncated)
	assert.Empty(t, writer.batches)
}

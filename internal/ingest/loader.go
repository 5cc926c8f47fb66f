package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/futig/lawgpt-backend/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// Page is the extracted text of one PDF page
type Page struct {
	Source   string
	Category *entity.Category
	Number   int
	Text     string
}

// Loader reads PDF files from a directory tree. A file whose parent
// directory is named after a configured category is tagged with it.
type Loader struct {
	categories map[string]entity.Category
}

func NewLoader(categories []string) *Loader {
	known := make(map[string]entity.Category, len(categories))
	for _, c := range categories {
		known[c] = entity.Category(c)
	}
	return &Loader{categories: known}
}

// Load returns the pages of every readable PDF under dataDir. Unreadable
// files are logged and skipped.
func (l *Loader) Load(ctx context.Context, dataDir string) ([]Page, int, error) {
	ctx = logger.WithAction(ctx, "load_documents")

	var pages []Page
	files := 0

	err := filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}

		filePages, err := l.LoadFile(path)
		if err != nil {
			ctxzap.Warn(ctx, "skipping unreadable document", zap.String("path", path), zap.Error(err))
			return nil
		}

		files++
		pages = append(pages, filePages...)
		ctxzap.Debug(ctx, "loaded document", zap.String("path", path), zap.Int("pages", len(filePages)))
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("walk %s: %w", dataDir, err)
	}

	return pages, files, nil
}

// LoadFile extracts the text of each non-empty page of a PDF
func (l *Loader) LoadFile(path string) ([]Page, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	source := filepath.Base(path)
	category := l.categoryFor(path)

	var pages []Page
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		pages = append(pages, Page{
			Source:   source,
			Category: category,
			Number:   i,
			Text:     text,
		})
	}

	return pages, nil
}

func (l *Loader) categoryFor(path string) *entity.Category {
	dir := filepath.Base(filepath.Dir(path))
	if c, ok := l.categories[dir]; ok {
		return &c
	}
	return nil
}

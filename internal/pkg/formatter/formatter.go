package formatter

import (
	"fmt"
	"strings"

	"github.com/futig/lawgpt-backend/internal/entity"
)

const (
	baseTitle       = "LawGPT conversation"
	disclaimer      = "Answers are legal information, not legal advice."
	timestampLayout = "2006-01-02 15:04 MST"
)

// Formatter renders a session transcript as a downloadable document
type Formatter interface {
	Format(t *entity.Transcript) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// entryMeta is the one-line summary printed under each question
func entryMeta(e entity.TranscriptEntry) string {
	parts := []string{}
	if e.Category != "" {
		parts = append(parts, "Category: "+string(e.Category))
	}
	if e.Language != "" {
		parts = append(parts, "Language: "+e.Language)
	}
	if !e.CreatedAt.IsZero() {
		parts = append(parts, e.CreatedAt.UTC().Format(timestampLayout))
	}
	return strings.Join(parts, " | ")
}

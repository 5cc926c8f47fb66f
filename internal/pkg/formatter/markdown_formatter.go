package formatter

import (
	"bytes"
	"fmt"

	"github.com/futig/lawgpt-backend/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(t *entity.Transcript) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\nSession `%s`\n\n_%s_\n", baseTitle, t.SessionID, disclaimer)

	for i, e := range t.Entries {
		fmt.Fprintf(&buf, "\n## %d. %s\n\n", i+1, e.Query)
		if meta := entryMeta(e); meta != "" {
			fmt.Fprintf(&buf, "_%s_\n\n", meta)
		}
		fmt.Fprintf(&buf, "%s\n", e.Answer)

		if len(e.Sources) > 0 {
			buf.WriteString("\n**Sources:**\n\n")
			for _, s := range e.Sources {
				fmt.Fprintf(&buf, "- %s\n", s)
			}
		}
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}

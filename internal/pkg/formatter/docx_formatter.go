package formatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (mf *DOCXFormatter) Format(t *entity.Transcript) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	addStyled(doc, "Title", baseTitle)
	addText(doc, "Session "+t.SessionID, false)
	addText(doc, disclaimer, true)

	for i, e := range t.Entries {
		addStyled(doc, "Heading2", fmt.Sprintf("%d. %s", i+1, e.Query))
		if meta := entryMeta(e); meta != "" {
			addText(doc, meta, true)
		}
		for _, line := range strings.Split(e.Answer, "\n") {
			addText(doc, line, false)
		}

		if len(e.Sources) > 0 {
			addText(doc, "Sources: "+strings.Join(e.Sources, ", "), true)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, fmt.Errorf("save docx: %w", err)
	}
	return buf.Bytes(), nil
}

func addStyled(doc *document.Document, style, text string) {
	par := doc.AddParagraph()
	par.SetStyle(style)
	par.AddRun().AddText(text)
}

func addText(doc *document.Document, text string, italic bool) {
	run := doc.AddParagraph().AddRun()
	if italic {
		run.Properties().SetItalic(true)
	}
	run.AddText(text)
}

func (mf *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (mf *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}

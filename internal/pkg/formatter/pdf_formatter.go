package formatter

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf
	// for the UTF-8 capable font.
	pdfFontName = "DejaVuSans"

	// Runtime layout copies fonts next to the binary, source layout
	// is used when running from the repo root.
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"
	pdfFontSourcePath  = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

type PDFFormatter struct {
	fontPaths []string
}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{fontPaths: []string{pdfFontRuntimePath, pdfFontSourcePath}}
}

func (mf *PDFFormatter) resolveFontPath() string {
	for _, p := range mf.fontPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (mf *PDFFormatter) Format(t *entity.Transcript) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Without the bundled UTF-8 font only Latin-1 text renders
	fontName := "Arial"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if fontPath := mf.resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		pdf.AddUTF8Font(pdfFontName, "I", fontPath)
		fontName = pdfFontName
		tr = func(s string) string { return s }
	}

	pdf.SetFont(fontName, "B", 20)
	pdf.Cell(0, 10, tr(baseTitle))
	pdf.Ln(12)

	pdf.SetFont(fontName, "I", 10)
	pdf.MultiCell(0, 5, tr("Session "+t.SessionID+"\n"+disclaimer), "", "", false)
	pdf.Ln(4)

	for i, e := range t.Entries {
		pdf.SetFont(fontName, "B", 13)
		pdf.MultiCell(0, 7, tr(fmt.Sprintf("%d. %s", i+1, e.Query)), "", "", false)

		if meta := entryMeta(e); meta != "" {
			pdf.SetFont(fontName, "I", 9)
			pdf.MultiCell(0, 5, tr(meta), "", "", false)
		}

		pdf.SetFont(fontName, "", 11)
		_, lineHeight := pdf.GetFontSize()
		pdf.MultiCell(0, lineHeight*1.5, tr(e.Answer), "", "", false)

		if len(e.Sources) > 0 {
			pdf.SetFont(fontName, "I", 9)
			pdf.MultiCell(0, 5, tr("Sources: "+strings.Join(e.Sources, ", ")), "", "", false)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (mf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (mf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}

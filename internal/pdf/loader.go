// Package pdf is the document-text source: it turns an uploaded PDF (or plain
// text) into normalized text plus a page count for the extraction pipeline.
// pdfcpu handles structural validation and page counting; ledongthuc/pdf does
// the actual text extraction (pure Go, no cgo).
package pdf

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/doculens/doculens/constants"
	"github.com/doculens/doculens/internal/extract"
)

// DocumentText is the loader's output: normalized text ready for the
// orchestrator, plus the source page count for logging/history.
type DocumentText struct {
	Text      string
	PageCount int
}

// Loader reads and validates short PDF documents.
type Loader struct {
	MaxPages int
	log      *slog.Logger
}

func NewLoader(maxPages int, logger *slog.Logger) *Loader {
	if maxPages <= 0 {
		maxPages = constants.MaxDocumentPages
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{MaxPages: maxPages, log: logger}
}

// Validate checks that data is a readable PDF within the page budget and
// returns its page count.
func (l *Loader) Validate(data []byte) (int, error) {
	if len(data) < 5 || string(data[:5]) != "%PDF-" {
		return 0, fmt.Errorf("not a PDF file")
	}

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	if ctx.PageCount == 0 {
		return 0, fmt.Errorf("PDF has no pages")
	}
	if ctx.PageCount > l.MaxPages {
		return ctx.PageCount, fmt.Errorf("PDF has %d pages, maximum allowed is %d", ctx.PageCount, l.MaxPages)
	}
	return ctx.PageCount, nil
}

// LoadFromBytes validates the PDF and extracts normalized text from its pages.
// Whitespace-only extraction results fail the same way empty input text does,
// before any provider is ever called.
func (l *Loader) LoadFromBytes(data []byte) (*DocumentText, error) {
	start := time.Now()

	pageCount, err := l.Validate(data)
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var parts []string
	for i := 1; i <= pageCount && i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Image-only or damaged pages are skipped, not fatal.
			l.log.Warn("pdf.page.text_failed", "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}

	cleaned := NormalizeText(strings.Join(parts, "\n\n"))
	if cleaned == "" {
		return nil, &extract.EmptyDocumentError{}
	}

	l.log.Info("pdf.load.ok",
		"pages", pageCount,
		"text_bytes", len(cleaned),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &DocumentText{Text: cleaned, PageCount: pageCount}, nil
}

// LoadText is the plain-text passthrough (CLI .txt inputs) with the same
// normalization and empty-input guard as the PDF path.
func (l *Loader) LoadText(text string) (*DocumentText, error) {
	cleaned := NormalizeText(text)
	if cleaned == "" {
		return nil, &extract.EmptyDocumentError{}
	}
	return &DocumentText{Text: cleaned, PageCount: 1}, nil
}

var (
	reSpaces   = regexp.MustCompile(` {2,}`)
	reNewlines = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText collapses space runs, caps consecutive blank lines at one,
// and trims every line, preserving the line structure the model relies on.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = reSpaces.ReplaceAllString(text, " ")
	text = reNewlines.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

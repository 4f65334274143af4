// Package pdf extracts cleaned per-page text from PDF documents.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/pdfqa/internal/core/domain"
	"github.com/custodia-labs/pdfqa/internal/core/ports/driven"
	"github.com/custodia-labs/pdfqa/internal/logger"
)

// ErrParserUnavailable is returned by CheckAvailable when no page reader can be used.
var ErrParserUnavailable = errors.New("pdf parser unavailable")

// Ensure Normaliser implements the interface.
var _ driven.DocumentExtractor = (*Normaliser)(nil)

// PageReader reads the raw text of every page in a PDF.
// The returned slice has one entry per physical page; index 0 is page 1.
type PageReader interface {
	ReadPages(ctx context.Context, path string) ([]string, error)
}

// Normaliser extracts and cleans PDF page text.
type Normaliser struct {
	reader PageReader
}

// New creates a PDF normaliser backed by a pure Go PDF parser.
func New() *Normaliser {
	return &Normaliser{reader: &parserReader{}}
}

// NewWithReader creates a PDF normaliser with a custom page reader (for testing).
func NewWithReader(reader PageReader) *Normaliser {
	return &Normaliser{reader: reader}
}

// Name returns the extractor name.
func (n *Normaliser) Name() string {
	return "pdf"
}

// CheckAvailable reports whether the page reader can be used. Readers that
// depend on something outside the process may implement CheckAvailable
// themselves; the built-in parser is pure Go and always available.
func (n *Normaliser) CheckAvailable() error {
	if n.reader == nil {
		return ErrParserUnavailable
	}
	if c, ok := n.reader.(interface{ CheckAvailable() error }); ok {
		if err := c.CheckAvailable(); err != nil {
			return fmt.Errorf("%w: %w", ErrParserUnavailable, err)
		}
	}
	return nil
}

// Extract reads path and returns one Page per page with non-blank cleaned text.
// Blank pages are dropped, so page numbers may have gaps.
func (n *Normaliser) Extract(ctx context.Context, path string) ([]domain.Page, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: PDF path is required", domain.ErrInvalidInput)
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: PDF not found at %s", domain.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", domain.ErrExtraction, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrExtraction, path)
	}

	raw, err := n.reader.ReadPages(ctx, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrExtraction, path, err)
	}

	pages := make([]domain.Page, 0, len(raw))
	for i, text := range raw {
		cleaned := CleanText(text)
		if cleaned == "" {
			logger.Debug("pdf: page %d is blank, skipping", i+1)
			continue
		}
		pages = append(pages, domain.Page{
			Text:       cleaned,
			PageNumber: i + 1,
			SourcePath: path,
		})
	}

	logger.Debug("pdf: extracted %d of %d pages from %s", len(pages), len(raw), path)
	return pages, nil
}

// CleanText collapses every whitespace run, newlines included, into a single
// space, then drops lines that are empty or purely numeric (page number
// artefacts) and joins the rest with newlines.
func CleanText(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")

	lines := strings.Split(collapsed, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isNumeric(trimmed) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

// parserReader reads pages with github.com/ledongthuc/pdf.
type parserReader struct{}

func (p *parserReader) ReadPages(ctx context.Context, path string) (pages []string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("pdf: failed to extract text from page %d of %s: %v", i, path, err)
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}

	return pages, nil
}

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/pdfqa/internal/core/domain"
)

// Colour palette for terminal output.
var (
	colourAccent = lipgloss.Color("#7D56F4")
	colourMuted  = lipgloss.Color("#6C6C6C")
	colourWarn   = lipgloss.Color("#E0A526")
)

// printer renders results, styled when writing to a terminal and
// plain otherwise so output stays pipeable.
type printer struct {
	out     io.Writer
	heading lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	warn    lipgloss.Style
}

func newPrinter(out io.Writer) *printer {
	p := &printer{
		out:     out,
		heading: lipgloss.NewStyle(),
		label:   lipgloss.NewStyle(),
		muted:   lipgloss.NewStyle(),
		warn:    lipgloss.NewStyle(),
	}
	if isTerminal(out) {
		p.heading = p.heading.Bold(true).Foreground(colourAccent)
		p.label = p.label.Bold(true)
		p.muted = p.muted.Foreground(colourMuted)
		p.warn = p.warn.Foreground(colourWarn)
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// Answer prints the answer followed by numbered sources.
func (p *printer) Answer(result *domain.QueryResult) {
	p.printf("%s\n%s\n\n", p.heading.Render("Answer"), strings.TrimSpace(result.Answer))

	if len(result.Sources) == 0 {
		return
	}
	p.printf("%s\n", p.heading.Render(fmt.Sprintf("Sources (%d)", result.NumSources)))
	for i, src := range result.Sources {
		p.printf("  %s %s\n",
			p.label.Render(fmt.Sprintf("[%d] Page %d", i+1, src.PageNumber)),
			p.muted.Render(fmt.Sprintf("(similarity %.2f)", src.Similarity)))
		p.printf("      %s\n", oneLine(src.Snippet))
	}
}

// Manifest prints a summary of a loaded index.
func (p *printer) Manifest(dir string, m domain.IndexManifest) {
	p.printf("%s %s\n", p.heading.Render("Index"), dir)
	p.printf("  %s %s\n", p.label.Render("Source:   "), m.SourcePath)
	p.printf("  %s %d pages, %d chunks (size %d, overlap %d)\n",
		p.label.Render("Content:  "), m.PageCount, m.ChunkCount, m.ChunkSize, m.ChunkOverlap)
	p.printf("  %s %s (%d dims)\n", p.label.Render("Embedding:"), m.EmbeddingModel, m.Dimensions)
	p.printf("  %s %s\n", p.label.Render("Vectors:  "), m.VectorBackend)
	if !m.BuiltAt.IsZero() {
		p.printf("  %s %s\n", p.label.Render("Built:    "), m.BuiltAt.Local().Format(time.RFC1123))
	}
}

// Warn prints a highlighted note.
func (p *printer) Warn(format string, args ...any) {
	p.printf("%s\n", p.warn.Render(fmt.Sprintf(format, args...)))
}

// oneLine collapses whitespace so snippets print on a single line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-isatty"
)

// Styles for the different pieces of a rendered diagnostic. Colors are
// gated on terminal detection, not forced on; redirected output (CI logs,
// pipes) renders as plain text.
var (
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	locStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	caretStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// stylesFor returns the header and caret styles for kind, or nil styles
// (no-op Render) when color is disabled.
func stylesFor(kind Kind, color bool) (header, caret lipgloss.Style) {
	if !color {
		return lipgloss.NewStyle(), lipgloss.NewStyle()
	}
	switch kind {
	case Error:
		return errorStyle, caretStyle
	case Warning:
		return warnStyle, caretStyle
	default:
		return noteStyle, caretStyle
	}
}

// AutoColor reports whether w looks like a color-capable terminal. It
// checks NO_COLOR first, then falls back to go-isatty's file-descriptor
// probe; non-*os.File writers (buffers, string builders) are never
// colorized.
func AutoColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// WriteText renders entries to w, one diagnostic per block, in the order
// recorded. When a diagnostic carries a source position, it is rendered as
// "file:line:column: kind: message" followed by the trimmed source line and
// a caret under the reported column; positionless diagnostics render as
// "kind: message".
func WriteText(w io.Writer, entries []Diagnostic, color bool) error {
	for _, d := range entries {
		if err := writeOne(w, d, color); err != nil {
			return err
		}
	}
	return nil
}

func writeOne(w io.Writer, d Diagnostic, color bool) error {
	header, caret := stylesFor(d.Kind, color)
	label := d.Kind.String()

	if !d.HasPos {
		_, err := fmt.Fprintf(w, "%s: %s\n", header.Render(label), d.Message)
		return err
	}

	loc := fmt.Sprintf("%s:%d:%d", d.File, d.Line, d.Column)
	if _, err := fmt.Fprintf(w, "%s: %s: %s\n", locStyle.Render(loc), header.Render(label), d.Message); err != nil {
		return err
	}

	if d.SourceLine == "" {
		return nil
	}

	// The source does not print the raw line as-is when it is indented:
	// leading whitespace is trimmed and the caret column shifted by the
	// same amount, or the caret would point past the visible text.
	trimmed := strings.TrimLeft(d.SourceLine, " \t")
	shift := len(d.SourceLine) - len(trimmed)
	column := d.Column - shift
	if column < 1 {
		column = 1
	}

	if _, err := fmt.Fprintf(w, "  %s\n", trimmed); err != nil {
		return err
	}
	pad := strings.Repeat(" ", column-1)
	_, err := fmt.Fprintf(w, "  %s%s\n", pad, caret.Render("^"))
	return err
}

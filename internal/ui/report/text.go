package report

import (
	"fmt"
	"io"
	"strings"

	"scopecheck/internal/core/app"
	"scopecheck/internal/engine/resolver"

	"github.com/charmbracelet/lipgloss"
)

var (
	locationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// TextRenderer prints one line per diagnostic followed by a summary.
type TextRenderer struct {
	Color bool
}

func (t TextRenderer) style(s lipgloss.Style, text string) string {
	if !t.Color {
		return text
	}
	return s.Render(text)
}

func (t TextRenderer) Render(w io.Writer, r *app.Report) error {
	var b strings.Builder
	for _, d := range r.Diagnostics {
		kindStyle := warningStyle
		if d.Kind.IsError() {
			kindStyle = errorStyle
		}
		fmt.Fprintf(&b, "%s: %s: %s\n",
			t.style(locationStyle, d.Location.String()),
			t.style(kindStyle, string(d.Kind)),
			d.Message,
		)
		if d.Previous != nil {
			fmt.Fprintf(&b, "\t%s\n", t.style(noteStyle, previousNote(d)))
		}
	}
	b.WriteString(t.summary(r))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func previousNote(d resolver.Diagnostic) string {
	if d.Kind == resolver.KindShadowed {
		return fmt.Sprintf("shadows declaration at %s", d.Previous)
	}
	return fmt.Sprintf("previous declaration at %s", d.Previous)
}

func (t TextRenderer) summary(r *app.Report) string {
	scanned := fmt.Sprintf("%d %s in %d %s", r.Files, plural(r.Files, "file"), r.Packages, plural(r.Packages, "package"))
	if len(r.Diagnostics) == 0 {
		return t.style(successStyle, "no problems found") + " (" + scanned + ")"
	}
	errs := r.Errors()
	warnings := len(r.Diagnostics) - errs
	parts := make([]string, 0, 2)
	if errs > 0 {
		parts = append(parts, t.style(errorStyle, fmt.Sprintf("%d %s", errs, plural(errs, "error"))))
	}
	if warnings > 0 {
		parts = append(parts, t.style(warningStyle, fmt.Sprintf("%d %s", warnings, plural(warnings, "warning"))))
	}
	return strings.Join(parts, ", ") + " (" + scanned + ")"
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

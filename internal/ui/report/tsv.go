package report

import (
	"fmt"
	"io"
	"strings"

	"scopecheck/internal/core/app"
)

// GenerateTSV returns one row per diagnostic with a header line.
func GenerateTSV(r *app.Report) string {
	var buf strings.Builder

	buf.WriteString("Kind\tNamespace\tName\tFile\tLine\tColumn\tPrevious\n")
	for _, d := range r.Diagnostics {
		prev := ""
		if d.Previous != nil {
			prev = d.Previous.String()
		}
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			d.Kind,
			d.Namespace,
			d.Name,
			d.Location.File,
			d.Location.Line,
			d.Location.Column,
			prev,
		))
	}

	return buf.String()
}

func renderTSV(w io.Writer, r *app.Report) error {
	_, err := io.WriteString(w, GenerateTSV(r))
	return err
}

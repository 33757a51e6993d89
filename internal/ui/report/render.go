// Package report renders check reports as text, JSON, SARIF or TSV.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"scopecheck/internal/core/app"
	"scopecheck/internal/core/errors"
)

const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatSARIF = "sarif"
	FormatTSV   = "tsv"
)

type Options struct {
	Format string
	Color  bool
	// ProjectRoot anchors relative URIs in SARIF output.
	ProjectRoot string
}

// Render writes r to w in the requested format.
func Render(w io.Writer, r *app.Report, opts Options) error {
	switch opts.Format {
	case "", FormatText:
		return TextRenderer{Color: opts.Color}.Render(w, r)
	case FormatJSON:
		return RenderJSON(w, r)
	case FormatTSV:
		return renderTSV(w, r)
	case FormatSARIF:
		data, err := GenerateSARIF(opts.ProjectRoot, r)
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	}
	return errors.New(errors.CodeNotSupported, fmt.Sprintf("unknown report format %q", opts.Format))
}

func RenderJSON(w io.Writer, r *app.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

package resolver

import (
	"fmt"
	"sort"

	"scopecheck/internal/engine/parser"
)

type Kind string

const (
	KindAlreadyDeclared Kind = "already-declared"
	KindUndeclared      Kind = "undeclared"
	KindShadowed        Kind = "shadowed"
)

// IsError reports whether the kind should fail a check run.
func (k Kind) IsError() bool {
	return k == KindAlreadyDeclared || k == KindUndeclared
}

type Diagnostic struct {
	Kind      Kind            `json:"kind"`
	Namespace string          `json:"namespace,omitempty"`
	Name      string          `json:"name"`
	Location  parser.Location `json:"location"`
	Message   string          `json:"message"`
	// Previous is the earlier declaration for already-declared and shadowed.
	Previous *parser.Location `json:"previous,omitempty"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Location, d.Kind, d.Message)
}

// SortDiagnostics orders diagnostics by file, position and kind.
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Location.File != b.Location.File {
			return a.Location.File < b.Location.File
		}
		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}
		if a.Location.Column != b.Location.Column {
			return a.Location.Column < b.Location.Column
		}
		return a.Kind < b.Kind
	})
}

// CountErrors returns how many diagnostics have an error kind.
func CountErrors(diags []Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.Kind.IsError() {
			n++
		}
	}
	return n
}

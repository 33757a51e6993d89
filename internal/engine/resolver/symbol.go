package resolver

import (
	"scopecheck/internal/engine/parser"
	"scopecheck/internal/engine/scope"
)

// Symbol is the declaration value kept in the scope stack.
type Symbol struct {
	Ident    string
	Location parser.Location
	// Universe marks predeclared names, which are never reported as shadowed.
	Universe bool
}

func (s Symbol) Name() string { return s.Ident }

var (
	universeTypes = []string{
		"any", "bool", "byte", "comparable", "complex64", "complex128", "error",
		"float32", "float64", "int", "int8", "int16", "int32", "int64", "rune",
		"string", "uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
	}
	universeFuncs = []string{
		"append", "cap", "clear", "close", "complex", "copy", "delete", "imag",
		"len", "make", "max", "min", "new", "panic", "print", "println", "real",
		"recover",
	}
	universeValues = []string{"true", "false", "iota", "nil"}
)

// enterUniverse opens the outermost scope holding Go's predeclared
// identifiers plus any configured extras.
func enterUniverse(st *scope.Stack[Symbol], extra []string) {
	st.Enter()
	add := func(ns scope.Namespace, names []string) {
		for _, name := range names {
			// Repeated extras are harmless.
			_ = st.Add(ns, Symbol{Ident: name, Universe: true})
		}
	}
	add(scope.Types, universeTypes)
	add(scope.Functions, universeFuncs)
	add(scope.Variables, universeValues)
	add(scope.Variables, extra)
}

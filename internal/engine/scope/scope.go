// Package scope tracks nested lexical scopes, each holding separate type,
// variable and function namespaces, and resolves names innermost-first.
//
// Nothing in this package is safe for concurrent use. Give every traversal
// its own Stack.
package scope

import "sort"

// Named is implemented by every declaration stored in a Scope. Name must be
// deterministic for the lifetime of the value; it is used as the map key.
type Named interface {
	Name() string
}

// Scope is one lexical level.
type Scope[D Named] struct {
	types     map[string]D
	variables map[string]D
	functions map[string]D
}

func NewScope[D Named]() *Scope[D] {
	return &Scope[D]{
		types:     make(map[string]D),
		variables: make(map[string]D),
		functions: make(map[string]D),
	}
}

func (s *Scope[D]) table(ns Namespace) map[string]D {
	switch ns {
	case Types:
		return s.types
	case Variables:
		return s.variables
	case Functions:
		return s.functions
	}
	return nil
}

// Add inserts decl into namespace ns keyed by decl.Name().
func (s *Scope[D]) Add(ns Namespace, decl D) error {
	if !ns.Valid() {
		return ErrInvalidNamespace
	}
	table := s.table(ns)
	name := decl.Name()
	if _, exists := table[name]; exists {
		return &DuplicateDeclarationError{Namespace: ns, Name: name}
	}
	table[name] = decl
	return nil
}

func (s *Scope[D]) AddVariable(decl D) error { return s.Add(Variables, decl) }
func (s *Scope[D]) AddFunction(decl D) error { return s.Add(Functions, decl) }
func (s *Scope[D]) AddType(decl D) error     { return s.Add(Types, decl) }

// Lookup returns the declaration registered under name in ns. Absence is
// reported through ok, never as an error.
func (s *Scope[D]) Lookup(ns Namespace, name string) (decl D, ok bool) {
	decl, ok = s.table(ns)[name]
	return decl, ok
}

func (s *Scope[D]) LookupVariable(name string) (D, bool) { return s.Lookup(Variables, name) }
func (s *Scope[D]) LookupFunction(name string) (D, bool) { return s.Lookup(Functions, name) }
func (s *Scope[D]) LookupType(name string) (D, bool)     { return s.Lookup(Types, name) }

// Len returns the number of declarations in ns.
func (s *Scope[D]) Len(ns Namespace) int {
	return len(s.table(ns))
}

// Names returns the declared names of ns in sorted order.
func (s *Scope[D]) Names(ns Namespace) []string {
	table := s.table(ns)
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Equal reports whether both scopes hold the same (name, declaration) pairs
// in every namespace. eq compares two declarations.
func (s *Scope[D]) Equal(other *Scope[D], eq func(a, b D) bool) bool {
	if s == nil || other == nil {
		return s == other
	}
	for _, ns := range Namespaces {
		a, b := s.table(ns), other.table(ns)
		if len(a) != len(b) {
			return false
		}
		for name, da := range a {
			db, ok := b[name]
			if !ok || !eq(da, db) {
				return false
			}
		}
	}
	return true
}

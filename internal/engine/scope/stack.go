package scope

import "iter"

// Stack is an ordered stack of scopes. The most recently entered scope is
// examined first by every lookup.
type Stack[D Named] struct {
	// scopes[len-1] is the innermost scope.
	scopes []*Scope[D]
	strict bool
}

// NewStack returns an empty stack. Exit on an empty stack is a no-op.
func NewStack[D Named]() *Stack[D] {
	return &Stack[D]{}
}

// NewStrictStack returns an empty stack whose Exit reports ErrUnbalancedExit
// when no scope is open.
func NewStrictStack[D Named]() *Stack[D] {
	return &Stack[D]{strict: true}
}

// Enter pushes a new empty scope.
func (st *Stack[D]) Enter() {
	st.scopes = append(st.scopes, NewScope[D]())
}

// Exit discards the innermost scope and every declaration in it.
func (st *Stack[D]) Exit() error {
	n := len(st.scopes)
	if n == 0 {
		if st.strict {
			return ErrUnbalancedExit
		}
		return nil
	}
	st.scopes[n-1] = nil
	st.scopes = st.scopes[:n-1]
	return nil
}

// Depth returns the number of open scopes.
func (st *Stack[D]) Depth() int {
	return len(st.scopes)
}

// Current returns the innermost scope.
func (st *Stack[D]) Current() (*Scope[D], bool) {
	if len(st.scopes) == 0 {
		return nil, false
	}
	return st.scopes[len(st.scopes)-1], true
}

// Add inserts decl into namespace ns of the innermost scope.
func (st *Stack[D]) Add(ns Namespace, decl D) error {
	cur, ok := st.Current()
	if !ok {
		return ErrNoActiveScope
	}
	return cur.Add(ns, decl)
}

func (st *Stack[D]) AddVariable(decl D) error { return st.Add(Variables, decl) }
func (st *Stack[D]) AddFunction(decl D) error { return st.Add(Functions, decl) }
func (st *Stack[D]) AddType(decl D) error     { return st.Add(Types, decl) }

// Resolve finds name in ns, scanning from the innermost scope outwards. It
// also returns how many scopes out the match was found, 0 being the innermost.
func (st *Stack[D]) Resolve(ns Namespace, name string) (decl D, hops int, ok bool) {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if decl, ok = st.scopes[i].Lookup(ns, name); ok {
			return decl, len(st.scopes) - 1 - i, true
		}
	}
	return decl, -1, false
}

// Lookup returns the innermost declaration of name in ns.
func (st *Stack[D]) Lookup(ns Namespace, name string) (D, bool) {
	decl, _, ok := st.Resolve(ns, name)
	return decl, ok
}

func (st *Stack[D]) LookupVariable(name string) (D, bool) { return st.Lookup(Variables, name) }
func (st *Stack[D]) LookupFunction(name string) (D, bool) { return st.Lookup(Functions, name) }
func (st *Stack[D]) LookupType(name string) (D, bool)     { return st.Lookup(Types, name) }

// LookupLocal only consults the innermost scope.
func (st *Stack[D]) LookupLocal(ns Namespace, name string) (decl D, ok bool) {
	cur, ok := st.Current()
	if !ok {
		return decl, false
	}
	return cur.Lookup(ns, name)
}

// All yields every visible declaration of name in ns, innermost first. The
// first value yielded is the one Lookup returns; the rest are shadowed.
func (st *Stack[D]) All(ns Namespace, name string) iter.Seq[D] {
	return func(yield func(D) bool) {
		for i := len(st.scopes) - 1; i >= 0; i-- {
			if decl, ok := st.scopes[i].Lookup(ns, name); ok {
				if !yield(decl) {
					return
				}
			}
		}
	}
}

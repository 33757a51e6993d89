package scope

import (
	"errors"
	"testing"
)

type decl struct {
	name string
	tag  string
}

func (d decl) Name() string { return d.name }

func d(name, tag string) decl { return decl{name: name, tag: tag} }

func eqDecl(a, b decl) bool { return a == b }

func TestScope_NamespaceIsolation(t *testing.T) {
	for _, added := range Namespaces {
		t.Run(added.String(), func(t *testing.T) {
			s := NewScope[decl]()
			if err := s.Add(added, d("n", "A")); err != nil {
				t.Fatalf("Add failed: %v", err)
			}
			for _, other := range Namespaces {
				_, ok := s.Lookup(other, "n")
				if other == added && !ok {
					t.Errorf("expected n in %s namespace", other)
				}
				if other != added && ok {
					t.Errorf("n leaked from %s into %s namespace", added, other)
				}
			}
		})
	}
}

func TestScope_DuplicateRejected(t *testing.T) {
	adders := map[string]struct {
		ns  Namespace
		add func(*Scope[decl], decl) error
	}{
		"variable": {Variables, (*Scope[decl]).AddVariable},
		"function": {Functions, (*Scope[decl]).AddFunction},
		"type":     {Types, (*Scope[decl]).AddType},
	}

	for name, tc := range adders {
		t.Run(name, func(t *testing.T) {
			s := NewScope[decl]()
			if err := tc.add(s, d("x", "first")); err != nil {
				t.Fatalf("first add failed: %v", err)
			}

			err := tc.add(s, d("x", "second"))
			var dup *DuplicateDeclarationError
			if !errors.As(err, &dup) {
				t.Fatalf("expected DuplicateDeclarationError, got %v", err)
			}
			if dup.Namespace != tc.ns || dup.Name != "x" {
				t.Errorf("unexpected error data: %+v", dup)
			}

			got, ok := s.Lookup(tc.ns, "x")
			if !ok || got.tag != "first" {
				t.Errorf("expected first declaration to survive, got %+v (ok=%v)", got, ok)
			}
			if s.Len(tc.ns) != 1 {
				t.Errorf("expected 1 entry, got %d", s.Len(tc.ns))
			}
		})
	}
}

func TestScope_CrossNamespaceCoexistence(t *testing.T) {
	s := NewScope[decl]()
	if err := s.AddVariable(d("foo", "A")); err != nil {
		t.Fatal(err)
	}
	if err := s.AddFunction(d("foo", "B")); err != nil {
		t.Fatal(err)
	}
	if err := s.AddType(d("foo", "C")); err != nil {
		t.Fatal(err)
	}

	if v, _ := s.LookupVariable("foo"); v.tag != "A" {
		t.Errorf("expected variable A, got %q", v.tag)
	}
	if f, _ := s.LookupFunction("foo"); f.tag != "B" {
		t.Errorf("expected function B, got %q", f.tag)
	}
	if ty, _ := s.LookupType("foo"); ty.tag != "C" {
		t.Errorf("expected type C, got %q", ty.tag)
	}
}

func TestScope_LookupMissing(t *testing.T) {
	s := NewScope[decl]()
	if _, ok := s.LookupVariable("nope"); ok {
		t.Error("expected lookup of undeclared name to report not found")
	}
}

func TestScope_Names(t *testing.T) {
	s := NewScope[decl]()
	for _, n := range []string{"c", "a", "b"} {
		_ = s.AddVariable(d(n, ""))
	}
	got := s.Names(Variables)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if names := s.Names(Types); len(names) != 0 {
		t.Errorf("expected no types, got %v", names)
	}
}

func TestScope_Equal(t *testing.T) {
	a := NewScope[decl]()
	b := NewScope[decl]()
	_ = a.AddVariable(d("x", "1"))
	_ = a.AddType(d("T", "2"))
	// Insertion order is irrelevant.
	_ = b.AddType(d("T", "2"))
	_ = b.AddVariable(d("x", "1"))

	if !a.Equal(b, eqDecl) {
		t.Error("expected scopes with the same pairs to be equal")
	}

	_ = b.AddFunction(d("x", "3"))
	if a.Equal(b, eqDecl) {
		t.Error("expected scopes to differ after extra function")
	}

	c := NewScope[decl]()
	_ = c.AddVariable(d("x", "other"))
	_ = c.AddType(d("T", "2"))
	if a.Equal(c, eqDecl) {
		t.Error("expected scopes with different declarations to differ")
	}
}

func TestNamespace_String(t *testing.T) {
	cases := map[Namespace]string{
		Types:         "type",
		Variables:     "variable",
		Functions:     "function",
		Namespace(42): "unknown",
	}
	for ns, want := range cases {
		if got := ns.String(); got != want {
			t.Errorf("Namespace(%d).String() = %q, want %q", int(ns), got, want)
		}
	}
	if Namespace(42).Valid() {
		t.Error("expected out-of-range namespace to be invalid")
	}
}

func TestScope_InvalidNamespace(t *testing.T) {
	s := NewScope[decl]()
	bad := Namespace(42)
	if err := s.Add(bad, d("n", "A")); !errors.Is(err, ErrInvalidNamespace) {
		t.Fatalf("expected ErrInvalidNamespace, got %v", err)
	}
	if _, ok := s.Lookup(bad, "n"); ok {
		t.Error("lookup in an invalid namespace must report not found")
	}
	for _, ns := range Namespaces {
		if s.Len(ns) != 0 {
			t.Errorf("%s namespace changed after a rejected add", ns)
		}
	}

	st := NewStack[decl]()
	st.Enter()
	if err := st.Add(Namespace(-1), d("n", "A")); !errors.Is(err, ErrInvalidNamespace) {
		t.Fatalf("expected ErrInvalidNamespace from stack, got %v", err)
	}
}

func TestDuplicateDeclarationError_Message(t *testing.T) {
	err := &DuplicateDeclarationError{Namespace: Functions, Name: "main"}
	if err.Error() != "function `main` is already declared" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

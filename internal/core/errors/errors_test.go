package errors

import (
	"errors"
	"testing"

	"scopecheck/internal/engine/scope"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "resource not found")
		if err.Error() != "[NOT_FOUND] resource not found" {
			t.Errorf("expected [NOT_FOUND] resource not found, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("original error")
		err := Wrap(original, CodeInternal, "internal failure")
		expected := "[INTERNAL_ERROR] internal failure: original error"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid input")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
	})

	t.Run("AddContextWrapsPlainErrors", func(t *testing.T) {
		err := AddContext(errors.New("boom"), CtxPath, "main.go")
		var de *DomainError
		if !errors.As(err, &de) {
			t.Fatal("expected DomainError")
		}
		if de.Code != CodeInternal || de.Context[CtxPath] != "main.go" {
			t.Errorf("unexpected error: %+v", de)
		}
	})
}

func TestFromScopeError(t *testing.T) {
	t.Run("Duplicate", func(t *testing.T) {
		src := &scope.DuplicateDeclarationError{Namespace: scope.Types, Name: "T"}
		err := FromScopeError(src)
		if !IsCode(err, CodeAlreadyDeclared) {
			t.Fatalf("expected ALREADY_DECLARED, got %v", err)
		}
		var de *DomainError
		errors.As(err, &de)
		if de.Context[CtxNamespace] != "type" || de.Context[CtxSymbol] != "T" {
			t.Errorf("unexpected context: %v", de.Context)
		}
		var dup *scope.DuplicateDeclarationError
		if !errors.As(err, &dup) {
			t.Error("expected original error to stay reachable")
		}
	})

	t.Run("NoActiveScope", func(t *testing.T) {
		err := FromScopeError(scope.ErrNoActiveScope)
		if !IsCode(err, CodeInternal) || !errors.Is(err, scope.ErrNoActiveScope) {
			t.Errorf("unexpected mapping: %v", err)
		}
	})

	t.Run("InvalidNamespace", func(t *testing.T) {
		err := FromScopeError(scope.ErrInvalidNamespace)
		if !IsCode(err, CodeInternal) || !errors.Is(err, scope.ErrInvalidNamespace) {
			t.Errorf("unexpected mapping: %v", err)
		}
	})

	t.Run("Nil", func(t *testing.T) {
		if FromScopeError(nil) != nil {
			t.Error("expected nil")
		}
	})
}

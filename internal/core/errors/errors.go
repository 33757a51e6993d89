package errors

import (
	"errors"
	"fmt"

	"scopecheck/internal/engine/scope"
)

type ErrorCode string

const (
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationError  ErrorCode = "VALIDATION_ERROR"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
	CodeNotSupported     ErrorCode = "NOT_SUPPORTED"
	CodeAlreadyDeclared  ErrorCode = "ALREADY_DECLARED"
	CodeUndeclared       ErrorCode = "UNDECLARED"
	CodePermissionDenied ErrorCode = "PERMISSION_DENIED"
)

type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]interface{}
}

const (
	CtxPath      = "path"
	CtxOperation = "operation"
	CtxLanguage  = "language"
	CtxSymbol    = "symbol"
	CtxNamespace = "namespace"
)

func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) > 0 {
		msg += fmt.Sprintf(" %v", e.Context)
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg}
}

func Wrap(err error, code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg, Err: err}
}

// AddContext attaches key/value to err, wrapping it in an internal DomainError
// when it is not one already.
func AddContext(err error, key string, value interface{}) error {
	var de *DomainError
	if errors.As(err, &de) {
		de.WithContext(key, value)
		return de
	}
	return &DomainError{
		Code:    CodeInternal,
		Message: "wrapped error",
		Err:     err,
		Context: map[string]interface{}{key: value},
	}
}

func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// FromScopeError maps errors returned by the scope package onto coded
// DomainErrors. The original error stays reachable through Unwrap.
func FromScopeError(err error) error {
	if err == nil {
		return nil
	}
	var dup *scope.DuplicateDeclarationError
	switch {
	case errors.As(err, &dup):
		de := &DomainError{Code: CodeAlreadyDeclared, Message: "duplicate declaration", Err: err}
		return de.WithContext(CtxNamespace, dup.Namespace.String()).WithContext(CtxSymbol, dup.Name)
	case errors.Is(err, scope.ErrNoActiveScope):
		return Wrap(err, CodeInternal, "declaration outside any scope")
	case errors.Is(err, scope.ErrUnbalancedExit):
		return Wrap(err, CodeInternal, "unbalanced scope exit")
	case errors.Is(err, scope.ErrInvalidNamespace):
		return Wrap(err, CodeInternal, "declaration in unknown namespace")
	}
	return Wrap(err, CodeInternal, "scope failure")
}

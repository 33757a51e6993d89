package scope

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveScope is returned by Stack.Add* when no scope has been entered.
	ErrNoActiveScope = errors.New("no active scope")
	// ErrUnbalancedExit is returned by a strict Stack when Exit is called with no open scope.
	ErrUnbalancedExit = errors.New("exit without matching enter")
	// ErrInvalidNamespace is returned when adding to a value outside Types, Variables and Functions.
	ErrInvalidNamespace = errors.New("invalid namespace")
)

// DuplicateDeclarationError reports a name declared twice in the same
// namespace of the same scope. The existing declaration is left in place.
type DuplicateDeclarationError struct {
	Namespace Namespace
	Name      string
}

func (e *DuplicateDeclarationError) Error() string {
	return fmt.Sprintf("%s `%s` is already declared", e.Namespace, e.Name)
}

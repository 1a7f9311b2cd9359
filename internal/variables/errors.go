package variables

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCircularReference indicates a variable refers back to itself
	ErrCircularReference = errors.New("circular reference detected")

	// ErrUnknownReference indicates a variable bound to an undeclared one
	ErrUnknownReference = errors.New("unknown variable reference")
)

// CircularReferenceError carries the chain of identifiers that forms a cycle
type CircularReferenceError struct {
	ReferenceChain []string
}

func (e *CircularReferenceError) Error() string {
	return fmt.Sprintf("circular reference while resolving %q: %s",
		e.ReferenceChain[0], strings.Join(e.ReferenceChain, " → "))
}

func (e *CircularReferenceError) Unwrap() error {
	return ErrCircularReference
}

// UnknownReferenceError reports a binding to a variable that does not exist.
// The value is kept as a literal.
type UnknownReferenceError struct {
	Ident     string
	Reference string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("attempted to bind %q to unknown variable %q", e.Ident, e.Reference)
}

func (e *UnknownReferenceError) Unwrap() error {
	return ErrUnknownReference
}

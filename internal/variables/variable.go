// Package variables implements ExCSS variables and the scoped environments
// that hold them.
package variables

import (
	"strings"

	"bennypowers.dev/excss/internal/collections"
	"bennypowers.dev/excss/internal/log"
)

// Variable is a named value that is either a literal or a reference to
// another Variable
type Variable struct {
	ident   string
	literal string
	ref     *Variable
}

// NewVariable creates a variable and binds value against env
func NewVariable(ident, value string, env *Environment) (*Variable, error) {
	v := &Variable{ident: ident}
	return v, v.Bind(value, env)
}

// Ident returns the identifier, e.g. "foo"
func (v *Variable) Ident() string { return v.ident }

// Name returns the identifier as written in values, e.g. "$foo"
func (v *Variable) Name() string { return "$" + v.ident }

// Ref returns the referenced variable, or nil for a literal
func (v *Variable) Ref() *Variable { return v.ref }

// Literal returns the literal value; it is empty when v is a reference
func (v *Variable) Literal() string { return v.literal }

// Raw returns the value without resolving it: the literal, or the name of
// the referenced variable
func (v *Variable) Raw() string {
	if v.ref != nil {
		return v.ref.Name()
	}
	return v.literal
}

// Bind sets the value. A value starting with "$" is looked up in env and,
// when found, becomes a reference. When it is not found the value is kept as
// a literal and an *UnknownReferenceError is returned.
func (v *Variable) Bind(value string, env *Environment) error {
	v.ref = nil
	v.literal = value
	if env == nil || !strings.HasPrefix(value, "$") {
		return nil
	}
	target, ok := env.Get(value[1:])
	if !ok {
		err := &UnknownReferenceError{Ident: v.ident, Reference: value}
		log.Warn("Attempted to bind %q to unknown variable %q", v.ident, value)
		return err
	}
	v.ref = target
	v.literal = ""
	return nil
}

// Resolve follows references down to a literal. A circular chain yields an
// empty string and a *CircularReferenceError.
func (v *Variable) Resolve() (string, error) {
	return v.resolve(collections.NewSet[*Variable](), nil)
}

func (v *Variable) resolve(seen collections.Set[*Variable], chain []string) (string, error) {
	if v.ref == nil {
		return v.literal, nil
	}
	chain = append(chain, v.ident)
	if !seen.Visit(v) {
		log.Warn("Circular reference while resolving %q", v.ident)
		return "", &CircularReferenceError{ReferenceChain: chain}
	}
	return v.ref.resolve(seen, chain)
}

package variables

import (
	"cmp"
	"slices"
	"strings"

	"bennypowers.dev/excss/internal/collections"
	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/internal/parseobject"
)

// Environment is one scope of variables. Lookups that miss fall through to
// the parent scope. An Environment is not safe for concurrent mutation.
type Environment struct {
	parent *Environment
	vars   *collections.OrderedMap[*Variable]
}

// NewEnvironment creates an empty root scope
func NewEnvironment() *Environment {
	return &Environment{vars: collections.NewOrderedMap[*Variable]()}
}

// Child creates a scope whose lookups fall back to e
func (e *Environment) Child() *Environment {
	child := NewEnvironment()
	child.parent = e
	return child
}

// Set stores v under ident in this scope
func (e *Environment) Set(ident string, v *Variable) {
	e.vars.Set(ident, v)
}

// Get looks ident up in this scope and then in its ancestors
func (e *Environment) Get(ident string) (*Variable, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars.Get(ident); ok {
			return v, true
		}
	}
	return nil, false
}

// Local returns the identifiers declared in this scope, in declaration order
func (e *Environment) Local() []string {
	return e.vars.Keys()
}

// Len returns the number of variables declared in this scope
func (e *Environment) Len() int {
	return e.vars.Len()
}

// All returns every visible variable; a scope's own variables shadow its
// ancestors'
func (e *Environment) All() map[string]*Variable {
	all := map[string]*Variable{}
	if e.parent != nil {
		all = e.parent.All()
	}
	for ident, v := range e.vars.All() {
		all[ident] = v
	}
	return all
}

// Import declares the variables of po in this scope. All variables are
// created first and then every unresolved variable of the scope is bound
// again, so references may point forward or into earlier imports. The
// returned errors are the unknown references found while binding.
func (e *Environment) Import(po *parseobject.ParseObject) []error {
	for ident, raw := range po.Variables.All() {
		e.vars.Set(ident, &Variable{ident: ident, literal: raw})
	}

	var errs []error
	for _, v := range e.vars.All() {
		if v.ref != nil {
			continue
		}
		if err := v.Bind(v.literal, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Substitute replaces every "$name" in expr with the resolved value of the
// matching variable. Longer identifiers are replaced first so that "$foobar"
// is never read as "$foo" followed by "bar". Once this scope's variables are
// exhausted the parent scope substitutes the result again.
func (e *Environment) Substitute(expr string) string {
	all := e.All()
	idents := make([]string, 0, len(all))
	for ident := range all {
		idents = append(idents, ident)
	}
	slices.SortFunc(idents, func(a, b string) int {
		if n := cmp.Compare(len(b), len(a)); n != 0 {
			return n
		}
		return strings.Compare(a, b)
	})

	for _, ident := range idents {
		v := all[ident]
		name := v.Name()
		if !strings.Contains(expr, name) {
			continue
		}
		resolved, _ := v.Resolve()
		if strings.Contains(resolved, name) {
			log.Warn("Value of %q refers to itself", v.ident)
			expr = strings.ReplaceAll(expr, name, resolved)
			continue
		}
		for strings.Contains(expr, name) {
			expr = strings.Replace(expr, name, resolved, 1)
		}
	}

	if e.parent != nil {
		return e.parent.Substitute(expr)
	}
	return expr
}

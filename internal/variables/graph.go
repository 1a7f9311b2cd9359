package variables

import (
	"errors"
	"regexp"
	"slices"

	"bennypowers.dev/excss/internal/collections"
)

// referencePattern matches "$ident" inside a literal value
var referencePattern = regexp.MustCompile(`\$(-?[_a-zA-Z][_a-zA-Z0-9-]*)`)

// DependencyGraph records which visible variables refer to which
type DependencyGraph struct {
	nodes []string
	// refs maps an ident to the idents its value refers to
	refs map[string][]string
	// users is refs reversed
	users map[string][]string
}

// Graph builds the dependency graph of every variable visible from e. A
// variable depends on the variable it is bound to and on every known
// "$ident" that appears in its literal value.
func (e *Environment) Graph() *DependencyGraph {
	g := &DependencyGraph{
		refs:  map[string][]string{},
		users: map[string][]string{},
	}
	all := e.All()
	for _, ident := range e.visibleIdents() {
		g.nodes = append(g.nodes, ident)
		for _, ref := range references(all[ident], all) {
			g.refs[ident] = append(g.refs[ident], ref)
			g.users[ref] = append(g.users[ref], ident)
		}
	}
	return g
}

// visibleIdents lists visible identifiers, ancestors' first, each once
func (e *Environment) visibleIdents() []string {
	if e == nil {
		return nil
	}
	idents := e.parent.visibleIdents()
	for _, ident := range e.vars.Keys() {
		if !slices.Contains(idents, ident) {
			idents = append(idents, ident)
		}
	}
	return idents
}

func references(v *Variable, all map[string]*Variable) []string {
	if v.ref != nil {
		return []string{v.ref.ident}
	}
	var refs []string
	for _, m := range referencePattern.FindAllStringSubmatch(v.literal, -1) {
		if _, ok := all[m[1]]; ok && !slices.Contains(refs, m[1]) {
			refs = append(refs, m[1])
		}
	}
	return refs
}

// dependencies returns the identifiers ident refers to directly
func (g *DependencyGraph) dependencies(ident string) []string {
	return slices.Clone(g.refs[ident])
}

// Dependents returns every identifier whose value follows ident, directly or
// through other variables, nearest first
func (g *DependencyGraph) Dependents(ident string) []string {
	seen := collections.NewSet(ident)
	var out []string
	queue := []string{ident}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		for _, user := range g.users[next] {
			if seen.Visit(user) {
				out = append(out, user)
				queue = append(queue, user)
			}
		}
	}
	return out
}

// Order returns the identifiers with every variable after the ones it refers
// to. A cycle fails with a *CircularReferenceError naming it.
func (g *DependencyGraph) Order() ([]string, error) {
	const (
		pending = iota
		active
		done
	)
	state := map[string]int{}
	order := make([]string, 0, len(g.nodes))
	var path []string

	var visit func(string) []string
	visit = func(ident string) []string {
		switch state[ident] {
		case done:
			return nil
		case active:
			start := slices.Index(path, ident)
			return append(slices.Clone(path[start:]), ident)
		}
		state[ident] = active
		path = append(path, ident)
		for _, ref := range g.refs[ident] {
			if cycle := visit(ref); cycle != nil {
				return cycle
			}
		}
		path = path[:len(path)-1]
		state[ident] = done
		order = append(order, ident)
		return nil
	}

	for _, ident := range g.nodes {
		if cycle := visit(ident); cycle != nil {
			return nil, &CircularReferenceError{ReferenceChain: cycle}
		}
	}
	return order, nil
}

// FindCycle returns the first cycle found, e.g. [a b a], or nil
func (g *DependencyGraph) FindCycle() []string {
	var cerr *CircularReferenceError
	if _, err := g.Order(); errors.As(err, &cerr) {
		return cerr.ReferenceChain
	}
	return nil
}

// FindCycle reports the first reference cycle among the visible variables
func (e *Environment) FindCycle() []string {
	return e.Graph().FindCycle()
}

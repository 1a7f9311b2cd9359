package stylesheet

import (
	"slices"

	"bennypowers.dev/excss/internal/inspect"
	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/internal/parseobject"
	"bennypowers.dev/excss/internal/variables"
)

// VariableInfo describes a global variable
type VariableInfo struct {
	Ident string `json:"ident" yaml:"ident"`
	// Raw is the literal value, or "$name" when the variable refers to another
	Raw string `json:"raw" yaml:"raw"`
	// Value is the resolved value; empty when resolution fails
	Value string       `json:"value" yaml:"value"`
	Info  inspect.Info `json:"info" yaml:"info"`
	// UsedBy lists the variables whose values follow this one, nearest first
	UsedBy []string `json:"usedBy,omitempty" yaml:"usedBy,omitempty"`
}

// GetVariable returns the value of a global variable without resolving it.
// A variable that refers to another yields the other's "$name".
func (s *Session) GetVariable(ident string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.env.Get(ident)
	if !ok {
		return "", false
	}
	return v.Raw(), true
}

// SetVariable rebinds an existing global variable and re-injects every
// stylesheet. It reports false, and does nothing, for unknown identifiers.
func (s *Session) SetVariable(ident, value string) (bool, error) {
	s.mu.Lock()
	v, ok := s.env.Get(ident)
	if !ok {
		s.mu.Unlock()
		log.Debug("Ignoring assignment to unknown variable %q", ident)
		return false, nil
	}
	// Binding reports unknown references itself; the literal is kept.
	_ = v.Bind(value, s.env)
	if log.GetLevel() == log.LevelDebug {
		if affected := s.env.Graph().Dependents(ident); len(affected) > 0 {
			log.Debug("Setting $%s also changes %v", ident, affected)
		}
	}
	s.mu.Unlock()
	return true, s.InjectAll()
}

// Define declares or replaces a global variable without re-injecting. It is
// used to seed the session, for example with design tokens.
func (s *Session) Define(ident, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	v, err := variables.NewVariable(ident, value, s.env)
	s.env.Set(ident, v)
	return err
}

// Variable describes one global variable
func (s *Session) Variable(ident string) (VariableInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.env.Get(ident)
	if !ok {
		return VariableInfo{}, false
	}
	return describe(v, s.env.Graph()), true
}

// Variables describes every global variable, sorted by identifier
func (s *Session) Variables() []VariableInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	idents := s.env.Local()
	slices.Sort(idents)
	return s.describeLocked(idents, s.env.Graph())
}

// OrderedVariables describes every global variable, each one after the
// variables it refers to. A reference cycle fails with a
// *variables.CircularReferenceError.
func (s *Session) OrderedVariables() ([]VariableInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.env.Graph()
	idents, err := g.Order()
	if err != nil {
		return nil, err
	}
	return s.describeLocked(idents, g), nil
}

func (s *Session) describeLocked(idents []string, g *variables.DependencyGraph) []VariableInfo {
	out := make([]VariableInfo, 0, len(idents))
	for _, ident := range idents {
		v, _ := s.env.Get(ident)
		out = append(out, describe(v, g))
	}
	return out
}

func describe(v *variables.Variable, g *variables.DependencyGraph) VariableInfo {
	resolved, _ := v.Resolve()
	return VariableInfo{
		Ident:  v.Ident(),
		Raw:    v.Raw(),
		Value:  resolved,
		Info:   inspect.Value(resolved),
		UsedBy: g.Dependents(v.Ident()),
	}
}

// Lookup describes ident as a stylesheet sees it: po's own variables
// shadow the globals. po is not imported into the session.
func (s *Session) Lookup(po *parseobject.ParseObject, ident string) (VariableInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	env := s.env.Child()
	if po != nil {
		env.Import(po)
	}
	v, ok := env.Get(ident)
	if !ok {
		return VariableInfo{}, false
	}
	return describe(v, env.Graph()), true
}

// Traits returns the identifiers of the registered traits, sorted
func (s *Session) Traits() []string {
	return s.traits.Names()
}

// HasTrait reports whether a trait is registered
func (s *Session) HasTrait(ident string) bool {
	_, ok := s.traits.Get(ident)
	return ok
}

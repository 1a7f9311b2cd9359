// Package parseobject turns ExCSS source into a ParseObject: the traits,
// rulesets and variables of one stylesheet.
package parseobject

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"bennypowers.dev/excss/internal/collections"
)

// ParseObject is the intermediate form of one stylesheet
type ParseObject struct {
	Traits    *collections.OrderedMap[*Trait] `json:"traits" yaml:"traits"`
	Rulesets  []*Ruleset                      `json:"rulesets" yaml:"rulesets"`
	Variables *collections.OrderedMap[string] `json:"variables" yaml:"variables"`
}

// New creates an empty ParseObject
func New() *ParseObject {
	return &ParseObject{
		Traits:    collections.NewOrderedMap[*Trait](),
		Rulesets:  []*Ruleset{},
		Variables: collections.NewOrderedMap[string](),
	}
}

// normalize fills in collections that a decoded object may have omitted and
// rejects null traits and rulesets
func (po *ParseObject) normalize() error {
	if po.Traits == nil {
		po.Traits = collections.NewOrderedMap[*Trait]()
	}
	if po.Rulesets == nil {
		po.Rulesets = []*Ruleset{}
	}
	if po.Variables == nil {
		po.Variables = collections.NewOrderedMap[string]()
	}
	for ident, tr := range po.Traits.All() {
		if tr == nil {
			return fmt.Errorf("trait %q is null", ident)
		}
	}
	for i, rs := range po.Rulesets {
		if rs == nil {
			return fmt.Errorf("ruleset %d is null", i)
		}
	}
	return nil
}

// Empty reports whether the object declares nothing at all
func (po *ParseObject) Empty() bool {
	return po.Traits.Len() == 0 && len(po.Rulesets) == 0 && po.Variables.Len() == 0
}

// Trait is a reusable, parameterized block of rules
type Trait struct {
	Params []string `json:"params" yaml:"params"`
	Rules  Rules    `json:"rules" yaml:"rules"`
}

// Ruleset is a top-level selector block
type Ruleset struct {
	Selector string `json:"selector" yaml:"selector"`
	Rules    Rules  `json:"rules" yaml:"rules"`
}

// Rule is one item of a rule body: a *Declaration, *MixinCall or *Nested
type Rule interface {
	rule()
}

// Declaration is a property declaration such as "color: $main"
type Declaration struct {
	Text string
}

// MixinCall invokes a trait with positional arguments
type MixinCall struct {
	Ident string
	Args  []string
}

// Nested is a block whose selector is combined with its parent's. The
// selector keeps its leading "&".
type Nested struct {
	Selector string
	Rules    Rules
}

func (*Declaration) rule() {}
func (*MixinCall) rule()   {}
func (*Nested) rule()      {}

// Rules is an ordered list of rules
type Rules []Rule

type mixinFields struct {
	Ident string   `json:"ident" yaml:"ident"`
	Args  []string `json:"args" yaml:"args"`
}

type nestedFields struct {
	Selector string `json:"selector" yaml:"selector"`
	Rules    Rules  `json:"rules" yaml:"rules"`
}

// ruleWire is the serialized form of a rule: an object with exactly one of
// its keys set
type ruleWire struct {
	Declaration *string       `json:"declaration,omitempty" yaml:"declaration,omitempty"`
	Mixin       *mixinFields  `json:"mixin,omitempty" yaml:"mixin,omitempty"`
	Nested      *nestedFields `json:"nested,omitempty" yaml:"nested,omitempty"`
}

func (d *Declaration) wire() ruleWire {
	return ruleWire{Declaration: &d.Text}
}

func (m *MixinCall) wire() ruleWire {
	args := m.Args
	if args == nil {
		args = []string{}
	}
	return ruleWire{Mixin: &mixinFields{Ident: m.Ident, Args: args}}
}

func (n *Nested) wire() ruleWire {
	return ruleWire{Nested: &nestedFields{Selector: n.Selector, Rules: n.Rules}}
}

func (d *Declaration) MarshalJSON() ([]byte, error) { return json.Marshal(d.wire()) }
func (m *MixinCall) MarshalJSON() ([]byte, error)   { return json.Marshal(m.wire()) }
func (n *Nested) MarshalJSON() ([]byte, error)      { return json.Marshal(n.wire()) }

func (d *Declaration) MarshalYAML() (any, error) { return d.wire(), nil }
func (m *MixinCall) MarshalYAML() (any, error)   { return m.wire(), nil }
func (n *Nested) MarshalYAML() (any, error)      { return n.wire(), nil }

func (w ruleWire) toRule() (Rule, error) {
	switch {
	case w.Declaration != nil:
		return &Declaration{Text: *w.Declaration}, nil
	case w.Mixin != nil:
		args := w.Mixin.Args
		if args == nil {
			args = []string{}
		}
		return &MixinCall{Ident: w.Mixin.Ident, Args: args}, nil
	case w.Nested != nil:
		rules := w.Nested.Rules
		if rules == nil {
			rules = Rules{}
		}
		return &Nested{Selector: w.Nested.Selector, Rules: rules}, nil
	default:
		return nil, fmt.Errorf("rule has none of declaration, mixin or nested")
	}
}

// MarshalJSON encodes a nil list as an empty array
func (r Rules) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Rule(r))
}

func (r *Rules) UnmarshalJSON(data []byte) error {
	var wires []ruleWire
	if err := json.Unmarshal(data, &wires); err != nil {
		return err
	}
	return r.fromWire(wires)
}

func (r *Rules) UnmarshalYAML(node *yaml.Node) error {
	var wires []ruleWire
	if err := node.Decode(&wires); err != nil {
		return err
	}
	return r.fromWire(wires)
}

func (r *Rules) fromWire(wires []ruleWire) error {
	rules := make(Rules, 0, len(wires))
	for i, w := range wires {
		rule, err := w.toRule()
		if err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, rule)
	}
	*r = rules
	return nil
}

// FromJSON decodes a ParseObject from its JSON form
func FromJSON(data []byte) (*ParseObject, error) {
	var po ParseObject
	if err := json.Unmarshal(data, &po); err != nil {
		return nil, err
	}
	if err := po.normalize(); err != nil {
		return nil, err
	}
	return &po, nil
}

// FromYAML decodes a ParseObject from its YAML form
func FromYAML(data []byte) (*ParseObject, error) {
	var po ParseObject
	if err := yaml.Unmarshal(data, &po); err != nil {
		return nil, err
	}
	if err := po.normalize(); err != nil {
		return nil, err
	}
	return &po, nil
}

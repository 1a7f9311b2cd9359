package grammar

// Kind names the grammar production that produced a token. The zero value
// marks tokens that no production tagged.
type Kind int

const (
	None Kind = iota
	Stylesheet
	Statement
	VarDecl
	VarIdent
	VarInit
	Trait
	TraitIdent
	TraitParams
	TraitParam
	Rulebody
	Ruleitem
	RuleitemSingle
	Nested
	NestedSelector
	NestedDecl
	Selector
	Mixin
	MixinValue
	MixinIdent
	MixinArgs
	MixinArg
	Declaration
	Property
	Ruleset
	Values
	Value
)

var kindNames = [...]string{
	None:           "none",
	Stylesheet:     "stylesheet",
	Statement:      "statement",
	VarDecl:        "var_decl",
	VarIdent:       "var_ident",
	VarInit:        "var_init",
	Trait:          "trait",
	TraitIdent:     "trait_ident",
	TraitParams:    "trait_params",
	TraitParam:     "trait_param",
	Rulebody:       "rulebody",
	Ruleitem:       "ruleitem",
	RuleitemSingle: "ruleitem_single",
	Nested:         "nested",
	NestedSelector: "nested_selector",
	NestedDecl:     "nested_decl",
	Selector:       "selector",
	Mixin:          "mixin",
	MixinValue:     "mixin_value",
	MixinIdent:     "mixin_ident",
	MixinArgs:      "mixin_args",
	MixinArg:       "mixin_arg",
	Declaration:    "declaration",
	Property:       "property",
	Ruleset:        "ruleset",
	Values:         "values",
	Value:          "value",
}

// String returns the production name as it appears in the Grammar table
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// kinds returns every production kind, in grammar order
func kinds() []Kind {
	out := make([]Kind, 0, len(kindNames)-1)
	for k := Stylesheet; int(k) < len(kindNames); k++ {
		out = append(out, k)
	}
	return out
}

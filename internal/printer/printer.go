// Package printer flattens a ParseObject into plain CSS: nested selectors are
// combined with their parents, mixin calls are replaced by the bodies of
// their traits, and variables are substituted.
package printer

import (
	"strings"

	"bennypowers.dev/excss/internal/parseobject"
	"bennypowers.dev/excss/internal/variables"
)

// Traits looks up trait definitions by identifier
type Traits interface {
	Get(ident string) (*parseobject.Trait, bool)
}

// Block is a flattened selector block
type Block struct {
	Selector     string
	Declarations []string
	Nested       []*Block
}

// NestedSelector combines every comma-separated part of parent with every
// part of child. A child part that does not start with "&" is a descendant
// of the parent; every "&" is replaced by the parent part.
func NestedSelector(parent, child string) string {
	outers := strings.Split(parent, ",")
	inners := strings.Split(child, ",")
	combined := make([]string, 0, len(outers))
	for _, outer := range outers {
		outer = strings.TrimSpace(outer)
		parts := make([]string, 0, len(inners))
		for _, inner := range inners {
			inner = strings.TrimSpace(inner)
			if !strings.HasPrefix(inner, "&") {
				inner = "& " + inner
			}
			parts = append(parts, strings.ReplaceAll(inner, "&", outer))
		}
		combined = append(combined, strings.Join(parts, ", "))
	}
	return strings.Join(combined, ", ")
}

// Flatten resolves rules at selector. Nested blocks share env; a mixin call
// binds its trait's parameters in a child of env and contributes the trait's
// declarations and nested blocks at the call site. Calls to unknown or nil
// traits are skipped.
func Flatten(selector string, rules parseobject.Rules, env *variables.Environment, traits Traits) *Block {
	block := &Block{Selector: selector}
	for _, rule := range rules {
		switch r := rule.(type) {
		case *parseobject.Declaration:
			block.Declarations = append(block.Declarations, env.Substitute(r.Text))

		case *parseobject.Nested:
			block.Nested = append(block.Nested,
				Flatten(NestedSelector(selector, r.Selector), r.Rules, env, traits))

		case *parseobject.MixinCall:
			trait, ok := traits.Get(r.Ident)
			if !ok || trait == nil {
				continue
			}
			scope := env.Child()
			for i := 0; i < len(r.Args) && i < len(trait.Params); i++ {
				v, _ := variables.NewVariable(trait.Params[i], r.Args[i], env)
				scope.Set(trait.Params[i], v)
			}
			mixin := Flatten(selector, trait.Rules, scope, traits)
			block.Declarations = append(block.Declarations, mixin.Declarations...)
			block.Nested = append(block.Nested, mixin.Nested...)
		}
	}
	return block
}

// FlattenAll flattens every ruleset of po, in order
func FlattenAll(po *parseobject.ParseObject, env *variables.Environment, traits Traits) []*Block {
	blocks := make([]*Block, 0, len(po.Rulesets))
	for _, rs := range po.Rulesets {
		if rs == nil {
			continue
		}
		blocks = append(blocks, Flatten(rs.Selector, rs.Rules, env, traits))
	}
	return blocks
}

// Print renders po as CSS
func Print(po *parseobject.ParseObject, env *variables.Environment, traits Traits) string {
	var b strings.Builder
	for _, block := range FlattenAll(po, env, traits) {
		block.write(&b)
	}
	return b.String()
}

// String renders the block followed by its nested blocks, all at the same
// level
func (blk *Block) String() string {
	var b strings.Builder
	blk.write(&b)
	return b.String()
}

func (blk *Block) write(b *strings.Builder) {
	b.WriteString(blk.Selector)
	b.WriteString(" {\n")
	for _, decl := range blk.Declarations {
		b.WriteString("  ")
		b.WriteString(decl)
		b.WriteString(";\n")
	}
	b.WriteString("}\n")
	for _, nested := range blk.Nested {
		nested.write(b)
	}
}

package parseobject

import (
	"regexp"
	"strings"

	"bennypowers.dev/excss/internal/grammar"
	"bennypowers.dev/excss/internal/log"
)

// directive matches a selector that starts like an ExCSS directive
var directive = regexp.MustCompile(`^@(trait|var|mixin)\b`)

// item is an open rule body: a ruleset, trait or nested block
type item struct {
	rules    *Rules
	selector *string
	params   *[]string
}

// builder assembles a ParseObject from translator callbacks
type builder struct {
	po       *ParseObject
	items    []item
	mixin    *MixinCall
	varIdent string
	warnings []error
}

func newBuilder() *builder {
	return &builder{po: New()}
}

func (b *builder) current() (item, bool) {
	if len(b.items) == 0 {
		return item{}, false
	}
	return b.items[len(b.items)-1], true
}

func (b *builder) push(it item) {
	b.items = append(b.items, it)
}

func (b *builder) pop() {
	if len(b.items) > 0 {
		b.items = b.items[:len(b.items)-1]
	}
}

func (b *builder) appendRule(r Rule) {
	cur, ok := b.current()
	if !ok {
		log.Warn("Dropping rule outside of any rule body: %T", r)
		return
	}
	*cur.rules = append(*cur.rules, r)
}

func (b *builder) Visit(kind grammar.Kind, content string) {
	switch kind {
	case grammar.Selector:
		content = strings.TrimRight(content, " ")
		cur, ok := b.current()
		if !ok {
			if directive.MatchString(content) {
				err := &DirectiveSelectorError{Selector: content}
				log.Warn("%v", err)
				b.warnings = append(b.warnings, err)
			}
			rs := &Ruleset{Selector: content, Rules: Rules{}}
			b.po.Rulesets = append(b.po.Rulesets, rs)
			b.push(item{rules: &rs.Rules, selector: &rs.Selector})
			return
		}
		if cur.selector != nil {
			*cur.selector += content
		}

	case grammar.Declaration:
		b.appendRule(&Declaration{Text: content})

	case grammar.MixinIdent:
		b.mixin = &MixinCall{Ident: content, Args: []string{}}
		b.appendRule(b.mixin)

	case grammar.MixinArg:
		if b.mixin != nil {
			b.mixin.Args = append(b.mixin.Args, content)
		}

	case grammar.TraitIdent:
		if len(b.items) > 0 {
			log.Error("%s (trait %q)", ErrNestedTrait, content)
			b.warnings = append(b.warnings, ErrNestedTrait)
			return
		}
		tr := &Trait{Params: []string{}, Rules: Rules{}}
		b.po.Traits.Set(content, tr)
		b.push(item{rules: &tr.Rules, params: &tr.Params})

	case grammar.TraitParam:
		if cur, ok := b.current(); ok && cur.params != nil {
			*cur.params = append(*cur.params, content)
		}

	case grammar.VarIdent:
		b.varIdent = content

	case grammar.VarInit:
		b.po.Variables.Set(b.varIdent, content)

	case grammar.NestedDecl:
		n := &Nested{Selector: content, Rules: Rules{}}
		b.appendRule(n)
		b.push(item{rules: &n.Rules, selector: &n.Selector})

	case grammar.Rulebody:
		b.pop()

	case grammar.None, grammar.Stylesheet, grammar.Statement, grammar.VarDecl,
		grammar.Trait, grammar.TraitParams, grammar.Ruleitem, grammar.RuleitemSingle,
		grammar.Nested, grammar.NestedSelector, grammar.Mixin, grammar.MixinValue,
		grammar.MixinArgs, grammar.Property, grammar.Ruleset, grammar.Values,
		grammar.Value:
		// structural only
	}
}

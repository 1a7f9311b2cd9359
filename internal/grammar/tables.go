// Package grammar holds the ExCSS grammar: character-class macros, lexical
// tokens and syntactic productions derived from the CSS2 grammar, plus the
// ExCSS extensions for variables, traits, mixins and nesting.
//
// The tables refer to each other by name. A reference is a parser that looks
// its target up when it runs, so productions may be mutually and
// self-recursive regardless of the order in which they are defined.
//
//	stylesheet       : [ S | statement ]*;
//	statement        : var-decl | trait | ruleset;
//	var-decl         : '@var' S* var-ident S* var-init ';'+;
//	var-ident        : IDENT;
//	var-init         : values;
//	trait            : '@trait' S* trait-ident S* [ trait-params S* ]? rulebody
//	trait-ident      : IDENT;
//	trait-params     : '(' S* trait-param [ ',' S* trait-param ]* ')';
//	trait-param      : IDENT;
//	rulebody         : '{' S* [ ruleitem S* ]* [ ruleitem-single S* ]? '}';
//	ruleitem         : nested | [ mixin ';' ] | [ declaration ';' ] ';'*;
//	ruleitem-single  : nested | mixin | declaration;
//	nested           : nested-selector selector rulebody;
//	nested-selector  : nested-decl selector;
//	nested-decl      : '&';
//	selector         : NOTBRACE*;
//	mixin            : '@mixin' S* [ mixin-value S* ]+;
//	mixin-value      : mixin-ident S* mixin-args?;
//	mixin-ident      : IDENT;
//	mixin-args       : '(' S* mixin-arg [ ',' S* mixin-arg ]* ')';
//	mixin-arg        : value;
//	declaration      : property S* ':' S* values;
//	property         : IDENT;
//	ruleset          : selector rulebody;
//	values           : value+;
//	value            : [ FUNCTION S* value* ')' | IDENT | EXCSS_VARIABLE_IDENT
//	                   | PERCENTAGE | DIMENSION | NUMBER | STRING | DELIM | URI
//	                   | HASH | UNICODE-RANGE | INCLUDES | DASHMATCH | ':'
//	                   | ATKEYWORD | '(' S* value* ')' | '[' S* value* ']' ] S*;
package grammar

import (
	"strings"

	"bennypowers.dev/excss/internal/combinator"
)

// Rule is a parser over the grammar's token kinds
type Rule = combinator.Parser[Kind]

// Token is a node of an ExCSS parse tree
type Token = combinator.Token[Kind]

// Table names
const (
	MacrosTable      = "Macros"
	TokensTable      = "Tokens"
	ExCssTokensTable = "ExCssTokens"
	GrammarTable     = "Grammar"
)

const excssPrefix = "EXCSS_"

var tables = map[string]map[string]Rule{}

// Ref returns a rule that looks up key in the named table each time it runs.
// Running it against an unknown table or key panics with *LookupError.
func Ref(table, key string) Rule {
	return func(input string) (*Token, bool) {
		entries, ok := tables[table]
		if !ok {
			panic(&LookupError{Table: table})
		}
		rule, ok := entries[key]
		if !ok {
			panic(&LookupError{Table: table, Key: key})
		}
		return rule(input)
	}
}

func m(key string) Rule { return Ref(MacrosTable, key) }

func t(key string) Rule {
	if strings.HasPrefix(key, excssPrefix) {
		return Ref(ExCssTokensTable, key)
	}
	return Ref(TokensTable, key)
}

func g(key string) Rule { return Ref(GrammarTable, key) }

// Production returns the grammar rule for kind
func Production(kind Kind) Rule {
	return g(kind.String())
}

// Parse runs the stylesheet production over text. The production accepts any
// input; whatever it could not consume is left in the token's Remainder.
func Parse(text string) *Token {
	tok, ok := Production(Stylesheet)(text)
	if !ok {
		return &Token{Remainder: text}
	}
	return tok
}

func lit(s string) Rule         { return combinator.Literal[Kind](s) }
func re(pattern string) Rule    { return combinator.Regex[Kind](pattern) }
func seq(rules ...Rule) Rule    { return combinator.Sequence(rules...) }
func first(rules ...Rule) Rule  { return combinator.Alternation(rules...) }
func opt(rules ...Rule) Rule    { return combinator.Optional(rules...) }
func many1(rules ...Rule) Rule  { return combinator.OneOrMore(rules...) }
func many(rules ...Rule) Rule   { return combinator.ZeroOrMore(rules...) }
func nothing() Rule             { return combinator.Nothing[Kind]() }
func typed(k Kind, r Rule) Rule { return combinator.WithType(k, r) }

func init() {
	tables[MacrosTable] = macros()
	tables[TokensTable] = lexicalTokens()
	tables[ExCssTokensTable] = excssTokens()
	tables[GrammarTable] = productions()
}

// macros are the CSS2 character-class macros
func macros() map[string]Rule {
	return map[string]Rule{
		"ident":   seq(opt(lit("-")), m("nmstart"), many(m("nmchar"))),
		"name":    many1(m("nmchar")),
		"nmstart": first(re(`[_a-z]`), m("nonascii"), m("escape")),
		// TODO: match non-ASCII identifier characters
		"nonascii": nothing(),
		"unicode":  re(`\\[0-9a-f]{1,6}(\r\n|[ \n\r\t\f])?`),
		"escape":   first(m("unicode"), seq(lit(`\`), re(`"[^\n\r\f0-9a-f]"`))),
		"nmchar":   first(re(`[_a-z0-9\-]`), m("nonascii"), m("escape")),
		// CSS2 has [0-9]+|[0-9]*\.[0-9]+; this also admits negative numbers
		// and tries the fractional form first.
		"num":    re(`[-]?([0-9]*\.[0-9]+|[0-9]+)`),
		"string": first(m("string1"), m("string2")),
		"string1": seq(lit(`"`),
			many(first(re(`[^\n\r\f"]`), seq(lit(`\`), m("nl")), m("escape"))),
			lit(`"`)),
		"string2": seq(lit(`'`),
			many(first(re(`[^\n\r\f']`), seq(lit(`\`), m("nl")), m("escape"))),
			lit(`'`)),
		"invalid": first(m("invalid1"), m("invalid2")),
		"invalid1": seq(lit(`"`),
			many(first(re(`[^\n\r\f\"]`), seq(lit(`\`), m("nl")), m("escape")))),
		"invalid2": seq(lit(`'`),
			many(first(re(`[^\n\r\f\"]`), seq(lit(`\`), m("nl")), m("escape")))),
		"nl": re(`\n|\r\n|\r|\f`),
		"w":  re(`[ \t\r\n\f]*`),
	}
}

// lexicalTokens are (most of) the CSS2 tokens
func lexicalTokens() map[string]Rule {
	return map[string]Rule{
		"IDENT":      m("ident"),
		"ATKEYWORD":  seq(lit("@"), m("ident")),
		"STRING":     m("string"),
		"INVALID":    m("invalid"),
		"HASH":       seq(lit("#"), m("name")),
		"NUMBER":     m("num"),
		"PERCENTAGE": seq(m("num"), lit("%")),
		"DIMENSION":  seq(m("num"), m("ident")),
		"URI": first(
			seq(lit("url("), m("w"), m("string"), m("w"), lit(")")),
			seq(lit("url("),
				m("w"),
				many(first(re(`[!#$%&*-~]`), m("nonascii"), m("escape"))),
				m("w"),
				lit(")"))),
		// TODO: match unicode ranges
		"UNICODE_RANGE": nothing(),
		"CDO":           lit("<!--"),
		"CDC":           lit("-->"),
		"S":             re(`[ \t\r\n\f]+`),
		// SS stands in for S*, which the productions use everywhere
		"SS":        re(`[ \t\r\n\f]*`),
		"FUNCTION":  seq(m("ident"), lit("(")),
		"INCLUDES":  lit("~="),
		"DASHMATCH": lit("|="),
		"DELIM":     re(`[^@#% :;{}()\[\]\t\r\n\f'"]`),
		"NOTBRACE":  re(`[^{}]`),
	}
}

// excssTokens are the tokens ExCSS adds; their keys carry the EXCSS_ prefix
func excssTokens() map[string]Rule {
	return map[string]Rule{
		"EXCSS_VARIABLE_IDENT": seq(lit("$"), m("ident")),
	}
}

func productions() map[string]Rule {
	ss := t("SS")
	rules := map[Kind]Rule{
		Stylesheet: many(first(t("S"), g("statement"))),
		Statement:  first(g("var_decl"), g("trait"), g("ruleset")),
		VarDecl:    seq(lit("@var"), ss, g("var_ident"), ss, g("var_init"), many1(lit(";"))),
		VarIdent:   t("IDENT"),
		VarInit:    g("values"),
		Trait: seq(lit("@trait"),
			ss,
			g("trait_ident"),
			ss,
			opt(g("trait_params"), ss),
			g("rulebody")),
		TraitIdent:  t("IDENT"),
		TraitParams: seq(lit("("), ss, g("trait_param"), many(lit(","), ss, g("trait_param")), lit(")")),
		TraitParam:  t("IDENT"),
		Rulebody: seq(lit("{"),
			ss,
			many(g("ruleitem"), ss),
			opt(g("ruleitem_single"), ss),
			lit("}")),
		Ruleitem: seq(
			first(g("nested"), seq(g("mixin"), lit(";")), seq(g("declaration"), lit(";"))),
			many(lit(";"))),
		RuleitemSingle: first(g("nested"), g("mixin"), g("declaration")),
		Nested:         seq(g("nested_selector"), g("selector"), g("rulebody")),
		NestedSelector: seq(g("nested_decl"), g("selector")),
		NestedDecl:     lit("&"),
		Selector:       many(t("NOTBRACE")),
		Mixin:          seq(lit("@mixin"), ss, many1(g("mixin_value"), ss)),
		MixinValue:     seq(g("mixin_ident"), ss, opt(g("mixin_args"))),
		MixinIdent:     t("IDENT"),
		MixinArgs:      seq(lit("("), ss, opt(g("mixin_arg"), many(lit(","), ss, g("mixin_arg"))), lit(")")),
		MixinArg:       g("value"),
		Declaration:    seq(g("property"), ss, lit(":"), ss, g("values")),
		Property:       t("IDENT"),
		Ruleset:        seq(g("selector"), g("rulebody")),
		Values:         many1(g("value")),
		Value: seq(first(
			seq(t("FUNCTION"), ss, many(g("value")), lit(")")),
			t("IDENT"),
			t("EXCSS_VARIABLE_IDENT"),
			t("PERCENTAGE"),
			t("DIMENSION"),
			t("NUMBER"),
			t("STRING"),
			t("DELIM"),
			t("URI"),
			t("HASH"),
			t("UNICODE_RANGE"),
			t("INCLUDES"),
			t("DASHMATCH"),
			lit(":"),
			t("ATKEYWORD"),
			seq(lit("("), ss, many(g("value")), lit(")")),
			seq(lit("["), ss, many(g("value")), lit("]"))),
			ss),
	}

	table := make(map[string]Rule, len(rules))
	for _, kind := range kinds() {
		rule, ok := rules[kind]
		if !ok {
			panic(&LookupError{Table: GrammarTable, Key: kind.String()})
		}
		table[kind.String()] = typed(kind, rule)
	}
	return table
}

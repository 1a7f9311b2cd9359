// Package combinator provides the text-prefix parser combinators the ExCSS
// grammar is built from.
//
// A Parser consumes a prefix of its input and returns a Token describing the
// match together with the unconsumed remainder. Parsers carry no state, so a
// single grammar can be shared by any number of goroutines.
package combinator

import "strings"

// Token is the result of a successful parse. A leaf token carries the matched
// text in Value; a composite token carries its sub-matches in Children.
// Kind is the zero value unless the token was produced by a WithType parser.
type Token[K comparable] struct {
	Value     string
	Children  []*Token[K]
	Remainder string
	Kind      K
}

// Typed reports whether the token was tagged by WithType
func (t *Token[K]) Typed() bool {
	var zero K
	return t.Kind != zero
}

// Text returns the concatenation of all leaf values below t, in order
func (t *Token[K]) Text() string {
	if t.Children == nil {
		return t.Value
	}
	var b strings.Builder
	t.writeText(&b)
	return b.String()
}

func (t *Token[K]) writeText(b *strings.Builder) {
	if t.Children == nil {
		b.WriteString(t.Value)
		return
	}
	for _, child := range t.Children {
		child.writeText(b)
	}
}

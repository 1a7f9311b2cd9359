package combinator

import (
	"regexp"
	"strings"
)

// Parser matches a prefix of its input. It returns false when the input does
// not match, in which case the token is nil.
type Parser[K comparable] func(input string) (*Token[K], bool)

func leaf[K comparable](value, remainder string) *Token[K] {
	return &Token[K]{Value: value, Remainder: remainder}
}

// Literal matches the lower-cased form of s at the start of the input.
// The token value is s as written.
func Literal[K comparable](s string) Parser[K] {
	prefix := strings.ToLower(s)
	return func(input string) (*Token[K], bool) {
		if !strings.HasPrefix(input, prefix) {
			return nil, false
		}
		return leaf[K](s, input[len(prefix):]), true
	}
}

// Regex matches pattern, anchored to the start of the input and case
// insensitive. The pattern is compiled once; an invalid pattern panics.
func Regex[K comparable](pattern string) Parser[K] {
	re := regexp.MustCompile(`(?i)^(?:` + pattern + `)`)
	return func(input string) (*Token[K], bool) {
		loc := re.FindStringIndex(input)
		if loc == nil {
			return nil, false
		}
		return leaf[K](input[:loc[1]], input[loc[1]:]), true
	}
}

// Sequence matches every parser in order, each consuming what the previous one
// left. It fails as a whole if any parser fails.
func Sequence[K comparable](parsers ...Parser[K]) Parser[K] {
	return func(input string) (*Token[K], bool) {
		children := make([]*Token[K], 0, len(parsers))
		remainder := input
		for _, p := range parsers {
			tok, ok := p(remainder)
			if !ok {
				return nil, false
			}
			children = append(children, tok)
			remainder = tok.Remainder
		}
		return &Token[K]{Children: children, Remainder: remainder}, true
	}
}

// Alternation returns the match of the first parser that succeeds, wrapped in
// a new token. Order is significant: there is no backtracking into later
// alternatives once one has matched.
func Alternation[K comparable](parsers ...Parser[K]) Parser[K] {
	return func(input string) (*Token[K], bool) {
		for _, p := range parsers {
			if tok, ok := p(input); ok {
				return &Token[K]{Children: []*Token[K]{tok}, Remainder: tok.Remainder}, true
			}
		}
		return nil, false
	}
}

// Optional behaves like Sequence but never fails; on a mismatch it returns an
// empty token that consumes nothing.
func Optional[K comparable](parsers ...Parser[K]) Parser[K] {
	seq := Sequence(parsers...)
	return func(input string) (*Token[K], bool) {
		if tok, ok := seq(input); ok {
			return tok, true
		}
		return leaf[K]("", input), true
	}
}

// OneOrMore repeats the sequence of parsers greedily. It fails unless the
// sequence matches at least once.
func OneOrMore[K comparable](parsers ...Parser[K]) Parser[K] {
	seq := Sequence(parsers...)
	return func(input string) (*Token[K], bool) {
		var children []*Token[K]
		remainder := input
		for {
			tok, ok := seq(remainder)
			if !ok {
				break
			}
			children = append(children, tok)
			if tok.Remainder == remainder {
				// an empty match would repeat forever
				break
			}
			remainder = tok.Remainder
		}
		if len(children) == 0 {
			return nil, false
		}
		return &Token[K]{Children: children, Remainder: remainder}, true
	}
}

// ZeroOrMore is Optional(OneOrMore(parsers...))
func ZeroOrMore[K comparable](parsers ...Parser[K]) Parser[K] {
	return Optional(OneOrMore(parsers...))
}

// WithType tags the token produced by p with kind
func WithType[K comparable](kind K, p Parser[K]) Parser[K] {
	return func(input string) (*Token[K], bool) {
		tok, ok := p(input)
		if !ok {
			return nil, false
		}
		tok.Kind = kind
		return tok, true
	}
}

// Nothing never matches
func Nothing[K comparable]() Parser[K] {
	return func(string) (*Token[K], bool) {
		return nil, false
	}
}

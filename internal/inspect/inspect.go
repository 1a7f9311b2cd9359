// Package inspect classifies resolved variable values so that tooling can
// describe them (hover text, the vars listing, the HTTP API).
package inspect

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mazznoer/csscolorparser"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Category is the lexical shape of a value.
type Category int

const (
	Unknown Category = iota
	Color
	Dimension
	Percentage
	Number
	Keyword
	String
	URL
	Function
	List
	Empty
)

var categoryNames = [...]string{
	Unknown:    "unknown",
	Color:      "color",
	Dimension:  "dimension",
	Percentage: "percentage",
	Number:     "number",
	Keyword:    "keyword",
	String:     "string",
	URL:        "url",
	Function:   "function",
	List:       "list",
	Empty:      "empty",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	i := slices.Index(categoryNames[:], string(text))
	if i < 0 {
		return fmt.Errorf("unknown value category %q", text)
	}
	*c = Category(i)
	return nil
}

// Info describes one value.
type Info struct {
	Category Category `json:"category" yaml:"category"`
	// Hex is set for colours, in #rrggbb or #rrggbbaa form.
	Hex string `json:"hex,omitempty" yaml:"hex,omitempty"`
}

// Value classifies a CSS value.
func Value(value string) Info {
	value = strings.TrimSpace(value)
	if value == "" {
		return Info{Category: Empty}
	}

	tokens := lex(value)
	if len(tokens) == 0 {
		return Info{Category: Unknown}
	}
	if len(tokens) > 1 {
		return Info{Category: List}
	}

	switch tokens[0].typ {
	case css.HashToken:
		return withColor(value, Unknown)
	case css.IdentToken:
		return withColor(value, Keyword)
	case css.FunctionToken:
		return withColor(value, Function)
	case css.DimensionToken:
		return Info{Category: Dimension}
	case css.PercentageToken:
		return Info{Category: Percentage}
	case css.NumberToken:
		return Info{Category: Number}
	case css.StringToken:
		return Info{Category: String}
	case css.URLToken:
		return Info{Category: URL}
	}
	return Info{Category: Unknown}
}

func withColor(value string, fallback Category) Info {
	c, err := csscolorparser.Parse(value)
	if err != nil {
		return Info{Category: fallback}
	}
	return Info{Category: Color, Hex: c.HexString()}
}

type lexeme struct {
	typ  css.TokenType
	data string
}

// lex returns the top-level tokens of value, skipping whitespace. The
// arguments of a function are folded into the function token.
func lex(value string) []lexeme {
	l := css.NewLexer(parse.NewInputString(value))
	var out []lexeme
	depth := 0
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			return out
		case css.WhitespaceToken, css.CommentToken:
			continue
		case css.FunctionToken, css.LeftParenthesisToken:
			if depth == 0 {
				out = append(out, lexeme{tt, string(data)})
			}
			depth++
			continue
		case css.RightParenthesisToken:
			if depth > 0 {
				depth--
			}
			continue
		}
		if depth == 0 {
			out = append(out, lexeme{tt, string(data)})
		}
	}
}

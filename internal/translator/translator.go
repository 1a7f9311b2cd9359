// Package translator reduces an ExCSS parse tree to text while reporting each
// typed node to a Handler.
package translator

import (
	"strings"

	"bennypowers.dev/excss/internal/grammar"
	"bennypowers.dev/excss/internal/log"
)

// Handler receives every typed node of a parse tree. Visit is called after
// all of the node's descendants have been visited, with the node's complete
// text.
type Handler interface {
	Visit(kind grammar.Kind, content string)
}

// HandlerFunc adapts a function to the Handler interface
type HandlerFunc func(kind grammar.Kind, content string)

func (f HandlerFunc) Visit(kind grammar.Kind, content string) {
	f(kind, content)
}

// Walk traverses root in post-order and returns its text. A nil handler falls
// back to Debug.
func Walk(root *grammar.Token, h Handler) string {
	if root == nil {
		return ""
	}
	if h == nil {
		h = Debug()
	}
	var b strings.Builder
	walk(root, h, &b)
	return b.String()
}

func walk(tok *grammar.Token, h Handler, out *strings.Builder) {
	if tok.Children == nil {
		out.WriteString(tok.Value)
		if tok.Typed() {
			h.Visit(tok.Kind, tok.Value)
		}
		return
	}

	var b strings.Builder
	for _, child := range tok.Children {
		walk(child, h, &b)
	}
	content := b.String()
	if tok.Typed() {
		h.Visit(tok.Kind, content)
	}
	out.WriteString(content)
}

// Debug returns a handler that logs every typed node at debug level
func Debug() Handler {
	return HandlerFunc(func(kind grammar.Kind, content string) {
		log.Debug("%s: %q", kind, content)
	})
}

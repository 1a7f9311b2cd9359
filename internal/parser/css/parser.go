// Package css checks generated CSS with tree-sitter.
package css

import (
	"fmt"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
)

// Parser handles parsing CSS with tree-sitter
type Parser struct {
	parser *sitter.Parser
}

var cssLang = sitter.NewLanguage(tree_sitter_css.Language())

var parserPool = sync.Pool{
	New: func() any {
		return NewParser()
	},
}

// NewParser creates a new CSS parser
func NewParser() *Parser {
	parser := sitter.NewParser()
	if err := parser.SetLanguage(cssLang); err != nil {
		panic(fmt.Sprintf("failed to set CSS language: %v", err))
	}
	return &Parser{parser: parser}
}

// AcquireParser gets a parser from the pool
func AcquireParser() *Parser {
	p := parserPool.Get().(*Parser)
	p.parser.Reset()
	return p
}

// ReleaseParser returns a parser to the pool
func ReleaseParser(p *Parser) {
	if p != nil {
		parserPool.Put(p)
	}
}

// Close releases the parser's resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// Validate parses source and reports its rule sets, declarations and syntax
// errors
func (p *Parser) Validate(source string) (*Summary, error) {
	sourceBytes := []byte(source)
	tree := p.parser.Parse(sourceBytes, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse CSS")
	}
	defer tree.Close()

	summary := &Summary{Selectors: []string{}, Problems: []Problem{}}
	walkTree(tree.RootNode(), sourceBytes, summary)
	return summary, nil
}

// Validate checks source with a pooled parser
func Validate(source string) (*Summary, error) {
	p := AcquireParser()
	defer ReleaseParser(p)
	return p.Validate(source)
}

func walkTree(node *sitter.Node, source []byte, summary *Summary) {
	if node == nil {
		return
	}

	switch {
	case node.IsMissing():
		summary.Problems = append(summary.Problems, Problem{
			Message: fmt.Sprintf("missing %s", node.Kind()),
			Range:   nodeRange(node),
		})
		return
	case node.IsError():
		excerpt := strings.TrimSpace(string(source[node.StartByte():node.EndByte()]))
		if len(excerpt) > 40 {
			excerpt = excerpt[:40]
		}
		summary.Problems = append(summary.Problems, Problem{
			Message: fmt.Sprintf("syntax error near %q", excerpt),
			Range:   nodeRange(node),
		})
		return
	}

	switch node.Kind() {
	case "rule_set":
		for i := uint(0); i < node.ChildCount(); i++ {
			if child := node.Child(i); child.Kind() == "selectors" {
				summary.Selectors = append(summary.Selectors,
					string(source[child.StartByte():child.EndByte()]))
			}
		}
	case "declaration":
		summary.Declarations++
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		walkTree(node.Child(i), source, summary)
	}
}

func nodeRange(node *sitter.Node) Range {
	return Range{
		Start: Position{
			Line:      uint32(node.StartPosition().Row),    //nolint:gosec // G115: positions are bounded by file size
			Character: uint32(node.StartPosition().Column), //nolint:gosec // G115: positions are bounded by file size
		},
		End: Position{
			Line:      uint32(node.EndPosition().Row),    //nolint:gosec // G115: positions are bounded by file size
			Character: uint32(node.EndPosition().Column), //nolint:gosec // G115: positions are bounded by file size
		},
	}
}

// Package html finds ExCSS stylesheets in HTML documents.
package html

import (
	"fmt"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
)

// MediaType marks elements whose content is ExCSS
const MediaType = "text/excss"

// Parser extracts ExCSS sources from HTML
type Parser struct {
	parser *sitter.Parser
}

var htmlLang = sitter.NewLanguage(tree_sitter_html.Language())

// parserPool is a pool of reusable HTML parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(htmlLang); err != nil {
			panic(fmt.Sprintf("failed to set HTML language: %v", err))
		}
		return &Parser{parser: parser}
	},
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

// ExtractSources returns every <style> and <link> element with
// type="text/excss", in document order. Other elements carrying that type
// are reported as warnings.
func (p *Parser) ExtractSources(source string) *Result {
	sourceBytes := []byte(source)
	result := &Result{}
	tree := p.parser.Parse(sourceBytes, nil)
	if tree == nil {
		return result
	}
	defer tree.Close()

	walk(tree.RootNode(), sourceBytes, result)
	return result
}

func walk(node *sitter.Node, source []byte, result *Result) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "style_element":
		if src, ok := styleSource(node, source); ok {
			result.Sources = append(result.Sources, src)
		}
		return
	case "element":
		if tag := startTag(node); tag != nil {
			checkElement(node, tag, source, result)
		}
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walk(node.Child(i), source, result)
	}
}

func text(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

func startTag(element *sitter.Node) *sitter.Node {
	for i := uint(0); i < element.ChildCount(); i++ {
		child := element.Child(i)
		if kind := child.Kind(); kind == "start_tag" || kind == "self_closing_tag" {
			return child
		}
	}
	return nil
}

// attributes reads the tag name and attributes of a start tag
func attributes(tag *sitter.Node, source []byte) (string, [][2]string) {
	var name string
	var attrs [][2]string
	for i := uint(0); i < tag.ChildCount(); i++ {
		child := tag.Child(i)
		switch child.Kind() {
		case "tag_name":
			name = strings.ToLower(text(child, source))
		case "attribute":
			attrs = append(attrs, attribute(child, source))
		}
	}
	return name, attrs
}

func attribute(node *sitter.Node, source []byte) [2]string {
	var kv [2]string
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "attribute_name":
			kv[0] = strings.ToLower(text(child, source))
		case "attribute_value":
			kv[1] = text(child, source)
		case "quoted_attribute_value":
			for j := uint(0); j < child.ChildCount(); j++ {
				if v := child.Child(j); v.Kind() == "attribute_value" {
					kv[1] = text(v, source)
				}
			}
		}
	}
	return kv
}

func lookup(attrs [][2]string, name string) (string, bool) {
	for _, kv := range attrs {
		if kv[0] == name {
			return kv[1], true
		}
	}
	return "", false
}

func isExCSS(attrs [][2]string) bool {
	typ, ok := lookup(attrs, "type")
	return ok && strings.EqualFold(strings.TrimSpace(typ), MediaType)
}

// extra drops type and href
func extra(attrs [][2]string) [][2]string {
	var out [][2]string
	for _, kv := range attrs {
		if kv[0] != "type" && kv[0] != "href" {
			out = append(out, kv)
		}
	}
	return out
}

func styleSource(node *sitter.Node, source []byte) (Source, bool) {
	tag := startTag(node)
	if tag == nil {
		return Source{}, false
	}
	_, attrs := attributes(tag, source)
	if !isExCSS(attrs) {
		return Source{}, false
	}

	src := Source{
		Kind:       StyleSource,
		Attributes: extra(attrs),
		StartLine:  tag.EndPosition().Row,
		StartCol:   tag.EndPosition().Column,
		StartByte:  node.StartByte(),
		EndByte:    node.EndByte(),
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child.Kind() == "raw_text" {
			src.Content = text(child, source)
			src.StartLine = child.StartPosition().Row
			src.StartCol = child.StartPosition().Column
		}
	}
	return src, true
}

func checkElement(node, tag *sitter.Node, source []byte, result *Result) {
	name, attrs := attributes(tag, source)
	if !isExCSS(attrs) {
		return
	}
	if name != "link" {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("type=%q set on invalid node type %q", MediaType, name))
		return
	}
	href, _ := lookup(attrs, "href")
	if strings.TrimSpace(href) == "" {
		result.Warnings = append(result.Warnings, "link element didn't have a valid href")
		return
	}
	result.Sources = append(result.Sources, Source{
		Kind:       LinkSource,
		Href:       href,
		Attributes: extra(attrs),
		StartLine:  node.StartPosition().Row,
		StartCol:   node.StartPosition().Column,
		StartByte:  node.StartByte(),
		EndByte:    node.EndByte(),
	})
}

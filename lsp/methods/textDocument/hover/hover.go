package hover

import (
	"fmt"
	"strings"

	"bennypowers.dev/excss/internal/inspect"
	"bennypowers.dev/excss/internal/parseobject"
	"bennypowers.dev/excss/internal/parser"
	"bennypowers.dev/excss/internal/position"
	"bennypowers.dev/excss/internal/stylesheet"
	"bennypowers.dev/excss/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Hover describes the variable under the cursor
func Hover(req *types.RequestContext, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := req.Server.Document(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	content := doc.Content()
	cursor, ok := position.Offset(content, params.Position.Line, params.Position.Character)
	if !ok {
		return nil, nil
	}

	for _, region := range doc.Regions() {
		start := regionOffset(content, region)
		if cursor < start || cursor > start+len(region.Content) {
			continue
		}
		from, to, ident := variableAt(region.Content, cursor-start)
		if ident == "" {
			return nil, nil
		}
		// a document that does not parse still hovers with the globals
		po, _ := parseobject.Parse(region.Content)
		info, ok := req.Server.Session().Lookup(po, ident)
		if !ok {
			return nil, nil
		}
		sl, sc := position.At(content, start+from)
		el, ec := position.At(content, start+to)
		return &protocol.Hover{
			Contents: protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: Markdown(info),
			},
			Range: &protocol.Range{
				Start: protocol.Position{Line: sl, Character: sc},
				End:   protocol.Position{Line: el, Character: ec},
			},
		}, nil
	}
	return nil, nil
}

// Markdown renders a variable description
func Markdown(info stylesheet.VariableInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**$%s**\n\n", info.Ident)
	if info.Value == "" {
		b.WriteString("_unresolved_\n")
	} else {
		fmt.Fprintf(&b, "```css\n%s\n```\n", info.Value)
	}
	if info.Raw != info.Value {
		fmt.Fprintf(&b, "\nDeclared as `%s`\n", info.Raw)
	}
	if info.Info.Category != inspect.Unknown && info.Info.Category != inspect.Empty {
		fmt.Fprintf(&b, "\nKind: %s", info.Info.Category)
		if info.Info.Hex != "" {
			fmt.Fprintf(&b, " (`%s`)", info.Info.Hex)
		}
		b.WriteString("\n")
	}
	if len(info.UsedBy) > 0 {
		names := make([]string, len(info.UsedBy))
		for i, ident := range info.UsedBy {
			names[i] = "`$" + ident + "`"
		}
		fmt.Fprintf(&b, "\nUsed by %s\n", strings.Join(names, ", "))
	}
	return b.String()
}

func regionOffset(content string, region parser.Region) int {
	off, ok := position.Offset(content, uint32(region.StartLine), 0)
	if !ok {
		return 0
	}
	return off + int(region.StartCol)
}

func isIdentByte(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// variableAt finds the "$name" around off. It returns the byte span of the
// name including "$", and the identifier without it.
func variableAt(text string, off int) (from, to int, ident string) {
	if off > len(text) {
		return 0, 0, ""
	}
	from = off
	for from > 0 && isIdentByte(text[from-1]) {
		from--
	}
	if from > 0 && text[from-1] == '$' {
		from--
	} else if from < len(text) && text[from] == '$' {
		// cursor on the "$" itself
	} else {
		return 0, 0, ""
	}
	to = from + 1
	for to < len(text) && isIdentByte(text[to]) {
		to++
	}
	if to == from+1 {
		return 0, 0, ""
	}
	return from, to, text[from+1 : to]
}

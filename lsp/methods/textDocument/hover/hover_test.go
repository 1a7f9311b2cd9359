package hover

import (
	"testing"

	"bennypowers.dev/excss/internal/inspect"
	"bennypowers.dev/excss/internal/stylesheet"
	"bennypowers.dev/excss/lsp/testutil"
	"bennypowers.dev/excss/lsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestVariableAt(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		off   int
		ident string
		from  int
	}{
		{"on the dollar", "color: $main;", 7, "main", 7},
		{"inside the name", "color: $main;", 10, "main", 7},
		{"just after the name", "color: $main;", 12, "main", 7},
		{"hyphenated", "x: $brand-dark", 8, "brand-dark", 3},
		{"plain word", "color: red;", 8, "", 0},
		{"bare dollar", "x: $ y", 3, "", 0},
		{"past the end", "$a", 5, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, ident := variableAt(tt.text, tt.off)
			assert.Equal(t, tt.ident, ident)
			if ident != "" {
				assert.Equal(t, tt.from, from)
				assert.Equal(t, tt.from+1+len(ident), to)
			}
		})
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(stylesheet.VariableInfo{
		Ident: "accent",
		Raw:   "$main",
		Value: "red",
		Info:  inspect.Info{Category: inspect.Color, Hex: "#ff0000"},
	})
	assert.Contains(t, md, "**$accent**")
	assert.Contains(t, md, "```css\nred\n```")
	assert.Contains(t, md, "Declared as `$main`")
	assert.Contains(t, md, "Kind: color (`#ff0000`)")

	assert.NotContains(t, md, "Used by")

	md = Markdown(stylesheet.VariableInfo{Ident: "x", Raw: "$gone"})
	assert.Contains(t, md, "_unresolved_")

	md = Markdown(stylesheet.VariableInfo{Ident: "c", Raw: "1", Value: "1", UsedBy: []string{"a", "b"}})
	assert.Contains(t, md, "Used by `$a`, `$b`")
}

func hoverAt(t *testing.T, ctx *testutil.MockServerContext, uri string, line, char uint32) *protocol.Hover {
	t.Helper()
	req := types.NewRequestContext(ctx, nil)
	h, err := Hover(req, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: line, Character: char},
		},
	})
	require.NoError(t, err)
	return h
}

func TestHover(t *testing.T) {
	ctx := testutil.NewMockServerContext()
	require.NoError(t, ctx.Session().Define("brand", "#336699"))

	uri := "file:///a.excss"
	require.NoError(t, ctx.DocumentManager().DidOpen(uri, "excss", 1,
		"@var main $brand;\n.a { color: $main; margin: 0; }"))

	t.Run("local variable resolves through globals", func(t *testing.T) {
		h := hoverAt(t, ctx, uri, 1, 14)
		require.NotNil(t, h)
		content := h.Contents.(protocol.MarkupContent)
		assert.Equal(t, protocol.MarkupKindMarkdown, content.Kind)
		assert.Contains(t, content.Value, "**$main**")
		assert.Contains(t, content.Value, "#336699")
		require.NotNil(t, h.Range)
		assert.Equal(t, protocol.Position{Line: 1, Character: 12}, h.Range.Start)
		assert.Equal(t, protocol.Position{Line: 1, Character: 17}, h.Range.End)
	})

	t.Run("global variable", func(t *testing.T) {
		h := hoverAt(t, ctx, uri, 0, 12)
		require.NotNil(t, h)
		value := h.Contents.(protocol.MarkupContent).Value
		assert.Contains(t, value, "**$brand**")
		assert.Contains(t, value, "Used by `$main`", "the document's own variables count")
	})

	t.Run("not on a variable", func(t *testing.T) {
		assert.Nil(t, hoverAt(t, ctx, uri, 1, 22))
	})

	t.Run("unknown document", func(t *testing.T) {
		assert.Nil(t, hoverAt(t, ctx, "file:///missing.excss", 0, 0))
	})

	t.Run("html style element", func(t *testing.T) {
		page := "file:///a.html"
		require.NoError(t, ctx.DocumentManager().DidOpen(page, "html", 1,
			"<p>hi</p>\n<style type=\"text/excss\">.a { color: $brand; }</style>"))
		h := hoverAt(t, ctx, page, 1, 39)
		require.NotNil(t, h)
		assert.Contains(t, h.Contents.(protocol.MarkupContent).Value, "**$brand**")
		assert.Equal(t, protocol.Position{Line: 1, Character: 37}, h.Range.Start)
	})
}

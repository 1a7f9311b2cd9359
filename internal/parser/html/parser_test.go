package html_test

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/excss/internal/parser/html"
)

func extract(t *testing.T, fixture string) (string, *html.Result) {
	t.Helper()
	source, err := os.ReadFile(fixture)
	require.NoError(t, err)

	parser := html.AcquireParser()
	defer html.ReleaseParser(parser)
	return string(source), parser.ExtractSources(string(source))
}

func TestExtractSources(t *testing.T) {
	_, result := extract(t, "testdata/page.html")

	require.Len(t, result.Sources, 3)

	first := result.Sources[0]
	assert.Equal(t, html.StyleSource, first.Kind)
	assert.Contains(t, first.Content, "@var accent #c00;")
	assert.Contains(t, first.Content, ".a { color: $accent; }")
	assert.Equal(t, uint(4), first.StartLine)

	link := result.Sources[1]
	assert.Equal(t, html.LinkSource, link.Kind)
	assert.Equal(t, "theme.excss", link.Href)
	assert.Equal(t, [][2]string{{"rel", "stylesheet"}, {"media", "screen"}}, link.Attributes)
	assert.Equal(t, uint(8), link.StartLine)

	second := result.Sources[2]
	assert.Equal(t, html.StyleSource, second.Kind)
	assert.Contains(t, second.Content, ".b { & span { x: y; } }")
	assert.Equal(t, [][2]string{{"id", "second"}}, second.Attributes)
}

func TestExtractSourcesWarnsOnOtherElements(t *testing.T) {
	_, result := extract(t, "testdata/page.html")
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], `"div"`)
}

func TestExtractSourcesIgnoresPlainCSS(t *testing.T) {
	_, result := extract(t, "testdata/plain.html")
	assert.Empty(t, result.Sources)
	assert.Empty(t, result.Warnings)
}

func TestExtractSourcesLinkWithoutHref(t *testing.T) {
	parser := html.AcquireParser()
	defer html.ReleaseParser(parser)

	result := parser.ExtractSources(`<link type="text/excss">`)
	assert.Empty(t, result.Sources)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "href")
}

func TestSplice(t *testing.T) {
	source, result := extract(t, "testdata/page.html")

	out := html.Splice(source, result.Sources, []string{"A", "B", "C"})

	assert.Contains(t, out, `<style type="text/css">A</style>`)
	assert.Contains(t, out, `<style link_href="theme.excss" rel="stylesheet" media="screen" type="text/css">B</style>`)
	assert.Contains(t, out, `<style id="second" type="text/css">C</style>`)
	assert.Contains(t, out, "body { margin: 0; }", "plain styles are untouched")
	assert.True(t, strings.HasPrefix(out, "<!doctype html>"))
}

func TestSpliceWithFewerReplacements(t *testing.T) {
	source, result := extract(t, "testdata/page.html")
	out := html.Splice(source, result.Sources, []string{"A"})
	assert.Contains(t, out, `<style type="text/css">A</style>`)
	assert.Contains(t, out, `href="theme.excss"`)
}

func TestSourceKindString(t *testing.T) {
	assert.Equal(t, "style", html.StyleSource.String())
	assert.Equal(t, "link", html.LinkSource.String())
	assert.Equal(t, "unknown", html.UnknownSource.String())
}

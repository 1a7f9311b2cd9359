package documents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentSetContent(t *testing.T) {
	doc := NewDocument("file:///a.excss", "excss", 2, "a {}")
	require.NoError(t, doc.SetContent("b {}", 3))
	assert.Equal(t, "b {}", doc.Content())
	assert.Equal(t, 3, doc.Version())

	assert.Error(t, doc.SetContent("c {}", 1))
	assert.Equal(t, "b {}", doc.Content())
}

func TestDocumentRegions(t *testing.T) {
	doc := NewDocument("file:///a.excss", "excss", 1, "a { x: 1; }")
	regions := doc.Regions()
	require.Len(t, regions, 1)
	assert.Equal(t, "a { x: 1; }", regions[0].Content)

	html := NewDocument("file:///a.html", "html", 1,
		"<p>hi</p>\n<style type=\"text/excss\">a { x: 1; }</style>")
	regions = html.Regions()
	require.Len(t, regions, 1)
	assert.Equal(t, "a { x: 1; }", regions[0].Content)
	assert.Equal(t, uint(1), regions[0].StartLine)

	assert.Empty(t, NewDocument("file:///a.txt", "plaintext", 1, "a {}").Regions())
}

package html

import (
	"strings"
)

// StyleElement renders generated CSS as a plain <style> element that keeps
// the source element's other attributes. A link's href is kept as link_href.
func StyleElement(src Source, css string) string {
	var b strings.Builder
	b.WriteString("<style")
	if src.Kind == LinkSource {
		b.WriteString(` link_href="`)
		b.WriteString(src.Href)
		b.WriteString(`"`)
	}
	for _, kv := range src.Attributes {
		b.WriteString(" ")
		b.WriteString(kv[0])
		if kv[1] != "" {
			b.WriteString(`="`)
			b.WriteString(kv[1])
			b.WriteString(`"`)
		}
	}
	b.WriteString(` type="text/css">`)
	b.WriteString(css)
	b.WriteString("</style>")
	return b.String()
}

// Splice replaces each source element of document with the matching entry of
// css. sources must be in document order, as ExtractSources returns them;
// entries beyond len(css) are left untouched.
func Splice(document string, sources []Source, css []string) string {
	var b strings.Builder
	last := uint(0)
	for i, src := range sources {
		if i >= len(css) || src.StartByte < last {
			continue
		}
		b.WriteString(document[last:src.StartByte])
		b.WriteString(StyleElement(src, css[i]))
		last = src.EndByte
	}
	b.WriteString(document[last:])
	return b.String()
}

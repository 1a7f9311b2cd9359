package html

// SourceKind identifies how an ExCSS stylesheet is included in a page
type SourceKind int

const (
	// UnknownSource is the zero value, indicating an uninitialized kind
	UnknownSource SourceKind = iota
	// StyleSource is an inline <style type="text/excss"> element
	StyleSource
	// LinkSource is a <link type="text/excss" href="..."> element
	LinkSource
)

func (k SourceKind) String() string {
	switch k {
	case StyleSource:
		return "style"
	case LinkSource:
		return "link"
	default:
		return "unknown"
	}
}

// Source is one ExCSS stylesheet found in an HTML document
type Source struct {
	Kind SourceKind
	// Content is the stylesheet text of a <style> element
	Content string
	// Href is the stylesheet location of a <link> element
	Href string
	// Attributes holds the element's attributes other than type and href
	Attributes [][2]string
	// StartLine and StartCol locate Content (or the element, for links)
	StartLine uint
	StartCol  uint
	// StartByte and EndByte span the whole element
	StartByte uint
	EndByte   uint
}

// Result is what ExtractSources found in a document
type Result struct {
	Sources  []Source
	Warnings []string
}

// Package documents tracks the text documents a language client has open.
package documents

import (
	"fmt"

	"bennypowers.dev/excss/internal/parser"
)

// Document is an open text document
type Document struct {
	uri        string
	languageID string
	content    string
	version    int
}

// NewDocument creates a document
func NewDocument(uri, languageID string, version int, content string) *Document {
	return &Document{
		uri:        uri,
		languageID: languageID,
		version:    version,
		content:    content,
	}
}

func (d *Document) URI() string        { return d.uri }
func (d *Document) LanguageID() string { return d.languageID }
func (d *Document) Version() int       { return d.version }
func (d *Document) Content() string    { return d.content }

// Regions returns the ExCSS source regions of the document: the whole text
// of an excss document, or the ExCSS <style> elements of an HTML page
func (d *Document) Regions() []parser.Region {
	return parser.Regions(d.content, d.languageID)
}

// SetContent replaces the content. Updates older than the current version
// are rejected.
func (d *Document) SetContent(content string, version int) error {
	if version < d.version {
		return fmt.Errorf("rejected stale update: document version is %d but update version is %d", d.version, version)
	}
	d.content = content
	d.version = version
	return nil
}

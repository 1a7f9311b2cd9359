// Package parser locates ExCSS text inside the documents an editor may open.
package parser

import (
	"bennypowers.dev/excss/internal/parser/html"
)

// Region is a span of ExCSS text within a document
type Region struct {
	Content   string
	StartLine uint
	StartCol  uint
}

// excssLanguages maps language IDs to the parser category they use.
// "excss" → the whole document, "html" → <style type="text/excss"> elements.
var excssLanguages = map[string]string{
	"excss": "excss",
	"html":  "html",
}

// IsSupportedLanguage returns true if ExCSS can be found in documents of the
// given language
func IsSupportedLanguage(languageID string) bool {
	_, ok := excssLanguages[languageID]
	return ok
}

// Regions returns the ExCSS regions of a document. Linked stylesheets are not
// followed.
func Regions(content, languageID string) []Region {
	switch excssLanguages[languageID] {
	case "excss":
		return []Region{{Content: content}}

	case "html":
		p := html.AcquireParser()
		defer html.ReleaseParser(p)
		var regions []Region
		for _, src := range p.ExtractSources(content).Sources {
			if src.Kind != html.StyleSource {
				continue
			}
			regions = append(regions, Region{
				Content:   src.Content,
				StartLine: src.StartLine,
				StartCol:  src.StartCol,
			})
		}
		return regions

	default:
		return nil
	}
}

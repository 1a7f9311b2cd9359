package parseobject

import (
	"strings"

	"bennypowers.dev/excss/internal/grammar"
	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/internal/position"
	"bennypowers.dev/excss/internal/translator"
)

// Result is a parsed stylesheet together with the non-fatal problems found
// while building it
type Result struct {
	Object   *ParseObject
	Warnings []error
	// Cached reports that Object was read from an embedded parse object
	Cached bool
}

// Parse parses ExCSS source into a ParseObject. Warnings are logged.
func Parse(text string) (*ParseObject, error) {
	res, err := ParseWithWarnings(text)
	if err != nil {
		return nil, err
	}
	return res.Object, nil
}

// ParseWithWarnings parses ExCSS source and also returns the warnings.
//
// An embedded parse object, if present and well formed, is returned as is.
// Otherwise comments are stripped and the grammar runs over the text; input
// the grammar cannot consume yields a *ParseError.
func ParseWithWarnings(text string) (*Result, error) {
	res := &Result{}

	_, embedded, err := ExtractEmbedded(text)
	if err != nil {
		log.Warn("%v", err)
		res.Warnings = append(res.Warnings, err)
	}
	if embedded != nil {
		res.Object = embedded
		res.Cached = true
		return res, nil
	}

	src := StripComments(text)
	tok := grammar.Parse(src)
	if strings.TrimSpace(tok.Remainder) != "" {
		perr := newParseError(text, len(src)-len(tok.Remainder))
		log.Error("%v", perr)
		return nil, perr
	}

	if log.GetLevel() == log.LevelDebug {
		translator.Walk(tok, translator.Debug())
	}

	b := newBuilder()
	translator.Walk(tok, b)
	res.Object = b.po
	res.Warnings = append(res.Warnings, b.warnings...)
	return res, nil
}

const excerptLength = 40

// newParseError locates stripped offset off of the comment-stripped text in
// the original text
func newParseError(text string, off int) *ParseError {
	src := StripComments(text)
	off += len(src[off:]) - len(strings.TrimLeft(src[off:], " \t\r\n\f"))
	off = unstrip(text, off)

	line, char := position.At(text, off)
	excerpt := text[off:]
	if i := strings.IndexAny(excerpt, "\r\n"); i >= 0 {
		excerpt = excerpt[:i]
	}
	if runes := []rune(excerpt); len(runes) > excerptLength {
		excerpt = string(runes[:excerptLength])
	}
	return &ParseError{
		Line:    int(line) + 1,
		Column:  int(char) + 1,
		Offset:  off,
		Excerpt: excerpt,
	}
}

// unstrip maps an offset in StripComments(text) back to text
func unstrip(text string, off int) int {
	removed := 0
	for _, m := range commentPattern.FindAllStringIndex(text, -1) {
		if m[0]-removed > off {
			break
		}
		removed += m[1] - m[0]
	}
	return off + removed
}

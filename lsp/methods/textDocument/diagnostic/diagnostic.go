// Package diagnostic reports problems in the ExCSS regions of a document.
package diagnostic

import (
	"errors"
	"fmt"
	"regexp"

	"bennypowers.dev/excss/internal/documents"
	"bennypowers.dev/excss/internal/parseobject"
	"bennypowers.dev/excss/internal/parser"
	"bennypowers.dev/excss/internal/position"
	"bennypowers.dev/excss/internal/variables"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Source names excss in diagnostics
const Source = "excss"

// Codes identify kinds of diagnostic
const (
	CodeParseFailed       = "parse-failed"
	CodeMalformedCache    = "malformed-cache"
	CodeNestedTrait       = "nested-trait"
	CodeDirective         = "malformed-directive"
	CodeUnknownTrait      = "unknown-trait"
	CodeUnknownReference  = "unknown-reference"
	CodeCircularReference = "circular-reference"
)

// Globals are the workspace-wide variables and traits a document may use
type Globals interface {
	GetVariable(ident string) (string, bool)
	HasTrait(ident string) bool
}

// Compute returns the diagnostics of every ExCSS region of doc
func Compute(doc *documents.Document, globals Globals) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	for _, region := range doc.Regions() {
		diagnostics = append(diagnostics, regionDiagnostics(region, globals)...)
	}
	return diagnostics
}

func regionDiagnostics(region parser.Region, globals Globals) []protocol.Diagnostic {
	var out []protocol.Diagnostic
	text := region.Content

	res, err := parseobject.ParseWithWarnings(text)
	if err != nil {
		var perr *parseobject.ParseError
		if errors.As(err, &perr) {
			out = append(out, at(region, text, perr.Offset, len(perr.Excerpt), protocol.DiagnosticSeverityError,
				CodeParseFailed, fmt.Sprintf("Unable to parse stylesheet near %q", perr.Excerpt)))
		}
		return out
	}

	for _, w := range res.Warnings {
		var derr *parseobject.DirectiveSelectorError
		switch {
		case errors.As(w, &derr):
			off, n := find(text, regexp.QuoteMeta(derr.Selector), 0)
			out = append(out, at(region, text, off, n, protocol.DiagnosticSeverityWarning, CodeDirective,
				"Malformed directive is read as a ruleset"))
		case errors.Is(w, parseobject.ErrMalformedCache):
			out = append(out, at(region, text, 0, 0, protocol.DiagnosticSeverityWarning, CodeMalformedCache, w.Error()))
		case errors.Is(w, parseobject.ErrNestedTrait):
			off, n := find(text, `@trait\b`, 1)
			out = append(out, at(region, text, off, n, protocol.DiagnosticSeverityWarning, CodeNestedTrait,
				"Traits can only be declared at the top level"))
		}
	}

	po := res.Object
	for ident := range unknownTraits(po, globals) {
		off, n := find(text, `@mixin\s+`+regexp.QuoteMeta(ident)+`\b`, 0)
		out = append(out, at(region, text, off, n, protocol.DiagnosticSeverityWarning, CodeUnknownTrait,
			fmt.Sprintf("Unknown trait %q", ident)))
	}

	env := variables.NewEnvironment()
	for _, e := range env.Import(po) {
		var unknown *variables.UnknownReferenceError
		if !errors.As(e, &unknown) {
			continue
		}
		if _, ok := globals.GetVariable(unknown.Reference[1:]); ok {
			continue
		}
		off, n := find(text, `@var\s+`+regexp.QuoteMeta(unknown.Ident)+`\b`, 0)
		out = append(out, at(region, text, off, n, protocol.DiagnosticSeverityWarning, CodeUnknownReference, e.Error()))
	}
	if cycle := env.FindCycle(); cycle != nil {
		cerr := &variables.CircularReferenceError{ReferenceChain: cycle}
		off, n := find(text, `@var\s+`+regexp.QuoteMeta(cycle[0])+`\b`, 0)
		out = append(out, at(region, text, off, n, protocol.DiagnosticSeverityWarning, CodeCircularReference, cerr.Error()))
	}
	return out
}

// unknownTraits returns the mixins of po that name no trait of po or globals
func unknownTraits(po *parseobject.ParseObject, globals Globals) map[string]struct{} {
	unknown := map[string]struct{}{}
	var visit func(rules parseobject.Rules)
	visit = func(rules parseobject.Rules) {
		for _, rule := range rules {
			switch r := rule.(type) {
			case *parseobject.MixinCall:
				if !po.Traits.Has(r.Ident) && !globals.HasTrait(r.Ident) {
					unknown[r.Ident] = struct{}{}
				}
			case *parseobject.Nested:
				visit(r.Rules)
			}
		}
	}
	for _, rs := range po.Rulesets {
		visit(rs.Rules)
	}
	for _, tr := range po.Traits.All() {
		visit(tr.Rules)
	}
	return unknown
}

// find returns the offset and length of the n-th (zero-based) match of
// pattern in text, falling back to earlier matches and then to the start
func find(text, pattern string, n int) (int, int) {
	matches := regexp.MustCompile(pattern).FindAllStringIndex(text, n+1)
	if len(matches) == 0 {
		return 0, 0
	}
	if n >= len(matches) {
		n = len(matches) - 1
	}
	m := matches[n]
	return m[0], m[1] - m[0]
}

func at(region parser.Region, text string, off, n int, severity protocol.DiagnosticSeverity, code, message string) protocol.Diagnostic {
	sl, sc := position.At(text, off)
	el, ec := position.At(text, off+n)
	return diagnostic(region,
		protocol.Position{Line: sl, Character: sc},
		protocol.Position{Line: el, Character: ec},
		severity, code, message)
}

// diagnostic shifts a region-relative range into the document
func diagnostic(region parser.Region, start, end protocol.Position, severity protocol.DiagnosticSeverity, code, message string) protocol.Diagnostic {
	source := Source
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: shift(region, start),
			End:   shift(region, end),
		},
		Severity: &severity,
		Code:     &protocol.IntegerOrString{Value: code},
		Source:   &source,
		Message:  message,
	}
}

func shift(region parser.Region, p protocol.Position) protocol.Position {
	if p.Line == 0 {
		p.Character += uint32(region.StartCol)
	}
	p.Line += uint32(region.StartLine)
	return p
}

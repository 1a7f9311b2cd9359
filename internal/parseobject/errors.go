package parseobject

import (
	"errors"
	"fmt"
)

var (
	// ErrParseFailed indicates the source does not match the grammar
	ErrParseFailed = errors.New("unable to parse stylesheet")

	// ErrMalformedCache indicates an embedded parse object could not be read
	ErrMalformedCache = errors.New("malformed parse object in stylesheet")

	// ErrNestedTrait indicates a trait declared inside another rule body
	ErrNestedTrait = errors.New("traits can only be declared at the top level")

	// ErrDirectiveSelector indicates an @trait, @var or @mixin that did not
	// match its grammar and was read as a plain ruleset selector
	ErrDirectiveSelector = errors.New("malformed directive read as a selector")
)

// ParseError locates the first input the grammar could not consume. Line and
// Column are one-based; Column counts UTF-16 code units. Offset is the byte
// offset in the text that was parsed, comments included.
type ParseError struct {
	Line    int
	Column  int
	Offset  int
	Excerpt string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse stylesheet at line %d, column %d near %q", e.Line, e.Column, e.Excerpt)
}

func (e *ParseError) Unwrap() error {
	return ErrParseFailed
}

// MalformedCacheError describes an embedded parse object that was ignored
type MalformedCacheError struct {
	Reason string
	Err    error
}

func (e *MalformedCacheError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrMalformedCache, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedCache, e.Reason)
}

func (e *MalformedCacheError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedCache}
	}
	return []error{ErrMalformedCache, e.Err}
}

// DirectiveSelectorError names the selector a malformed directive became
type DirectiveSelectorError struct {
	Selector string
}

func (e *DirectiveSelectorError) Error() string {
	return fmt.Sprintf("%s: %q", ErrDirectiveSelector, e.Selector)
}

func (e *DirectiveSelectorError) Unwrap() error {
	return ErrDirectiveSelector
}

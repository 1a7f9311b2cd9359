package stylesheet

import (
	"errors"
	"fmt"

	"bennypowers.dev/excss/internal/parser/css"
)

var (
	// ErrClosed is returned by a Session after Close
	ErrClosed = errors.New("session is closed")
	// ErrInvalidCSS is wrapped by *InvalidCSSError
	ErrInvalidCSS = errors.New("generated css is invalid")
	// ErrFetch is wrapped by failures to fetch a remote stylesheet
	ErrFetch = errors.New("failed to fetch stylesheet")
)

// InvalidCSSError reports problems found when validating generated CSS
type InvalidCSSError struct {
	Stylesheet string
	Problems   []css.Problem
}

func (e *InvalidCSSError) Error() string {
	if len(e.Problems) == 0 {
		return fmt.Sprintf("%s: %v", e.Stylesheet, ErrInvalidCSS)
	}
	p := e.Problems[0]
	return fmt.Sprintf("%s: %v: %s at %d:%d (%d problems)", e.Stylesheet, ErrInvalidCSS,
		p.Message, p.Range.Start.Line+1, p.Range.Start.Character+1, len(e.Problems))
}

func (e *InvalidCSSError) Unwrap() error {
	return ErrInvalidCSS
}

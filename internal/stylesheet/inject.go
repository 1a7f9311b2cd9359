package stylesheet

import (
	"fmt"
	"strings"

	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/internal/parser/css"
	"bennypowers.dev/excss/internal/printer"
	"go.uber.org/multierr"
)

const emptyInjectionWarning = "CSS injection is empty.  This might be because the original ExCSS " +
	"markup was empty, or because the original ExCSS markup has syntax " +
	"errors, or because ExCSS has a bug."

// InjectAll renders every live stylesheet into its sink. Errors from
// individual stylesheets are combined; a failing stylesheet does not stop
// the others.
func (s *Session) InjectAll() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	var err error
	events := make([]Event, 0, len(s.sheets))
	for i, sheet := range s.sheets {
		s.instrument(fmt.Sprintf("Injecting stylesheet %d", i), func() {
			ev, injectErr := s.injectLocked(sheet)
			err = multierr.Append(err, injectErr)
			events = append(events, ev)
		})
	}
	subs := s.subscriberList()
	s.mu.Unlock()

	notify(subs, events)
	return err
}

// Inject renders a single live stylesheet
func (s *Session) Inject(name string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	var sheet *Stylesheet
	for _, candidate := range s.sheets {
		if candidate.Name == name {
			sheet = candidate
			break
		}
	}
	if sheet == nil {
		s.mu.Unlock()
		return fmt.Errorf("unknown stylesheet %q", name)
	}
	ev, err := s.injectLocked(sheet)
	subs := s.subscriberList()
	s.mu.Unlock()

	notify(subs, []Event{ev})
	return err
}

func (s *Session) injectLocked(sheet *Stylesheet) (Event, error) {
	out := printer.Print(sheet.Object, s.env, s.traits)
	if strings.TrimSpace(out) == "" {
		log.Warn("%s", emptyInjectionWarning)
	}

	var err error
	if s.opts.Minify && out != "" {
		minified, minErr := printer.Minify(out)
		if minErr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", sheet.Name, minErr))
		} else {
			out = minified
		}
	}

	if s.opts.Validate {
		summary, valErr := css.Validate(out)
		switch {
		case valErr != nil:
			err = multierr.Append(err, fmt.Errorf("%s: %w", sheet.Name, valErr))
		case !summary.Valid():
			invalid := &InvalidCSSError{Stylesheet: sheet.Name, Problems: summary.Problems}
			log.Warn("%v", invalid)
			err = multierr.Append(err, invalid)
		}
	}

	sheet.setCSS(out)
	if writeErr := sheet.Sink.WriteCSS(out); writeErr != nil {
		err = multierr.Append(err, fmt.Errorf("%s: %w", sheet.Name, writeErr))
	}
	return Event{Stylesheet: sheet.Name, CSS: out}, err
}

func (s *Session) subscriberList() []func(Event) {
	subs := make([]func(Event), 0, len(s.subscribers))
	for id := 0; id < s.nextSub; id++ {
		if fn, ok := s.subscribers[id]; ok {
			subs = append(subs, fn)
		}
	}
	return subs
}

func notify(subs []func(Event), events []Event) {
	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}

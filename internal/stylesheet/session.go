// Package stylesheet manages the lifecycle of ExCSS stylesheets: loading,
// importing their variables and traits into a shared session, and injecting
// the generated CSS into sinks whenever the session changes.
package stylesheet

import (
	"crypto/sha256"
	"net/http"
	"slices"
	"sync"
	"time"

	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/internal/parseobject"
	"bennypowers.dev/excss/internal/printer"
	"bennypowers.dev/excss/internal/traits"
	"bennypowers.dev/excss/internal/variables"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of parse objects a session keeps
const DefaultCacheSize = 128

// Options configure a Session
type Options struct {
	// Instrument logs the time taken by each load, parse and inject phase
	Instrument bool
	// Minify minifies generated CSS before it is written
	Minify bool
	// Validate parses generated CSS and reports syntax errors
	Validate bool
	// CacheSize bounds the parse cache; zero means DefaultCacheSize
	CacheSize int
	// HTTPClient fetches remote stylesheets; nil means http.DefaultClient
	HTTPClient *http.Client
}

// Stylesheet is a parsed stylesheet bound to the sink its CSS is written to
type Stylesheet struct {
	Name   string
	Object *parseobject.ParseObject
	Sink   Sink

	mu  sync.RWMutex
	css string
}

// CSS returns the output of the most recent injection
func (s *Stylesheet) CSS() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.css
}

func (s *Stylesheet) setCSS(css string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.css = css
}

// Event is delivered to subscribers after a stylesheet is injected
type Event struct {
	Stylesheet string `json:"stylesheet"`
	CSS        string `json:"css"`
}

// Session owns the global variable environment, the trait registry and the
// live stylesheets. It is safe for concurrent use.
type Session struct {
	opts   Options
	client *http.Client
	cache  *lru.Cache[[sha256.Size]byte, *parseobject.ParseObject]

	mu          sync.Mutex
	env         *variables.Environment
	traits      *traits.Registry
	sheets      []*Stylesheet
	subscribers map[int]func(Event)
	nextSub     int
	closed      bool
}

// NewSession creates an empty session
func NewSession(opts Options) (*Session, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[[sha256.Size]byte, *parseobject.ParseObject](size)
	if err != nil {
		return nil, err
	}
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &Session{
		opts:        opts,
		client:      client,
		cache:       cache,
		env:         variables.NewEnvironment(),
		traits:      traits.NewRegistry(),
		subscribers: make(map[int]func(Event)),
	}, nil
}

// Close drops every stylesheet and subscriber. Further calls that change the
// session return ErrClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.sheets = nil
	s.subscribers = map[int]func(Event){}
	s.traits.Clear()
	s.env = variables.NewEnvironment()
	s.cache.Purge()
	return nil
}

// Parse parses text into a parse object. Identical inputs share one cached
// parse object, which callers must not modify.
func (s *Session) Parse(text string) (*parseobject.ParseObject, error) {
	key := sha256.Sum256([]byte(text))
	if po, ok := s.cache.Get(key); ok {
		log.Debug("Parse cache hit")
		return po, nil
	}
	var po *parseobject.ParseObject
	var err error
	s.instrument("Parsing", func() {
		po, err = parseobject.Parse(text)
	})
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, po)
	return po, nil
}

// Import merges the variables and traits of po into the session
func (s *Session) Import(po *parseobject.ParseObject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.importLocked(po)
	return nil
}

func (s *Session) importLocked(po *parseobject.ParseObject) {
	s.env.Import(po)
	s.traits.Import(po)
	log.Debug("Session has %d variables and %d traits", len(s.env.Local()), s.traits.Len())
	if cycle := s.env.FindCycle(); cycle != nil {
		log.Warn("Variables form a cycle: %v", &variables.CircularReferenceError{ReferenceChain: cycle})
	}
}

// PrettyPrint renders po as CSS against the session's variables and traits
func (s *Session) PrettyPrint(po *parseobject.ParseObject) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return printer.Print(po, s.env, s.traits)
}

// Add parses text, imports it and registers it as a live stylesheet
// writing to sink. The stylesheet is not injected until Inject or InjectAll.
func (s *Session) Add(name, text string, sink Sink) (*Stylesheet, error) {
	po, err := s.Parse(text)
	if err != nil {
		return nil, err
	}
	return s.register(name, po, sink)
}

func (s *Session) register(name string, po *parseobject.ParseObject, sink Sink) (*Stylesheet, error) {
	if sink == nil {
		sink = &MemorySink{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	s.importLocked(po)
	sheet := &Stylesheet{Name: name, Object: po, Sink: sink}
	s.sheets = append(s.sheets, sheet)
	return sheet, nil
}

// Stylesheets returns the live stylesheets in load order
func (s *Session) Stylesheets() []*Stylesheet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.sheets)
}

// Stylesheet finds a live stylesheet by name
func (s *Session) Stylesheet(name string) (*Stylesheet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sheet := range s.sheets {
		if sheet.Name == name {
			return sheet, true
		}
	}
	return nil, false
}

// Subscribe registers fn to receive an Event after every injection. The
// returned function removes the subscription.
func (s *Session) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Session) instrument(description string, action func()) {
	if !s.opts.Instrument {
		action()
		return
	}
	start := time.Now()
	action()
	log.Info("INSTRUMENTATION: %s took %s", description, time.Since(start))
}

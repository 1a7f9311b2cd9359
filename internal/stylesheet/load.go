package stylesheet

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/internal/parseobject"
	"bennypowers.dev/excss/internal/parser/html"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// maxFetchSize bounds the body of a remote stylesheet
const maxFetchSize = 10 << 20

// Source is a stylesheet to load. Exactly one of Text, Path and URL is used,
// in that order of preference.
type Source struct {
	Name string
	Text string
	Path string
	URL  string
	Sink Sink
}

func (src Source) name() string {
	switch {
	case src.Name != "":
		return src.Name
	case src.Path != "":
		return src.Path
	default:
		return src.URL
	}
}

// LoadFile loads a stylesheet from disk
func (s *Session) LoadFile(ctx context.Context, path string, sink Sink) (*Stylesheet, error) {
	sheets, err := s.LoadAll(ctx, []Source{{Path: path, Sink: sink}})
	if err != nil {
		return nil, err
	}
	return sheets[0], nil
}

// LoadURL fetches a stylesheet over HTTP
func (s *Session) LoadURL(ctx context.Context, rawURL string, sink Sink) (*Stylesheet, error) {
	sheets, err := s.LoadAll(ctx, []Source{{URL: rawURL, Sink: sink}})
	if err != nil {
		return nil, err
	}
	return sheets[0], nil
}

// LoadAll reads and parses sources concurrently and then imports them in
// order, so later sources override earlier ones. The returned slice is
// aligned with sources; a source that failed to load is nil and its error
// is part of the combined error.
func (s *Session) LoadAll(ctx context.Context, sources []Source) ([]*Stylesheet, error) {
	objects := make([]*parseobject.ParseObject, len(sources))
	errs := make([]error, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, src := range sources {
		g.Go(func() error {
			s.instrument("Loading "+src.name(), func() {
				objects[i], errs[i] = s.load(ctx, src)
			})
			return nil
		})
	}
	_ = g.Wait()

	var err error
	sheets := make([]*Stylesheet, len(sources))
	for i, src := range sources {
		if errs[i] != nil {
			log.Warn("Failed to load %s: %v", src.name(), errs[i])
			err = multierr.Append(err, fmt.Errorf("%s: %w", src.name(), errs[i]))
			continue
		}
		sheet, regErr := s.register(src.name(), objects[i], src.Sink)
		if regErr != nil {
			err = multierr.Append(err, regErr)
			continue
		}
		sheets[i] = sheet
	}
	return sheets, err
}

func (s *Session) load(ctx context.Context, src Source) (*parseobject.ParseObject, error) {
	text := src.Text
	switch {
	case text != "":
	case src.Path != "":
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, err
		}
		text = string(data)
	case src.URL != "":
		fetched, err := s.fetch(ctx, src.URL)
		if err != nil {
			return nil, err
		}
		text = fetched
	}
	return s.Parse(text)
}

func (s *Session) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s returned %s", ErrFetch, rawURL, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return string(body), nil
}

// SinkFactory chooses the sink for the i-th ExCSS source of a page
type SinkFactory func(i int, src html.Source) Sink

// Page is an HTML document whose ExCSS sources were loaded into a session
type Page struct {
	Path     string
	Document string
	Sources  []html.Source
	// Sheets is aligned with Sources; failed sources are nil
	Sheets []*Stylesheet
}

// Render returns the document with every loaded source replaced by a plain
// <style> element holding its most recent CSS
func (p *Page) Render() string {
	sources := make([]html.Source, 0, len(p.Sources))
	css := make([]string, 0, len(p.Sources))
	for i, sheet := range p.Sheets {
		if sheet == nil {
			continue
		}
		sources = append(sources, p.Sources[i])
		css = append(css, sheet.CSS())
	}
	return html.Splice(p.Document, sources, css)
}

// LoadHTML loads every <style type="text/excss"> and <link type="text/excss">
// of an HTML file, in document order. Relative link hrefs are resolved
// against the file's directory; absolute http(s) hrefs are fetched.
func (s *Session) LoadHTML(ctx context.Context, path string, sinks SinkFactory) (*Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc := string(data)

	p := html.AcquireParser()
	result := p.ExtractSources(doc)
	html.ReleaseParser(p)
	for _, w := range result.Warnings {
		log.Warn("%s: %s", path, w)
	}

	sources := make([]Source, len(result.Sources))
	for i, src := range result.Sources {
		var sink Sink
		if sinks != nil {
			sink = sinks(i, src)
		}
		switch src.Kind {
		case html.LinkSource:
			sources[i] = linkSource(path, src.Href)
		default:
			sources[i] = Source{Name: fmt.Sprintf("%s#%d", path, i), Text: src.Content}
		}
		sources[i].Sink = sink
	}

	sheets, err := s.LoadAll(ctx, sources)
	return &Page{Path: path, Document: doc, Sources: result.Sources, Sheets: sheets}, err
}

func linkSource(page, href string) Source {
	if u, err := url.Parse(href); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return Source{Name: href, URL: href}
	}
	local := strings.TrimPrefix(href, "file://")
	if !filepath.IsAbs(local) {
		local = filepath.Join(filepath.Dir(page), filepath.FromSlash(local))
	}
	return Source{Name: local, Path: local}
}

package stylesheet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"bennypowers.dev/excss/internal/inspect"
	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/internal/parseobject"
	"bennypowers.dev/excss/internal/parser/html"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	log.SetOutput(nil)
	os.Exit(m.Run())
}

func newSession(t *testing.T, opts Options) *Session {
	t.Helper()
	s, err := NewSession(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAddAndInject(t *testing.T) {
	s := newSession(t, Options{})
	sink := &MemorySink{}
	_, err := s.Add("main", "@var c red;\na { color: $c; }", sink)
	require.NoError(t, err)

	assert.Equal(t, 0, sink.Writes())
	require.NoError(t, s.InjectAll())
	assert.Equal(t, "a {\n  color: red;\n}\n", sink.CSS())
	assert.Equal(t, 1, sink.Writes())

	sheet, ok := s.Stylesheet("main")
	require.True(t, ok)
	assert.Equal(t, sink.CSS(), sheet.CSS())
}

func TestVariablesAreSharedAcrossStylesheets(t *testing.T) {
	s := newSession(t, Options{})
	first, second := &MemorySink{}, &MemorySink{}
	_, err := s.Add("vars", "@var gap 4px;", first)
	require.NoError(t, err)
	_, err = s.Add("layout", "p { margin: $gap; }", second)
	require.NoError(t, err)

	require.NoError(t, s.InjectAll())
	assert.Equal(t, "p {\n  margin: 4px;\n}\n", second.CSS())
}

func TestLastImportWins(t *testing.T) {
	s := newSession(t, Options{})
	sink := &MemorySink{}
	_, err := s.Add("a", "@var c red;\na { color: $c; }", sink)
	require.NoError(t, err)
	_, err = s.Add("b", "@var c blue;", nil)
	require.NoError(t, err)

	require.NoError(t, s.InjectAll())
	assert.Equal(t, "a {\n  color: blue;\n}\n", sink.CSS())
}

func TestTraitsAreSharedAcrossStylesheets(t *testing.T) {
	s := newSession(t, Options{})
	sink := &MemorySink{}
	_, err := s.Add("traits", "@trait pad(n) { padding: $n; }", nil)
	require.NoError(t, err)
	_, err = s.Add("main", "a { @mixin pad(2px); }", sink)
	require.NoError(t, err)

	require.NoError(t, s.InjectAll())
	assert.Equal(t, "a {\n  padding: 2px;\n}\n", sink.CSS())
}

func TestNullEmbeddedEntriesFallBackToSource(t *testing.T) {
	for name, payload := range map[string]string{
		"null trait":   `{"traits":{"t":null},"rulesets":[]}`,
		"null ruleset": `{"rulesets":[null]}`,
	} {
		t.Run(name, func(t *testing.T) {
			s := newSession(t, Options{})
			sink := &MemorySink{}
			_, err := s.Add("cached", "/*{{{"+payload+"}}}*/\na { color: red; }", sink)
			require.NoError(t, err)
			require.NotPanics(t, func() { require.NoError(t, s.InjectAll()) })
			assert.Equal(t, "a {\n  color: red;\n}\n", sink.CSS())
			assert.False(t, s.HasTrait("t"))
		})
	}
}

func TestAddParseFailure(t *testing.T) {
	s := newSession(t, Options{})
	_, err := s.Add("bad", "a { color: red; } }}}", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, parseobject.ErrParseFailed))
	assert.Empty(t, s.Stylesheets())
}

func TestParseCache(t *testing.T) {
	s := newSession(t, Options{CacheSize: 2})
	a, err := s.Parse("a { x: 1; }")
	require.NoError(t, err)
	b, err := s.Parse("a { x: 1; }")
	require.NoError(t, err)
	assert.Same(t, a, b)

	c, err := s.Parse("b { x: 1; }")
	require.NoError(t, err)
	assert.NotSame(t, a, c)
}

func TestPrettyPrint(t *testing.T) {
	s := newSession(t, Options{})
	require.NoError(t, s.Import(mustParse(t, s, "@var w 1px;")))
	assert.Equal(t, "a {\n  border: 1px;\n}\n", s.PrettyPrint(mustParse(t, s, "a { border: $w; }")))
}

func mustParse(t *testing.T, s *Session, src string) *parseobject.ParseObject {
	t.Helper()
	po, err := s.Parse(src)
	require.NoError(t, err)
	return po
}

func TestGetVariable(t *testing.T) {
	s := newSession(t, Options{})
	_, err := s.Add("vars", "@var a 1px;\n@var b $a;", nil)
	require.NoError(t, err)

	got, ok := s.GetVariable("a")
	assert.True(t, ok)
	assert.Equal(t, "1px", got)

	got, ok = s.GetVariable("b")
	assert.True(t, ok)
	assert.Equal(t, "$a", got)

	_, ok = s.GetVariable("nope")
	assert.False(t, ok)
}

func TestSetVariableReinjects(t *testing.T) {
	s := newSession(t, Options{})
	sink := &MemorySink{}
	_, err := s.Add("main", "@var c red;\n@var d $c;\na { color: $d; }", sink)
	require.NoError(t, err)
	require.NoError(t, s.InjectAll())

	ok, err := s.SetVariable("c", "green")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a {\n  color: green;\n}\n", sink.CSS())
	assert.Equal(t, 2, sink.Writes())
}

func TestCSSIsSafeDuringReinjection(t *testing.T) {
	s := newSession(t, Options{})
	sheet, err := s.Add("main", "@var c red;\na { color: $c; }", nil)
	require.NoError(t, err)
	require.NoError(t, s.InjectAll())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for _, v := range []string{"green", "blue", "red"} {
			_, _ = s.SetVariable("c", v)
		}
	}()
	go func() {
		defer wg.Done()
		for range 50 {
			assert.Contains(t, sheet.CSS(), "color: ")
		}
	}()
	wg.Wait()
	assert.Equal(t, "a {\n  color: red;\n}\n", sheet.CSS())
}

func TestSetVariableToReference(t *testing.T) {
	s := newSession(t, Options{})
	sink := &MemorySink{}
	_, err := s.Add("main", "@var c red;\n@var alt blue;\na { color: $c; }", sink)
	require.NoError(t, err)

	ok, err := s.SetVariable("c", "$alt")
	require.NoError(t, err)
	assert.True(t, ok)
	got, _ := s.GetVariable("c")
	assert.Equal(t, "$alt", got)
	assert.Equal(t, "a {\n  color: blue;\n}\n", sink.CSS())
}

func TestSetUnknownVariableIsNoop(t *testing.T) {
	s := newSession(t, Options{})
	sink := &MemorySink{}
	_, err := s.Add("main", "a { color: red; }", sink)
	require.NoError(t, err)

	ok, err := s.SetVariable("missing", "blue")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, sink.Writes())
}

func TestDefine(t *testing.T) {
	s := newSession(t, Options{})
	require.NoError(t, s.Define("brand", "#336699"))
	sink := &MemorySink{}
	_, err := s.Add("main", "a { color: $brand; }", sink)
	require.NoError(t, err)
	require.NoError(t, s.InjectAll())
	assert.Equal(t, "a {\n  color: #336699;\n}\n", sink.CSS())
}

func TestVariables(t *testing.T) {
	s := newSession(t, Options{})
	_, err := s.Add("vars", "@var size 4px;\n@var accent red;\n@var link $accent;", nil)
	require.NoError(t, err)

	vars := s.Variables()
	require.Len(t, vars, 3)
	assert.Equal(t, []string{"accent", "link", "size"}, []string{vars[0].Ident, vars[1].Ident, vars[2].Ident})
	assert.Equal(t, "$accent", vars[1].Raw)
	assert.Equal(t, "red", vars[1].Value)
	assert.Equal(t, inspect.Color, vars[1].Info.Category)
	assert.Equal(t, inspect.Dimension, vars[2].Info.Category)

	info, ok := s.Variable("size")
	assert.True(t, ok)
	assert.Equal(t, "4px", info.Value)
}

func TestSubscribe(t *testing.T) {
	s := newSession(t, Options{})
	_, err := s.Add("main", "a { x: 1; }", nil)
	require.NoError(t, err)

	var events []Event
	unsubscribe := s.Subscribe(func(ev Event) { events = append(events, ev) })
	require.NoError(t, s.InjectAll())
	require.Len(t, events, 1)
	assert.Equal(t, Event{Stylesheet: "main", CSS: "a {\n  x: 1;\n}\n"}, events[0])

	unsubscribe()
	require.NoError(t, s.Inject("main"))
	assert.Len(t, events, 1)
}

func TestSubscriberMayCallSession(t *testing.T) {
	s := newSession(t, Options{})
	_, err := s.Add("main", "@var c red;\na { color: $c; }", nil)
	require.NoError(t, err)

	var seen string
	s.Subscribe(func(Event) { seen, _ = s.GetVariable("c") })
	require.NoError(t, s.InjectAll())
	assert.Equal(t, "red", seen)
}

func TestInjectUnknownStylesheet(t *testing.T) {
	s := newSession(t, Options{})
	assert.Error(t, s.Inject("nope"))
}

func TestInjectMinify(t *testing.T) {
	s := newSession(t, Options{Minify: true})
	sink := &MemorySink{}
	_, err := s.Add("main", "a { margin: 0; }\nb { padding: 0; }", sink)
	require.NoError(t, err)
	require.NoError(t, s.InjectAll())
	assert.Equal(t, "a{margin:0}b{padding:0}", strings.TrimSpace(sink.CSS()))
}

func TestInjectValidate(t *testing.T) {
	s := newSession(t, Options{Validate: true})
	good := &MemorySink{}
	_, err := s.Add("good", "a { color: red; }", good)
	require.NoError(t, err)
	require.NoError(t, s.InjectAll())
	assert.NotEmpty(t, good.CSS())
}

func TestInjectAggregatesSinkErrors(t *testing.T) {
	s := newSession(t, Options{})
	boom := errors.New("boom")
	ok := &MemorySink{}
	_, err := s.Add("failing", "a { x: 1; }", SinkFunc(func(string) error { return boom }))
	require.NoError(t, err)
	_, err = s.Add("working", "b { y: 2; }", ok)
	require.NoError(t, err)

	err = s.InjectAll()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "b {\n  y: 2;\n}\n", ok.CSS())
}

func TestClosedSession(t *testing.T) {
	s, err := NewSession(Options{})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	_, err = s.Add("a", "a { x: 1; }", nil)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.InjectAll(), ErrClosed)
	assert.ErrorIs(t, s.Define("a", "1"), ErrClosed)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.excss", "@var c red;\na { color: $c; }")
	out := filepath.Join(dir, "out", "main.css")

	s := newSession(t, Options{})
	sheet, err := s.LoadFile(context.Background(), path, FileSink{Path: out})
	require.NoError(t, err)
	assert.Equal(t, path, sheet.Name)
	require.NoError(t, s.InjectAll())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "a {\n  color: red;\n}\n", string(data))
}

func TestLoadFileMissing(t *testing.T) {
	s := newSession(t, Options{})
	_, err := s.LoadFile(context.Background(), filepath.Join(t.TempDir(), "nope.excss"), nil)
	assert.Error(t, err)
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/theme.excss" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "@var c teal;\nh1 { color: $c; }")
	}))
	defer srv.Close()

	s := newSession(t, Options{HTTPClient: srv.Client()})
	var buf bytes.Buffer
	_, err := s.LoadURL(context.Background(), srv.URL+"/theme.excss", WriterSink{W: &buf})
	require.NoError(t, err)
	require.NoError(t, s.InjectAll())
	assert.Equal(t, "h1 {\n  color: teal;\n}\n", buf.String())

	_, err = s.LoadURL(context.Background(), srv.URL+"/missing.excss", nil)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestLoadAllImportsInOrder(t *testing.T) {
	s := newSession(t, Options{})
	sink := &MemorySink{}
	sources := []Source{
		{Name: "one", Text: "@var c red;"},
		{Name: "two", Text: "@var c blue;"},
		{Name: "three", Text: "a { color: $c; }", Sink: sink},
	}
	sheets, err := s.LoadAll(context.Background(), sources)
	require.NoError(t, err)
	require.Len(t, sheets, 3)
	assert.Equal(t, []string{"one", "two", "three"}, []string{sheets[0].Name, sheets[1].Name, sheets[2].Name})

	require.NoError(t, s.InjectAll())
	assert.Equal(t, "a {\n  color: blue;\n}\n", sink.CSS())
}

func TestLoadAllKeepsGoodSources(t *testing.T) {
	s := newSession(t, Options{})
	sheets, err := s.LoadAll(context.Background(), []Source{
		{Name: "good", Text: "a { x: 1; }"},
		{Name: "bad", Text: "a { x: 1; } }"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, parseobject.ErrParseFailed)
	require.Len(t, sheets, 2)
	assert.NotNil(t, sheets[0])
	assert.Nil(t, sheets[1])
	assert.Len(t, s.Stylesheets(), 1)
}

func TestLoadHTML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "theme.excss", "@var c navy;")
	page := writeFile(t, dir, "index.html", `<!doctype html>
<html>
<head>
<link rel="stylesheet" type="text/excss" href="theme.excss">
<style type="text/excss">h1 { color: $c; }</style>
</head>
<body></body>
</html>
`)

	s := newSession(t, Options{})
	var mu sync.Mutex
	made := 0
	p, err := s.LoadHTML(context.Background(), page, func(int, html.Source) Sink {
		mu.Lock()
		defer mu.Unlock()
		made++
		return &MemorySink{}
	})
	require.NoError(t, err)
	require.Len(t, p.Sheets, 2)
	assert.Equal(t, 2, made)
	assert.Equal(t, filepath.Join(dir, "theme.excss"), p.Sheets[0].Name)

	require.NoError(t, s.InjectAll())
	rendered := p.Render()
	assert.Contains(t, rendered, "h1 {\n  color: navy;\n}\n</style>")
	assert.Contains(t, rendered, `link_href="theme.excss"`)
	assert.NotContains(t, rendered, "text/excss")
}

func TestLookup(t *testing.T) {
	s := newSession(t, Options{})
	require.NoError(t, s.Define("brand", "navy"))
	po := mustParse(t, s, "@var accent $brand;\n@var brand red;")

	info, ok := s.Lookup(po, "accent")
	require.True(t, ok)
	assert.Equal(t, "$brand", info.Raw)
	assert.Equal(t, "red", info.Value)

	info, ok = s.Lookup(nil, "brand")
	require.True(t, ok)
	assert.Equal(t, "navy", info.Value)

	_, ok = s.Lookup(po, "missing")
	assert.False(t, ok)
	assert.Len(t, s.Variables(), 1)
}

func TestHasTrait(t *testing.T) {
	s := newSession(t, Options{})
	_, err := s.Add("traits", "@trait pad(n) { padding: $n; }", nil)
	require.NoError(t, err)
	assert.True(t, s.HasTrait("pad"))
	assert.False(t, s.HasTrait("nope"))
}

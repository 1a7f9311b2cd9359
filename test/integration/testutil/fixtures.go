package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"bennypowers.dev/excss/internal/uriutil"
	"bennypowers.dev/excss/lsp"
	"bennypowers.dev/excss/lsp/methods/lifecycle"
	"bennypowers.dev/excss/lsp/methods/textDocument"
	"bennypowers.dev/excss/lsp/types"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// FixtureRoot returns the path to the test fixtures directory
func FixtureRoot() string {
	return filepath.Join("..", "fixtures")
}

// CopyWorkspace copies the workspace fixture into a temporary directory so
// tests may modify it
func CopyWorkspace(t *testing.T) string {
	t.Helper()
	src := filepath.Join(FixtureRoot(), "workspace")
	dst := t.TempDir()
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path) //nolint:gosec // G304: Test fixture path - test code only
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
	require.NoError(t, err, "Failed to copy workspace fixture")
	return dst
}

// Client records the diagnostics the server publishes
type Client struct {
	mu          sync.Mutex
	diagnostics map[string][]protocol.Diagnostic
}

// Context returns a glsp context that records notifications
func (c *Client) Context() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			p, ok := params.(protocol.PublishDiagnosticsParams)
			if method != protocol.ServerTextDocumentPublishDiagnostics || !ok {
				return
			}
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.diagnostics == nil {
				c.diagnostics = map[string][]protocol.Diagnostic{}
			}
			c.diagnostics[p.URI] = p.Diagnostics
		},
	}
}

// Diagnostics returns the last diagnostics published for uri
func (c *Client) Diagnostics(uri string) ([]protocol.Diagnostic, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.diagnostics[uri]
	return d, ok
}

// Codes returns the codes of the last diagnostics published for uri
func (c *Client) Codes(uri string) []string {
	ds, _ := c.Diagnostics(uri)
	codes := make([]string, 0, len(ds))
	for _, d := range ds {
		if d.Code != nil {
			if s, ok := d.Code.Value.(string); ok {
				codes = append(codes, s)
			}
		}
	}
	return codes
}

// NewTestServer creates a language server that is closed with the test
func NewTestServer(t *testing.T) *lsp.Server {
	t.Helper()
	server, err := lsp.NewServer()
	require.NoError(t, err, "Failed to create test server")
	t.Cleanup(func() { _ = server.Close() })
	return server
}

// Initialize runs the initialize handshake for root
func Initialize(t *testing.T, server *lsp.Server, client *Client, root string) {
	t.Helper()
	rootURI := uriutil.PathToURI(root)
	req := types.NewRequestContext(server, client.Context())
	_, err := lifecycle.Initialize(req, &protocol.InitializeParams{RootURI: &rootURI})
	require.NoError(t, err)
	require.NoError(t, lifecycle.Initialized(req, &protocol.InitializedParams{}))
	require.Empty(t, req.Warnings(), "workspace should load cleanly")
}

// OpenDocument opens a document in the server
func OpenDocument(t *testing.T, server *lsp.Server, uri, languageID, text string) {
	t.Helper()
	req := types.NewRequestContext(server, server.GLSPContext())
	err := textDocument.DidOpen(req, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: languageID,
			Version:    1,
			Text:       text,
		},
	})
	require.NoError(t, err, "Failed to open %s", uri)
}

// OpenFile opens a workspace file with its content on disk
func OpenFile(t *testing.T, server *lsp.Server, path, languageID string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // G304: Test fixture path - test code only
	require.NoError(t, err)
	uri := uriutil.PathToURI(path)
	OpenDocument(t, server, uri, languageID, string(data))
	return uri
}

// Package lsp is the ExCSS language server. It publishes diagnostics for
// .excss documents and the ExCSS <style> elements of HTML pages, and
// describes variables on hover.
package lsp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"bennypowers.dev/excss/internal/config"
	"bennypowers.dev/excss/internal/designtokens"
	"bennypowers.dev/excss/internal/documents"
	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/internal/stylesheet"
	"bennypowers.dev/excss/lsp/methods/lifecycle"
	"bennypowers.dev/excss/lsp/methods/textDocument"
	"bennypowers.dev/excss/lsp/methods/textDocument/diagnostic"
	"bennypowers.dev/excss/lsp/methods/textDocument/hover"
	"bennypowers.dev/excss/lsp/methods/workspace"
	"bennypowers.dev/excss/lsp/types"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
	"go.uber.org/multierr"
)

var _ types.ServerContext = (*Server)(nil)

// Server is the ExCSS language server
type Server struct {
	documents  *documents.Manager
	glspServer *server.Server

	mu       sync.RWMutex // guards the fields below
	session  *stylesheet.Session
	config   *config.Config
	inputs   map[string]bool
	context  *glsp.Context
	rootURI  string
	rootPath string
}

// NewServer creates a language server with an empty workspace
func NewServer() (*Server, error) {
	session, err := stylesheet.NewSession(stylesheet.Options{})
	if err != nil {
		return nil, err
	}
	s := &Server{
		documents: documents.NewManager(),
		session:   session,
		inputs:    map[string]bool{},
	}

	handler := protocol.Handler{
		Initialize:                     method(s, "initialize", lifecycle.Initialize),
		Initialized:                    notify(s, "initialized", lifecycle.Initialized),
		Shutdown:                       noParam(s, "shutdown", lifecycle.Shutdown),
		SetTrace:                       notify(s, "$/setTrace", lifecycle.SetTrace),
		WorkspaceDidChangeWatchedFiles: notify(s, "workspace/didChangeWatchedFiles", workspace.DidChangeWatchedFiles),
		TextDocumentDidOpen:            notify(s, "textDocument/didOpen", textDocument.DidOpen),
		TextDocumentDidChange:          notify(s, "textDocument/didChange", textDocument.DidChange),
		TextDocumentDidClose:           notify(s, "textDocument/didClose", textDocument.DidClose),
		TextDocumentHover:              method(s, "textDocument/hover", hover.Hover),
	}
	s.glspServer = server.NewServer(&handler, lifecycle.ServerName, false)
	return s, nil
}

// RunStdio serves the client on stdin and stdout
func (s *Server) RunStdio() error {
	return s.glspServer.RunStdio()
}

// Close releases the workspace session
func (s *Server) Close() error {
	return s.Session().Close()
}

func (s *Server) Document(uri string) *documents.Document { return s.documents.Get(uri) }
func (s *Server) DocumentManager() *documents.Manager     { return s.documents }
func (s *Server) AllDocuments() []*documents.Document     { return s.documents.GetAll() }

func (s *Server) RootURI() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rootURI
}

func (s *Server) RootPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rootPath
}

func (s *Server) SetRootURI(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rootURI = uri
}

func (s *Server) SetRootPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rootPath = path
}

func (s *Server) GLSPContext() *glsp.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.context
}

func (s *Server) SetGLSPContext(ctx *glsp.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context = ctx
}

// Session returns the workspace session
func (s *Server) Session() *stylesheet.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Config returns the loaded workspace configuration, or nil
func (s *Server) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// LoadWorkspace builds a fresh session from the workspace configuration:
// design tokens first, then the configured .excss sources. Without a root
// the session stays empty.
func (s *Server) LoadWorkspace() error {
	root := s.RootPath()
	if root == "" {
		return nil
	}
	cfg, err := config.FindOrDefault(root)
	if err != nil {
		return err
	}
	session, err := stylesheet.NewSession(stylesheet.Options{})
	if err != nil {
		return err
	}

	inputs := map[string]bool{}
	for _, name := range config.Filenames {
		inputs[filepath.Join(root, name)] = true
	}
	inputs[filepath.Join(root, "package.json")] = true

	var errs error
	for _, tf := range cfg.Tokens {
		path := cfg.TokenPath(tf)
		inputs[path] = true
		entries, err := designtokens.Load(path, designtokens.Options{Prefix: tf.Prefix, GroupMarkers: tf.GroupMarkers})
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for _, e := range entries {
			errs = multierr.Append(errs, session.Define(strings.TrimPrefix(e.Ident, "$"), e.Value))
		}
	}

	paths, err := cfg.ResolveSources()
	errs = multierr.Append(errs, err)
	var sources []stylesheet.Source
	for _, path := range paths {
		inputs[path] = true
		if strings.EqualFold(filepath.Ext(path), ".excss") {
			sources = append(sources, stylesheet.Source{Path: path})
		}
	}
	if _, err := session.LoadAll(context.Background(), sources); err != nil {
		errs = multierr.Append(errs, err)
	}

	s.mu.Lock()
	old := s.session
	s.session, s.config, s.inputs = session, cfg, inputs
	s.mu.Unlock()
	_ = old.Close()

	log.Info("Loaded workspace %s: %d variables, %d stylesheets",
		root, len(session.Variables()), len(session.Stylesheets()))
	return errs
}

// IsWorkspaceInput reports whether path was read by the last LoadWorkspace,
// or is a configuration file of the root
func (s *Server) IsWorkspaceInput(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inputs[filepath.Clean(path)]
}

// PublishDiagnostics sends the diagnostics of an open document
func (s *Server) PublishDiagnostics(ctx *glsp.Context, uri string) error {
	if ctx == nil {
		ctx = s.GLSPContext()
	}
	if ctx == nil || ctx.Notify == nil {
		return errors.New("cannot publish diagnostics: no client context available")
	}
	doc := s.Document(uri)
	if doc == nil {
		return fmt.Errorf("document not found: %s", uri)
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostic.Compute(doc, s.Session()),
	})
	return nil
}

package types

import (
	"bennypowers.dev/excss/internal/documents"
	"bennypowers.dev/excss/internal/stylesheet"
	"github.com/tliron/glsp"
)

// ServerContext provides what LSP handlers need from the server
type ServerContext interface {
	// Documents
	Document(uri string) *documents.Document
	DocumentManager() *documents.Manager
	AllDocuments() []*documents.Document

	// Workspace
	RootURI() string
	RootPath() string
	SetRootURI(uri string)
	SetRootPath(path string)

	// Session holds the workspace's design tokens and global stylesheets
	Session() *stylesheet.Session
	// LoadWorkspace (re)loads the configuration, tokens and sources of the
	// workspace root
	LoadWorkspace() error
	// IsWorkspaceInput reports whether a path is a configuration, token or
	// source file of the workspace
	IsWorkspaceInput(path string) bool

	// LSP context (for publishing diagnostics)
	GLSPContext() *glsp.Context
	SetGLSPContext(ctx *glsp.Context)
	PublishDiagnostics(ctx *glsp.Context, uri string) error
}

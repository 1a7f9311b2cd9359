package testutil

import (
	"bennypowers.dev/excss/internal/documents"
	"bennypowers.dev/excss/internal/stylesheet"
	"bennypowers.dev/excss/lsp/types"
	"github.com/tliron/glsp"
)

var _ types.ServerContext = (*MockServerContext)(nil)

// MockServerContext implements types.ServerContext for testing.
// Behavior is configurable via the callback fields.
type MockServerContext struct {
	docs        *documents.Manager
	session     *stylesheet.Session
	rootURI     string
	rootPath    string
	glspContext *glsp.Context

	LoadWorkspaceFunc      func() error
	IsWorkspaceInputFunc   func(string) bool
	PublishDiagnosticsFunc func(*glsp.Context, string) error

	LoadWorkspaceCalled int
	Published           []string
}

// NewMockServerContext creates a mock with an empty session
func NewMockServerContext() *MockServerContext {
	session, err := stylesheet.NewSession(stylesheet.Options{})
	if err != nil {
		panic(err)
	}
	return &MockServerContext{
		docs:    documents.NewManager(),
		session: session,
	}
}

func (m *MockServerContext) Document(uri string) *documents.Document { return m.docs.Get(uri) }
func (m *MockServerContext) DocumentManager() *documents.Manager     { return m.docs }
func (m *MockServerContext) AllDocuments() []*documents.Document     { return m.docs.GetAll() }

func (m *MockServerContext) RootURI() string         { return m.rootURI }
func (m *MockServerContext) RootPath() string        { return m.rootPath }
func (m *MockServerContext) SetRootURI(uri string)   { m.rootURI = uri }
func (m *MockServerContext) SetRootPath(path string) { m.rootPath = path }

// Session returns the mock's session, which tests may populate directly
func (m *MockServerContext) Session() *stylesheet.Session { return m.session }

// LoadWorkspace counts the call and runs LoadWorkspaceFunc
func (m *MockServerContext) LoadWorkspace() error {
	m.LoadWorkspaceCalled++
	if m.LoadWorkspaceFunc != nil {
		return m.LoadWorkspaceFunc()
	}
	return nil
}

func (m *MockServerContext) IsWorkspaceInput(path string) bool {
	if m.IsWorkspaceInputFunc != nil {
		return m.IsWorkspaceInputFunc(path)
	}
	return false
}

func (m *MockServerContext) GLSPContext() *glsp.Context       { return m.glspContext }
func (m *MockServerContext) SetGLSPContext(ctx *glsp.Context) { m.glspContext = ctx }

// PublishDiagnostics records the uri and runs PublishDiagnosticsFunc
func (m *MockServerContext) PublishDiagnostics(ctx *glsp.Context, uri string) error {
	m.Published = append(m.Published, uri)
	if m.PublishDiagnosticsFunc != nil {
		return m.PublishDiagnosticsFunc(ctx, uri)
	}
	return nil
}

package documents

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"bennypowers.dev/excss/internal/position"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Manager holds the open documents
type Manager struct {
	documents map[string]*Document
	mu        sync.RWMutex
}

// NewManager creates an empty manager
func NewManager() *Manager {
	return &Manager{
		documents: make(map[string]*Document),
	}
}

// Get returns the document at uri, or nil
func (m *Manager) Get(uri string) *Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.documents[uri]
}

// GetAll returns the open documents sorted by URI
func (m *Manager) GetAll() []*Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := make([]*Document, 0, len(m.documents))
	for _, doc := range m.documents {
		docs = append(docs, doc)
	}
	slices.SortFunc(docs, func(a, b *Document) int { return strings.Compare(a.uri, b.uri) })
	return docs
}

// DidOpen handles the textDocument/didOpen notification
func (m *Manager) DidOpen(uri, languageID string, version int, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[uri] = NewDocument(uri, languageID, version, content)
	return nil
}

// DidClose handles the textDocument/didClose notification
func (m *Manager) DidClose(uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[uri]; !ok {
		return fmt.Errorf("document not found: %s", uri)
	}
	delete(m.documents, uri)
	return nil
}

// DidChange handles the textDocument/didChange notification. Changes apply
// in order; a change without a range replaces the whole text.
func (m *Manager) DidChange(uri string, version int, changes []protocol.TextDocumentContentChangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.documents[uri]
	if !ok {
		return fmt.Errorf("document not found: %s", uri)
	}

	content := doc.Content()
	for _, change := range changes {
		if change.Range == nil {
			content = change.Text
			continue
		}
		next, err := applyChange(content, *change.Range, change.Text)
		if err != nil {
			return fmt.Errorf("failed to apply changes: %w", err)
		}
		content = next
	}
	return doc.SetContent(content, version)
}

func applyChange(content string, r protocol.Range, text string) (string, error) {
	start, ok := position.Offset(content, r.Start.Line, r.Start.Character)
	if !ok {
		return "", fmt.Errorf("start line %d out of bounds", r.Start.Line)
	}
	end, ok := position.Offset(content, r.End.Line, r.End.Character)
	if !ok {
		return "", fmt.Errorf("end line %d out of bounds", r.End.Line)
	}
	if end < start {
		return "", fmt.Errorf("range end %d:%d precedes start %d:%d",
			r.End.Line, r.End.Character, r.Start.Line, r.Start.Character)
	}
	return content[:start] + text + content[end:], nil
}

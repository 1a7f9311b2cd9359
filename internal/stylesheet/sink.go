package stylesheet

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Sink receives the generated CSS of a stylesheet each time it is injected
type Sink interface {
	WriteCSS(css string) error
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(css string) error

func (f SinkFunc) WriteCSS(css string) error { return f(css) }

// MemorySink keeps the most recent CSS in memory
type MemorySink struct {
	mu  sync.RWMutex
	css string
	n   int
}

func (m *MemorySink) WriteCSS(css string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.css = css
	m.n++
	return nil
}

// CSS returns the last CSS written
func (m *MemorySink) CSS() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.css
}

// Writes returns how many times CSS was written
func (m *MemorySink) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.n
}

// WriterSink appends each injection to an io.Writer
type WriterSink struct {
	W io.Writer
}

func (w WriterSink) WriteCSS(css string) error {
	_, err := io.WriteString(w.W, css)
	return err
}

// FileSink replaces the contents of a file on each injection, creating
// parent directories as needed
type FileSink struct {
	Path string
}

func (f FileSink) WriteCSS(css string) error {
	if dir := filepath.Dir(f.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(f.Path, []byte(css), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.Path, err)
	}
	return nil
}

package templates

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Source is the custom template overlay: user-created templates that
// shadow built-ins of the same name.
type Source interface {
	// List returns the names of all custom templates.
	List() []string
	// Get returns the raw template content, or false if absent.
	Get(name string) (string, bool)
	// Put creates or overwrites a custom template.
	Put(name, content string) error
	// Delete removes a custom template, returning false if it did not
	// exist. Absence is not an error.
	Delete(name string) bool
}

// MemSource is an in-memory Source for tests and ephemeral deployments.
type MemSource struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemSource creates an empty in-memory overlay.
func NewMemSource() *MemSource {
	return &MemSource{data: make(map[string]string)}
}

func (m *MemSource) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	return names
}

func (m *MemSource) Get(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.data[name]
	return content, ok
}

func (m *MemSource) Put(name, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[name] = content
	return nil
}

func (m *MemSource) Delete(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[name]; !ok {
		return false
	}
	delete(m.data, name)
	return true
}

// DirSource stores each custom template as <name>.html under a directory.
type DirSource struct {
	dir string
}

// NewDirSource creates a directory-backed overlay. The directory is
// created lazily on first Put.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

func (d *DirSource) List() []string {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".html") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".html"))
	}
	return names
}

func (d *DirSource) Get(name string) (string, bool) {
	data, err := os.ReadFile(d.path(name))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (d *DirSource) Put(name, content string) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(d.path(name), []byte(content), 0o644)
}

func (d *DirSource) Delete(name string) bool {
	return os.Remove(d.path(name)) == nil
}

func (d *DirSource) path(name string) string {
	// Base strips any path separators a hostile name could carry
	return filepath.Join(d.dir, filepath.Base(name)+".html")
}

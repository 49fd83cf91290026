// ABOUTME: Destinations for generated export files such as contact CSVs
// ABOUTME: Writes to a local directory, an S3 bucket, or memory
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrExists is returned when every numbered variant of a name is taken.
var ErrExists = errors.New("export already exists")

// maxCopies bounds how many numbered variants a create-only sink tries.
const maxCopies = 100

// numbered returns name for n == 0 and "base (n).ext" otherwise, the way a
// browser names repeated downloads.
func numbered(name string, n int) string {
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(name, ext), n, ext)
}

// Sink receives a finished export file and reports where it ended up.
type Sink interface {
	Save(ctx context.Context, name string, content []byte, contentType string) (string, error)
}

// DirSink writes files into a directory. Unless Overwrite is set, an
// existing file is kept and the export lands under the next free numbered
// name.
type DirSink struct {
	Dir       string
	Overwrite bool
}

func (d DirSink) Save(_ context.Context, name string, content []byte, _ string) (string, error) {
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	base := filepath.Base(name)
	if d.Overwrite {
		path := filepath.Join(d.Dir, base)
		return path, write(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, content)
	}

	for n := 0; n < maxCopies; n++ {
		path := filepath.Join(d.Dir, numbered(base, n))
		err := write(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, content)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		return path, err
	}
	return "", fmt.Errorf("%s: %w", filepath.Join(d.Dir, base), ErrExists)
}

func write(path string, flags int, content []byte) error {
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// File is one export held by a MemorySink.
type File struct {
	Content     []byte
	ContentType string
}

// MemorySink keeps exports in memory. Used by tests and the TUI preview.
type MemorySink struct {
	mu    sync.Mutex
	files map[string]File
}

func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string]File)}
}

func (m *MemorySink) Save(_ context.Context, name string, content []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = File{Content: append([]byte(nil), content...), ContentType: contentType}
	return "memory://" + name, nil
}

// Get returns a saved file by name.
func (m *MemorySink) Get(name string) (File, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[name]
	return f, ok
}

// Names lists saved file names in order.
func (m *MemorySink) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

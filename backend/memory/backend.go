// Package memory provides a path-keyed in-memory backend, registered under
// the "memory" scheme. Data lives in RAM and is lost when the backend is
// closed or the process exits; it is primarily a test and prototyping
// backend.
package memory

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/grokify/tabstore"
)

func init() {
	tabstore.Register("memory", NewFromConfig)
}

// Backend implements tabstore.Backend for in-memory storage.
type Backend struct {
	objects map[string][]byte
	closed  bool
	mu      sync.RWMutex
}

// New creates an empty memory backend.
func New() *Backend {
	return &Backend{objects: make(map[string][]byte)}
}

// NewFromConfig creates a memory backend; configuration is ignored.
func NewFromConfig(_ map[string]string) (tabstore.Backend, error) {
	return New(), nil
}

// NewWriter creates a writer for the given path. The object becomes visible
// when the writer is closed.
func (b *Backend) NewWriter(ctx context.Context, p string) (io.WriteCloser, error) {
	if err := b.checkClosed(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key, err := normalizePath(p)
	if err != nil {
		return nil, err
	}

	return &memoryWriter{backend: b, key: key}, nil
}

// NewReader creates a reader over a snapshot of the object's bytes.
func (b *Backend) NewReader(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := b.checkClosed(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key, err := normalizePath(p)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	data, exists := b.objects[key]
	b.mu.RUnlock()

	if !exists {
		return nil, tabstore.ErrNotFound
	}

	snapshot := make([]byte, len(data))
	copy(snapshot, data)
	return &memoryReader{reader: bytes.NewReader(snapshot)}, nil
}

// Exists checks if a path exists.
func (b *Backend) Exists(ctx context.Context, p string) (bool, error) {
	if err := b.checkClosed(); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	key, err := normalizePath(p)
	if err != nil {
		return false, err
	}

	b.mu.RLock()
	_, exists := b.objects[key]
	b.mu.RUnlock()
	return exists, nil
}

// Delete removes a path. Deleting a missing path is not an error.
func (b *Backend) Delete(ctx context.Context, p string) error {
	if err := b.checkClosed(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	key, err := normalizePath(p)
	if err != nil {
		return err
	}

	b.mu.Lock()
	delete(b.objects, key)
	b.mu.Unlock()
	return nil
}

// Close releases all stored objects.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.objects = nil
	return nil
}

// Clear removes all objects but leaves the backend usable.
func (b *Backend) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.objects = make(map[string][]byte)
	}
}

// Len returns the number of stored objects.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}

func (b *Backend) checkClosed() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return tabstore.ErrBackendClosed
	}
	return nil
}

func normalizePath(p string) (string, error) {
	if p == "" {
		return "", tabstore.ErrInvalidPath
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+p), "/")
	if cleaned == "" {
		return "", tabstore.ErrInvalidPath
	}
	return cleaned, nil
}

// memoryWriter buffers writes and stores the object on Close.
type memoryWriter struct {
	backend *Backend
	key     string
	buffer  bytes.Buffer
	closed  bool
	mu      sync.Mutex
}

func (w *memoryWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, tabstore.ErrWriterClosed
	}
	return w.buffer.Write(p)
}

func (w *memoryWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	w.backend.mu.Lock()
	defer w.backend.mu.Unlock()

	if w.backend.closed {
		return tabstore.ErrBackendClosed
	}
	w.backend.objects[w.key] = w.buffer.Bytes()
	return nil
}

// memoryReader reads from a snapshot of the object's bytes.
type memoryReader struct {
	reader *bytes.Reader
	closed bool
	mu     sync.Mutex
}

func (r *memoryReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, tabstore.ErrReaderClosed
	}
	return r.reader.Read(p)
}

func (r *memoryReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Ensure Backend implements tabstore.Backend
var _ tabstore.Backend = (*Backend)(nil)

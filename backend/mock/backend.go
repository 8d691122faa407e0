// Package mock provides a test double that emulates a remote object store
// with one shared in-memory buffer. Every open ignores the path and lands on
// the same buffer: a write resets it and fills it from position zero, a read
// returns a snapshot starting at position zero. Two sequential calls through
// different backend instances from the same factory therefore observe the
// same underlying bytes, which is exactly what isolated remote-store tests
// assert.
//
// Register it through the same call real backends use:
//
//	store := mock.New()
//	tabstore.Register("gs", store.Factory())
package mock

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/grokify/tabstore"
)

// Backend implements tabstore.Backend over one shared buffer.
type Backend struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	written bool
}

// New creates a mock backend with an empty buffer.
func New() *Backend {
	return &Backend{}
}

// Factory returns a BackendFactory that hands out this same backend for
// every resolution, so all opens share the buffer.
func (b *Backend) Factory() tabstore.BackendFactory {
	return func(_ map[string]string) (tabstore.Backend, error) {
		return b, nil
	}
}

// NewWriter ignores the path and returns a writer that resets the shared
// buffer and fills it from position zero.
func (b *Backend) NewWriter(ctx context.Context, _ string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.buf.Reset()
	b.mu.Unlock()

	return &mockWriter{backend: b}, nil
}

// NewReader ignores the path and returns a reader over a snapshot of the
// shared buffer, from position zero. Reading before any write fails
// ErrNotFound.
func (b *Backend) NewReader(ctx context.Context, _ string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.written {
		return nil, tabstore.ErrNotFound
	}

	snapshot := make([]byte, b.buf.Len())
	copy(snapshot, b.buf.Bytes())
	return io.NopCloser(bytes.NewReader(snapshot)), nil
}

// Exists reports whether anything has been written.
func (b *Backend) Exists(ctx context.Context, _ string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.written, nil
}

// Delete empties the shared buffer.
func (b *Backend) Delete(ctx context.Context, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.Reset()
	return nil
}

// Close is a no-op: the test harness owns the buffer's lifetime, and the I/O
// entrypoints close the backend instance after every operation.
func (b *Backend) Close() error { return nil }

// Bytes returns a copy of the shared buffer for byte-identity assertions.
func (b *Backend) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, b.buf.Len())
	copy(out, b.buf.Bytes())
	return out
}

// Reset empties the buffer and forgets that anything was written.
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
	b.written = false
}

type mockWriter struct {
	backend *Backend
	closed  bool
	mu      sync.Mutex
}

func (w *mockWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, tabstore.ErrWriterClosed
	}

	w.backend.mu.Lock()
	defer w.backend.mu.Unlock()
	return w.backend.buf.Write(p)
}

func (w *mockWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	w.backend.mu.Lock()
	w.backend.written = true
	w.backend.mu.Unlock()
	return nil
}

// Ensure Backend implements tabstore.Backend
var _ tabstore.Backend = (*Backend)(nil)

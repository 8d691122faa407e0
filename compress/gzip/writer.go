// Package gzip provides the gzip layer of the tabstore codec pipeline.
//
// Writers support stamping a fixed modification time into the gzip header so
// that writing the same payload twice yields byte-identical output.
package gzip

import (
	"compress/gzip"
	"io"
	"sync"
	"time"
)

// CompressionLevel represents gzip compression levels.
type CompressionLevel int

const (
	// NoCompression provides no compression.
	NoCompression CompressionLevel = gzip.NoCompression
	// BestSpeed provides fastest compression.
	BestSpeed CompressionLevel = gzip.BestSpeed
	// BestCompression provides best compression ratio.
	BestCompression CompressionLevel = gzip.BestCompression
	// DefaultCompression provides a balance of speed and compression.
	DefaultCompression CompressionLevel = gzip.DefaultCompression
	// HuffmanOnly uses Huffman encoding only.
	HuffmanOnly CompressionLevel = gzip.HuffmanOnly
)

// WriterOption mutates the gzip header before the first write.
type WriterOption func(*gzip.Writer)

// WithModTime stamps a fixed modification time into the gzip header.
// A zero time leaves the header untouched (the stdlib then writes a zero
// mtime field, which is already reproducible).
func WithModTime(t time.Time) WriterOption {
	return func(gw *gzip.Writer) {
		if !t.IsZero() {
			gw.ModTime = t
		}
	}
}

// WithName records the original file name in the gzip header.
// Note that a name makes output depend on the destination path.
func WithName(name string) WriterOption {
	return func(gw *gzip.Writer) {
		gw.Name = name
	}
}

// Writer wraps an io.WriteCloser with gzip compression. Close flushes the
// gzip stream and then closes the wrapped writer.
type Writer struct {
	gw     *gzip.Writer
	closer io.Closer
	closed bool
	mu     sync.Mutex
}

// NewWriter creates a gzip writer with the default compression level.
func NewWriter(w io.WriteCloser, opts ...WriterOption) (*Writer, error) {
	return NewWriterLevel(w, DefaultCompression, opts...)
}

// NewWriterLevel creates a gzip writer with the specified compression level.
func NewWriterLevel(w io.WriteCloser, level CompressionLevel, opts ...WriterOption) (*Writer, error) {
	gw, err := gzip.NewWriterLevel(w, int(level))
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(gw)
	}
	return &Writer{
		gw:     gw,
		closer: w,
	}, nil
}

// Write writes compressed data to the underlying writer.
func (w *Writer) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, io.ErrClosedPipe
	}

	return w.gw.Write(p)
}

// Flush flushes any pending compressed data.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return io.ErrClosedPipe
	}

	return w.gw.Flush()
}

// Close flushes any remaining data and closes both the gzip writer
// and the underlying writer. A second Close is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true

	// Close gzip writer first (flushes remaining data)
	if err := w.gw.Close(); err != nil {
		_ = w.closer.Close()
		return err
	}

	return w.closer.Close()
}

// Ensure Writer implements io.WriteCloser
var _ io.WriteCloser = (*Writer)(nil)

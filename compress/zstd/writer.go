// Package zstd provides the Zstandard layer of the tabstore codec pipeline,
// backed by github.com/klauspost/compress.
//
// Zstd output is deterministic for a given payload and level, so unlike the
// gzip layer there is no modification-time knob to pin down.
package zstd

import (
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// CompressionLevel represents zstd compression levels.
type CompressionLevel int

const (
	// SpeedFastest provides the fastest compression speed.
	SpeedFastest CompressionLevel = iota + 1
	// SpeedDefault provides a good balance of speed and compression.
	SpeedDefault
	// SpeedBetterCompression provides better compression at slower speed.
	SpeedBetterCompression
	// SpeedBestCompression provides the best compression ratio.
	SpeedBestCompression
)

// Level maps a generic numeric level to a CompressionLevel.
// Zero and out-of-range values mean SpeedDefault.
func Level(n int) CompressionLevel {
	if n >= int(SpeedFastest) && n <= int(SpeedBestCompression) {
		return CompressionLevel(n)
	}
	return SpeedDefault
}

func (l CompressionLevel) toZstdLevel() zstd.EncoderLevel {
	switch l {
	case SpeedFastest:
		return zstd.SpeedFastest
	case SpeedDefault:
		return zstd.SpeedDefault
	case SpeedBetterCompression:
		return zstd.SpeedBetterCompression
	case SpeedBestCompression:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

// Writer wraps an io.WriteCloser with zstd compression. Close flushes the
// encoder and then closes the wrapped writer.
type Writer struct {
	zw     *zstd.Encoder
	closer io.Closer
	closed bool
	mu     sync.Mutex
}

// NewWriter creates a zstd writer with the default compression level.
func NewWriter(w io.WriteCloser) (*Writer, error) {
	return NewWriterLevel(w, SpeedDefault)
}

// NewWriterLevel creates a zstd writer with the specified compression level.
func NewWriterLevel(w io.WriteCloser, level CompressionLevel) (*Writer, error) {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(level.toZstdLevel()))
	if err != nil {
		return nil, err
	}
	return &Writer{
		zw:     zw,
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

	return w.zw.Write(p)
}

// Flush forces any buffered data through the encoder.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return io.ErrClosedPipe
	}

	return w.zw.Flush()
}

// Close flushes any remaining data and closes both the zstd encoder
// and the underlying writer. A second Close is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true

	if err := w.zw.Close(); err != nil {
		_ = w.closer.Close()
		return err
	}

	return w.closer.Close()
}

// Ensure Writer implements io.WriteCloser
var _ io.WriteCloser = (*Writer)(nil)

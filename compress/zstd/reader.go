package zstd

import (
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Reader wraps an io.ReadCloser with zstd decompression. Close releases the
// decoder and then closes the wrapped reader.
type Reader struct {
	zr     *zstd.Decoder
	closer io.Closer
	closed bool
	mu     sync.Mutex
}

// NewReader creates a zstd reader that decompresses data from the underlying
// reader.
func NewReader(r io.ReadCloser) (*Reader, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &Reader{
		zr:     zr,
		closer: r,
	}, nil
}

// Read reads decompressed data from the underlying reader.
func (r *Reader) Read(p []byte) (n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, io.ErrClosedPipe
	}

	return r.zr.Read(p)
}

// Close releases the decoder and closes the underlying reader.
// A second Close is a no-op.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true

	// The decoder's Close never fails; it only releases state.
	r.zr.Close()

	return r.closer.Close()
}

// Ensure Reader implements io.ReadCloser
var _ io.ReadCloser = (*Reader)(nil)

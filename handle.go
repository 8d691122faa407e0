package tabstore

import (
	"context"
	"fmt"
	"io"

	"github.com/grokify/tabstore/codec"
)

// HandleState tracks a stream handle's lifecycle.
type HandleState int

const (
	// StateUnopened is the state before Open.
	StateUnopened HandleState = iota
	// StateOpen is the state between Open and Close.
	StateOpen
	// StateClosed is terminal; a handle cannot be reopened.
	StateClosed
)

// WriteHandle owns one raw backend stream and its codec wrappers. It is
// exclusively owned by the caller that opened it and must not be shared
// across goroutines.
//
// Close flushes from the outermost layer inward (encoder, then compressor,
// then the raw backend stream) and is safe to call on every exit path; a
// second Close is a no-op. If a write fails partway, the handle must still be
// closed, but the backend-side content is undefined — the original write
// error is what the caller should report.
type WriteHandle struct {
	backend     Backend
	path        string
	pipeline    codec.Pipeline
	w           io.WriteCloser
	state       HandleState
	ownsBackend bool
}

// NewWriteHandle prepares an unopened write handle. The backend stays owned
// by the caller and is not closed with the handle.
func NewWriteHandle(backend Backend, path string, pipeline codec.Pipeline) *WriteHandle {
	return &WriteHandle{backend: backend, path: path, pipeline: pipeline}
}

// State returns the handle's lifecycle state.
func (h *WriteHandle) State() HandleState { return h.state }

// Open acquires the raw backend stream and builds the codec chain over it.
// Opening a handle twice, or after Close, is an error.
func (h *WriteHandle) Open(ctx context.Context) error {
	if h.state != StateUnopened {
		return fmt.Errorf("%w: handle already opened", ErrHandleClosed)
	}

	pipeline, err := h.pipeline.ForPath(h.path)
	if err != nil {
		return err
	}

	raw, err := h.backend.NewWriter(ctx, h.path)
	if err != nil {
		return err
	}

	w, err := pipeline.WrapWriter(raw)
	if err != nil {
		_ = raw.Close()
		return err
	}

	h.w = w
	h.state = StateOpen
	return nil
}

// Write passes p through the codec chain to the backend.
func (h *WriteHandle) Write(p []byte) (int, error) {
	if h.state != StateOpen {
		return 0, ErrHandleClosed
	}
	return h.w.Write(p)
}

// Close flushes every layer and releases the raw stream. It is idempotent.
func (h *WriteHandle) Close() error {
	if h.state == StateClosed {
		return nil
	}

	opened := h.state == StateOpen
	h.state = StateClosed

	var err error
	if opened {
		// Cascades: encoder flush, compressor flush, raw stream close.
		err = h.w.Close()
	}
	if h.ownsBackend {
		if cerr := h.backend.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// ReadHandle owns one raw backend stream and its codec wrappers for reading.
// Same ownership and lifecycle rules as WriteHandle.
type ReadHandle struct {
	backend     Backend
	path        string
	pipeline    codec.Pipeline
	r           io.ReadCloser
	state       HandleState
	ownsBackend bool
}

// NewReadHandle prepares an unopened read handle. The backend stays owned by
// the caller and is not closed with the handle.
func NewReadHandle(backend Backend, path string, pipeline codec.Pipeline) *ReadHandle {
	return &ReadHandle{backend: backend, path: path, pipeline: pipeline}
}

// State returns the handle's lifecycle state.
func (h *ReadHandle) State() HandleState { return h.state }

// Open acquires the raw backend stream and builds the inverse codec chain.
// Fails with ErrNotFound when the backend holds no data at the path.
func (h *ReadHandle) Open(ctx context.Context) error {
	if h.state != StateUnopened {
		return fmt.Errorf("%w: handle already opened", ErrHandleClosed)
	}

	pipeline, err := h.pipeline.ForPath(h.path)
	if err != nil {
		return err
	}

	raw, err := h.backend.NewReader(ctx, h.path)
	if err != nil {
		return err
	}

	r, err := pipeline.WrapReader(raw)
	if err != nil {
		_ = raw.Close()
		return err
	}

	h.r = r
	h.state = StateOpen
	return nil
}

// Read reads decoded payload bytes.
func (h *ReadHandle) Read(p []byte) (int, error) {
	if h.state != StateOpen {
		return 0, ErrHandleClosed
	}
	return h.r.Read(p)
}

// Close releases the raw stream. It is idempotent.
func (h *ReadHandle) Close() error {
	if h.state == StateClosed {
		return nil
	}

	opened := h.state == StateOpen
	h.state = StateClosed

	var err error
	if opened {
		err = h.r.Close()
	}
	if h.ownsBackend {
		if cerr := h.backend.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

var (
	_ io.WriteCloser = (*WriteHandle)(nil)
	_ io.ReadCloser  = (*ReadHandle)(nil)
)

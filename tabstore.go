package tabstore

import (
	"context"
	"io"

	"github.com/grokify/tabstore/codec"
)

// OpenWriter resolves a locator and returns an open write handle whose codec
// chain is built from the given options. The handle owns the backend instance
// and releases it on Close.
func OpenWriter(ctx context.Context, identifier string, opts ...Option) (*WriteHandle, error) {
	o := ApplyOptions(opts...)

	backend, loc, err := ResolveLocator(identifier, o.Registry, o.BackendConfig)
	if err != nil {
		return nil, err
	}

	o.Logger.Debug().
		Str("scheme", loc.Scheme).
		Str("path", loc.Path).
		Str("compression", string(o.Compression.Method)).
		Str("encoding", o.Encoding.Name).
		Msg("opening writer")

	h := NewWriteHandle(backend, loc.Path, codec.New(o.Compression, o.Encoding))
	h.ownsBackend = true
	if err := h.Open(ctx); err != nil {
		_ = backend.Close()
		return nil, err
	}
	return h, nil
}

// OpenReader resolves a locator and returns an open read handle whose inverse
// codec chain is built from the given options. The handle owns the backend
// instance and releases it on Close.
func OpenReader(ctx context.Context, identifier string, opts ...Option) (*ReadHandle, error) {
	o := ApplyOptions(opts...)

	backend, loc, err := ResolveLocator(identifier, o.Registry, o.BackendConfig)
	if err != nil {
		return nil, err
	}

	o.Logger.Debug().
		Str("scheme", loc.Scheme).
		Str("path", loc.Path).
		Str("compression", string(o.Compression.Method)).
		Str("encoding", o.Encoding.Name).
		Msg("opening reader")

	h := NewReadHandle(backend, loc.Path, codec.New(o.Compression, o.Encoding))
	h.ownsBackend = true
	if err := h.Open(ctx); err != nil {
		_ = backend.Close()
		return nil, err
	}
	return h, nil
}

// Write opens a locator for writing, hands the codec-wrapped stream to
// produce, and closes the handle on every exit path. The producer performs
// the actual payload encoding (CSV rows, Parquet pages, ...) against the
// stream it is given.
//
// If produce fails, the handle is still closed but the backend-side content
// is undefined; the producer's error is returned unchanged.
func Write(ctx context.Context, identifier string, produce func(io.Writer) error, opts ...Option) (err error) {
	h, err := OpenWriter(ctx, identifier, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := h.Close(); err == nil {
			err = cerr
		}
	}()

	return produce(h)
}

// Read opens a locator for reading, hands the decoded stream to consume, and
// closes the handle on every exit path.
func Read(ctx context.Context, identifier string, consume func(io.Reader) error, opts ...Option) (err error) {
	h, err := OpenReader(ctx, identifier, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := h.Close(); err == nil {
			err = cerr
		}
	}()

	return consume(h)
}

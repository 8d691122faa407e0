// Package tabstore routes scheme-qualified locators (for example
// "gs://bucket/data.csv") to pluggable storage backends and wraps the raw
// byte stream in a reversible codec pipeline (text encoding + compression).
//
// Tabular encoders and parsers stay outside this package; they are handed an
// io.Writer or io.Reader and never learn which backend serves the bytes.
//
// Backends register themselves under a URL scheme, typically from init():
//
//	import _ "github.com/grokify/tabstore/backend/file"
//
//	err := tabstore.Write(ctx, "out/report.csv.gz",
//		func(w io.Writer) error { return csv.Write(w, table, csv.WriteOptions{}) },
//		tabstore.WithCompression(codec.Infer))
package tabstore

import (
	"context"
	"io"
)

// Backend provides raw byte access to one storage system. Implementations
// handle transport only; compression and encoding are layered on top by the
// codec pipeline.
//
// Backends are safe for concurrent use by multiple goroutines. All methods
// accept a context.Context for cancellation and timeouts.
type Backend interface {
	// NewWriter creates a writer for the given path/key, truncating any
	// existing content. The returned writer must be closed to flush.
	NewWriter(ctx context.Context, path string) (io.WriteCloser, error)

	// NewReader creates a reader for the given path/key.
	// Returns ErrNotFound if no data exists at the path.
	NewReader(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists checks if a path exists.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes a path. Returns nil if the path does not exist.
	Delete(ctx context.Context, path string) error

	// Close releases any resources held by the backend.
	// After Close, all other methods return ErrBackendClosed.
	Close() error
}

// BackendFactory creates a Backend from configuration.
// The config map contains backend-specific configuration keys.
type BackendFactory func(config map[string]string) (Backend, error)

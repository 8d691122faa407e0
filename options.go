package tabstore

import (
	"github.com/rs/zerolog"

	"github.com/grokify/tabstore/codec"
)

// Options holds configuration for a single top-level read, write, or copy.
type Options struct {
	// Compression configures the compression layer of the codec pipeline.
	// The zero value means no compression.
	Compression codec.CompressionSpec

	// Encoding names the text encoding of the payload. The zero value
	// means UTF-8.
	Encoding codec.EncodingSpec

	// Registry resolves locator schemes. Nil means the DefaultRegistry.
	Registry *Registry

	// BackendConfig is passed to the backend factory.
	BackendConfig map[string]string

	// Logger receives debug events for backend resolution and codec
	// construction. Defaults to a no-op logger.
	Logger zerolog.Logger
}

// Option configures a top-level operation.
type Option func(*Options)

// WithCompression selects a compression method with default parameters.
func WithCompression(method codec.CompressionMethod) Option {
	return func(o *Options) {
		o.Compression = codec.Compression(method)
	}
}

// WithCompressionSpec sets the full compression spec, including level and
// the fixed gzip modification time used for reproducible output.
func WithCompressionSpec(spec codec.CompressionSpec) Option {
	return func(o *Options) {
		o.Compression = spec
	}
}

// WithEncoding names the payload's text encoding, e.g. "utf-8" or "cp1251".
func WithEncoding(name string) Option {
	return func(o *Options) {
		o.Encoding = codec.EncodingSpec{Name: name}
	}
}

// WithRegistry resolves the locator against a caller-owned registry instead
// of the DefaultRegistry.
func WithRegistry(registry *Registry) Option {
	return func(o *Options) {
		o.Registry = registry
	}
}

// WithBackendConfig passes backend-specific configuration to the factory.
func WithBackendConfig(config map[string]string) Option {
	return func(o *Options) {
		o.BackendConfig = config
	}
}

// WithLogger attaches a logger for debug events.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// ApplyOptions applies options to a default Options value.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{
		Encoding: codec.DefaultEncoding(),
		Logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Package codec builds reversible transform chains (text encoding,
// compression) around raw byte streams.
//
// On write, data flows app -> encoder -> compressor -> raw stream; reads
// invert the chain exactly, so for any payload D:
//
//	decode(decompress(compress(encode(D)))) == D
package codec

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// CompressionMethod names a compression transform.
type CompressionMethod string

const (
	// None passes bytes through unchanged.
	None CompressionMethod = "none"
	// Gzip compresses with gzip.
	Gzip CompressionMethod = "gzip"
	// Zstd compresses with Zstandard.
	Zstd CompressionMethod = "zstd"
	// Infer derives the method from the locator's path suffix:
	// ".gz" means gzip, ".zst" means zstd, anything else means none.
	Infer CompressionMethod = "infer"
)

// ErrUnsupportedCompression is returned for an unrecognized method.
var ErrUnsupportedCompression = errors.New("codec: unsupported compression method")

// CompressionSpec configures the compression layer of a pipeline.
type CompressionSpec struct {
	Method CompressionMethod

	// Level is the method-specific compression level; 0 means the
	// method's default.
	Level int

	// ModTime is stamped into the gzip header when set, making output
	// byte-reproducible across runs. Ignored by other methods.
	ModTime time.Time
}

// Compression returns a spec for a method with default parameters.
func Compression(method CompressionMethod) CompressionSpec {
	return CompressionSpec{Method: method}
}

// resolve replaces Infer with the method derived from path and validates the
// method. An empty method means None.
func (s CompressionSpec) resolve(path string) (CompressionSpec, error) {
	switch s.Method {
	case "", None:
		s.Method = None
	case Gzip, Zstd:
	case Infer:
		s.Method = InferMethod(path)
	default:
		return s, fmt.Errorf("%w: %q", ErrUnsupportedCompression, s.Method)
	}
	return s, nil
}

// InferMethod derives a compression method from a path suffix.
func InferMethod(path string) CompressionMethod {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return Gzip
	case strings.HasSuffix(path, ".zst"):
		return Zstd
	default:
		return None
	}
}

// EncodingSpec names the text encoding of the payload. The zero value means
// UTF-8.
type EncodingSpec struct {
	Name string
}

// DefaultEncoding returns the UTF-8 encoding spec.
func DefaultEncoding() EncodingSpec {
	return EncodingSpec{Name: "utf-8"}
}

func (s EncodingSpec) name() string {
	if s.Name == "" {
		return "utf-8"
	}
	return s.Name
}

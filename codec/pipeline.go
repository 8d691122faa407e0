package codec

import (
	"fmt"
	"io"

	"github.com/grokify/tabstore/compress/gzip"
	"github.com/grokify/tabstore/compress/zstd"
	"github.com/grokify/tabstore/encode"
)

// Pipeline is an ordered chain of reversible byte-stream transforms.
// The zero value is a pass-through (no compression, UTF-8).
type Pipeline struct {
	Compression CompressionSpec
	Encoding    EncodingSpec
}

// New creates a pipeline from a compression and encoding spec.
func New(compression CompressionSpec, encoding EncodingSpec) Pipeline {
	return Pipeline{Compression: compression, Encoding: encoding}
}

// ForPath resolves Infer against the path's suffix and validates both specs.
// The returned pipeline carries a concrete compression method and is the one
// to hand to WrapWriter or WrapReader.
func (p Pipeline) ForPath(path string) (Pipeline, error) {
	resolved, err := p.Compression.resolve(path)
	if err != nil {
		return p, err
	}
	if _, err := encode.Lookup(p.Encoding.name()); err != nil {
		return p, err
	}
	p.Compression = resolved
	return p, nil
}

// WrapWriter layers the pipeline's transforms over a raw stream so that data
// written to the result is encoded, then compressed, then written raw.
// Closing the returned writer flushes each layer outermost-in and closes raw.
//
// On error the raw stream is left open; the caller still owns it.
func (p Pipeline) WrapWriter(raw io.WriteCloser) (io.WriteCloser, error) {
	w := raw

	switch p.Compression.Method {
	case "", None:
	case Gzip:
		gw, err := gzip.NewWriterLevel(w, gzipLevel(p.Compression.Level),
			gzip.WithModTime(p.Compression.ModTime))
		if err != nil {
			return nil, err
		}
		w = gw
	case Zstd:
		zw, err := zstd.NewWriterLevel(w, zstd.Level(p.Compression.Level))
		if err != nil {
			return nil, err
		}
		w = zw
	case Infer:
		return nil, fmt.Errorf("%w: infer not resolved, call ForPath first", ErrUnsupportedCompression)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCompression, p.Compression.Method)
	}

	return encode.NewWriter(w, p.Encoding.name())
}

// WrapReader layers the inverse transforms over a raw stream: bytes are read
// raw, decompressed, then decoded. Closing the returned reader closes raw.
func (p Pipeline) WrapReader(raw io.ReadCloser) (io.ReadCloser, error) {
	r := raw

	switch p.Compression.Method {
	case "", None:
	case Gzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		r = gr
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		r = zr
	case Infer:
		return nil, fmt.Errorf("%w: infer not resolved, call ForPath first", ErrUnsupportedCompression)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCompression, p.Compression.Method)
	}

	return encode.NewReader(r, p.Encoding.name())
}

func gzipLevel(level int) gzip.CompressionLevel {
	if level == 0 {
		return gzip.DefaultCompression
	}
	return gzip.CompressionLevel(level)
}

package codec

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/grokify/tabstore/encode"
)

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func roundTrip(t *testing.T, p Pipeline, path, payload string) {
	t.Helper()

	resolved, err := p.ForPath(path)
	if err != nil {
		t.Fatalf("ForPath failed: %v", err)
	}

	var buf bytes.Buffer
	w, err := resolved.WrapWriter(nopWriteCloser{&buf})
	if err != nil {
		t.Fatalf("WrapWriter failed: %v", err)
	}
	if _, err := io.WriteString(w, payload); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	r, err := resolved.WrapReader(io.NopCloser(&buf))
	if err != nil {
		t.Fatalf("WrapReader failed: %v", err)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("reader Close failed: %v", err)
	}

	if string(decoded) != payload {
		t.Errorf("round trip = %q, want %q", string(decoded), payload)
	}
}

func TestRoundTripMatrix(t *testing.T) {
	const payload = "col,значение\n1,раз\n2,два\n"

	methods := []CompressionMethod{None, Gzip, Zstd}
	encodings := []string{"utf-8", "cp1251"}

	for _, method := range methods {
		for _, name := range encodings {
			t.Run(string(method)+"/"+name, func(t *testing.T) {
				p := New(Compression(method), EncodingSpec{Name: name})
				roundTrip(t, p, "data.csv", payload)
			})
		}
	}
}

func TestZeroPipelinePassthrough(t *testing.T) {
	var p Pipeline

	var buf bytes.Buffer
	w, err := p.WrapWriter(nopWriteCloser{&buf})
	if err != nil {
		t.Fatalf("WrapWriter failed: %v", err)
	}
	if _, err := io.WriteString(w, "plain"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if buf.String() != "plain" {
		t.Errorf("raw bytes = %q, want %q", buf.String(), "plain")
	}
}

func TestInferMethod(t *testing.T) {
	tests := []struct {
		path string
		want CompressionMethod
	}{
		{"data.csv.gz", Gzip},
		{"data.csv.zst", Zstd},
		{"data.csv", None},
		{"archive.gz", Gzip},
		{"", None},
	}

	for _, tt := range tests {
		if got := InferMethod(tt.path); got != tt.want {
			t.Errorf("InferMethod(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestForPathResolvesInfer(t *testing.T) {
	p := New(Compression(Infer), DefaultEncoding())

	resolved, err := p.ForPath("data.csv.gz")
	if err != nil {
		t.Fatalf("ForPath failed: %v", err)
	}
	if resolved.Compression.Method != Gzip {
		t.Errorf("Method = %q, want %q", resolved.Compression.Method, Gzip)
	}
}

func TestForPathUnsupportedMethod(t *testing.T) {
	p := New(Compression("brotli"), DefaultEncoding())

	if _, err := p.ForPath("data.csv"); !errors.Is(err, ErrUnsupportedCompression) {
		t.Errorf("ForPath error = %v, want %v", err, ErrUnsupportedCompression)
	}
}

func TestForPathUnknownEncoding(t *testing.T) {
	p := New(Compression(None), EncodingSpec{Name: "no-such-encoding"})

	if _, err := p.ForPath("data.csv"); !errors.Is(err, encode.ErrUnknownEncoding) {
		t.Errorf("ForPath error = %v, want %v", err, encode.ErrUnknownEncoding)
	}
}

func TestWrapUnresolvedInfer(t *testing.T) {
	p := New(Compression(Infer), DefaultEncoding())

	var buf bytes.Buffer
	if _, err := p.WrapWriter(nopWriteCloser{&buf}); !errors.Is(err, ErrUnsupportedCompression) {
		t.Errorf("WrapWriter error = %v, want %v", err, ErrUnsupportedCompression)
	}
	if _, err := p.WrapReader(io.NopCloser(&buf)); !errors.Is(err, ErrUnsupportedCompression) {
		t.Errorf("WrapReader error = %v, want %v", err, ErrUnsupportedCompression)
	}
}

func TestGzipReproducibleOutput(t *testing.T) {
	spec := CompressionSpec{Method: Gzip, ModTime: time.Unix(1, 0)}
	p := New(spec, DefaultEncoding())

	compress := func() []byte {
		var buf bytes.Buffer
		w, err := p.WrapWriter(nopWriteCloser{&buf})
		if err != nil {
			t.Fatalf("WrapWriter failed: %v", err)
		}
		if _, err := io.WriteString(w, "same payload every run"); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		return buf.Bytes()
	}

	first := compress()
	second := compress()
	if !bytes.Equal(first, second) {
		t.Error("gzip output with fixed mod time differs between runs")
	}
}

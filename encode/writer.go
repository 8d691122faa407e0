package encode

import (
	"io"
	"sync"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewWriter wraps w so that UTF-8 text written to the result is transcoded to
// the named encoding before reaching w. For UTF-8 the original writer is
// returned unchanged.
//
// Closing the returned writer flushes the transcoder and then closes w.
func NewWriter(w io.WriteCloser, name string) (io.WriteCloser, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		return w, nil
	}

	sink := &errTrackingWriter{w: w}
	return &Writer{
		tw:     transform.NewWriter(sink, enc.NewEncoder()),
		sink:   sink,
		closer: w,
	}, nil
}

// Writer transcodes written text into a target character encoding. Transform
// failures (an unmappable rune, invalid UTF-8 input) surface wrapped in
// ErrEncoding; I/O failures of the wrapped writer pass through unchanged.
type Writer struct {
	tw     *transform.Writer
	sink   *errTrackingWriter
	closer io.Closer
	closed bool
	mu     sync.Mutex
}

// Write transcodes p and writes the result to the underlying writer.
func (w *Writer) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, io.ErrClosedPipe
	}

	n, err = w.tw.Write(p)
	return n, w.classify(err)
}

// Close flushes any partially transformed text and closes both the
// transcoder and the underlying writer. A second Close is a no-op.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true

	if err := w.tw.Close(); err != nil {
		_ = w.closer.Close()
		return w.classify(err)
	}

	return w.closer.Close()
}

// classify wraps transform-originated errors in ErrEncoding while letting
// errors raised by the underlying writer pass through untouched.
func (w *Writer) classify(err error) error {
	if err == nil {
		return nil
	}
	if w.sink.err != nil {
		return err
	}
	return wrapEncodingErr(err)
}

// errTrackingWriter records the last error the wrapped writer returned, so
// transform errors can be told apart from downstream I/O errors.
type errTrackingWriter struct {
	w   io.Writer
	err error
}

func (t *errTrackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	t.err = err
	return n, err
}

// Ensure Writer implements io.WriteCloser
var _ io.WriteCloser = (*Writer)(nil)

package encode

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewReader wraps r so that bytes read through the result are transcoded
// from the named encoding to UTF-8. For UTF-8 the original reader is
// returned unchanged.
func NewReader(r io.ReadCloser, name string) (io.ReadCloser, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == unicode.UTF8 {
		return r, nil
	}

	source := &errTrackingReader{r: r}
	return &Reader{
		tr:     transform.NewReader(source, enc.NewDecoder()),
		source: source,
		closer: r,
	}, nil
}

// Reader transcodes text from a source character encoding to UTF-8. Byte
// sequences invalid for the declared encoding surface wrapped in ErrEncoding;
// I/O failures of the wrapped reader pass through unchanged.
type Reader struct {
	tr     *transform.Reader
	source *errTrackingReader
	closer io.Closer
	closed bool
	mu     sync.Mutex
}

// Read reads transcoded text.
func (r *Reader) Read(p []byte) (n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, io.ErrClosedPipe
	}

	n, err = r.tr.Read(p)
	if err != nil && err != io.EOF && r.source.err == nil {
		err = wrapEncodingErr(err)
	}
	return n, err
}

// Close closes the underlying reader. A second Close is a no-op.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true
	return r.closer.Close()
}

// errTrackingReader records the last non-EOF error the wrapped reader
// returned, so transform errors can be told apart from upstream I/O errors.
type errTrackingReader struct {
	r   io.Reader
	err error
}

func (t *errTrackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}

func wrapEncodingErr(err error) error {
	if errors.Is(err, ErrEncoding) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrEncoding, err)
}

// Ensure Reader implements io.ReadCloser
var _ io.ReadCloser = (*Reader)(nil)

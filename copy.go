package tabstore

import (
	"context"
	"io"
)

// Copy streams the decoded payload of src into dst, potentially across
// different backends. Each side gets its own codec chain from the shared
// options, so copying "a.csv.gz" to "b.csv.zst" with inferred compression
// transcodes between formats.
func Copy(ctx context.Context, src, dst string, opts ...Option) (err error) {
	r, err := OpenReader(ctx, src, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	w, err := OpenWriter(ctx, dst, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(w, r)
	return err
}

// Package encode provides the text-encoding layer of the tabstore codec
// pipeline: transcoding between a declared character encoding and the UTF-8
// bytes the application works with.
//
// Encoding names are resolved through x/text's WHATWG index, so common
// aliases such as "cp1251" and "latin1" resolve to their canonical encodings.
// UTF-8 short-circuits to a pass-through.
package encode

import (
	"errors"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

var (
	// ErrUnknownEncoding is returned when an encoding name has no
	// registered encoding.
	ErrUnknownEncoding = errors.New("encode: unknown encoding")

	// ErrEncoding is returned when a byte sequence or rune is invalid for
	// the declared encoding.
	ErrEncoding = errors.New("encode: invalid data for encoding")
)

// Lookup resolves an encoding name (or alias) to its encoding.
// An empty name means UTF-8.
func Lookup(name string) (encoding.Encoding, error) {
	if name == "" {
		name = "utf-8"
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// IsPassthrough reports whether the named encoding needs no transcoding.
func IsPassthrough(name string) bool {
	enc, err := Lookup(name)
	return err == nil && enc == unicode.UTF8
}

package tabstore

import (
	"errors"
	"fmt"
)

// Common errors returned by tabstore backends and utilities.
var (
	// ErrNotFound is returned when reading a path that holds no data.
	ErrNotFound = errors.New("tabstore: not found")

	// ErrInvalidLocator is returned for malformed locator strings,
	// such as "gs://" with an empty path.
	ErrInvalidLocator = errors.New("tabstore: invalid locator")

	// ErrSchemeNotRegistered is returned when resolving a scheme that has
	// no registered backend factory.
	ErrSchemeNotRegistered = errors.New("tabstore: scheme not registered")

	// ErrPermissionDenied is returned when access to a path is denied.
	ErrPermissionDenied = errors.New("tabstore: permission denied")

	// ErrBackendClosed is returned when operating on a closed backend.
	ErrBackendClosed = errors.New("tabstore: backend closed")

	// ErrWriterClosed is returned when writing to a closed writer.
	ErrWriterClosed = errors.New("tabstore: writer closed")

	// ErrReaderClosed is returned when reading from a closed reader.
	ErrReaderClosed = errors.New("tabstore: reader closed")

	// ErrHandleClosed is returned when using a stream handle after Close.
	ErrHandleClosed = errors.New("tabstore: handle closed")

	// ErrInvalidPath is returned when a path is invalid for the backend
	// (e.g., escapes a configured root).
	ErrInvalidPath = errors.New("tabstore: invalid path")
)

// MissingBackendError is returned by Registry.Resolve when a scheme matches a
// well-known backend package that has not been linked into the program. The
// error names the package so the caller knows what to import.
//
// It wraps ErrSchemeNotRegistered, so errors.Is(err, ErrSchemeNotRegistered)
// still reports true.
type MissingBackendError struct {
	// Scheme is the locator scheme that failed to resolve.
	Scheme string
	// Package is the Go package that registers a backend for Scheme.
	Package string
}

func (e *MissingBackendError) Error() string {
	return fmt.Sprintf("tabstore: scheme %q requires the %s backend; add `import _ %q` to register it",
		e.Scheme, e.Scheme, e.Package)
}

func (e *MissingBackendError) Unwrap() error { return ErrSchemeNotRegistered }

// IsNotFound returns true if the error indicates a path was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsSchemeNotRegistered returns true if the error indicates an unknown scheme,
// including the missing-backend variant.
func IsSchemeNotRegistered(err error) bool {
	return errors.Is(err, ErrSchemeNotRegistered)
}

// IsInvalidLocator returns true if the error indicates a malformed locator.
func IsInvalidLocator(err error) bool {
	return errors.Is(err, ErrInvalidLocator)
}

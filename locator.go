package tabstore

import (
	"fmt"
	"strings"
)

// schemeSeparator delimits the scheme from the path in a locator.
const schemeSeparator = "://"

// Locator identifies a storage resource. A Locator with an empty Scheme is a
// plain local path and routes to the "file" backend.
type Locator struct {
	Scheme string
	Path   string
}

// IsLocal reports whether the locator has no scheme.
func (l Locator) IsLocal() bool { return l.Scheme == "" }

func (l Locator) String() string {
	if l.Scheme == "" {
		return l.Path
	}
	return l.Scheme + schemeSeparator + l.Path
}

// ParseLocator splits an identifier on the first "://" delimiter.
//
//	"gs://bucket/key"  -> {Scheme: "gs", Path: "bucket/key"}
//	"/var/data/t.csv"  -> {Scheme: "",   Path: "/var/data/t.csv"}
//
// Schemes are lowercased. An empty identifier, an empty scheme, or an empty
// path after a delimiter fails with ErrInvalidLocator.
func ParseLocator(identifier string) (Locator, error) {
	if identifier == "" {
		return Locator{}, fmt.Errorf("%w: empty identifier", ErrInvalidLocator)
	}

	i := strings.Index(identifier, schemeSeparator)
	if i < 0 {
		return Locator{Path: identifier}, nil
	}

	scheme := strings.ToLower(identifier[:i])
	path := identifier[i+len(schemeSeparator):]

	if scheme == "" {
		return Locator{}, fmt.Errorf("%w: missing scheme in %q", ErrInvalidLocator, identifier)
	}
	if path == "" {
		return Locator{}, fmt.Errorf("%w: missing path in %q", ErrInvalidLocator, identifier)
	}

	return Locator{Scheme: scheme, Path: path}, nil
}

// ResolveLocator parses an identifier, resolves its scheme to a backend
// factory, and instantiates the backend with the given configuration.
// A nil registry means the DefaultRegistry; a schemeless identifier resolves
// through the "file" registration.
//
// The returned backend is owned by the caller and must be closed.
func ResolveLocator(identifier string, registry *Registry, config map[string]string) (Backend, Locator, error) {
	loc, err := ParseLocator(identifier)
	if err != nil {
		return nil, Locator{}, err
	}

	if registry == nil {
		registry = DefaultRegistry
	}

	scheme := loc.Scheme
	if scheme == "" {
		scheme = "file"
	}

	factory, err := registry.Resolve(scheme)
	if err != nil {
		return nil, Locator{}, err
	}

	backend, err := factory(config)
	if err != nil {
		return nil, Locator{}, fmt.Errorf("tabstore: creating %s backend: %w", scheme, err)
	}

	return backend, loc, nil
}

package tabstore

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps URL schemes to backend factories. The zero value is not
// usable; create one with NewRegistry.
//
// A Registry is safe for concurrent use. Most programs use the package-level
// DefaultRegistry, which backend packages populate from init(); tests that
// need isolation construct their own and pass it via WithRegistry.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]BackendFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]BackendFactory)}
}

// Register stores the factory for a scheme. Registering a scheme that is
// already present replaces the prior factory, so tests can shadow a real
// backend with a double through the same call real backends use.
//
// Register panics if factory is nil.
func (r *Registry) Register(scheme string, factory BackendFactory) {
	if factory == nil {
		panic("tabstore: Register factory is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[scheme] = factory
}

// Resolve returns the factory registered for a scheme.
//
// An unregistered scheme fails with ErrSchemeNotRegistered. When the scheme
// belongs to a backend this module ships but the program never imported, the
// error is a *MissingBackendError naming the package to import.
func (r *Registry) Resolve(scheme string) (BackendFactory, error) {
	r.mu.RLock()
	factory, ok := r.factories[scheme]
	r.mu.RUnlock()

	if !ok {
		if pkg, known := wellKnownBackends[scheme]; known {
			return nil, &MissingBackendError{Scheme: scheme, Package: pkg}
		}
		return nil, fmt.Errorf("%w: %s", ErrSchemeNotRegistered, scheme)
	}
	return factory, nil
}

// Clear removes every registration. It exists so successive independent test
// runs do not observe each other's state; production code has no reason to
// call it.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories = make(map[string]BackendFactory)
}

// Schemes returns a sorted list of registered schemes.
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemes := make([]string, 0, len(r.factories))
	for scheme := range r.factories {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}

// IsRegistered returns true if a factory is registered for the scheme.
func (r *Registry) IsRegistered(scheme string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[scheme]
	return ok
}

// wellKnownBackends maps schemes to the packages that register them, for the
// missing-dependency error surface.
var wellKnownBackends = map[string]string{
	"file":   "github.com/grokify/tabstore/backend/file",
	"gs":     "github.com/grokify/tabstore/backend/gcs",
	"s3":     "github.com/grokify/tabstore/backend/s3",
	"sftp":   "github.com/grokify/tabstore/backend/sftp",
	"memory": "github.com/grokify/tabstore/backend/memory",
	"mock":   "github.com/grokify/tabstore/backend/mock",
}

// DefaultRegistry is the process-wide registry that backend packages
// register into from init().
var DefaultRegistry = NewRegistry()

// Register registers a backend factory in the DefaultRegistry.
// It is typically called from init() in backend packages:
//
//	func init() {
//	    tabstore.Register("s3", NewFromConfig)
//	}
func Register(scheme string, factory BackendFactory) {
	DefaultRegistry.Register(scheme, factory)
}

// Resolve resolves a scheme against the DefaultRegistry.
func Resolve(scheme string) (BackendFactory, error) {
	return DefaultRegistry.Resolve(scheme)
}

// Clear empties the DefaultRegistry. Test use only.
func Clear() {
	DefaultRegistry.Clear()
}

// Schemes returns the schemes registered in the DefaultRegistry.
func Schemes() []string {
	return DefaultRegistry.Schemes()
}

// Package file provides the local-disk backend. It registers itself under
// the "file" scheme and also serves schemeless locators.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/grokify/tabstore"
)

func init() {
	tabstore.Register("file", NewFromConfig)
}

// Config holds configuration for the file backend.
type Config struct {
	// Root confines all operations to a directory; paths are then
	// relative to it and may not escape it. Empty means paths are used
	// as given (absolute or relative to the working directory).
	Root string

	// CreateDirs controls whether parent directories are created on
	// write. Default: true.
	CreateDirs bool

	// DirPermissions is the permission mode for created directories.
	// Default: 0755.
	DirPermissions os.FileMode

	// FilePermissions is the permission mode for created files.
	// Default: 0644.
	FilePermissions os.FileMode
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		CreateDirs:      true,
		DirPermissions:  0755,
		FilePermissions: 0644,
	}
}

// Backend implements tabstore.Backend for the local filesystem.
type Backend struct {
	config Config
	closed bool
	mu     sync.RWMutex
}

// New creates a file backend with the given configuration.
func New(config Config) *Backend {
	if config.DirPermissions == 0 {
		config.DirPermissions = 0755
	}
	if config.FilePermissions == 0 {
		config.FilePermissions = 0644
	}
	return &Backend{config: config}
}

// NewFromConfig creates a file backend from a config map.
// Supported keys:
//   - root: confine operations to this directory (default: unconfined)
//   - create_dirs: "true" or "false" (default: "true")
func NewFromConfig(configMap map[string]string) (tabstore.Backend, error) {
	config := DefaultConfig()

	if root, ok := configMap["root"]; ok {
		config.Root = root
	}
	if createDirs, ok := configMap["create_dirs"]; ok {
		config.CreateDirs = createDirs != "false"
	}

	return New(config), nil
}

// NewWriter creates a writer for the given path, truncating existing content.
func (b *Backend) NewWriter(ctx context.Context, path string) (io.WriteCloser, error) {
	if err := b.checkClosed(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := b.fullPath(path)
	if err != nil {
		return nil, err
	}

	if b.config.CreateDirs {
		dir := filepath.Dir(fullPath)
		if err := os.MkdirAll(dir, b.config.DirPermissions); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, b.config.FilePermissions)
	if err != nil {
		if os.IsPermission(err) {
			return nil, tabstore.ErrPermissionDenied
		}
		return nil, fmt.Errorf("creating file %s: %w", path, err)
	}

	return f, nil
}

// NewReader creates a reader for the given path.
func (b *Backend) NewReader(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := b.checkClosed(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := b.fullPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, tabstore.ErrNotFound
		}
		if os.IsPermission(err) {
			return nil, tabstore.ErrPermissionDenied
		}
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}

	return f, nil
}

// Exists checks if a path exists.
func (b *Backend) Exists(ctx context.Context, path string) (bool, error) {
	if err := b.checkClosed(); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fullPath, err := b.fullPath(path)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete removes a path. Deleting a missing path is not an error.
func (b *Backend) Delete(ctx context.Context, path string) error {
	if err := b.checkClosed(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := b.fullPath(path)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting file %s: %w", path, err)
	}
	return nil
}

// Close marks the backend closed.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *Backend) checkClosed() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return tabstore.ErrBackendClosed
	}
	return nil
}

// fullPath resolves a path against the configured root. Rooted cleaning
// strips any ".." traversal, so a confined backend cannot escape Root.
func (b *Backend) fullPath(path string) (string, error) {
	if path == "" {
		return "", tabstore.ErrInvalidPath
	}
	if b.config.Root == "" {
		return filepath.FromSlash(path), nil
	}

	cleaned := filepath.Clean("/" + filepath.FromSlash(path))
	return filepath.Join(b.config.Root, cleaned), nil
}

// Ensure Backend implements tabstore.Backend
var _ tabstore.Backend = (*Backend)(nil)

// Package sftp provides an SFTP backend, registered under the "sftp" scheme.
//
// Basic usage with password authentication:
//
//	backend, err := sftp.New(sftp.Config{
//	    Host:     "example.com",
//	    User:     "username",
//	    Password: "password",
//	})
//
// With SSH key authentication:
//
//	backend, err := sftp.New(sftp.Config{
//	    Host:    "example.com",
//	    User:    "username",
//	    KeyFile: "/path/to/id_rsa",
//	})
package sftp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"path"
	"sync"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/grokify/tabstore"
)

func init() {
	tabstore.Register("sftp", NewFromConfig)
}

// Backend implements tabstore.Backend for SFTP.
type Backend struct {
	sshClient  *ssh.Client
	sftpClient *sftp.Client
	config     Config
	closed     bool
	mu         sync.RWMutex
}

// New creates an SFTP backend with the given configuration.
func New(cfg Config) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30
	}

	var authMethods []ssh.AuthMethod

	if cfg.Password != "" {
		authMethods = append(authMethods, ssh.Password(cfg.Password))
	}

	if cfg.KeyFile != "" {
		keyAuth, err := keyFileAuth(cfg.KeyFile, cfg.KeyPassphrase)
		if err != nil {
			return nil, fmt.Errorf("sftp: loading key file: %w", err)
		}
		authMethods = append(authMethods, keyAuth)
	}

	if len(authMethods) == 0 {
		return nil, fmt.Errorf("sftp: no authentication method provided (password or key_file required)")
	}

	// NOTE: Host key verification is disabled by default. For production use,
	// configure KnownHostsFile in Config to enable host key verification.
	sshConfig := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            authMethods,
		Timeout:         time.Duration(cfg.Timeout) * time.Second,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // G106: Intentional for dev/test; KnownHostsFile support planned
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	sshClient, err := ssh.Dial("tcp", addr, sshConfig)
	if err != nil {
		return nil, fmt.Errorf("sftp: SSH connection failed: %w", err)
	}

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		if closeErr := sshClient.Close(); closeErr != nil {
			return nil, fmt.Errorf("sftp: SFTP session failed: %w (also failed to close SSH: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("sftp: SFTP session failed: %w", err)
	}

	return &Backend{
		sshClient:  sshClient,
		sftpClient: sftpClient,
		config:     cfg,
	}, nil
}

// NewFromConfig creates an SFTP backend from a config map; used by the
// tabstore registry.
func NewFromConfig(configMap map[string]string) (tabstore.Backend, error) {
	return New(ConfigFromMap(configMap))
}

// keyFileAuth creates an SSH auth method from a private key file.
func keyFileAuth(keyFile, passphrase string) (ssh.AuthMethod, error) {
	keyData, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}

	var signer ssh.Signer
	if passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(keyData, []byte(passphrase))
	} else {
		signer, err = ssh.ParsePrivateKey(keyData)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	return ssh.PublicKeys(signer), nil
}

// NewWriter creates a writer for the given path, creating parent directories
// as needed.
func (b *Backend) NewWriter(ctx context.Context, p string) (io.WriteCloser, error) {
	if err := b.checkClosed(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath := b.fullPath(p)

	dir := path.Dir(fullPath)
	if err := b.sftpClient.MkdirAll(dir); err != nil {
		return nil, fmt.Errorf("sftp: creating directory: %w", err)
	}

	f, err := b.sftpClient.Create(fullPath)
	if err != nil {
		return nil, b.translateError(err, p)
	}

	return f, nil
}

// NewReader creates a reader for the given path.
func (b *Backend) NewReader(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := b.checkClosed(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := b.sftpClient.Open(b.fullPath(p))
	if err != nil {
		return nil, b.translateError(err, p)
	}

	return f, nil
}

// Exists checks if a path exists.
func (b *Backend) Exists(ctx context.Context, p string) (bool, error) {
	if err := b.checkClosed(); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := b.sftpClient.Stat(b.fullPath(p))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, b.translateError(err, p)
	}
	return true, nil
}

// Delete removes a path. Deleting a missing file is not an error.
func (b *Backend) Delete(ctx context.Context, p string) error {
	if err := b.checkClosed(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := b.sftpClient.Remove(b.fullPath(p))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return b.translateError(err, p)
	}
	return nil
}

// Close shuts down the SFTP session and the SSH connection.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	if b.sftpClient != nil {
		if err := b.sftpClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if b.sshClient != nil {
		if err := b.sshClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("sftp: close errors: %v", errs)
	}
	return nil
}

// fullPath returns the full remote path.
func (b *Backend) fullPath(p string) string {
	if b.config.Root == "" {
		return p
	}
	return path.Join(b.config.Root, p)
}

func (b *Backend) checkClosed() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return tabstore.ErrBackendClosed
	}
	return nil
}

// translateError converts SFTP errors to tabstore errors. The path parameter
// provides context for error messages.
func (b *Backend) translateError(err error, p string) error {
	if err == nil {
		return nil
	}

	if os.IsNotExist(err) {
		return tabstore.ErrNotFound
	}
	if os.IsPermission(err) {
		return tabstore.ErrPermissionDenied
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		if os.IsNotExist(pathErr.Err) {
			return tabstore.ErrNotFound
		}
		if os.IsPermission(pathErr.Err) {
			return tabstore.ErrPermissionDenied
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("sftp: network error for %q: %w", p, err)
	}

	return fmt.Errorf("sftp: error for %q: %w", p, err)
}

// Ensure Backend implements tabstore.Backend
var _ tabstore.Backend = (*Backend)(nil)

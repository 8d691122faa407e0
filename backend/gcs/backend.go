// Package gcs provides a Google Cloud Storage backend, registered under the
// "gs" scheme.
//
// Locator paths take the gs://bucket/object form unless a bucket is
// configured, in which case the whole path is the object name:
//
//	gs://exports/2024/q1.csv.gz  ->  bucket "exports", object "2024/q1.csv.gz"
//
// Credentials follow Application Default Credentials unless a credentials
// file is configured. For emulators set the endpoint and
// without_authentication.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/grokify/tabstore"
)

func init() {
	tabstore.Register("gs", NewFromConfig)
}

// ErrBucketRequired is returned when neither the config nor the path names
// a bucket.
var ErrBucketRequired = errors.New("gcs: bucket is required")

// Config holds configuration for the GCS backend.
type Config struct {
	// Bucket is the GCS bucket name. When empty, the first segment of each
	// locator path names the bucket (gs://bucket/object form).
	Bucket string

	// Prefix is an optional prefix joined onto all object names when Bucket
	// is set.
	Prefix string

	// CredentialsFile is the path to a service account JSON key file.
	// If empty, Application Default Credentials are used.
	CredentialsFile string

	// Endpoint overrides the storage API endpoint, for emulators.
	Endpoint string

	// WithoutAuthentication disables credentials entirely, for emulators
	// and public buckets.
	WithoutAuthentication bool
}

// ConfigFromMap creates a Config from a string map.
// Supported keys:
//   - bucket: bucket name
//   - prefix: object name prefix
//   - credentials_file: path to a service account key file
//   - endpoint: custom API endpoint
//   - without_authentication: "true" to skip credentials
func ConfigFromMap(m map[string]string) Config {
	var config Config

	if v, ok := m["bucket"]; ok {
		config.Bucket = v
	}
	if v, ok := m["prefix"]; ok {
		config.Prefix = v
	}
	if v, ok := m["credentials_file"]; ok {
		config.CredentialsFile = v
	}
	if v, ok := m["endpoint"]; ok {
		config.Endpoint = v
	}
	if v, ok := m["without_authentication"]; ok && (v == "true" || v == "1") {
		config.WithoutAuthentication = true
	}

	return config
}

// Backend implements tabstore.Backend for Google Cloud Storage.
type Backend struct {
	client *storage.Client
	config Config
	closed bool
	mu     sync.RWMutex
}

// New creates a GCS backend with the given configuration.
func New(cfg Config) (*Backend, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	if cfg.WithoutAuthentication {
		opts = append(opts, option.WithoutAuthentication())
	}

	client, err := storage.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: creating client: %w", err)
	}

	return &Backend{
		client: client,
		config: cfg,
	}, nil
}

// NewFromConfig creates a GCS backend from a config map; used by the
// tabstore registry.
func NewFromConfig(configMap map[string]string) (tabstore.Backend, error) {
	return New(ConfigFromMap(configMap))
}

// NewWriter creates a writer for the given path. The object is committed when
// the writer is closed.
func (b *Backend) NewWriter(ctx context.Context, p string) (io.WriteCloser, error) {
	if err := b.checkClosed(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bucket, object, err := b.bucketObject(p)
	if err != nil {
		return nil, err
	}

	return b.client.Bucket(bucket).Object(object).NewWriter(ctx), nil
}

// NewReader creates a reader for the given path.
func (b *Backend) NewReader(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := b.checkClosed(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bucket, object, err := b.bucketObject(p)
	if err != nil {
		return nil, err
	}

	r, err := b.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	return r, nil
}

// Exists checks if a path exists.
func (b *Backend) Exists(ctx context.Context, p string) (bool, error) {
	if err := b.checkClosed(); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	bucket, object, err := b.bucketObject(p)
	if err != nil {
		return false, err
	}

	_, err = b.client.Bucket(bucket).Object(object).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, translateError(err)
	}
	return true, nil
}

// Delete removes a path. Deleting a missing object is not an error.
func (b *Backend) Delete(ctx context.Context, p string) error {
	if err := b.checkClosed(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	bucket, object, err := b.bucketObject(p)
	if err != nil {
		return err
	}

	err = b.client.Bucket(bucket).Object(object).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return translateError(err)
	}
	return nil
}

// Close shuts down the storage client.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return b.client.Close()
}

func (b *Backend) checkClosed() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return tabstore.ErrBackendClosed
	}
	return nil
}

// bucketObject resolves the bucket and object name for a locator path. A
// configured bucket takes the whole path as the object name; otherwise the
// first path segment is the bucket.
func (b *Backend) bucketObject(p string) (bucket, object string, err error) {
	p = strings.TrimPrefix(p, "/")
	if b.config.Bucket != "" {
		if b.config.Prefix != "" {
			p = strings.TrimSuffix(b.config.Prefix, "/") + "/" + p
		}
		return b.config.Bucket, p, nil
	}

	bucket, object, found := strings.Cut(p, "/")
	if !found || bucket == "" || object == "" {
		return "", "", fmt.Errorf("%w: path %q has no bucket/object", ErrBucketRequired, p)
	}
	return bucket, object, nil
}

// translateError converts storage errors to tabstore errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return tabstore.ErrNotFound
	}
	return fmt.Errorf("gcs: %w", err)
}

// Ensure Backend implements tabstore.Backend
var _ tabstore.Backend = (*Backend)(nil)

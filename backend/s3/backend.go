// Package s3 provides an S3-compatible backend, registered under the "s3"
// scheme. It works with AWS S3 and S3-compatible stores (MinIO, R2, Wasabi).
//
// With a configured bucket, locator paths are object keys:
//
//	s3://reports/2024/q1.csv.gz  ->  key "reports/2024/q1.csv.gz"
//
// Without one, the first path segment names the bucket, matching the common
// s3://bucket/key locator convention.
//
// Retry, timeout, and auth policy belong to the AWS SDK; this backend only
// translates between the SDK and the tabstore Backend surface.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/grokify/tabstore"
)

func init() {
	tabstore.Register("s3", NewFromConfig)
}

// ErrBucketRequired is returned when neither the config nor the path names
// a bucket.
var ErrBucketRequired = errors.New("s3: bucket is required")

// Backend implements tabstore.Backend for S3-compatible storage.
type Backend struct {
	client   *s3.Client
	uploader *manager.Uploader
	config   Config
	closed   bool
	mu       sync.RWMutex
}

// New creates an S3 backend with the given configuration.
func New(cfg Config) (*Backend, error) {
	if cfg.PartSize == 0 {
		cfg.PartSize = 5 * 1024 * 1024
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 5
	}

	var optFns []func(*config.LoadOptions) error
	if cfg.Region != "" {
		optFns = append(optFns, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			cfg.SessionToken,
		)
		optFns = append(optFns, config.WithCredentialsProvider(creds))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), optFns...)
	if err != nil {
		return nil, fmt.Errorf("s3: loading AWS config: %w", err)
	}

	var s3OptFns []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3OptFns = append(s3OptFns, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3OptFns = append(s3OptFns, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3OptFns...)
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = cfg.PartSize
		u.Concurrency = cfg.Concurrency
	})

	return &Backend{
		client:   client,
		uploader: uploader,
		config:   cfg,
	}, nil
}

// NewFromConfig creates an S3 backend from a config map; used by the
// tabstore registry.
func NewFromConfig(configMap map[string]string) (tabstore.Backend, error) {
	return New(ConfigFromMap(configMap))
}

// NewWriter creates a writer for the given path. The object is uploaded when
// the writer is closed.
func (b *Backend) NewWriter(ctx context.Context, p string) (io.WriteCloser, error) {
	if err := b.checkClosed(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bucket, key, err := b.bucketKey(p)
	if err != nil {
		return nil, err
	}

	return &s3Writer{
		backend: b,
		ctx:     ctx,
		bucket:  bucket,
		key:     key,
	}, nil
}

// NewReader creates a reader for the given path.
func (b *Backend) NewReader(ctx context.Context, p string) (io.ReadCloser, error) {
	if err := b.checkClosed(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bucket, key, err := b.bucketKey(p)
	if err != nil {
		return nil, err
	}

	result, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, translateError(err)
	}

	return result.Body, nil
}

// Exists checks if a path exists.
func (b *Backend) Exists(ctx context.Context, p string) (bool, error) {
	if err := b.checkClosed(); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	bucket, key, err := b.bucketKey(p)
	if err != nil {
		return false, err
	}

	_, err = b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
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

	bucket, key, err := b.bucketKey(p)
	if err != nil {
		return err
	}

	_, err = b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return translateError(err)
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

// bucketKey resolves the bucket and object key for a locator path. A
// configured bucket takes the whole path as the key; otherwise the first
// path segment is the bucket.
func (b *Backend) bucketKey(p string) (bucket, key string, err error) {
	p = strings.TrimPrefix(p, "/")
	if b.config.Bucket != "" {
		if b.config.Prefix != "" {
			p = strings.TrimSuffix(b.config.Prefix, "/") + "/" + p
		}
		return b.config.Bucket, p, nil
	}

	bucket, key, found := strings.Cut(p, "/")
	if !found || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: path %q has no bucket/key", ErrBucketRequired, p)
	}
	return bucket, key, nil
}

// isNotFound reports whether an SDK error means the object is absent.
func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr interface{ ErrorCode() string }
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

// translateError converts SDK errors to tabstore errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return tabstore.ErrNotFound
	}

	var apiErr interface{ ErrorCode() string }
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return tabstore.ErrPermissionDenied
		}
	}
	return fmt.Errorf("s3: %w", err)
}

// s3Writer buffers writes and uploads the object on Close.
type s3Writer struct {
	backend *Backend
	ctx     context.Context
	bucket  string
	key     string
	buffer  bytes.Buffer
	closed  bool
	mu      sync.Mutex
}

func (w *s3Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, tabstore.ErrWriterClosed
	}
	return w.buffer.Write(p)
}

func (w *s3Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	_, err := w.backend.uploader.Upload(w.ctx, &s3.PutObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(w.key),
		Body:   bytes.NewReader(w.buffer.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("s3: uploading object: %w", err)
	}
	return nil
}

// Ensure Backend implements tabstore.Backend
var _ tabstore.Backend = (*Backend)(nil)

package gcs

import (
	"errors"
	"testing"

	"cloud.google.com/go/storage"

	"github.com/grokify/tabstore"
)

func TestBucketObjectConfiguredBucket(t *testing.T) {
	b := &Backend{config: Config{Bucket: "exports"}}

	bucket, object, err := b.bucketObject("2024/q1.csv")
	if err != nil {
		t.Fatalf("bucketObject failed: %v", err)
	}
	if bucket != "exports" {
		t.Errorf("bucket = %q, want %q", bucket, "exports")
	}
	if object != "2024/q1.csv" {
		t.Errorf("object = %q, want %q", object, "2024/q1.csv")
	}
}

func TestBucketObjectWithPrefix(t *testing.T) {
	b := &Backend{config: Config{Bucket: "exports", Prefix: "team/"}}

	_, object, err := b.bucketObject("file.csv")
	if err != nil {
		t.Fatalf("bucketObject failed: %v", err)
	}
	if object != "team/file.csv" {
		t.Errorf("object = %q, want %q", object, "team/file.csv")
	}
}

func TestBucketObjectFromPath(t *testing.T) {
	b := &Backend{}

	bucket, object, err := b.bucketObject("mybucket/dir/file.csv")
	if err != nil {
		t.Fatalf("bucketObject failed: %v", err)
	}
	if bucket != "mybucket" {
		t.Errorf("bucket = %q, want %q", bucket, "mybucket")
	}
	if object != "dir/file.csv" {
		t.Errorf("object = %q, want %q", object, "dir/file.csv")
	}
}

func TestBucketObjectMissingBucket(t *testing.T) {
	b := &Backend{}

	for _, p := range []string{"", "onlybucket", "bucket/"} {
		if _, _, err := b.bucketObject(p); !errors.Is(err, ErrBucketRequired) {
			t.Errorf("bucketObject(%q) error = %v, want %v", p, err, ErrBucketRequired)
		}
	}
}

func TestTranslateError(t *testing.T) {
	if err := translateError(storage.ErrObjectNotExist); !errors.Is(err, tabstore.ErrNotFound) {
		t.Errorf("translateError(ErrObjectNotExist) = %v, want %v", err, tabstore.ErrNotFound)
	}
	if err := translateError(storage.ErrBucketNotExist); !errors.Is(err, tabstore.ErrNotFound) {
		t.Errorf("translateError(ErrBucketNotExist) = %v, want %v", err, tabstore.ErrNotFound)
	}
	if err := translateError(nil); err != nil {
		t.Errorf("translateError(nil) = %v, want nil", err)
	}
}

func TestConfigFromMap(t *testing.T) {
	cfg := ConfigFromMap(map[string]string{
		"bucket":                 "exports",
		"prefix":                 "team",
		"credentials_file":       "/tmp/key.json",
		"endpoint":               "http://localhost:4443",
		"without_authentication": "true",
	})

	if cfg.Bucket != "exports" {
		t.Errorf("Bucket = %q, want %q", cfg.Bucket, "exports")
	}
	if cfg.Prefix != "team" {
		t.Errorf("Prefix = %q, want %q", cfg.Prefix, "team")
	}
	if cfg.CredentialsFile != "/tmp/key.json" {
		t.Errorf("CredentialsFile = %q, want %q", cfg.CredentialsFile, "/tmp/key.json")
	}
	if cfg.Endpoint != "http://localhost:4443" {
		t.Errorf("Endpoint = %q, want %q", cfg.Endpoint, "http://localhost:4443")
	}
	if !cfg.WithoutAuthentication {
		t.Error("WithoutAuthentication = false, want true")
	}
}

package storage

import (
	"context"
	"io"
	"time"
)

// Storage is the object store used for photo uploads and raster exports.
type Storage interface {
	// Put uploads size bytes from r. The content type is detected from magic
	// bytes unless WithContentType is given.
	Put(ctx context.Context, r io.Reader, size int64, opts ...Option) (*FileInfo, error)

	// Get opens a stored object. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	Delete(ctx context.Context, key string) error

	// URL returns a presigned URL, or the public URL with WithPublic.
	URL(ctx context.Context, key string, opts ...URLOption) (string, error)
}

// Config holds S3-compatible storage configuration.
type Config struct {
	Bucket    string
	AccessKey string
	SecretKey string

	// Endpoint is set for MinIO or other S3-compatible services.
	Endpoint string
	Region   string

	// PublicURL is the CDN prefix used for public objects.
	PublicURL string

	DefaultACL ACL
	PathStyle  bool
}

// FileInfo describes a stored object.
type FileInfo struct {
	Key         string
	ContentType string
	ACL         ACL
	Size        int64
}

// ACL is the canned access level of an object.
type ACL string

const (
	ACLPrivate    ACL = "private"
	ACLPublicRead ACL = "public-read"
)

const (
	DefaultRegion    = "us-east-1"
	DefaultURLExpiry = 15 * time.Minute
)

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.DefaultACL == "" {
		c.DefaultACL = ACLPrivate
	}
}

// Configured reports whether the required credentials are present.
func (c Config) Configured() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

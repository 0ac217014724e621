package storage

import "time"

// Option configures Put.
type Option func(*PutOptions)

// PutOptions is the resolved form of a set of Options.
type PutOptions struct {
	Key         string
	Prefix      string
	ContentType string
	ACL         ACL
	Rules       []ValidationRule
}

// ResolveOptions applies opts to an empty PutOptions. Storage
// implementations use it to read what the caller asked for.
func ResolveOptions(opts ...Option) PutOptions {
	var o PutOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithKey sets the object key instead of a generated one.
func WithKey(key string) Option {
	return func(o *PutOptions) { o.Key = key }
}

// WithPrefix places a generated key under prefix: "{prefix}/{ulid}.{ext}".
func WithPrefix(prefix string) Option {
	return func(o *PutOptions) { o.Prefix = prefix }
}

// WithContentType skips magic-byte detection.
func WithContentType(ct string) Option {
	return func(o *PutOptions) { o.ContentType = ct }
}

func WithACL(acl ACL) Option {
	return func(o *PutOptions) { o.ACL = acl }
}

// WithValidation rejects the upload with a *FileValidationError when any
// rule fails.
func WithValidation(rules ...ValidationRule) Option {
	return func(o *PutOptions) { o.Rules = append(o.Rules, rules...) }
}

// URLOption configures URL.
type URLOption func(*urlOptions)

type urlOptions struct {
	downloadName string
	expiry       time.Duration
	public       bool
}

// WithExpiry sets the presigned URL lifetime (default 15 minutes).
func WithExpiry(d time.Duration) URLOption {
	return func(o *urlOptions) {
		if d > 0 {
			o.expiry = d
		}
	}
}

// WithDownload presigns with Content-Disposition: attachment.
func WithDownload(filename string) URLOption {
	return func(o *urlOptions) {
		o.downloadName = filename
		o.public = false
	}
}

// WithPublic returns the unsigned public URL. The object must be
// public-read or the bucket publicly readable.
func WithPublic() URLOption {
	return func(o *urlOptions) { o.public = true }
}

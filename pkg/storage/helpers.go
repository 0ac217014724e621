package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
)

// PutFile uploads a multipart file. Validation rules run against the sniffed
// type before the file is opened for upload.
func PutFile(ctx context.Context, s Storage, fh *multipart.FileHeader, opts ...Option) (*FileInfo, error) {
	if s == nil {
		return nil, ErrNotConfigured
	}
	if fh == nil || fh.Size == 0 {
		return nil, ErrEmptyFile
	}

	o := ResolveOptions(opts...)
	if len(o.Rules) > 0 {
		mimeType := o.ContentType
		if mimeType == "" {
			mimeType = DetectMIME(fh)
			opts = append(opts, WithContentType(mimeType))
		}
		if err := Validate(fh.Size, mimeType, o.Rules...); err != nil {
			return nil, err
		}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("storage: open upload: %w", err)
	}
	defer f.Close()

	return s.Put(ctx, f, fh.Size, opts...)
}

// PutBytes uploads an in-memory payload.
func PutBytes(ctx context.Context, s Storage, data []byte, opts ...Option) (*FileInfo, error) {
	if s == nil {
		return nil, ErrNotConfigured
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	return s.Put(ctx, bytes.NewReader(data), int64(len(data)), opts...)
}

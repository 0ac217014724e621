package rasterexport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dmitrymomot/mailsig/pkg/storage"
)

// HTTPSink streams the file as an attachment download.
type HTTPSink struct {
	W http.ResponseWriter
}

// Save writes nothing once ctx is done: by then the request may have been
// answered and its ResponseWriter released.
func (s HTTPSink) Save(ctx context.Context, f *File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h := s.W.Header()
	h.Set("Content-Type", f.ContentType)
	h.Set("Content-Length", strconv.Itoa(len(f.Data)))
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	h.Set("Cache-Control", "no-store")
	s.W.WriteHeader(http.StatusOK)
	_, err := s.W.Write(f.Data)
	return err
}

// FileSink writes into Dir. The file appears under its final name only once
// fully written.
type FileSink struct {
	Dir string
}

func (s FileSink) Save(_ context.Context, f *File) (err error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, ".mailsig-export-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(f.Data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	dst := filepath.Join(dir, filepath.Base(f.Name))
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return err
	}
	f.Location = dst
	return nil
}

// StorageSink uploads into object storage as a public-read object and sets
// Location to its public URL.
type StorageSink struct {
	Storage storage.Storage
	Prefix  string
}

func (s StorageSink) Save(ctx context.Context, f *File) error {
	if s.Storage == nil {
		return storage.ErrNotConfigured
	}

	key := f.Name
	if s.Prefix != "" {
		key = s.Prefix + "/" + f.Name
	}

	info, err := storage.PutBytes(ctx, s.Storage, f.Data,
		storage.WithKey(key),
		storage.WithContentType(f.ContentType),
		storage.WithACL(storage.ACLPublicRead),
	)
	if err != nil {
		return err
	}

	u, err := s.Storage.URL(ctx, info.Key, storage.WithPublic())
	if err != nil {
		return errors.Join(storage.ErrUploadFailed, err)
	}
	f.Location = u
	return nil
}

package rasterexport_test

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailsig/pkg/rasterexport"
	"github.com/dmitrymomot/mailsig/pkg/storage"
)

func sampleFile() *rasterexport.File {
	return &rasterexport.File{Name: "email-signature-jane.png", ContentType: "image/png", Data: []byte("png-bytes")}
}

func TestHTTPSink(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	require.NoError(t, rasterexport.HTTPSink{W: rec}.Save(context.Background(), sampleFile()))

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "9", rec.Header().Get("Content-Length"))
	assert.Equal(t, `attachment; filename="email-signature-jane.png"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "png-bytes", rec.Body.String())
}

func TestHTTPSink_ExpiredContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()

	rec := httptest.NewRecorder()
	err := rasterexport.HTTPSink{W: rec}.Save(ctx, sampleFile())
	require.ErrorIs(t, err, context.DeadlineExceeded)

	assert.False(t, rec.Flushed)
	assert.Empty(t, rec.Header())
	assert.Zero(t, rec.Body.Len())
}

func TestFileSink(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := sampleFile()
	require.NoError(t, rasterexport.FileSink{Dir: dir}.Save(context.Background(), f))

	assert.Equal(t, filepath.Join(dir, "email-signature-jane.png"), f.Location)
	data, err := os.ReadFile(f.Location)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file is renamed away")
}

func TestFileSink_MissingDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "missing")
	err := rasterexport.FileSink{Dir: dir}.Save(context.Background(), sampleFile())
	assert.Error(t, err)
}

type memStorage struct {
	puts map[string][]byte
	acl  storage.ACL
	ct   string
}

func (m *memStorage) Put(_ context.Context, r io.Reader, size int64, opts ...storage.Option) (*storage.FileInfo, error) {
	o := storage.ResolveOptions(opts...)
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	if m.puts == nil {
		m.puts = map[string][]byte{}
	}
	m.puts[o.Key] = buf.Bytes()
	m.acl = o.ACL
	m.ct = o.ContentType
	return &storage.FileInfo{Key: o.Key, Size: size, ContentType: o.ContentType, ACL: o.ACL}, nil
}

func (m *memStorage) Get(context.Context, string) (io.ReadCloser, error) {
	return nil, storage.ErrNotFound
}

func (m *memStorage) Delete(context.Context, string) error { return nil }

func (m *memStorage) URL(_ context.Context, key string, _ ...storage.URLOption) (string, error) {
	return "https://cdn.example.com/" + key, nil
}

func TestStorageSink(t *testing.T) {
	t.Parallel()

	st := &memStorage{}
	f := sampleFile()
	require.NoError(t, rasterexport.StorageSink{Storage: st, Prefix: "email-signatures"}.Save(context.Background(), f))

	assert.Equal(t, "https://cdn.example.com/email-signatures/email-signature-jane.png", f.Location)
	assert.Equal(t, []byte("png-bytes"), st.puts["email-signatures/email-signature-jane.png"])
	assert.Equal(t, storage.ACLPublicRead, st.acl)
	assert.Equal(t, "image/png", st.ct)

	err := rasterexport.StorageSink{}.Save(context.Background(), sampleFile())
	assert.ErrorIs(t, err, storage.ErrNotConfigured)
}

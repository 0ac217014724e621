package imageproxy

import (
	"bytes"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/mailsig/pkg/cache"
)

// DefaultMemoryCacheSize bounds the in-process image cache.
const DefaultMemoryCacheSize = 64 << 20

// NewMemoryCache returns an LRU image cache bounded by total payload bytes.
func NewMemoryCache(maxBytes int64, ttl time.Duration) *cache.Memory[Image] {
	if maxBytes <= 0 {
		maxBytes = DefaultMemoryCacheSize
	}
	return cache.NewMemory(
		cache.WithMaxSize(maxBytes, func(img Image) int64 { return int64(len(img.Data)) }),
		cache.WithDefaultTTL[Image](ttl),
	)
}

// NewRedisCache stores images in Redis with the binary Marshaler.
func NewRedisCache(client goredis.UniversalClient, ttl time.Duration) *cache.Redis[Image] {
	return cache.NewRedis[Image](client, Marshaler{}, "mailsig:img", ttl)
}

// Marshaler encodes an Image as "<content type>\n<bytes>".
type Marshaler struct{}

func (Marshaler) Marshal(img Image) ([]byte, error) {
	out := make([]byte, 0, len(img.ContentType)+1+len(img.Data))
	out = append(out, img.ContentType...)
	out = append(out, '\n')
	return append(out, img.Data...), nil
}

func (Marshaler) Unmarshal(data []byte) (Image, error) {
	ct, payload, ok := bytes.Cut(data, []byte{'\n'})
	if !ok {
		return Image{}, cache.ErrUnmarshal
	}
	return Image{ContentType: string(ct), Data: bytes.Clone(payload)}, nil
}

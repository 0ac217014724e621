// Package cache provides a small generic cache with in-memory and Redis
// backends, used to memoize upstream image fetches.
//
// Memory is an LRU bounded by entry count and, optionally, by the summed size
// of its values; expiry is checked lazily on read. Redis stores values through
// a Marshaler under a key prefix, so several processes share one cache.
//
// GetOrSet collapses concurrent misses for a key into one load:
//
//	img, err := cache.GetOrSet(ctx, c, "img:"+url, func(ctx context.Context) (Image, time.Duration, error) {
//		img, err := download(ctx, url)
//		return img, time.Hour, err
//	})
//
// Failed loads are returned to every waiter and never stored.
package cache

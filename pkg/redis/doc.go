// Package redis opens the optional Redis connection that backs the shared
// image cache.
//
// When REDIS_URL is set, resolved and composited images are cached in Redis
// so several server replicas share one cache. Without it the process falls
// back to an in-memory cache and this package is never touched.
//
//	client, err := redis.Open(ctx, cfg.RedisURL,
//	    redis.WithLogger(log),
//	    redis.WithRetry(3, 2*time.Second),
//	)
//	if err != nil {
//	    return err
//	}
//
//	app.Run(addr, internal.ShutdownHook(redis.Shutdown(client)))
//
// [Healthcheck] plugs into the readiness endpoint. Errors wrap the sentinel
// values in errors.go with [errors.Join].
package redis

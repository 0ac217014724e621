// Package health serves liveness and readiness probes.
//
// [LivenessHandler] always answers OK while the process runs.
// [ReadinessHandler] runs a set of named [Checks] in parallel under one
// shared timeout. mailsig registers the Redis connection behind the relay
// cache and the headless browser used for raster exports:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "redis":   redis.Healthcheck(client),
//	    "browser": b.Healthcheck,
//	}, health.WithLogger(log)))
//
// Responses are plain text ("OK" / "Service Unavailable") unless the client
// asks for JSON with Accept: application/json or ?format=json:
//
//	{
//	  "status": "unhealthy",
//	  "checks": {
//	    "redis":   {"status": "healthy"},
//	    "browser": {"status": "unhealthy", "error": "health: check timeout"}
//	  }
//	}
//
// A check that does not return before the deadline is reported as
// [ErrCheckTimeout]. [Run] exposes the same aggregation to the CLI.
package health

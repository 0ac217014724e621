// Package imageproxy turns cross-origin image references into self-contained
// data URIs.
//
// A Source fetches image bytes. Fetcher goes straight to the upstream host and
// is what the relay endpoint and the CLI use; RelayClient goes through the
// same-origin relay so a browser-side page never fetches a foreign origin.
// Resolver sits on top of either and rewrites references:
//
//	r := imageproxy.NewResolver(imageproxy.NewFetcher(), logger)
//	srcs = r.ResolveAll(ctx, srcs) // failed items keep their original value
//
// Handler exposes a Fetcher as the relay endpoint (GET ?url=).
package imageproxy

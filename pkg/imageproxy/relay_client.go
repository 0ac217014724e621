package imageproxy

import (
	"context"
	"net/url"
)

// RelayClient fetches images through a relay endpoint (see Handler).
type RelayClient struct {
	fetcher  *Fetcher
	endpoint string
}

// NewRelayClient targets endpoint, e.g. "http://localhost:8080/api/image-proxy".
func NewRelayClient(endpoint string, opts ...FetcherOption) *RelayClient {
	return &RelayClient{endpoint: endpoint, fetcher: NewFetcher(opts...)}
}

func (c *RelayClient) Fetch(ctx context.Context, rawURL string) (Image, error) {
	if !IsAbsolute(rawURL) {
		return Image{}, ErrInvalidURL
	}
	return c.fetcher.Fetch(ctx, c.endpoint+"?url="+url.QueryEscape(rawURL))
}

// Endpoint is the relay URL this client calls.
func (c *RelayClient) Endpoint() string { return c.endpoint }

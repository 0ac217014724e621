package redis

import (
	"context"
	"io"
)

// Shutdown returns a hook that closes the client, for internal.ShutdownHook.
func Shutdown(client io.Closer) func(ctx context.Context) error {
	return func(context.Context) error {
		return client.Close()
	}
}

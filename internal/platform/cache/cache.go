// Package cache is the short-TTL key-value store holding the raw trending
// batches for the serving layer. Values are JSON-encoded; entries simply go
// absent after their TTL or a process restart.
package cache

import (
	"context"
	"time"
)

// Cache is injected into the pipeline and the serving handlers.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Get loads key into dest and reports whether the key was present.
	Get(ctx context.Context, key string, dest any) (bool, error)
}

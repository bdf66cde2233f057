// Package upstreamcache fronts the provider gateways with a short-lived
// response cache so repeated lookups do not spend provider quota.
package upstreamcache

import (
	"context"
	"time"
)

// Store is a TTL key/value byte store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

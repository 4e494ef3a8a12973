// Package cache stores raw upstream response bodies keyed by a digest of the
// normalized request parameters.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Store is a TTL-bounded byte store. Get reports a miss with ok=false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key derives a stable cache key from an operation kind and its normalized parameters.
// params must marshal deterministically (structs or maps; encoding/json sorts map keys).
func Key(prefix, kind string, params any) (string, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("cache key for %s: %w", kind, err)
	}
	sum := sha256.Sum256(data)
	return prefix + ":" + kind + ":" + hex.EncodeToString(sum[:]), nil
}

// Package cache stores rendered engine output keyed by descriptor content.
//
// Rendering the same descriptor with the same engine and format always
// produces the same bytes, so repeated renders (for example in watch mode, or
// when several commands view the same file) can be served from a cache instead
// of spawning the layout engine again.
//
// # Backends
//
//   - [FileCache]: one file per entry under a directory, for CLI use
//   - [RedisCache]: shared cache for several processes or machines
//   - [NullCache]: disables caching
//
// # Keys
//
// Keys are produced by a [Keyer]. [DefaultKeyer] hashes the engine name,
// output format and descriptor text; [ScopedKeyer] adds a namespace prefix.
//
// Only successful renders are cached. Failures are never stored, so a fixed
// descriptor is rendered fresh on the next call.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is the expiration applied when callers do not choose one.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with expiration.
type Cache interface {
	// Get returns the cached value and whether it was found.
	// A miss is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// NullCache stores nothing; every Get misses. It backs --no-cache and the
// "none" cache backend.
type NullCache struct{}

// NewNullCache returns a NullCache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)       { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}

// Package cache stores service responses and rendered artifacts.
//
// Three backends share the [Cache] interface:
//
//   - [FileCache]: JSON entries on disk, used by the CLI
//   - [RedisCache]: a shared Redis instance, used when several web servers
//     front the same family-tree service
//   - [NullCache]: stores nothing; the default, so every read hits the service
//
// Keys are built by a [Keyer] so that the HTTP client and the web layer agree
// on naming. [ScopedKeyer] prefixes every key, which keeps entries for
// different service base URLs apart.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss with ok=false and a nil error. A ttl of zero means the
// entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer names cache entries.
type Keyer interface {
	// HTTPKey names a cached GET response.
	HTTPKey(namespace, key string) string
	// ArtifactKey names a rendered chart (SVG, DOT, PNG) for a graph hash.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change artifact bytes.
type ArtifactKeyOpts struct {
	Format    string `json:"format"`
	Direction string `json:"direction,omitempty"`
}

// DefaultKeyer is the unscoped [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// ArtifactKey hashes the graph hash together with the options.
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}

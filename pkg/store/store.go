// Package store provides the persistent key-value store used to share
// analysis state across process restarts. Values are opaque serialized
// payloads written with a time-to-live.
package store

import (
	"context"
	"time"
)

// Store defines the get/set-with-expiry contract the analyzer depends on
type Store interface {
	// Get returns the value for key. The second return is false when the
	// key does not exist or has expired.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes the value under key with the given TTL. A zero TTL means
	// no expiry.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Close releases the underlying connection
	Close()
}

// StatusKey returns the key holding the analysis status for a username
func StatusKey(username string) string {
	return "tagging-status:" + username
}

// CommentsKey returns the key holding the tagged comments for a username
func CommentsKey(username string) string {
	return "tagged-comments:" + username
}

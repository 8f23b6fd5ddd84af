// Package cache is the local persistent cache: durable key/value storage used
// by the synchronizers as a fast, possibly-stale read path. The remote store
// is always authoritative.
package cache

import (
	"context"
)

// Cache stores opaque serialized snapshots. Get returns (nil, nil) on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

const keyPrefix = "snapshot:"

// UserKey is the cached session snapshot for a session token hash.
func UserKey(tokenHash string) string {
	return keyPrefix + "user:" + tokenHash
}

// WishlistsKey is the cached wishlist collection for a user.
func WishlistsKey(email string) string {
	return keyPrefix + "wishlists:" + email
}

// FriendsKey is the cached friend list for a user.
func FriendsKey(email string) string {
	return keyPrefix + "friends:" + email
}

// RequestsKey is the cached pending friend requests for a user.
func RequestsKey(email string) string {
	return keyPrefix + "requests:" + email
}

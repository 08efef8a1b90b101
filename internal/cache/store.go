// Handles caching of backend responses.
package cache

import "time"

// Clock supplies the current time. Stores take one so expiry tests can
// control time instead of sleeping.
type Clock func() time.Time

// Store persists cache entries keyed by fingerprint and enforces TTL expiry.
type Store interface {
	// Get retrieves a live entry, or (nil, false) when the key is absent,
	// expired, or unreadable.
	Get(key string) (*Entry, bool)
	// Put persists an entry, overwriting any prior one for the key, and
	// stamps its StoredAt with the current time.
	Put(key string, entry *Entry) error
	// Clear removes every persisted entry and returns how many were removed.
	Clear() (int, error)
}

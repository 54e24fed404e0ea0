// Package media holds the cache entry that rides on a Video or Clip and
// records where its staged copy lives and for how long.
package media

import "time"

// CacheEntry points at a staged copy of a media object in temp storage.
// It is not an aggregate of its own; the owning entity persists it.
type CacheEntry struct {
	StorageURI string    `json:"storageUri"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// ValidAt reports whether the entry may still be trusted at the given time.
// Callers must additionally re-check that the object exists, since a staged
// copy can be removed externally while the entry remains recorded.
func (e CacheEntry) ValidAt(now time.Time) bool {
	return e.StorageURI != "" && now.Before(e.ExpiresAt)
}

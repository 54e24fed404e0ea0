// Package cache implements cache-aside staging of media between the origin
// store and temp storage, with a long-lived storage TTL and short-lived
// signed URLs issued on every read.
package cache

import (
	"context"
	"fmt"
	"time"

	"clipworks/internal/domain/media"
	"clipworks/internal/ports"
)

const (
	DefaultStorageTTL = 72 * time.Hour
	DefaultURLTTL     = 30 * time.Minute
)

// StagedMedia is the result of a cache read. SignedURL is always fresh and
// never persisted; Entry is recorded on the owning entity by the caller.
type StagedMedia struct {
	Entry     media.CacheEntry
	SignedURL string
	Refreshed bool
}

type Media struct {
	origin     ports.OriginStorage
	temp       ports.TempStorage
	storageTTL time.Duration
	urlTTL     time.Duration
	now        func() time.Time
	logf       func(format string, args ...any)
}

func New(origin ports.OriginStorage, temp ports.TempStorage, storageTTL, urlTTL time.Duration, logf func(string, ...any)) *Media {
	if storageTTL <= 0 {
		storageTTL = DefaultStorageTTL
	}
	if urlTTL <= 0 {
		urlTTL = DefaultURLTTL
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Media{
		origin:     origin,
		temp:       temp,
		storageTTL: storageTTL,
		urlTTL:     urlTTL,
		now:        time.Now,
		logf:       logf,
	}
}

// WithClock overrides the time source; tests use it to force expiry.
func (m *Media) WithClock(now func() time.Time) *Media {
	m.now = now
	return m
}

// Stage returns a usable signed URL for the media identified by key,
// repopulating temp storage from the origin when the recorded entry is
// expired, empty, or points at an object that no longer exists. A miss is a
// normal branch, not an error.
func (m *Media) Stage(ctx context.Context, key, originFileID string, entry media.CacheEntry, mimeType string) (StagedMedia, error) {
	now := m.now()

	if entry.ValidAt(now) {
		exists, err := m.temp.Exists(ctx, entry.StorageURI)
		if err != nil {
			return StagedMedia{}, fmt.Errorf("check staged media %s: %w", entry.StorageURI, err)
		}
		if exists {
			url, err := m.temp.SignedURL(entry.StorageURI, m.urlTTL)
			if err != nil {
				return StagedMedia{}, fmt.Errorf("sign url for %s: %w", entry.StorageURI, err)
			}
			return StagedMedia{Entry: entry, SignedURL: url}, nil
		}
		m.logf("cache: entry %s recorded but object gone, re-staging", entry.StorageURI)
	}

	rc, err := m.origin.DownloadAsStream(ctx, originFileID)
	if err != nil {
		return StagedMedia{}, fmt.Errorf("download origin %s: %w", originFileID, err)
	}
	defer rc.Close()

	uri, err := m.temp.UploadFromStream(ctx, key, rc, mimeType)
	if err != nil {
		return StagedMedia{}, fmt.Errorf("stage media %s: %w", key, err)
	}

	fresh := media.CacheEntry{StorageURI: uri, ExpiresAt: now.Add(m.storageTTL)}
	url, err := m.temp.SignedURL(uri, m.urlTTL)
	if err != nil {
		return StagedMedia{}, fmt.Errorf("sign url for %s: %w", uri, err)
	}
	m.logf("cache: staged %s -> %s (expires %s)", originFileID, uri, fresh.ExpiresAt.Format(time.RFC3339))
	return StagedMedia{Entry: fresh, SignedURL: url, Refreshed: true}, nil
}

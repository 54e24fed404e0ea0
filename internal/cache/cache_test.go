package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"clipworks/internal/domain/media"
	"clipworks/internal/ports"
)

type fakeOrigin struct {
	downloads int
	err       error
}

func (f *fakeOrigin) GetMetadata(context.Context, string) (ports.FileMetadata, error) {
	return ports.FileMetadata{}, nil
}

func (f *fakeOrigin) DownloadAsStream(_ context.Context, fileID string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.downloads++
	return io.NopCloser(bytes.NewReader([]byte("payload-" + fileID))), nil
}

func (f *fakeOrigin) UploadFile(context.Context, string, io.Reader, string) (ports.FileRef, error) {
	return ports.FileRef{}, nil
}

type fakeTemp struct {
	objects map[string][]byte
	uploads int
	signed  int
}

func newFakeTemp() *fakeTemp { return &fakeTemp{objects: map[string][]byte{}} }

func (f *fakeTemp) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	uri := "blob://" + key
	f.objects[uri] = data
	return uri, nil
}

func (f *fakeTemp) UploadFromStream(ctx context.Context, key string, r io.Reader, mimeType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.uploads++
	return f.Upload(ctx, key, data, mimeType)
}

func (f *fakeTemp) Download(_ context.Context, uri string) ([]byte, error) {
	data, ok := f.objects[uri]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (f *fakeTemp) DownloadAsStream(ctx context.Context, uri string) (io.ReadCloser, error) {
	data, err := f.Download(ctx, uri)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeTemp) Exists(_ context.Context, uri string) (bool, error) {
	_, ok := f.objects[uri]
	return ok, nil
}

func (f *fakeTemp) SignedURL(uri string, _ time.Duration) (string, error) {
	f.signed++
	return fmt.Sprintf("https://signed.test/%s?n=%d", uri, f.signed), nil
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestStage_MissPopulatesAndSetsExpiry(t *testing.T) {
	origin := &fakeOrigin{}
	temp := newFakeTemp()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := New(origin, temp, 72*time.Hour, 30*time.Minute, nil).WithClock(fixedClock(now))

	staged, err := m.Stage(context.Background(), "vid-1", "file-1", media.CacheEntry{}, "video/mp4")
	if err != nil {
		t.Fatal(err)
	}
	if !staged.Refreshed {
		t.Fatal("empty entry must be treated as a miss")
	}
	if staged.Entry.StorageURI != "blob://vid-1" {
		t.Fatalf("unexpected uri %q", staged.Entry.StorageURI)
	}
	if want := now.Add(72 * time.Hour); !staged.Entry.ExpiresAt.Equal(want) {
		t.Fatalf("expiry %s, want %s", staged.Entry.ExpiresAt, want)
	}
	if staged.SignedURL == "" {
		t.Fatal("signed url must be issued")
	}
	if origin.downloads != 1 || temp.uploads != 1 {
		t.Fatalf("expected one download and one upload, got %d/%d", origin.downloads, temp.uploads)
	}
}

func TestStage_HitIssuesFreshURLWithoutDownload(t *testing.T) {
	origin := &fakeOrigin{}
	temp := newFakeTemp()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := New(origin, temp, 72*time.Hour, 30*time.Minute, nil).WithClock(fixedClock(now))

	first, err := m.Stage(context.Background(), "vid-1", "file-1", media.CacheEntry{}, "video/mp4")
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.Stage(context.Background(), "vid-1", "file-1", first.Entry, "video/mp4")
	if err != nil {
		t.Fatal(err)
	}
	if second.Refreshed {
		t.Fatal("valid entry with live object must be a hit")
	}
	if origin.downloads != 1 {
		t.Fatalf("hit must not re-download, got %d downloads", origin.downloads)
	}
	if second.SignedURL == first.SignedURL {
		t.Fatal("each read must issue a fresh signed url")
	}
	if !second.Entry.ExpiresAt.Equal(first.Entry.ExpiresAt) {
		t.Fatal("hit must not extend the storage expiry")
	}
}

func TestStage_ExpiredEntryRestages(t *testing.T) {
	origin := &fakeOrigin{}
	temp := newFakeTemp()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := New(origin, temp, 72*time.Hour, 30*time.Minute, nil).WithClock(fixedClock(now))

	expired := media.CacheEntry{StorageURI: "blob://vid-1", ExpiresAt: now.Add(-time.Minute)}
	temp.objects["blob://vid-1"] = []byte("stale")

	staged, err := m.Stage(context.Background(), "vid-1", "file-1", expired, "video/mp4")
	if err != nil {
		t.Fatal(err)
	}
	if !staged.Refreshed {
		t.Fatal("expired entry must re-stage")
	}
	if !staged.Entry.ExpiresAt.After(expired.ExpiresAt) {
		t.Fatal("fresh entry must expire strictly later")
	}
	if origin.downloads != 1 {
		t.Fatalf("expected re-download, got %d", origin.downloads)
	}
}

func TestStage_GoneObjectRestages(t *testing.T) {
	origin := &fakeOrigin{}
	temp := newFakeTemp()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := New(origin, temp, 72*time.Hour, 30*time.Minute, nil).WithClock(fixedClock(now))

	// Entry still valid on paper, but the object was evicted.
	entry := media.CacheEntry{StorageURI: "blob://vid-1", ExpiresAt: now.Add(time.Hour)}

	staged, err := m.Stage(context.Background(), "vid-1", "file-1", entry, "video/mp4")
	if err != nil {
		t.Fatal(err)
	}
	if !staged.Refreshed {
		t.Fatal("gone object must be treated as a miss")
	}
	if got := temp.objects["blob://vid-1"]; string(got) != "payload-file-1" {
		t.Fatalf("object not restored: %q", got)
	}
}

func TestStage_OriginFailure(t *testing.T) {
	origin := &fakeOrigin{err: errors.New("origin down")}
	m := New(origin, newFakeTemp(), 0, 0, nil)

	_, err := m.Stage(context.Background(), "vid-1", "file-1", media.CacheEntry{}, "video/mp4")
	if err == nil {
		t.Fatal("expected error when origin download fails")
	}
}

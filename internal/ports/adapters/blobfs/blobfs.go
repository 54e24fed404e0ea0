// Package blobfs implements temp storage on the local filesystem with
// HMAC-signed, expiring access URLs. URIs use the blob:// scheme and resolve
// to paths under the store root.
package blobfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const uriScheme = "blob://"

type Store struct {
	root    string
	secret  []byte
	baseURL string
	now     func() time.Time
}

func New(root, baseURL string, secret []byte) (*Store, error) {
	if len(secret) == 0 {
		return nil, errors.New("blobfs: signing secret is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Store{
		root:    root,
		secret:  secret,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}, nil
}

// WithClock overrides the time source used for token issuance; tests use it.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Upload(ctx context.Context, key string, data []byte, mimeType string) (string, error) {
	return s.UploadFromStream(ctx, key, bytes.NewReader(data), mimeType)
}

// UploadFromStream copies the reader straight to disk; the object is never
// held in memory as a whole.
func (s *Store) UploadFromStream(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create blob dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp blob: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write blob %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("finalize blob %s: %w", key, err)
	}
	return uriScheme + key, nil
}

func (s *Store) Download(ctx context.Context, uri string) ([]byte, error) {
	rc, err := s.DownloadAsStream(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *Store) DownloadAsStream(_ context.Context, uri string) (io.ReadCloser, error) {
	path, err := s.resolveURI(uri)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open blob %s: %w", uri, err)
	}
	return f, nil
}

func (s *Store) Exists(_ context.Context, uri string) (bool, error) {
	path, err := s.resolveURI(uri)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// SignedURL issues a browser-usable link whose token expires independently
// of the staged object itself. Tokens are never persisted.
func (s *Store) SignedURL(uri string, expiresIn time.Duration) (string, error) {
	if _, err := s.resolveURI(uri); err != nil {
		return "", err
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uri,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign url token: %w", err)
	}
	key := strings.TrimPrefix(uri, uriScheme)
	return s.baseURL + "/media/" + key + "?token=" + url.QueryEscape(signed), nil
}

// VerifyToken checks a signed URL token and returns the blob URI it grants.
func (s *Store) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("verify url token: %w", err)
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errors.New("url token has no subject")
	}
	return claims.Subject, nil
}

// ServeHTTP streams a blob for a valid signed URL. Mounted by the server at
// GET /media/{key...}.
func (s *Store) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uri, err := s.VerifyToken(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusForbidden)
		return
	}
	rc, err := s.DownloadAsStream(r.Context(), uri)
	if err != nil {
		http.Error(w, "media not found", http.StatusNotFound)
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = io.Copy(w, rc)
}

func (s *Store) resolveURI(uri string) (string, error) {
	if !strings.HasPrefix(uri, uriScheme) {
		return "", fmt.Errorf("uri %q does not use %s", uri, uriScheme)
	}
	return s.resolve(strings.TrimPrefix(uri, uriScheme))
}

func (s *Store) resolve(key string) (string, error) {
	if key == "" {
		return "", errors.New("empty blob key")
	}
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("blob key %q escapes store root", key)
	}
	return filepath.Join(s.root, cleaned), nil
}

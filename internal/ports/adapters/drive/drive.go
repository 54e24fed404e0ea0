// Package drive implements the origin storage gateway against a Drive-like
// HTTP file API. Downloads are streamed; nothing here buffers whole files.
package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clipworks/internal/jsonx"
	"clipworks/internal/ports"
)

type Adapter struct {
	baseURL string
	token   string
	client  *http.Client
}

func New(baseURL, token string) *Adapter {
	return &Adapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		// No overall timeout: download streams can legitimately run long.
		client: &http.Client{Timeout: 0},
	}
}

func (a *Adapter) GetMetadata(ctx context.Context, fileID string) (ports.FileMetadata, error) {
	req, err := a.newRequest(ctx, http.MethodGet, "/files/"+url.PathEscape(fileID)+"/metadata", nil)
	if err != nil {
		return ports.FileMetadata{}, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	resp, err := a.client.Do(req.WithContext(reqCtx))
	if err != nil {
		return ports.FileMetadata{}, fmt.Errorf("origin metadata: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return ports.FileMetadata{}, err
	}

	var out struct {
		Name     string `json:"name"`
		Size     int64  `json:"size"`
		MimeType string `json:"mime_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ports.FileMetadata{}, fmt.Errorf("decode metadata: %w", err)
	}
	return ports.FileMetadata{Name: out.Name, Size: out.Size, MimeType: out.MimeType}, nil
}

// DownloadAsStream returns the response body directly; the caller closes it.
func (a *Adapter) DownloadAsStream(ctx context.Context, fileID string) (io.ReadCloser, error) {
	req, err := a.newRequest(ctx, http.MethodGet, "/files/"+url.PathEscape(fileID)+"/content", nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("origin download: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func (a *Adapter) UploadFile(ctx context.Context, name string, content io.Reader, mimeType string) (ports.FileRef, error) {
	req, err := a.newRequest(ctx, http.MethodPost, "/files?name="+url.QueryEscape(name), content)
	if err != nil {
		return ports.FileRef{}, err
	}
	if mimeType != "" {
		req.Header.Set("Content-Type", mimeType)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return ports.FileRef{}, fmt.Errorf("origin upload: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return ports.FileRef{}, err
	}

	var out struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ports.FileRef{}, fmt.Errorf("decode upload response: %w", err)
	}
	return ports.FileRef{ID: out.ID, Name: out.Name}, nil
}

func (a *Adapter) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	return req, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	rb, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("origin status %d and read body failed: %v", resp.StatusCode, err)
	}
	return fmt.Errorf("origin status %d: %s", resp.StatusCode, jsonx.Truncate(string(rb), 400))
}

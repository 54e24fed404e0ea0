// Package speech implements the transcription gateway against a long-audio
// speech-to-text HTTP service. The vendor SDK stays behind this thin client.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clipworks/internal/domain/transcript"
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
		// Long audio can take a while; the service blocks until done.
		client: &http.Client{Timeout: 30 * time.Minute},
	}
}

type transcribeResponse struct {
	FullText        string  `json:"full_text"`
	LanguageCode    string  `json:"language_code"`
	DurationSeconds float64 `json:"duration_seconds"`
	Segments        []struct {
		Text             string  `json:"text"`
		StartTimeSeconds float64 `json:"start_time_seconds"`
		EndTimeSeconds   float64 `json:"end_time_seconds"`
		Confidence       float64 `json:"confidence"`
	} `json:"segments"`
}

func (a *Adapter) TranscribeLongAudio(ctx context.Context, req ports.TranscribeRequest) (*transcript.Transcription, error) {
	body, err := json.Marshal(map[string]any{"audio_uri": req.AudioURI})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/transcriptions:long", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.token)
	httpReq.Header.Set("Content-Type", "application/json")

	if req.OnProgress != nil {
		req.OnProgress(0)
	}
	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("speech status %d and read body failed: %v", resp.StatusCode, readErr)
		}
		return nil, fmt.Errorf("speech status %d: %s", resp.StatusCode, jsonx.Truncate(string(rb), 400))
	}

	var out transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode speech response: %w", err)
	}
	if req.OnProgress != nil {
		req.OnProgress(100)
	}

	segs := make([]transcript.Segment, 0, len(out.Segments))
	for _, s := range out.Segments {
		segs = append(segs, transcript.Segment{
			Text:             strings.TrimSpace(s.Text),
			StartTimeSeconds: s.StartTimeSeconds,
			EndTimeSeconds:   s.EndTimeSeconds,
			Confidence:       s.Confidence,
		})
	}
	return transcript.NewTranscription("", out.FullText, segs, out.LanguageCode, out.DurationSeconds), nil
}

package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"clipworks/internal/domain/clip"
	"clipworks/internal/domain/media"
	"clipworks/internal/domain/video"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func errorBody(msg string) map[string]any {
	return map[string]any{"error": msg}
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func cacheBody(e media.CacheEntry) any {
	if e.StorageURI == "" {
		return nil
	}
	return map[string]any{
		"storageUri": e.StorageURI,
		"expiresAt":  e.ExpiresAt.Format(time.RFC3339),
	}
}

func videoBody(v *video.Video) map[string]any {
	return map[string]any{
		"id":              v.ID,
		"originUrl":       v.OriginURL,
		"originFileId":    v.OriginFileID,
		"title":           v.Title,
		"durationSeconds": v.DurationSeconds,
		"sizeBytes":       v.SizeBytes,
		"status":          v.Status,
		"errorMessage":    v.ErrorMessage,
		"cache":           cacheBody(v.Cache),
		"createdAt":       v.CreatedAt,
		"updatedAt":       v.UpdatedAt,
	}
}

func jobBody(j *video.ProcessingJob) map[string]any {
	return map[string]any{
		"id":           j.ID,
		"videoId":      j.VideoID,
		"instructions": j.Instructions,
		"singleClip":   j.SingleClip,
		"status":       j.Status,
		"errorMessage": j.ErrorMessage,
		"startedAt":    j.StartedAt,
		"completedAt":  j.CompletedAt,
		"createdAt":    j.CreatedAt,
	}
}

func clipBody(c *clip.Clip) map[string]any {
	return map[string]any{
		"id":               c.ID,
		"videoId":          c.VideoID,
		"title":            c.Title,
		"startTimeSeconds": c.StartTimeSeconds,
		"endTimeSeconds":   c.EndTimeSeconds,
		"durationSeconds":  c.DurationSeconds,
		"status":           c.Status,
		"transcript":       c.Transcript,
		"reason":           c.Reason,
		"cache":            cacheBody(c.Cache),
		"createdAt":        c.CreatedAt,
	}
}

func subtitleBody(s *clip.Subtitle) map[string]any {
	return map[string]any{
		"id":        s.ID,
		"clipId":    s.ClipID,
		"segments":  s.Segments,
		"status":    s.Status,
		"updatedAt": s.UpdatedAt,
	}
}

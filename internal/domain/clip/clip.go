// Package clip models extracted clip spans and their subtitles.
package clip

import (
	"time"

	"github.com/google/uuid"

	"clipworks/internal/domain/media"
	"clipworks/internal/domain/policy"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Clip is a validated time span of a source video selected for extraction.
type Clip struct {
	ID               string
	VideoID          string
	Title            string
	StartTimeSeconds float64
	EndTimeSeconds   float64
	DurationSeconds  float64
	Status           Status
	Transcript       string
	Reason           string
	OriginFileID     string
	Cache            media.CacheEntry
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type CreateParams struct {
	VideoID          string
	Title            string
	StartTimeSeconds float64
	EndTimeSeconds   float64
	Transcript       string
	Reason           string
	Mode             policy.Mode
}

// Create validates the span against clip policy and returns a pending clip.
// Strict mode additionally enforces the duration window; flexible mode never
// rejects on duration.
func Create(p CreateParams) (*Clip, *policy.Violation) {
	if v := policy.ValidateTimeRange(p.StartTimeSeconds, p.EndTimeSeconds); v != nil {
		return nil, v
	}
	duration := p.EndTimeSeconds - p.StartTimeSeconds
	if v := policy.ValidateDuration(duration, p.Mode); v != nil {
		return nil, v
	}
	now := time.Now().UTC()
	return &Clip{
		ID:               uuid.NewString(),
		VideoID:          p.VideoID,
		Title:            p.Title,
		StartTimeSeconds: p.StartTimeSeconds,
		EndTimeSeconds:   p.EndTimeSeconds,
		DurationSeconds:  duration,
		Status:           StatusPending,
		Transcript:       p.Transcript,
		Reason:           p.Reason,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Props is the flat persistence form of a clip. ToProps followed by
// FromProps reproduces identical field values.
type Props struct {
	ID               string           `json:"id"`
	VideoID          string           `json:"videoId"`
	Title            string           `json:"title"`
	StartTimeSeconds float64          `json:"startTimeSeconds"`
	EndTimeSeconds   float64          `json:"endTimeSeconds"`
	DurationSeconds  float64          `json:"durationSeconds"`
	Status           Status           `json:"status"`
	Transcript       string           `json:"transcript,omitempty"`
	Reason           string           `json:"reason,omitempty"`
	OriginFileID     string           `json:"originFileId,omitempty"`
	Cache            media.CacheEntry `json:"cache"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

func (c *Clip) ToProps() Props {
	return Props{
		ID:               c.ID,
		VideoID:          c.VideoID,
		Title:            c.Title,
		StartTimeSeconds: c.StartTimeSeconds,
		EndTimeSeconds:   c.EndTimeSeconds,
		DurationSeconds:  c.DurationSeconds,
		Status:           c.Status,
		Transcript:       c.Transcript,
		Reason:           c.Reason,
		OriginFileID:     c.OriginFileID,
		Cache:            c.Cache,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func FromProps(p Props) *Clip {
	return &Clip{
		ID:               p.ID,
		VideoID:          p.VideoID,
		Title:            p.Title,
		StartTimeSeconds: p.StartTimeSeconds,
		EndTimeSeconds:   p.EndTimeSeconds,
		DurationSeconds:  p.DurationSeconds,
		Status:           p.Status,
		Transcript:       p.Transcript,
		Reason:           p.Reason,
		OriginFileID:     p.OriginFileID,
		Cache:            p.Cache,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

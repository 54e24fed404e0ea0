// Package video models the Video aggregate and its processing jobs.
package video

import (
	"time"

	"github.com/google/uuid"

	"clipworks/internal/domain/media"
)

type Status string

const (
	StatusPending      Status = "pending"
	StatusTranscribing Status = "transcribing"
	StatusTranscribed  Status = "transcribed"
	StatusExtracting   Status = "extracting"
	StatusProcessing   Status = "processing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// Video is a remotely hosted source video moving through the pipeline.
// Only the orchestrator mutates it; the pipeline never deletes one.
type Video struct {
	ID              string
	OriginURL       string
	OriginFileID    string
	Title           string
	DurationSeconds float64
	SizeBytes       int64
	Status          Status
	ErrorMessage    string
	Cache           media.CacheEntry
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func New(originURL, originFileID string) *Video {
	now := time.Now().UTC()
	return &Video{
		ID:           uuid.NewString(),
		OriginURL:    originURL,
		OriginFileID: originFileID,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// SetStatus moves the video to the given stage. Status is persisted before
// each pipeline stage starts, so a later failure leaves the video at the
// last stage that began.
func (v *Video) SetStatus(s Status) {
	v.Status = s
	v.UpdatedAt = time.Now().UTC()
}

// Fail records the terminal failure state with the causing error's message.
func (v *Video) Fail(message string) {
	v.Status = StatusFailed
	v.ErrorMessage = message
	v.UpdatedAt = time.Now().UTC()
}

// IsDone reports whether the video reached a terminal state.
func (v *Video) IsDone() bool {
	return v.Status == StatusCompleted || v.Status == StatusFailed
}

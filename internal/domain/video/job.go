package video

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobAnalyzing  JobStatus = "analyzing"
	JobExtracting JobStatus = "extracting"
	JobUploading  JobStatus = "uploading"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// ProcessingJob tracks one instruction-driven run against a video. A video
// may accumulate several jobs through resubmission.
type ProcessingJob struct {
	ID            string
	VideoID       string
	Instructions  string
	SingleClip    bool
	Status        JobStatus
	RawAIResponse string
	ErrorMessage  string
	StartedAt     *time.Time
	CompletedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewProcessingJob(videoID, instructions string, singleClip bool) *ProcessingJob {
	now := time.Now().UTC()
	return &ProcessingJob{
		ID:           uuid.NewString(),
		VideoID:      videoID,
		Instructions: instructions,
		SingleClip:   singleClip,
		Status:       JobPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (j *ProcessingJob) SetStatus(s JobStatus) {
	j.Status = s
	j.UpdatedAt = time.Now().UTC()
}

// Start marks the job as picked up by the orchestrator.
func (j *ProcessingJob) Start(now time.Time) {
	j.Status = JobAnalyzing
	j.StartedAt = &now
	j.UpdatedAt = now
}

func (j *ProcessingJob) Complete(now time.Time) {
	j.Status = JobCompleted
	j.CompletedAt = &now
	j.UpdatedAt = now
}

func (j *ProcessingJob) Fail(message string, now time.Time) {
	j.Status = JobFailed
	j.ErrorMessage = message
	j.CompletedAt = &now
	j.UpdatedAt = now
}

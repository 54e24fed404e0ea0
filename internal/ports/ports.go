// Package ports declares the gateway and repository contracts the core
// consumes. Concrete implementations live under adapters/ and are bound at
// process start, never through globals.
package ports

import (
	"context"
	"io"
	"time"

	"clipworks/internal/domain/clip"
	"clipworks/internal/domain/transcript"
	"clipworks/internal/domain/video"
)

// FileMetadata describes an object in the origin store.
type FileMetadata struct {
	Name     string
	Size     int64
	MimeType string
}

// FileRef identifies an object created in the origin store.
type FileRef struct {
	ID   string
	Name string
}

// OriginStorage is the Drive-like remote store videos are submitted from.
type OriginStorage interface {
	GetMetadata(ctx context.Context, fileID string) (FileMetadata, error)
	// DownloadAsStream returns the object body; the caller closes it.
	DownloadAsStream(ctx context.Context, fileID string) (io.ReadCloser, error)
	UploadFile(ctx context.Context, name string, content io.Reader, mimeType string) (FileRef, error)
}

// TranscribeRequest points the speech gateway at staged audio. OnProgress is
// optional and best-effort.
type TranscribeRequest struct {
	AudioURI   string
	OnProgress func(percent int)
}

type Transcriber interface {
	TranscribeLongAudio(ctx context.Context, req TranscribeRequest) (*transcript.Transcription, error)
}

// AI is a plain text-in/text-out LLM gateway. Structured exchanges encode
// JSON in the prompt/response contract, not in the transport.
type AI interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TempStorage stages media between origin and consumers. Byte-slice variants
// are only for payloads known to be small; media goes through the streams.
type TempStorage interface {
	Upload(ctx context.Context, key string, data []byte, mimeType string) (string, error)
	UploadFromStream(ctx context.Context, key string, r io.Reader, mimeType string) (string, error)
	Download(ctx context.Context, uri string) ([]byte, error)
	DownloadAsStream(ctx context.Context, uri string) (io.ReadCloser, error)
	Exists(ctx context.Context, uri string) (bool, error)
	SignedURL(uri string, expiresIn time.Duration) (string, error)
}

type VideoRepository interface {
	Save(ctx context.Context, v *video.Video) error
	FindByID(ctx context.Context, id string) (*video.Video, error)
	FindByOriginFileID(ctx context.Context, fileID string) (*video.Video, error)
	List(ctx context.Context, page, limit int, status video.Status) ([]video.Video, int, error)
	Delete(ctx context.Context, id string) error
}

type ProcessingJobRepository interface {
	Save(ctx context.Context, j *video.ProcessingJob) error
	FindByID(ctx context.Context, id string) (*video.ProcessingJob, error)
	FindByVideoID(ctx context.Context, videoID string) ([]video.ProcessingJob, error)
	// FindOldestPending returns the single oldest pending job, or nil when
	// there is no pending work.
	FindOldestPending(ctx context.Context) (*video.ProcessingJob, error)
	Delete(ctx context.Context, id string) error
}

type ClipRepository interface {
	Save(ctx context.Context, c *clip.Clip) error
	FindByID(ctx context.Context, id string) (*clip.Clip, error)
	FindByVideoID(ctx context.Context, videoID string) ([]clip.Clip, error)
	Delete(ctx context.Context, id string) error
}

type TranscriptionRepository interface {
	Save(ctx context.Context, t *transcript.Transcription) error
	FindByVideoID(ctx context.Context, videoID string) (*transcript.Transcription, error)
	Delete(ctx context.Context, id string) error
}

type RefinedTranscriptionRepository interface {
	Save(ctx context.Context, t *transcript.RefinedTranscription) error
	FindByVideoID(ctx context.Context, videoID string) (*transcript.RefinedTranscription, error)
	Delete(ctx context.Context, id string) error
}

type ClipSubtitleRepository interface {
	Save(ctx context.Context, s *clip.Subtitle) error
	FindByClipID(ctx context.Context, clipID string) (*clip.Subtitle, error)
	Delete(ctx context.Context, id string) error
}

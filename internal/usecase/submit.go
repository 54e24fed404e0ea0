package usecase

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"clipworks/internal/domain/video"
)

// SubmitVideo registers a new origin video and queues its first processing
// job. Resubmitting an origin file that is already known is a conflict; use
// ResubmitVideo to run new instructions against an existing video.
func (u *Usecase) SubmitVideo(ctx context.Context, originURL, instructions string, singleClip bool) (*video.Video, *video.ProcessingJob, error) {
	fileID, err := originFileIDFromURL(originURL)
	if err != nil {
		return nil, nil, Validationf("invalid origin url: %v", err)
	}
	if strings.TrimSpace(instructions) == "" {
		return nil, nil, Validationf("instructions must not be empty")
	}

	existing, err := u.d.Videos.FindByOriginFileID(ctx, fileID)
	if err != nil {
		return nil, nil, fmt.Errorf("look up origin file %s: %w", fileID, err)
	}
	if existing != nil {
		return nil, nil, Conflictf("origin file %s already submitted as video %s", fileID, existing.ID)
	}

	v := video.New(originURL, fileID)
	if err := u.d.Videos.Save(ctx, v); err != nil {
		return nil, nil, fmt.Errorf("save video: %w", err)
	}

	job := video.NewProcessingJob(v.ID, instructions, singleClip)
	if err := u.d.Jobs.Save(ctx, job); err != nil {
		return nil, nil, fmt.Errorf("save processing job: %w", err)
	}

	u.d.Logf("submitted video %s (origin %s), job %s", v.ID, fileID, job.ID)
	return v, job, nil
}

// ResubmitVideo attaches a new pending job to an existing video so it can be
// re-run with different instructions.
func (u *Usecase) ResubmitVideo(ctx context.Context, videoID, instructions string, singleClip bool) (*video.ProcessingJob, error) {
	v, err := u.d.Videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("load video %s: %w", videoID, err)
	}
	if v == nil {
		return nil, NotFoundf("video %s not found", videoID)
	}
	if strings.TrimSpace(instructions) == "" {
		return nil, Validationf("instructions must not be empty")
	}

	job := video.NewProcessingJob(v.ID, instructions, singleClip)
	if err := u.d.Jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("save processing job: %w", err)
	}
	return job, nil
}

// originFileIDFromURL extracts the file id from a Drive-like share URL:
// either an explicit id query parameter or the last path segment.
func originFileIDFromURL(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("url %q is not absolute", raw)
	}
	if id := parsed.Query().Get("id"); id != "" {
		return id, nil
	}
	id := path.Base(parsed.Path)
	if id == "" || id == "." || id == "/" {
		return "", fmt.Errorf("url %q has no file id", raw)
	}
	return id, nil
}

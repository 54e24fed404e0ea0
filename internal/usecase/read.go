package usecase

import (
	"context"
	"fmt"

	"clipworks/internal/domain/clip"
	"clipworks/internal/domain/video"
)

// VideoDetail is the read-side composite for one video. Entities reference
// each other by id only; this assembly happens here, not in the domain.
type VideoDetail struct {
	Video *video.Video
	Clips []clip.Clip
	Jobs  []video.ProcessingJob
}

type VideoPage struct {
	Videos []video.Video
	Page   int
	Limit  int
	Total  int
}

// GetVideo loads the video and fans out the clip and job reads concurrently.
func (u *Usecase) GetVideo(ctx context.Context, id string) (VideoDetail, error) {
	v, err := u.d.Videos.FindByID(ctx, id)
	if err != nil {
		return VideoDetail{}, fmt.Errorf("load video %s: %w", id, err)
	}
	if v == nil {
		return VideoDetail{}, NotFoundf("video %s not found", id)
	}

	var (
		clips    []clip.Clip
		jobs     []video.ProcessingJob
		clipsErr error
		jobsErr  error
	)
	done := make(chan struct{}, 2)
	go func() {
		clips, clipsErr = u.d.Clips.FindByVideoID(ctx, id)
		done <- struct{}{}
	}()
	go func() {
		jobs, jobsErr = u.d.Jobs.FindByVideoID(ctx, id)
		done <- struct{}{}
	}()
	<-done
	<-done

	if clipsErr != nil {
		return VideoDetail{}, fmt.Errorf("load clips for %s: %w", id, clipsErr)
	}
	if jobsErr != nil {
		return VideoDetail{}, fmt.Errorf("load jobs for %s: %w", id, jobsErr)
	}
	return VideoDetail{Video: v, Clips: clips, Jobs: jobs}, nil
}

func (u *Usecase) ListVideos(ctx context.Context, page, limit int, status video.Status) (VideoPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	videos, total, err := u.d.Videos.List(ctx, page, limit, status)
	if err != nil {
		return VideoPage{}, fmt.Errorf("list videos: %w", err)
	}
	return VideoPage{Videos: videos, Page: page, Limit: limit, Total: total}, nil
}

func (u *Usecase) ListClips(ctx context.Context, videoID string) ([]clip.Clip, error) {
	v, err := u.d.Videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("load video %s: %w", videoID, err)
	}
	if v == nil {
		return nil, NotFoundf("video %s not found", videoID)
	}
	clips, err := u.d.Clips.FindByVideoID(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("load clips for %s: %w", videoID, err)
	}
	return clips, nil
}

// GetVideoMediaURL returns a fresh signed URL for the video's staged copy,
// re-staging from origin on a cache miss and persisting the updated entry.
func (u *Usecase) GetVideoMediaURL(ctx context.Context, id string) (string, error) {
	v, err := u.d.Videos.FindByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("load video %s: %w", id, err)
	}
	if v == nil {
		return "", NotFoundf("video %s not found", id)
	}

	staged, err := u.d.Media.Stage(ctx, v.ID, v.OriginFileID, v.Cache, "video/mp4")
	if err != nil {
		return "", fmt.Errorf("stage video media: %w", err)
	}
	if staged.Refreshed {
		v.Cache = staged.Entry
		if err := u.d.Videos.Save(ctx, v); err != nil {
			return "", fmt.Errorf("save video cache entry: %w", err)
		}
	}
	return staged.SignedURL, nil
}

// GetClipMediaURL behaves like GetVideoMediaURL for a clip's own staged
// copy, falling back to the clip's origin file reference.
func (u *Usecase) GetClipMediaURL(ctx context.Context, clipID string) (string, error) {
	c, err := u.d.Clips.FindByID(ctx, clipID)
	if err != nil {
		return "", fmt.Errorf("load clip %s: %w", clipID, err)
	}
	if c == nil {
		return "", NotFoundf("clip %s not found", clipID)
	}
	if c.OriginFileID == "" {
		return "", Validationf("clip %s has no origin file reference", clipID)
	}

	staged, err := u.d.Media.Stage(ctx, c.ID, c.OriginFileID, c.Cache, "video/mp4")
	if err != nil {
		return "", fmt.Errorf("stage clip media: %w", err)
	}
	if staged.Refreshed {
		c.Cache = staged.Entry
		if err := u.d.Clips.Save(ctx, c); err != nil {
			return "", fmt.Errorf("save clip cache entry: %w", err)
		}
	}
	return staged.SignedURL, nil
}

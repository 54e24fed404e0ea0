package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"clipworks/internal/domain/clip"
	"clipworks/internal/domain/policy"
	"clipworks/internal/domain/video"
	"clipworks/internal/ports"
)

var (
	pipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clipworks_pipeline_duration_seconds",
		Help:    "Duration of pipeline runs in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	pipelineRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clipworks_pipeline_runs_total",
		Help: "Total number of pipeline runs",
	}, []string{"status"})
)

// ProcessJob runs the full pipeline for one pending job: origin metadata,
// transcription, refinement, clip selection, clip creation, finalization.
// Entity statuses are persisted before each stage starts, so a failure
// leaves them at the last stage that began. On failure both the job and the
// video record status=failed plus the causing message, and the error is
// re-raised to the caller.
func (u *Usecase) ProcessJob(ctx context.Context, jobID string) error {
	job, err := u.d.Jobs.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if job == nil {
		return NotFoundf("processing job %s not found", jobID)
	}
	if job.Status != video.JobPending {
		u.d.Logf("job %s already in status %s, skipping", job.ID, job.Status)
		return nil
	}

	v, err := u.d.Videos.FindByID(ctx, job.VideoID)
	if err != nil {
		return fmt.Errorf("load video %s: %w", job.VideoID, err)
	}
	if v == nil {
		return NotFoundf("video %s not found for job %s", job.VideoID, job.ID)
	}

	start := time.Now()
	status := "success"
	defer func() {
		pipelineDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
		pipelineRunsTotal.WithLabelValues(status).Inc()
	}()

	if err := u.runPipeline(ctx, v, job); err != nil {
		status = "error"
		v.Fail(err.Error())
		job.Fail(err.Error(), u.d.Now())
		if saveErr := u.d.Videos.Save(ctx, v); saveErr != nil {
			u.d.Logf("persist failed video %s: %v", v.ID, saveErr)
		}
		if saveErr := u.d.Jobs.Save(ctx, job); saveErr != nil {
			u.d.Logf("persist failed job %s: %v", job.ID, saveErr)
		}
		return err
	}
	return nil
}

func (u *Usecase) runPipeline(ctx context.Context, v *video.Video, job *video.ProcessingJob) error {
	job.Start(u.d.Now())
	v.SetStatus(video.StatusTranscribing)
	if err := u.saveBoth(ctx, v, job); err != nil {
		return err
	}

	meta, err := u.d.Origin.GetMetadata(ctx, v.OriginFileID)
	if err != nil {
		return fmt.Errorf("fetch origin metadata: %w", err)
	}
	if v.Title == "" {
		v.Title = meta.Name
	}
	v.SizeBytes = meta.Size

	// Stage the source through the media cache so transcription reads from
	// temp storage instead of hammering the origin again later.
	staged, err := u.d.Media.Stage(ctx, v.ID, v.OriginFileID, v.Cache, meta.MimeType)
	if err != nil {
		return fmt.Errorf("stage source media: %w", err)
	}
	v.Cache = staged.Entry
	if err := u.d.Videos.Save(ctx, v); err != nil {
		return fmt.Errorf("save video: %w", err)
	}

	tr, err := u.d.Transcriber.TranscribeLongAudio(ctx, transcribeRequest(staged.Entry.StorageURI, u.d.Logf, v.ID))
	if err != nil {
		return fmt.Errorf("transcribe: %w", err)
	}
	tr.VideoID = v.ID
	v.DurationSeconds = tr.DurationSeconds
	if err := u.d.Transcriptions.Save(ctx, tr); err != nil {
		return fmt.Errorf("save transcription: %w", err)
	}
	v.SetStatus(video.StatusTranscribed)
	if err := u.d.Videos.Save(ctx, v); err != nil {
		return fmt.Errorf("save video: %w", err)
	}

	refined, err := u.d.Refiner.Refine(ctx, tr)
	if err != nil {
		return err
	}
	if err := u.d.Refined.Save(ctx, refined); err != nil {
		return fmt.Errorf("save refined transcription: %w", err)
	}

	v.SetStatus(video.StatusExtracting)
	job.SetStatus(video.JobExtracting)
	if err := u.saveBoth(ctx, v, job); err != nil {
		return err
	}

	cands, raw, err := u.d.Selector.Select(ctx, refined, v.Title, job.Instructions, !job.SingleClip, v.DurationSeconds)
	job.RawAIResponse = raw
	if err != nil {
		return err
	}

	mode := policy.ModeStrict
	if job.SingleClip {
		mode = policy.ModeFlexible
	}
	var created []*clip.Clip
	for _, c := range cands {
		cl, viol := clip.Create(clip.CreateParams{
			VideoID:          v.ID,
			Title:            c.Title,
			StartTimeSeconds: c.StartTimeSeconds,
			EndTimeSeconds:   c.EndTimeSeconds,
			Transcript:       c.Transcript,
			Reason:           c.Reason,
			Mode:             mode,
		})
		if viol != nil {
			u.d.Logf("job %s: rejected candidate %q: %v", job.ID, c.Title, viol)
			continue
		}
		cl.OriginFileID = v.OriginFileID
		created = append(created, cl)
	}
	if len(created) == 0 {
		return fmt.Errorf("no candidate clips passed validation")
	}

	v.SetStatus(video.StatusProcessing)
	job.SetStatus(video.JobUploading)
	if err := u.saveBoth(ctx, v, job); err != nil {
		return err
	}

	for _, cl := range created {
		cl.Status = clip.StatusCompleted
		if err := u.d.Clips.Save(ctx, cl); err != nil {
			return fmt.Errorf("save clip %q: %w", cl.Title, err)
		}
	}

	v.SetStatus(video.StatusCompleted)
	job.Complete(u.d.Now())
	if err := u.saveBoth(ctx, v, job); err != nil {
		return err
	}

	u.d.Logf("job %s completed: %d clips for video %s", job.ID, len(created), v.ID)
	return nil
}

func transcribeRequest(uri string, logf func(string, ...any), videoID string) ports.TranscribeRequest {
	return ports.TranscribeRequest{
		AudioURI: uri,
		OnProgress: func(percent int) {
			logf("transcribe %s: %d%%", videoID, percent)
		},
	}
}

func (u *Usecase) saveBoth(ctx context.Context, v *video.Video, job *video.ProcessingJob) error {
	if err := u.d.Videos.Save(ctx, v); err != nil {
		return fmt.Errorf("save video: %w", err)
	}
	if err := u.d.Jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}

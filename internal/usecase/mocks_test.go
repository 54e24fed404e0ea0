package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/stretchr/testify/mock"

	"clipworks/internal/cache"
	"clipworks/internal/domain/clip"
	"clipworks/internal/domain/transcript"
	"clipworks/internal/domain/video"
	"clipworks/internal/ports"
	"clipworks/internal/refine"
	"clipworks/internal/selector"
)

type MockVideoRepository struct{ mock.Mock }

func (m *MockVideoRepository) Save(ctx context.Context, v *video.Video) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockVideoRepository) FindByID(ctx context.Context, id string) (*video.Video, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*video.Video)
	return v, args.Error(1)
}

func (m *MockVideoRepository) FindByOriginFileID(ctx context.Context, fileID string) (*video.Video, error) {
	args := m.Called(ctx, fileID)
	v, _ := args.Get(0).(*video.Video)
	return v, args.Error(1)
}

func (m *MockVideoRepository) List(ctx context.Context, page, limit int, status video.Status) ([]video.Video, int, error) {
	args := m.Called(ctx, page, limit, status)
	vs, _ := args.Get(0).([]video.Video)
	return vs, args.Int(1), args.Error(2)
}

func (m *MockVideoRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockJobRepository struct{ mock.Mock }

func (m *MockJobRepository) Save(ctx context.Context, j *video.ProcessingJob) error {
	return m.Called(ctx, j).Error(0)
}

func (m *MockJobRepository) FindByID(ctx context.Context, id string) (*video.ProcessingJob, error) {
	args := m.Called(ctx, id)
	j, _ := args.Get(0).(*video.ProcessingJob)
	return j, args.Error(1)
}

func (m *MockJobRepository) FindByVideoID(ctx context.Context, videoID string) ([]video.ProcessingJob, error) {
	args := m.Called(ctx, videoID)
	js, _ := args.Get(0).([]video.ProcessingJob)
	return js, args.Error(1)
}

func (m *MockJobRepository) FindOldestPending(ctx context.Context) (*video.ProcessingJob, error) {
	args := m.Called(ctx)
	j, _ := args.Get(0).(*video.ProcessingJob)
	return j, args.Error(1)
}

func (m *MockJobRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockClipRepository struct{ mock.Mock }

func (m *MockClipRepository) Save(ctx context.Context, c *clip.Clip) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockClipRepository) FindByID(ctx context.Context, id string) (*clip.Clip, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*clip.Clip)
	return c, args.Error(1)
}

func (m *MockClipRepository) FindByVideoID(ctx context.Context, videoID string) ([]clip.Clip, error) {
	args := m.Called(ctx, videoID)
	cs, _ := args.Get(0).([]clip.Clip)
	return cs, args.Error(1)
}

func (m *MockClipRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockTranscriptionRepository struct{ mock.Mock }

func (m *MockTranscriptionRepository) Save(ctx context.Context, t *transcript.Transcription) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTranscriptionRepository) FindByVideoID(ctx context.Context, videoID string) (*transcript.Transcription, error) {
	args := m.Called(ctx, videoID)
	t, _ := args.Get(0).(*transcript.Transcription)
	return t, args.Error(1)
}

func (m *MockTranscriptionRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockRefinedRepository struct{ mock.Mock }

func (m *MockRefinedRepository) Save(ctx context.Context, t *transcript.RefinedTranscription) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockRefinedRepository) FindByVideoID(ctx context.Context, videoID string) (*transcript.RefinedTranscription, error) {
	args := m.Called(ctx, videoID)
	t, _ := args.Get(0).(*transcript.RefinedTranscription)
	return t, args.Error(1)
}

func (m *MockRefinedRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockSubtitleRepository struct{ mock.Mock }

func (m *MockSubtitleRepository) Save(ctx context.Context, s *clip.Subtitle) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockSubtitleRepository) FindByClipID(ctx context.Context, clipID string) (*clip.Subtitle, error) {
	args := m.Called(ctx, clipID)
	s, _ := args.Get(0).(*clip.Subtitle)
	return s, args.Error(1)
}

func (m *MockSubtitleRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// fakeOrigin is a hand-rolled origin store; a fresh reader per download keeps
// repeated staging honest.
type fakeOrigin struct {
	meta      ports.FileMetadata
	metaErr   error
	streamErr error
	downloads int
}

func (f *fakeOrigin) GetMetadata(context.Context, string) (ports.FileMetadata, error) {
	return f.meta, f.metaErr
}

func (f *fakeOrigin) DownloadAsStream(_ context.Context, fileID string) (io.ReadCloser, error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	f.downloads++
	return io.NopCloser(bytes.NewReader([]byte("payload-" + fileID))), nil
}

func (f *fakeOrigin) UploadFile(context.Context, string, io.Reader, string) (ports.FileRef, error) {
	return ports.FileRef{}, nil
}

type fakeTemp struct {
	objects map[string][]byte
	signed  int
}

func newFakeTemp() *fakeTemp { return &fakeTemp{objects: map[string][]byte{}} }

func (f *fakeTemp) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	uri := "blob://" + key
	f.objects[uri] = data
	return uri, nil
}

func (f *fakeTemp) UploadFromStream(ctx context.Context, key string, r io.Reader, mimeType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return f.Upload(ctx, key, data, mimeType)
}

func (f *fakeTemp) Download(_ context.Context, uri string) ([]byte, error) {
	data, ok := f.objects[uri]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (f *fakeTemp) DownloadAsStream(ctx context.Context, uri string) (io.ReadCloser, error) {
	data, err := f.Download(ctx, uri)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeTemp) Exists(_ context.Context, uri string) (bool, error) {
	_, ok := f.objects[uri]
	return ok, nil
}

func (f *fakeTemp) SignedURL(uri string, _ time.Duration) (string, error) {
	f.signed++
	return fmt.Sprintf("https://signed.test/%s?n=%d", uri, f.signed), nil
}

type fakeTranscriber struct {
	tr  *transcript.Transcription
	err error
}

func (f *fakeTranscriber) TranscribeLongAudio(context.Context, ports.TranscribeRequest) (*transcript.Transcription, error) {
	return f.tr, f.err
}

// routingAI serves both pipeline prompts: the Japanese refinement prompt and
// the English selection prompt.
type routingAI struct {
	refineResp string
	selectResp string
}

func (a *routingAI) Generate(_ context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, "文字起こし") {
		return a.refineResp, nil
	}
	return a.selectResp, nil
}

type testEnv struct {
	videos         *MockVideoRepository
	jobs           *MockJobRepository
	clips          *MockClipRepository
	transcriptions *MockTranscriptionRepository
	refined        *MockRefinedRepository
	subtitles      *MockSubtitleRepository
	origin         *fakeOrigin
	temp           *fakeTemp
	transcriber    *fakeTranscriber
	ai             *routingAI
	uc             *Usecase
}

func newTestEnv() *testEnv {
	e := &testEnv{
		videos:         &MockVideoRepository{},
		jobs:           &MockJobRepository{},
		clips:          &MockClipRepository{},
		transcriptions: &MockTranscriptionRepository{},
		refined:        &MockRefinedRepository{},
		subtitles:      &MockSubtitleRepository{},
		origin:         &fakeOrigin{meta: ports.FileMetadata{Name: "demo.mp4", Size: 2048, MimeType: "video/mp4"}},
		temp:           newFakeTemp(),
		transcriber:    &fakeTranscriber{},
		ai: &routingAI{
			refineResp: `{"sentences":[{"text":"全文です。","startTimeSeconds":0,"endTimeSeconds":100,"originalSegmentIndices":[0,1,2]}]}`,
			selectResp: `{"clips":[{"title":"ハイライト","startTimeSeconds":10,"endTimeSeconds":55,"transcript":"全文です。","reason":"peak"}]}`,
		},
	}
	e.uc = New(Deps{
		Videos:         e.videos,
		Jobs:           e.jobs,
		Clips:          e.clips,
		Transcriptions: e.transcriptions,
		Refined:        e.refined,
		Subtitles:      e.subtitles,
		Origin:         e.origin,
		Transcriber:    e.transcriber,
		Refiner:        refine.New(e.ai, nil, transcript.EmptyDictionary(), nil),
		Selector:       selector.New(e.ai),
		Media:          cache.New(e.origin, e.temp, time.Hour, time.Minute, nil),
		Logf:           func(string, ...any) {},
	})
	return e
}

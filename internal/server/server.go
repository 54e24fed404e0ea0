// Package server exposes the minimal HTTP surface the pipeline is driven
// through. Request validation frameworks and the web UI are out of scope;
// handlers decode, call a use case, and map error kinds to status codes.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"clipworks/internal/domain/policy"
	"clipworks/internal/domain/video"
	"clipworks/internal/usecase"
)

type Server struct {
	uc   *usecase.Usecase
	logf func(format string, args ...any)
	// mediaHandler optionally serves signed media URLs issued by the blob
	// store; nil when media is fronted elsewhere.
	mediaHandler http.Handler
}

func New(uc *usecase.Usecase, mediaHandler http.Handler, logf func(string, ...any)) *Server {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Server{uc: uc, logf: logf, mediaHandler: mediaHandler}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /videos", s.handleSubmitVideo)
	mux.HandleFunc("GET /videos", s.handleListVideos)
	mux.HandleFunc("GET /videos/{id}", s.handleGetVideo)
	mux.HandleFunc("GET /videos/{id}/clips", s.handleListClips)
	mux.HandleFunc("GET /videos/{id}/media", s.handleVideoMedia)
	mux.HandleFunc("POST /videos/{id}/jobs", s.handleResubmit)
	mux.HandleFunc("GET /clips/{id}/media", s.handleClipMedia)
	mux.HandleFunc("PUT /clips/{id}/subtitle", s.handleSaveSubtitle)
	mux.HandleFunc("POST /clips/{id}/subtitle/confirm", s.handleConfirmSubtitle)
	mux.HandleFunc("POST /clips/{id}/subtitle/unconfirm", s.handleUnconfirmSubtitle)
	mux.HandleFunc("GET /clips/{id}/subtitle.srt", s.handleSubtitleSRT)

	mux.Handle("GET /metrics", promhttp.Handler())
	if s.mediaHandler != nil {
		mux.Handle("GET /media/{key...}", s.mediaHandler)
	}
	return mux
}

type submitRequest struct {
	OriginURL    string `json:"originUrl"`
	Instructions string `json:"instructions"`
	SingleClip   bool   `json:"singleClip,omitempty"`
}

func (s *Server) handleSubmitVideo(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	v, job, err := s.uc.SubmitVideo(r.Context(), req.OriginURL, req.Instructions, req.SingleClip)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"video":         videoBody(v),
		"processingJob": jobBody(job),
	})
}

func (s *Server) handleResubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	job, err := s.uc.ResubmitVideo(r.Context(), r.PathValue("id"), req.Instructions, req.SingleClip)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"processingJob": jobBody(job)})
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := atoiDefault(q.Get("page"), 1)
	limit := atoiDefault(q.Get("limit"), 20)
	status := video.Status(q.Get("status"))

	res, err := s.uc.ListVideos(r.Context(), page, limit, status)
	if err != nil {
		s.writeError(w, err)
		return
	}
	items := make([]any, 0, len(res.Videos))
	for i := range res.Videos {
		items = append(items, videoBody(&res.Videos[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"videos": items,
		"page":   res.Page,
		"limit":  res.Limit,
		"total":  res.Total,
	})
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	detail, err := s.uc.GetVideo(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	clips := make([]any, 0, len(detail.Clips))
	for i := range detail.Clips {
		clips = append(clips, clipBody(&detail.Clips[i]))
	}
	jobs := make([]any, 0, len(detail.Jobs))
	for i := range detail.Jobs {
		jobs = append(jobs, jobBody(&detail.Jobs[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"video": videoBody(detail.Video),
		"clips": clips,
		"jobs":  jobs,
	})
}

func (s *Server) handleListClips(w http.ResponseWriter, r *http.Request) {
	clips, err := s.uc.ListClips(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	items := make([]any, 0, len(clips))
	for i := range clips {
		items = append(items, clipBody(&clips[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"clips": items})
}

func (s *Server) handleVideoMedia(w http.ResponseWriter, r *http.Request) {
	url, err := s.uc.GetVideoMediaURL(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"url": url})
}

func (s *Server) handleClipMedia(w http.ResponseWriter, r *http.Request) {
	url, err := s.uc.GetClipMediaURL(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"url": url})
}

type subtitleRequest struct {
	Segments []policy.SubtitleSegment `json:"segments"`
}

func (s *Server) handleSaveSubtitle(w http.ResponseWriter, r *http.Request) {
	var req subtitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	sub, err := s.uc.SaveSubtitleDraft(r.Context(), r.PathValue("id"), req.Segments)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subtitleBody(sub))
}

func (s *Server) handleConfirmSubtitle(w http.ResponseWriter, r *http.Request) {
	sub, err := s.uc.ConfirmSubtitle(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subtitleBody(sub))
}

func (s *Server) handleUnconfirmSubtitle(w http.ResponseWriter, r *http.Request) {
	sub, err := s.uc.UnconfirmSubtitle(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subtitleBody(sub))
}

func (s *Server) handleSubtitleSRT(w http.ResponseWriter, r *http.Request) {
	srt, err := s.uc.ExportSubtitleSRT(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-subrip; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(srt))
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var status int
	switch usecase.KindOf(err) {
	case usecase.KindNotFound:
		status = http.StatusNotFound
	case usecase.KindValidation:
		status = http.StatusBadRequest
	case usecase.KindConflict:
		status = http.StatusConflict
	default:
		var viol *policy.Violation
		if errors.As(err, &viol) {
			status = http.StatusBadRequest
		} else {
			status = http.StatusInternalServerError
			s.logf("internal error: %v", err)
		}
	}
	writeJSON(w, status, errorBody(err.Error()))
}

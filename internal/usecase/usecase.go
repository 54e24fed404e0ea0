// Package usecase wires the domain, gateways and repositories into the
// pipeline orchestrator and the request-facing operations.
package usecase

import (
	"log"
	"time"

	"clipworks/internal/cache"
	"clipworks/internal/ports"
	"clipworks/internal/refine"
	"clipworks/internal/selector"
)

type Deps struct {
	Videos         ports.VideoRepository
	Jobs           ports.ProcessingJobRepository
	Clips          ports.ClipRepository
	Transcriptions ports.TranscriptionRepository
	Refined        ports.RefinedTranscriptionRepository
	Subtitles      ports.ClipSubtitleRepository

	Origin      ports.OriginStorage
	Transcriber ports.Transcriber

	Refiner  *refine.Refiner
	Selector *selector.Selector
	Media    *cache.Media

	Logf func(format string, args ...any)
	Now  func() time.Time
}

type Usecase struct {
	d Deps
}

func New(d Deps) *Usecase {
	if d.Logf == nil {
		d.Logf = log.Printf
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Usecase{d: d}
}

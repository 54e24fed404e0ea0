package clip

import (
	"time"

	"github.com/google/uuid"

	"clipworks/internal/domain/policy"
)

type SubtitleStatus string

const (
	SubtitleDraft     SubtitleStatus = "draft"
	SubtitleConfirmed SubtitleStatus = "confirmed"
)

// KindSubtitleConfirmed tags edits attempted against a confirmed subtitle.
const KindSubtitleConfirmed policy.Kind = "SUBTITLE_CONFIRMED"

// Subtitle is the ordered caption track of one clip.
type Subtitle struct {
	ID        string
	ClipID    string
	Segments  []policy.SubtitleSegment
	Status    SubtitleStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewSubtitle(clipID string, segments []policy.SubtitleSegment) (*Subtitle, *policy.Violation) {
	if v := policy.ValidateSubtitleSegments(segments); v != nil {
		return nil, v
	}
	now := time.Now().UTC()
	return &Subtitle{
		ID:        uuid.NewString(),
		ClipID:    clipID,
		Segments:  segments,
		Status:    SubtitleDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ReplaceSegments swaps the whole segment list. A confirmed subtitle rejects
// edits until it is explicitly un-confirmed.
func (s *Subtitle) ReplaceSegments(segments []policy.SubtitleSegment) *policy.Violation {
	if s.Status == SubtitleConfirmed {
		return &policy.Violation{Kind: KindSubtitleConfirmed, Message: "subtitle is confirmed; unconfirm before editing"}
	}
	if v := policy.ValidateSubtitleSegments(segments); v != nil {
		return v
	}
	s.Segments = segments
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Subtitle) Confirm() {
	s.Status = SubtitleConfirmed
	s.UpdatedAt = time.Now().UTC()
}

func (s *Subtitle) Unconfirm() {
	s.Status = SubtitleDraft
	s.UpdatedAt = time.Now().UTC()
}

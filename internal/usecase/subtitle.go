package usecase

import (
	"context"
	"fmt"

	"clipworks/internal/domain/clip"
	"clipworks/internal/domain/policy"
)

// SaveSubtitleDraft creates or replaces the draft subtitle of a clip.
// Editing a confirmed subtitle is a conflict until it is un-confirmed.
func (u *Usecase) SaveSubtitleDraft(ctx context.Context, clipID string, segments []policy.SubtitleSegment) (*clip.Subtitle, error) {
	c, err := u.d.Clips.FindByID(ctx, clipID)
	if err != nil {
		return nil, fmt.Errorf("load clip %s: %w", clipID, err)
	}
	if c == nil {
		return nil, NotFoundf("clip %s not found", clipID)
	}

	existing, err := u.d.Subtitles.FindByClipID(ctx, clipID)
	if err != nil {
		return nil, fmt.Errorf("load subtitle for clip %s: %w", clipID, err)
	}

	var sub *clip.Subtitle
	if existing != nil {
		if v := existing.ReplaceSegments(segments); v != nil {
			if v.Kind == clip.KindSubtitleConfirmed {
				return nil, Conflictf("%s", v.Message)
			}
			return nil, Validationf("%s", v.Error())
		}
		sub = existing
	} else {
		created, v := clip.NewSubtitle(clipID, segments)
		if v != nil {
			return nil, Validationf("%s", v.Error())
		}
		sub = created
	}

	if err := u.d.Subtitles.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("save subtitle: %w", err)
	}
	return sub, nil
}

func (u *Usecase) ConfirmSubtitle(ctx context.Context, clipID string) (*clip.Subtitle, error) {
	sub, err := u.loadSubtitle(ctx, clipID)
	if err != nil {
		return nil, err
	}
	sub.Confirm()
	if err := u.d.Subtitles.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("save subtitle: %w", err)
	}
	return sub, nil
}

func (u *Usecase) UnconfirmSubtitle(ctx context.Context, clipID string) (*clip.Subtitle, error) {
	sub, err := u.loadSubtitle(ctx, clipID)
	if err != nil {
		return nil, err
	}
	sub.Unconfirm()
	if err := u.d.Subtitles.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("save subtitle: %w", err)
	}
	return sub, nil
}

// ExportSubtitleSRT renders the clip's subtitle track as a SubRip file.
// Drafts export too; confirmation gates editing, not downloads.
func (u *Usecase) ExportSubtitleSRT(ctx context.Context, clipID string) (string, error) {
	sub, err := u.loadSubtitle(ctx, clipID)
	if err != nil {
		return "", err
	}
	return clip.RenderSRT(sub.Segments), nil
}

func (u *Usecase) loadSubtitle(ctx context.Context, clipID string) (*clip.Subtitle, error) {
	sub, err := u.d.Subtitles.FindByClipID(ctx, clipID)
	if err != nil {
		return nil, fmt.Errorf("load subtitle for clip %s: %w", clipID, err)
	}
	if sub == nil {
		return nil, NotFoundf("clip %s has no subtitle", clipID)
	}
	return sub, nil
}

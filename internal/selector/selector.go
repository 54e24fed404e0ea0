// Package selector asks the AI to pick clip spans from a refined transcript
// and validates the response into structurally sound candidates.
package selector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"clipworks/internal/domain/policy"
	"clipworks/internal/domain/transcript"
	"clipworks/internal/jsonx"
	"clipworks/internal/ports"
)

var (
	ErrParseFailed          = errors.New("PARSE_FAILED")
	ErrInvalidClipData      = errors.New("INVALID_CLIP_DATA")
	ErrTimestampOutOfBounds = errors.New("TIMESTAMP_OUT_OF_BOUNDS")
)

// Candidate is one AI-proposed clip span. Structural validity only; whether
// the span is a good highlight is the model's problem.
type Candidate struct {
	Title            string  `json:"title"`
	StartTimeSeconds float64 `json:"startTimeSeconds"`
	EndTimeSeconds   float64 `json:"endTimeSeconds"`
	Transcript       string  `json:"transcript"`
	Reason           string  `json:"reason"`
}

type Selector struct {
	ai ports.AI
}

func New(ai ports.AI) *Selector {
	return &Selector{ai: ai}
}

// Select builds the selection prompt, runs one AI call, and returns the
// validated candidates plus the raw response for audit storage. Candidates
// outside [0, videoDurationSeconds] are rejected, never clamped.
func (s *Selector) Select(
	ctx context.Context,
	refined *transcript.RefinedTranscription,
	videoTitle string,
	instructions string,
	multipleClips bool,
	videoDurationSeconds float64,
) ([]Candidate, string, error) {
	prompt := BuildPrompt(refined, videoTitle, instructions, multipleClips)

	raw, err := s.ai.Generate(ctx, prompt)
	if err != nil {
		return nil, "", fmt.Errorf("clip selection: %w", err)
	}

	cands, err := ParseResponse(raw)
	if err != nil {
		return nil, raw, err
	}
	for _, c := range cands {
		if err := validateBounds(c, videoDurationSeconds); err != nil {
			return nil, raw, err
		}
	}
	return cands, raw, nil
}

// BuildPrompt embeds the sentence-level transcript with timestamps, the
// user's free-text instructions, and the single/multi span mode switch.
func BuildPrompt(refined *transcript.RefinedTranscription, videoTitle, instructions string, multipleClips bool) string {
	var b strings.Builder

	b.WriteString("You are a video editor selecting clip spans from a transcript.\n\n")
	fmt.Fprintf(&b, "Video title: %s\n\n", videoTitle)
	fmt.Fprintf(&b, "Instructions from the user:\n%s\n\n", instructions)

	if multipleClips {
		b.WriteString("Select up to several distinct highlight spans that best match the instructions. ")
		b.WriteString("Prefer spans of roughly 20-60 seconds that start cleanly and end on a complete thought.\n\n")
	} else {
		b.WriteString("Select exactly one clip covering the entire range the instructions describe. ")
		b.WriteString("Do not split it into multiple clips.\n\n")
	}

	b.WriteString("Transcript (sentence timestamps in seconds):\n")
	for _, sen := range refined.Sentences {
		fmt.Fprintf(&b, "[%.2f-%.2f] %s\n", sen.StartTimeSeconds, sen.EndTimeSeconds, sen.Text)
	}

	b.WriteString("\nReturn strictly valid JSON (no markdown, no code fences):\n")
	b.WriteString(`{"clips":[{"title":"...","startTimeSeconds":0.0,"endTimeSeconds":0.0,"transcript":"...","reason":"..."}]}`)
	b.WriteString("\n")

	return b.String()
}

// ParseResponse extracts the clips array from a response that may be wrapped
// in a fenced code block.
func ParseResponse(raw string) ([]Candidate, error) {
	body, err := jsonx.ExtractObject(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	var out struct {
		Clips []struct {
			Title            string   `json:"title"`
			StartTimeSeconds *float64 `json:"startTimeSeconds"`
			EndTimeSeconds   *float64 `json:"endTimeSeconds"`
			Transcript       string   `json:"transcript"`
			Reason           string   `json:"reason"`
		} `json:"clips"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	if out.Clips == nil {
		return nil, fmt.Errorf("%w: missing clips array in %q", ErrParseFailed, jsonx.Truncate(raw, 200))
	}

	cands := make([]Candidate, 0, len(out.Clips))
	for i, c := range out.Clips {
		if strings.TrimSpace(c.Title) == "" {
			return nil, fmt.Errorf("%w: clip %d has no title", ErrInvalidClipData, i)
		}
		if c.StartTimeSeconds == nil || c.EndTimeSeconds == nil {
			return nil, fmt.Errorf("%w: clip %d is missing timestamps", ErrInvalidClipData, i)
		}
		cands = append(cands, Candidate{
			Title:            strings.TrimSpace(c.Title),
			StartTimeSeconds: *c.StartTimeSeconds,
			EndTimeSeconds:   *c.EndTimeSeconds,
			Transcript:       c.Transcript,
			Reason:           c.Reason,
		})
	}
	return cands, nil
}

func validateBounds(c Candidate, videoDurationSeconds float64) error {
	if v := policy.ValidateTimeRange(c.StartTimeSeconds, c.EndTimeSeconds); v != nil {
		return fmt.Errorf("%w: clip %q: %v", ErrInvalidClipData, c.Title, v)
	}
	if c.StartTimeSeconds < 0 || c.EndTimeSeconds > videoDurationSeconds {
		return fmt.Errorf("%w: clip %q spans [%.2f, %.2f] outside video duration %.2fs",
			ErrTimestampOutOfBounds, c.Title, c.StartTimeSeconds, c.EndTimeSeconds, videoDurationSeconds)
	}
	return nil
}

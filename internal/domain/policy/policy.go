// Package policy holds the pure validation rules for clip time ranges,
// durations and subtitle segments. Validators return tagged violations
// instead of errors so callers can branch on the kind without string
// matching; a nil result means the input is valid.
package policy

import "fmt"

type Kind string

const (
	KindInvalidTimeRange    Kind = "INVALID_TIME_RANGE"
	KindDurationOutOfRange  Kind = "DURATION_OUT_OF_RANGE"
	KindEmptySegments       Kind = "EMPTY_SEGMENTS"
	KindInvalidSegmentOrder Kind = "INVALID_SEGMENT_ORDER"
	KindEmptyLines          Kind = "EMPTY_LINES"
	KindTooManyLines        Kind = "TOO_MANY_LINES"
	KindLineTooLong         Kind = "LINE_TOO_LONG"
)

// Violation is a tagged validation failure. It satisfies error so it can be
// wrapped at use-case boundaries, but domain code passes it around as a value.
type Violation struct {
	Kind    Kind
	Message string
}

func (v *Violation) Error() string { return string(v.Kind) + ": " + v.Message }

func violatef(kind Kind, format string, args ...any) *Violation {
	return &Violation{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Mode selects how strictly clip durations are checked. Strict creation is
// used for AI-selected highlight spans; flexible creation is used for
// single-span extraction covering a whole instructed range.
type Mode int

const (
	ModeStrict Mode = iota
	ModeFlexible
)

// Hard duration window for strict clips. The selector prompt asks the model
// for 20-60s highlights, but validation only enforces this outer window so a
// deliberately long pick is not thrown away.
const (
	MinClipSeconds = 10
	MaxClipSeconds = 120
)

// Subtitle rendering limits for vertical-video layouts.
const (
	MaxSubtitleLines     = 2
	MaxSubtitleLineRunes = 16
)

// SubtitleSegment is one timed caption unit. Index must equal the segment's
// position in its list.
type SubtitleSegment struct {
	Index            int      `json:"index"`
	Lines            []string `json:"lines"`
	StartTimeSeconds float64  `json:"startTimeSeconds"`
	EndTimeSeconds   float64  `json:"endTimeSeconds"`
}

func ValidateTimeRange(start, end float64) *Violation {
	if start >= end {
		return violatef(KindInvalidTimeRange, "start %.3f must be before end %.3f", start, end)
	}
	return nil
}

func ValidateDuration(durationSeconds float64, mode Mode) *Violation {
	if mode == ModeFlexible {
		return nil
	}
	if durationSeconds < MinClipSeconds || durationSeconds > MaxClipSeconds {
		return violatef(KindDurationOutOfRange,
			"duration %.1fs outside allowed window [%ds, %ds]",
			durationSeconds, MinClipSeconds, MaxClipSeconds)
	}
	return nil
}

// ValidateSubtitleSegments checks the whole segment list. Segments are
// validated independently; neighbouring segments are allowed to overlap in
// time (overlapping captions are legal in real subtitle tracks).
func ValidateSubtitleSegments(segments []SubtitleSegment) *Violation {
	if len(segments) == 0 {
		return violatef(KindEmptySegments, "subtitle has no segments")
	}
	for i, seg := range segments {
		if seg.Index != i {
			return violatef(KindInvalidSegmentOrder, "segment at position %d has index %d", i, seg.Index)
		}
		if len(seg.Lines) == 0 {
			return violatef(KindEmptyLines, "segment %d has no lines", i)
		}
		if len(seg.Lines) > MaxSubtitleLines {
			return violatef(KindTooManyLines, "segment %d has %d lines, max %d", i, len(seg.Lines), MaxSubtitleLines)
		}
		for j, line := range seg.Lines {
			if n := len([]rune(line)); n > MaxSubtitleLineRunes {
				return violatef(KindLineTooLong, "segment %d line %d is %d runes, max %d", i, j, n, MaxSubtitleLineRunes)
			}
		}
		if v := ValidateTimeRange(seg.StartTimeSeconds, seg.EndTimeSeconds); v != nil {
			return violatef(KindInvalidTimeRange, "segment %d: %s", i, v.Message)
		}
	}
	return nil
}

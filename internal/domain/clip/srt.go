package clip

import (
	"fmt"
	"strings"
	"time"

	"clipworks/internal/domain/policy"
)

// RenderSRT serializes a subtitle track as SubRip text. Segment times are
// clip-local offsets; cue numbering follows slice order, not segment Index,
// so a re-ordered draft still produces a playable file.
func RenderSRT(segments []policy.SubtitleSegment) string {
	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d\n", i+1)
		b.WriteString(srtTime(dur(seg.StartTimeSeconds)))
		b.WriteString(" --> ")
		b.WriteString(srtTime(dur(seg.EndTimeSeconds)))
		b.WriteString("\n")
		for _, line := range seg.Lines {
			b.WriteString(sanitizeSRT(line))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func srtTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	millis := int(d / time.Millisecond)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hs, ms, s, millis)
}

// sanitizeSRT strips blank-line injection; an empty line inside a cue would
// terminate it early in most players.
func sanitizeSRT(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }

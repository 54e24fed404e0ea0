// Package refine drives chunk-wise AI refinement of a raw transcript and
// merges the chunk outputs into one corrected transcript.
package refine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"clipworks/internal/domain/transcript"
	"clipworks/internal/jsonx"
	"clipworks/internal/ports"
)

// tailSentences is how many merged sentences are passed to the next chunk
// call as disambiguating context.
const tailSentences = 5

type Refiner struct {
	ai      ports.AI
	chunker *transcript.Chunker
	dict    transcript.Dictionary
	logf    func(format string, args ...any)
}

func New(ai ports.AI, chunker *transcript.Chunker, dict transcript.Dictionary, logf func(string, ...any)) *Refiner {
	if chunker == nil {
		chunker = transcript.DefaultChunker()
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Refiner{ai: ai, chunker: chunker, dict: dict, logf: logf}
}

// Refine runs one AI call per chunk, strictly in order: each call depends on
// the tail of the previously merged output for continuity. Any chunk failure
// aborts the whole refinement; partial results are never returned.
func (r *Refiner) Refine(ctx context.Context, tr *transcript.Transcription) (*transcript.RefinedTranscription, error) {
	chunks := r.chunker.Split(len(tr.Segments))
	if len(chunks) == 0 {
		return nil, fmt.Errorf("refinement failed: transcript %s has no segments", tr.ID)
	}

	var merged []transcript.Sentence
	prevEnd := -1
	for _, ch := range chunks {
		prompt := transcript.BuildChunkPrompt(ch, tr.Segments, r.dict, tailText(merged))

		raw, err := r.ai.Generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("refinement failed: chunk %d/%d: %w", ch.ChunkIndex+1, ch.TotalChunks, err)
		}

		sentences, err := parseChunkResponse(raw, ch)
		if err != nil {
			return nil, fmt.Errorf("refinement failed: chunk %d/%d: %w", ch.ChunkIndex+1, ch.TotalChunks, err)
		}

		kept := 0
		for _, s := range sentences {
			// A sentence whose indices are all inside the region already
			// emitted by the previous chunk is a re-statement of merged
			// content, not new material.
			if ch.ChunkIndex > 0 && maxIndex(s.OriginalSegmentIndices) <= prevEnd {
				continue
			}
			merged = append(merged, s)
			kept++
		}
		r.logf("refine: chunk %d/%d kept %d/%d sentences", ch.ChunkIndex+1, ch.TotalChunks, kept, len(sentences))
		prevEnd = ch.EndIndex
	}

	var parts []string
	for _, s := range merged {
		parts = append(parts, s.Text)
	}
	refined, v := transcript.NewRefinedTranscription(tr.VideoID, tr.ID, strings.Join(parts, ""), merged, r.dict.Version)
	if v != nil {
		return nil, fmt.Errorf("refinement failed: %w", v)
	}
	return refined, nil
}

func parseChunkResponse(raw string, ch transcript.Chunk) ([]transcript.Sentence, error) {
	body, err := jsonx.ExtractObject(raw)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	var out struct {
		Sentences []transcript.Sentence `json:"sentences"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(out.Sentences) == 0 {
		return nil, fmt.Errorf("parse response: no sentences in %q", jsonx.Truncate(raw, 200))
	}

	for _, s := range out.Sentences {
		if strings.TrimSpace(s.Text) == "" {
			return nil, fmt.Errorf("sentence with empty text")
		}
		if len(s.OriginalSegmentIndices) == 0 {
			return nil, fmt.Errorf("sentence %q has no segment indices", jsonx.Truncate(s.Text, 40))
		}
		for _, idx := range s.OriginalSegmentIndices {
			if !ch.Covers(idx) {
				return nil, fmt.Errorf("sentence %q references segment %d outside chunk [%d, %d]",
					jsonx.Truncate(s.Text, 40), idx, ch.StartIndex, ch.EndIndex)
			}
		}
	}
	return out.Sentences, nil
}

func tailText(sentences []transcript.Sentence) string {
	if len(sentences) == 0 {
		return ""
	}
	start := len(sentences) - tailSentences
	if start < 0 {
		start = 0
	}
	var b strings.Builder
	for _, s := range sentences[start:] {
		b.WriteString(s.Text)
	}
	return b.String()
}

func maxIndex(indices []int) int {
	max := -1
	for _, i := range indices {
		if i > max {
			max = i
		}
	}
	return max
}

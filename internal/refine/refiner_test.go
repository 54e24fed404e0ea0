package refine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clipworks/internal/domain/transcript"
)

// scriptedAI returns canned responses in call order.
type scriptedAI struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (a *scriptedAI) Generate(_ context.Context, prompt string) (string, error) {
	i := a.calls
	a.calls++
	a.prompts = append(a.prompts, prompt)
	if i < len(a.errs) && a.errs[i] != nil {
		return "", a.errs[i]
	}
	if i >= len(a.responses) {
		return "", errors.New("no scripted response")
	}
	return a.responses[i], nil
}

func rawTranscription(n int) *transcript.Transcription {
	segs := make([]transcript.Segment, n)
	for i := range segs {
		segs[i] = transcript.Segment{Text: "seg", StartTimeSeconds: float64(i), EndTimeSeconds: float64(i + 1)}
	}
	return transcript.NewTranscription("vid-1", "raw", segs, "ja-JP", float64(n))
}

func mustChunker(t *testing.T, size, overlap int) *transcript.Chunker {
	t.Helper()
	c, err := transcript.NewChunker(size, overlap)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestRefine_MergesChunksAndDropsOverlap(t *testing.T) {
	// 5 segments with chunk size 3, overlap 1: chunks [0,2] and [2,4].
	ai := &scriptedAI{responses: []string{
		`{"sentences":[
			{"text":"一文目。","startTimeSeconds":0,"endTimeSeconds":2,"originalSegmentIndices":[0,1]},
			{"text":"二文目。","startTimeSeconds":2,"endTimeSeconds":3,"originalSegmentIndices":[2]}
		]}`,
		`{"sentences":[
			{"text":"二文目の再掲。","startTimeSeconds":2,"endTimeSeconds":3,"originalSegmentIndices":[2]},
			{"text":"三文目。","startTimeSeconds":3,"endTimeSeconds":5,"originalSegmentIndices":[3,4]}
		]}`,
	}}
	r := New(ai, mustChunker(t, 3, 1), transcript.EmptyDictionary(), nil)

	refined, err := r.Refine(context.Background(), rawTranscription(5))
	if err != nil {
		t.Fatal(err)
	}
	if len(refined.Sentences) != 3 {
		t.Fatalf("expected overlap sentence dropped, got %d sentences: %+v", len(refined.Sentences), refined.Sentences)
	}
	if refined.FullText != "一文目。二文目。三文目。" {
		t.Fatalf("unexpected full text %q", refined.FullText)
	}
	if refined.DictionaryVersion != "empty-v1" {
		t.Fatalf("dictionary version not recorded: %q", refined.DictionaryVersion)
	}
	if ai.calls != 2 {
		t.Fatalf("expected one call per chunk, got %d", ai.calls)
	}
	// Second call must carry the merged tail as context.
	if !strings.Contains(ai.prompts[1], "一文目。二文目。") {
		t.Fatalf("second prompt should include previous tail:\n%s", ai.prompts[1])
	}
}

func TestRefine_ChunkFailureAborts(t *testing.T) {
	boom := errors.New("rate limited")
	ai := &scriptedAI{
		responses: []string{
			`{"sentences":[{"text":"一文目。","startTimeSeconds":0,"endTimeSeconds":3,"originalSegmentIndices":[0,1,2]}]}`,
		},
		errs: []error{nil, boom},
	}
	r := New(ai, mustChunker(t, 3, 1), transcript.EmptyDictionary(), nil)

	_, err := r.Refine(context.Background(), rawTranscription(5))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("cause not preserved: %v", err)
	}
	if !strings.Contains(err.Error(), "refinement failed") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestRefine_RejectsIndicesOutsideChunk(t *testing.T) {
	ai := &scriptedAI{responses: []string{
		`{"sentences":[{"text":"はみ出し。","startTimeSeconds":0,"endTimeSeconds":1,"originalSegmentIndices":[9]}]}`,
	}}
	r := New(ai, mustChunker(t, 3, 1), transcript.EmptyDictionary(), nil)

	_, err := r.Refine(context.Background(), rawTranscription(3))
	if err == nil || !strings.Contains(err.Error(), "outside chunk") {
		t.Fatalf("expected out-of-chunk rejection, got %v", err)
	}
}

func TestRefine_RejectsMalformedResponses(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", "I could not process that."},
		{"empty sentences", `{"sentences":[]}`},
		{"blank text", `{"sentences":[{"text":"  ","startTimeSeconds":0,"endTimeSeconds":1,"originalSegmentIndices":[0]}]}`},
		{"no indices", `{"sentences":[{"text":"文","startTimeSeconds":0,"endTimeSeconds":1,"originalSegmentIndices":[]}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ai := &scriptedAI{responses: []string{tc.raw}}
			r := New(ai, mustChunker(t, 3, 1), transcript.EmptyDictionary(), nil)
			if _, err := r.Refine(context.Background(), rawTranscription(3)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRefine_EmptyTranscript(t *testing.T) {
	r := New(&scriptedAI{}, nil, transcript.EmptyDictionary(), nil)
	if _, err := r.Refine(context.Background(), rawTranscription(0)); err == nil {
		t.Fatal("expected error for transcript with no segments")
	}
}

func TestRefine_AcceptsFencedResponse(t *testing.T) {
	ai := &scriptedAI{responses: []string{
		"```json\n" + `{"sentences":[{"text":"一文。","startTimeSeconds":0,"endTimeSeconds":3,"originalSegmentIndices":[0,1,2]}]}` + "\n```",
	}}
	r := New(ai, mustChunker(t, 3, 1), transcript.EmptyDictionary(), nil)
	refined, err := r.Refine(context.Background(), rawTranscription(3))
	if err != nil {
		t.Fatal(err)
	}
	if refined.FullText != "一文。" {
		t.Fatalf("unexpected full text %q", refined.FullText)
	}
}

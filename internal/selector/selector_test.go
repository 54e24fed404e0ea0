package selector

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clipworks/internal/domain/transcript"
)

type fakeAI struct {
	response string
	err      error
	prompt   string
}

func (a *fakeAI) Generate(_ context.Context, prompt string) (string, error) {
	a.prompt = prompt
	return a.response, a.err
}

func refinedFixture() *transcript.RefinedTranscription {
	return &transcript.RefinedTranscription{
		ID:      "ref-1",
		VideoID: "vid-1",
		Sentences: []transcript.Sentence{
			{Text: "冒頭の挨拶です。", StartTimeSeconds: 0, EndTimeSeconds: 8, OriginalSegmentIndices: []int{0}},
			{Text: "本題に入ります。", StartTimeSeconds: 8, EndTimeSeconds: 30, OriginalSegmentIndices: []int{1}},
		},
	}
}

func TestSelect_ValidResponse(t *testing.T) {
	ai := &fakeAI{response: `{"clips":[
		{"title":"本題","startTimeSeconds":8,"endTimeSeconds":30,"transcript":"本題に入ります。","reason":"core moment"}
	]}`}
	s := New(ai)

	cands, raw, err := s.Select(context.Background(), refinedFixture(), "デモ動画", "面白い所を", true, 120)
	if err != nil {
		t.Fatal(err)
	}
	if raw == "" {
		t.Fatal("raw response must be returned for audit storage")
	}
	if len(cands) != 1 || cands[0].Title != "本題" || cands[0].StartTimeSeconds != 8 {
		t.Fatalf("unexpected candidates %+v", cands)
	}
	if !strings.Contains(ai.prompt, "[8.00-30.00] 本題に入ります。") {
		t.Fatalf("prompt should embed sentence timestamps:\n%s", ai.prompt)
	}
	if !strings.Contains(ai.prompt, "面白い所を") {
		t.Fatalf("prompt should embed the instructions:\n%s", ai.prompt)
	}
}

func TestBuildPrompt_ModeSwitch(t *testing.T) {
	multi := BuildPrompt(refinedFixture(), "t", "i", true)
	if !strings.Contains(multi, "several distinct highlight spans") {
		t.Fatalf("multi-clip prompt missing mode wording:\n%s", multi)
	}
	single := BuildPrompt(refinedFixture(), "t", "i", false)
	if !strings.Contains(single, "exactly one clip covering the entire range") {
		t.Fatalf("single-clip prompt missing mode wording:\n%s", single)
	}
}

func TestParseResponse_Fenced(t *testing.T) {
	raw := "```json\n" + `{"clips":[{"title":"a","startTimeSeconds":0,"endTimeSeconds":10}]}` + "\n```"
	cands, err := ParseResponse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 1 {
		t.Fatalf("expected one candidate, got %+v", cands)
	}
}

func TestParseResponse_Errors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"prose only", "I cannot find any clips.", ErrParseFailed},
		{"missing clips array", `{"result":"ok"}`, ErrParseFailed},
		{"missing title", `{"clips":[{"title":"","startTimeSeconds":0,"endTimeSeconds":10}]}`, ErrInvalidClipData},
		{"missing timestamps", `{"clips":[{"title":"a"}]}`, ErrInvalidClipData},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseResponse(tc.raw)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParseResponse_ZeroTimestampIsPresent(t *testing.T) {
	cands, err := ParseResponse(`{"clips":[{"title":"a","startTimeSeconds":0,"endTimeSeconds":10}]}`)
	if err != nil {
		t.Fatal(err)
	}
	if cands[0].StartTimeSeconds != 0 {
		t.Fatalf("explicit zero start must survive parsing: %+v", cands[0])
	}
}

func TestSelect_RejectsOutOfBounds(t *testing.T) {
	cases := []struct {
		name     string
		response string
		want     error
	}{
		{"end past duration",
			`{"clips":[{"title":"a","startTimeSeconds":100,"endTimeSeconds":130}]}`,
			ErrTimestampOutOfBounds},
		{"negative start",
			`{"clips":[{"title":"a","startTimeSeconds":-1,"endTimeSeconds":30}]}`,
			ErrTimestampOutOfBounds},
		{"inverted span",
			`{"clips":[{"title":"a","startTimeSeconds":30,"endTimeSeconds":10}]}`,
			ErrInvalidClipData},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(&fakeAI{response: tc.response})
			_, raw, err := s.Select(context.Background(), refinedFixture(), "t", "i", true, 120)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if raw == "" {
				t.Fatal("raw response must be returned even on rejection")
			}
		})
	}
}

func TestSelect_AIFailure(t *testing.T) {
	s := New(&fakeAI{err: errors.New("upstream down")})
	_, _, err := s.Select(context.Background(), refinedFixture(), "t", "i", true, 120)
	if err == nil || !strings.Contains(err.Error(), "clip selection") {
		t.Fatalf("unexpected error %v", err)
	}
}

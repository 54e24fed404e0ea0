package transcript

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"clipworks/internal/domain/policy"
)

const (
	KindEmptyText              policy.Kind = "EMPTY_TEXT"
	KindEmptySentences         policy.Kind = "EMPTY_SENTENCES"
	KindEmptyDictionaryVersion policy.Kind = "EMPTY_DICTIONARY_VERSION"
)

// Sentence is a merged, corrected unit of a refined transcript. It remains
// traceable to the raw segments it was built from.
type Sentence struct {
	Text                   string  `json:"text"`
	StartTimeSeconds       float64 `json:"startTimeSeconds"`
	EndTimeSeconds         float64 `json:"endTimeSeconds"`
	OriginalSegmentIndices []int   `json:"originalSegmentIndices"`
}

// RefinedTranscription is the cleaned transcript for one video, produced by
// chunk-wise AI refinement against a versioned correction dictionary.
type RefinedTranscription struct {
	ID                string     `json:"id"`
	VideoID           string     `json:"videoId"`
	TranscriptionID   string     `json:"transcriptionId"`
	FullText          string     `json:"fullText"`
	Sentences         []Sentence `json:"sentences"`
	DictionaryVersion string     `json:"dictionaryVersion"`
	CreatedAt         time.Time  `json:"createdAt"`
}

func NewRefinedTranscription(videoID, transcriptionID, fullText string, sentences []Sentence, dictionaryVersion string) (*RefinedTranscription, *policy.Violation) {
	if strings.TrimSpace(fullText) == "" {
		return nil, &policy.Violation{Kind: KindEmptyText, Message: "refined transcript text is empty"}
	}
	if len(sentences) == 0 {
		return nil, &policy.Violation{Kind: KindEmptySentences, Message: "refined transcript has no sentences"}
	}
	if strings.TrimSpace(dictionaryVersion) == "" {
		return nil, &policy.Violation{Kind: KindEmptyDictionaryVersion, Message: "dictionary version is empty"}
	}
	return &RefinedTranscription{
		ID:                uuid.NewString(),
		VideoID:           videoID,
		TranscriptionID:   transcriptionID,
		FullText:          fullText,
		Sentences:         sentences,
		DictionaryVersion: dictionaryVersion,
		CreatedAt:         time.Now().UTC(),
	}, nil
}

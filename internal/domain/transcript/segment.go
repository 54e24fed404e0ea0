// Package transcript models raw and refined transcripts and the chunking
// used to feed bounded slices of a long transcript to the AI.
package transcript

import (
	"time"

	"github.com/google/uuid"
)

// Segment is a word-level transcript unit as produced by speech-to-text.
type Segment struct {
	Text             string  `json:"text"`
	StartTimeSeconds float64 `json:"startTimeSeconds"`
	EndTimeSeconds   float64 `json:"endTimeSeconds"`
	Confidence       float64 `json:"confidence"`
}

// Transcription is the raw speech-to-text result for one video. Immutable
// once saved except by full replacement.
type Transcription struct {
	ID              string    `json:"id"`
	VideoID         string    `json:"videoId"`
	FullText        string    `json:"fullText"`
	Segments        []Segment `json:"segments"`
	LanguageCode    string    `json:"languageCode"`
	DurationSeconds float64   `json:"durationSeconds"`
	CreatedAt       time.Time `json:"createdAt"`
}

func NewTranscription(videoID, fullText string, segments []Segment, languageCode string, durationSeconds float64) *Transcription {
	return &Transcription{
		ID:              uuid.NewString(),
		VideoID:         videoID,
		FullText:        fullText,
		Segments:        segments,
		LanguageCode:    languageCode,
		DurationSeconds: durationSeconds,
		CreatedAt:       time.Now().UTC(),
	}
}

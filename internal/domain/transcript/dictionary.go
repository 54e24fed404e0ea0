package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// DictionaryEntry maps recurring mis-transcriptions of one proper noun to
// its canonical spelling. Correction is applied by the AI through the chunk
// prompt, never by local string substitution.
type DictionaryEntry struct {
	WrongPatterns []string `json:"wrongPatterns"`
	Correct       string   `json:"correct"`
	Description   string   `json:"description,omitempty"`
}

type DictionaryCategory struct {
	Name    string            `json:"name"`
	Entries []DictionaryEntry `json:"entries"`
}

// Dictionary is a versioned proper-noun correction table. The version tag is
// recorded on every refined transcript it produced.
type Dictionary struct {
	Version    string               `json:"version"`
	Categories []DictionaryCategory `json:"categories"`
}

// LoadDictionary reads a dictionary JSON file. The version must be set so
// refined transcripts stay traceable to the table that produced them.
func LoadDictionary(path string) (Dictionary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Dictionary{}, fmt.Errorf("read dictionary: %w", err)
	}
	var d Dictionary
	if err := json.Unmarshal(b, &d); err != nil {
		return Dictionary{}, fmt.Errorf("parse dictionary: %w", err)
	}
	if strings.TrimSpace(d.Version) == "" {
		return Dictionary{}, fmt.Errorf("dictionary %s has no version", path)
	}
	return d, nil
}

// EmptyDictionary is used when no correction table is configured; the
// version still tags refined transcripts so the invariant holds.
func EmptyDictionary() Dictionary {
	return Dictionary{Version: "empty-v1"}
}

// PromptLines renders the table as category headers followed by
// "wrong1、wrong2 → correct（description）" lines.
func (d Dictionary) PromptLines() []string {
	var out []string
	for _, cat := range d.Categories {
		if len(cat.Entries) == 0 {
			continue
		}
		out = append(out, "【"+cat.Name+"】")
		for _, e := range cat.Entries {
			line := strings.Join(e.WrongPatterns, "、") + " → " + e.Correct
			if e.Description != "" {
				line += "（" + e.Description + "）"
			}
			out = append(out, line)
		}
	}
	return out
}

// Package jsonx extracts JSON payloads from LLM responses that may arrive
// wrapped in markdown fences or surrounded by prose.
package jsonx

import (
	"errors"
	"fmt"
	"strings"
)

// ExtractObject returns the first JSON object found in s, stripping
// markdown code fences first.
func ExtractObject(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errors.New("empty content")
	}

	if strings.HasPrefix(t, "```") {
		// Remove opening fence line.
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		// Remove trailing fence.
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1], nil
	}
	return "", fmt.Errorf("could not locate JSON object in: %q", Truncate(t, 200))
}

// Truncate limits s to n runes for safe inclusion in error messages.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

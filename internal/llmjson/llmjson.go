// Package llmjson extracts JSON payloads from free-text model output.
// Responses routinely arrive wrapped in prose or markdown code fences,
// so every parse goes through Clean before json.Unmarshal.
package llmjson

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// Clean attempts to extract a JSON value from text that may contain
// markdown code fences or other wrapping.
func Clean(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find the outermost JSON object or array.
	objStart := strings.Index(text, "{")
	arrStart := strings.Index(text, "[")
	if arrStart >= 0 && (objStart < 0 || arrStart < objStart) {
		if end := strings.LastIndex(text, "]"); end > arrStart {
			return strings.TrimSpace(text[arrStart : end+1])
		}
	}
	if objStart >= 0 {
		if end := strings.LastIndex(text, "}"); end > objStart {
			return strings.TrimSpace(text[objStart : end+1])
		}
	}

	return strings.TrimSpace(text)
}

// Unmarshal cleans the text and decodes it into v.
func Unmarshal(text string, v any) error {
	cleaned := Clean(text)
	if cleaned == "" {
		return eris.New("llmjson: empty response")
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return eris.Wrap(err, "llmjson: decode response")
	}
	return nil
}

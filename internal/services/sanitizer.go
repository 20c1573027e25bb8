package services

import (
	"encoding/json"
	"strings"
)

const codeFence = "```"

// ToJSON recovers a JSON value from model output that may be wrapped in a
// Markdown code fence. Objects decode to map[string]any, arrays to []any and
// numbers to float64.
func ToJSON(raw string) (any, error) {
	cleaned := StripCodeFence(raw)

	var value any
	if err := json.Unmarshal([]byte(cleaned), &value); err != nil {
		return nil, &ModelJSONError{Raw: raw, Err: err}
	}

	return value, nil
}

// StripCodeFence removes a leading ``` or ```json marker, a trailing ```
// marker and the surrounding whitespace. Text without fences is only trimmed.
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, codeFence) {
		s = strings.TrimPrefix(s, codeFence)
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, codeFence)

	return strings.TrimSpace(s)
}

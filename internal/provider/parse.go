package provider

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/quillworks/quill-gateway/internal/types"
)

var errNoArray = errors.New("no JSON suggestion array found in model output")

// ParseSuggestions reduces raw model output to the normalized
// suggestion list. Models frequently wrap their JSON in prose or
// markdown fences, so the first well-formed JSON array substring is
// what gets parsed; everything around it is ignored. Provider-assigned
// order is preserved.
func ParseSuggestions(raw string) ([]types.Suggestion, error) {
	payload, ok := firstJSONArray(raw)
	if !ok {
		return nil, errNoArray
	}

	var suggestions []types.Suggestion
	if err := json.Unmarshal([]byte(payload), &suggestions); err != nil {
		return nil, err
	}
	for i := range suggestions {
		suggestions[i].Normalize()
	}
	if suggestions == nil {
		suggestions = []types.Suggestion{}
	}
	return suggestions, nil
}

// firstJSONArray scans for the first '[' that starts a well-formed JSON
// array and returns that substring. A json.Decoder does the heavy
// lifting: it stops at the end of the first complete value, so trailing
// prose after the array is harmless.
func firstJSONArray(raw string) (string, bool) {
	for i := 0; i < len(raw); i++ {
		if raw[i] != '[' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(raw[i:]))
		var probe json.RawMessage
		if err := dec.Decode(&probe); err != nil {
			continue
		}
		if len(probe) > 0 && probe[0] == '[' {
			return string(probe), true
		}
	}
	return "", false
}

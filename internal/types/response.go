package types

import "encoding/json"

// DefaultConfidence is assigned when a provider omits a confidence score.
const DefaultConfidence = 0.8

// Suggestion is a single normalized correction or rewrite.
type Suggestion struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Type       string  `json:"type"`
}

// UnmarshalJSON distinguishes an omitted confidence from an explicit
// zero: only the former takes DefaultConfidence.
func (s *Suggestion) UnmarshalJSON(data []byte) error {
	var raw struct {
		Text       string   `json:"text"`
		Confidence *float64 `json:"confidence"`
		Type       string   `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Text = raw.Text
	s.Type = raw.Type
	if raw.Confidence == nil {
		s.Confidence = DefaultConfidence
	} else {
		s.Confidence = *raw.Confidence
	}
	return nil
}

// Normalize clamps the confidence score into [0, 1] and fills in a
// missing type.
func (s *Suggestion) Normalize() {
	if s.Confidence < 0 {
		s.Confidence = 0
	}
	if s.Confidence > 1 {
		s.Confidence = 1
	}
	if s.Type == "" {
		s.Type = "unknown"
	}
}

// Response is the uniform result shape returned to callers regardless
// of which backend produced it. A failed request carries a classified
// error message and no suggestions; callers branch on Failed() instead
// of handling exceptions.
type Response struct {
	Original    string       `json:"original"`
	Suggestions []Suggestion `json:"suggestions"`
	Error       string       `json:"error,omitempty"`
}

func (r *Response) Failed() bool { return r.Error != "" }

// ErrorResponse builds a failure response for the given input text.
func ErrorResponse(original, message string) *Response {
	return &Response{Original: original, Suggestions: []Suggestion{}, Error: message}
}

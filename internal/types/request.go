package types

import (
	"errors"
	"strings"
)

// DefaultLanguage is assumed when a grammar check does not name one.
const DefaultLanguage = "en"

// ErrEmptyText is returned for requests with no text to process.
// It indicates caller misuse and is surfaced before any cache or
// network activity.
var ErrEmptyText = errors.New("request text must not be empty")

// Request is the canonical representation of a text-processing request.
// It is a value object: two requests with identical fields are
// interchangeable, which is what makes response caching sound.
type Request struct {
	Text      string    `json:"text"`
	Operation Operation `json:"operation"`
	Style     Style     `json:"style,omitempty"`
	Language  string    `json:"language,omitempty"`
}

// Validate rejects malformed requests. Whitespace-only text counts as
// empty.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyText
	}
	if _, ok := ParseOperation(string(r.Operation)); !ok {
		return errors.New("unknown operation: " + string(r.Operation))
	}
	if r.Style != "" {
		if _, ok := ParseStyle(string(r.Style)); !ok {
			return errors.New("unknown style: " + string(r.Style))
		}
	}
	return nil
}

// Lang returns the request language, falling back to the default.
func (r *Request) Lang() string {
	if r.Language == "" {
		return DefaultLanguage
	}
	return r.Language
}

// Fingerprint derives the cache key for the request. It concatenates
// every semantic field, text included verbatim, so byte-identical
// requests map to the same entry and near-duplicates deliberately miss.
func (r *Request) Fingerprint() string {
	var b strings.Builder
	b.Grow(len(r.Text) + 32)
	b.WriteString(string(r.Operation))
	b.WriteByte(':')
	b.WriteString(string(r.Style))
	b.WriteByte(':')
	b.WriteString(r.Lang())
	b.WriteByte(':')
	b.WriteString(r.Text)
	return b.String()
}

package provider

import (
	"testing"

	"github.com/quillworks/quill-gateway/internal/types"
)

func TestParseSuggestions_BareArray(t *testing.T) {
	raw := `[{"text":"He goes to school","confidence":0.95,"type":"grammar"}]`
	suggestions, err := ParseSuggestions(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(suggestions))
	}
	s := suggestions[0]
	if s.Text != "He goes to school" || s.Confidence != 0.95 || s.Type != "grammar" {
		t.Errorf("suggestion not preserved: %+v", s)
	}
}

func TestParseSuggestions_WrappedInProse(t *testing.T) {
	raw := `Sure! Here are the corrections you asked for:

[{"text":"the","type":"spelling"},{"text":"cat sat","confidence":0.6}]

Let me know if you need anything else.`
	suggestions, err := ParseSuggestions(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(suggestions))
	}
	// Defaults fill in what the provider omitted.
	if suggestions[0].Confidence != types.DefaultConfidence {
		t.Errorf("missing confidence should default to %v, got %v", types.DefaultConfidence, suggestions[0].Confidence)
	}
	if suggestions[1].Type != "unknown" {
		t.Errorf("missing type should default to unknown, got %q", suggestions[1].Type)
	}
}

func TestParseSuggestions_MarkdownFence(t *testing.T) {
	raw := "```json\n[{\"text\":\"He goes\",\"confidence\":0.9,\"type\":\"grammar\"}]\n```"
	suggestions, err := ParseSuggestions(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].Text != "He goes" {
		t.Errorf("fenced array not parsed: %+v", suggestions)
	}
}

func TestParseSuggestions_EmptyArray(t *testing.T) {
	suggestions, err := ParseSuggestions("The text is correct. []")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if suggestions == nil || len(suggestions) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", suggestions)
	}
}

func TestParseSuggestions_SkipsMalformedBrackets(t *testing.T) {
	// The first '[' does not open valid JSON; the scanner must keep
	// looking rather than give up.
	raw := `[oops not json ... [{"text":"fixed","confidence":0.7,"type":"grammar"}]`
	suggestions, err := ParseSuggestions(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].Text != "fixed" {
		t.Errorf("expected recovery to inner array, got %+v", suggestions)
	}
}

func TestParseSuggestions_NoArray(t *testing.T) {
	for _, raw := range []string{
		"I could not find any mistakes.",
		"",
		`{"text":"an object, not an array"}`,
	} {
		if _, err := ParseSuggestions(raw); err == nil {
			t.Errorf("expected parse error for %q", raw)
		}
	}
}

func TestParseSuggestions_OrderPreserved(t *testing.T) {
	raw := `[{"text":"c"},{"text":"a"},{"text":"b"}]`
	suggestions, err := ParseSuggestions(raw)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"c", "a", "b"}
	for i, w := range want {
		if suggestions[i].Text != w {
			t.Errorf("order not preserved at %d: got %q want %q", i, suggestions[i].Text, w)
		}
	}
}

func TestParseSuggestions_ConfidenceEdgeValues(t *testing.T) {
	raw := `[{"text":"the","confidence":0,"type":"spelling"},{"text":"cat","confidence":3,"type":"grammar"}]`
	suggestions, err := ParseSuggestions(raw)
	if err != nil {
		t.Fatal(err)
	}
	if suggestions[0].Confidence != 0 {
		t.Errorf("explicit zero confidence rewritten to %v", suggestions[0].Confidence)
	}
	if suggestions[1].Confidence != 1 {
		t.Errorf("out-of-range confidence should clamp to 1, got %v", suggestions[1].Confidence)
	}
}

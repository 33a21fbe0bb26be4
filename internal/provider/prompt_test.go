package provider

import (
	"strings"
	"testing"

	"github.com/quillworks/quill-gateway/internal/types"
)

func TestBuildPrompt_GrammarCheck(t *testing.T) {
	req := &types.Request{Text: "He go to school", Operation: types.OpGrammarCheck, Language: "de"}
	system, user := BuildPrompt(req)

	if user != "He go to school" {
		t.Errorf("user content should be the raw text, got %q", user)
	}
	if !strings.Contains(system, `"de"`) {
		t.Errorf("grammar prompt should name the target language: %q", system)
	}
	if !strings.Contains(system, "JSON array") {
		t.Errorf("prompt must demand a JSON array: %q", system)
	}
}

func TestBuildPrompt_GrammarCheck_DefaultLanguage(t *testing.T) {
	req := &types.Request{Text: "x", Operation: types.OpGrammarCheck}
	system, _ := BuildPrompt(req)
	if !strings.Contains(system, `"en"`) {
		t.Errorf("omitted language should default to en: %q", system)
	}
}

func TestBuildPrompt_Rephrase(t *testing.T) {
	req := &types.Request{Text: "hey there", Operation: types.OpRephrase, Style: types.StyleConcise}
	system, user := BuildPrompt(req)

	if user != "hey there" {
		t.Errorf("user content should be the raw text, got %q", user)
	}
	if !strings.Contains(system, "concise") {
		t.Errorf("rephrase prompt should carry the style: %q", system)
	}
	if !strings.Contains(system, "rephrasing") {
		t.Errorf("rephrase prompt should fix the suggestion type: %q", system)
	}
}

package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quillworks/quill-gateway/internal/config"
	"github.com/quillworks/quill-gateway/internal/types"
)

func TestAnthropicAdapter_Complete(t *testing.T) {
	var gotKey, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body anthropicRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.System == "" {
			t.Error("system prompt missing")
		}
		if body.MaxTokens == 0 {
			t.Error("anthropic requires max_tokens")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{
				{"type": "text", "text": `[{"text":"He goes to school","confidence":0.9,"type":"grammar"}]`},
			},
		})
	}))
	defer srv.Close()

	a := NewAnthropicAdapter("anthropic", config.ProviderConfig{
		Type: "anthropic", BaseURL: srv.URL, APIKey: "ant-test", Model: "claude-3-haiku",
	}, srv.Client())

	raw, err := a.Complete(context.Background(), grammarRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "ant-test" {
		t.Errorf("wrong api key header: %q", gotKey)
	}
	if gotVersion == "" {
		t.Error("anthropic-version header missing")
	}
	suggestions, err := ParseSuggestions(raw)
	if err != nil {
		t.Fatal(err)
	}
	if suggestions[0].Text != "He goes to school" {
		t.Errorf("wrong suggestion: %+v", suggestions[0])
	}
}

func TestAnthropicAdapter_MissingCredential(t *testing.T) {
	a := NewAnthropicAdapter("anthropic", config.ProviderConfig{Type: "anthropic", BaseURL: "http://unused"}, http.DefaultClient)
	_, err := a.Complete(context.Background(), grammarRequest())
	if ClassOf(err) != types.ErrClassAuth {
		t.Errorf("expected auth class, got %v", err)
	}
}

func TestAnthropicAdapter_NonTextContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "tool_use"}},
		})
	}))
	defer srv.Close()

	a := NewAnthropicAdapter("anthropic", config.ProviderConfig{
		Type: "anthropic", BaseURL: srv.URL, APIKey: "ant-test",
	}, srv.Client())

	_, err := a.Complete(context.Background(), grammarRequest())
	if ClassOf(err) != types.ErrClassParse {
		t.Errorf("expected parse class without a text block, got %v", err)
	}
}

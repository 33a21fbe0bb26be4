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

func TestOllamaAdapter_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("local inference must not send credentials")
		}
		var body ollamaRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.Stream {
			t.Error("adapter must request a non-streaming response")
		}
		if body.Prompt != "He go to school" {
			t.Errorf("unexpected prompt: %q", body.Prompt)
		}
		json.NewEncoder(w).Encode(ollamaResponseBody{
			Model:    body.Model,
			Response: `[{"text":"He goes to school","confidence":0.8,"type":"grammar"}]`,
			Done:     true,
		})
	}))
	defer srv.Close()

	a := NewOllamaAdapter("local", config.ProviderConfig{Type: "ollama", BaseURL: srv.URL, Model: "llama3"}, srv.Client())

	raw, err := a.Complete(context.Background(), grammarRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	suggestions, err := ParseSuggestions(raw)
	if err != nil {
		t.Fatal(err)
	}
	if suggestions[0].Text != "He goes to school" {
		t.Errorf("wrong suggestion: %+v", suggestions[0])
	}
}

func TestOllamaAdapter_Defaults(t *testing.T) {
	a := NewOllamaAdapter("local", config.ProviderConfig{Type: "ollama"}, http.DefaultClient)
	if a.cfg.BaseURL != "http://localhost:11434" {
		t.Errorf("default base url not applied: %q", a.cfg.BaseURL)
	}
	if a.cfg.Model != "llama3" {
		t.Errorf("default model not applied: %q", a.cfg.Model)
	}
}

func TestOllamaAdapter_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewOllamaAdapter("local", config.ProviderConfig{Type: "ollama", BaseURL: srv.URL}, srv.Client())
	_, err := a.Complete(context.Background(), grammarRequest())
	if ClassOf(err) != types.ErrClassAPI {
		t.Errorf("expected api class, got %v", err)
	}
}

func TestBuildFromConfig(t *testing.T) {
	provCfg := &config.ProvidersConfig{
		Providers: map[string]config.ProviderConfig{
			"local":     {Type: "ollama"},
			"openai":    {Type: "openai", BaseURL: "https://api.openai.com/v1", APIKey: "sk-x"},
			"anthropic": {Type: "anthropic", BaseURL: "https://api.anthropic.com/v1", APIKey: "ant-x"},
			"custom":    {Type: "vllm", BaseURL: "http://inference:8000/v1", APIKey: "x"},
		},
	}

	registry := BuildFromConfig(provCfg)

	for _, name := range []string{"local", "openai", "anthropic", "custom"} {
		if _, ok := registry.Get(name); !ok {
			t.Errorf("provider %s not registered", name)
		}
	}
	if _, ok := registry.Get("nope"); ok {
		t.Error("unknown provider should not resolve")
	}

	if _, ok := registry.Get("local"); ok {
		a, _ := registry.Get("local")
		if _, isOllama := a.(*OllamaAdapter); !isOllama {
			t.Errorf("local should build an ollama adapter, got %T", a)
		}
	}
	a, _ := registry.Get("custom")
	if _, isOpenAI := a.(*OpenAIAdapter); !isOpenAI {
		t.Errorf("unknown types should fall back to the OpenAI-compatible adapter, got %T", a)
	}
}

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quillworks/quill-gateway/internal/config"
	"github.com/quillworks/quill-gateway/internal/types"
)

func grammarRequest() *types.Request {
	return &types.Request{Text: "He go to school", Operation: types.OpGrammarCheck, Language: "en"}
}

func TestOpenAIAdapter_Complete(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body openAIRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(body.Messages) != 2 || body.Messages[1].Content != "He go to school" {
			t.Errorf("unexpected messages: %+v", body.Messages)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": `[{"text":"He goes to school","confidence":0.95,"type":"grammar"}]`}},
			},
		})
	}))
	defer srv.Close()

	a := NewOpenAIAdapter("openai", config.ProviderConfig{
		Type: "openai", BaseURL: srv.URL, APIKey: "sk-test", Model: "gpt-4o-mini",
	}, srv.Client())

	raw, err := a.Complete(context.Background(), grammarRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("wrong auth header: %q", gotAuth)
	}
	suggestions, err := ParseSuggestions(raw)
	if err != nil {
		t.Fatal(err)
	}
	if suggestions[0].Text != "He goes to school" {
		t.Errorf("wrong suggestion: %+v", suggestions[0])
	}
}

func TestOpenAIAdapter_MissingCredential(t *testing.T) {
	a := NewOpenAIAdapter("openai", config.ProviderConfig{Type: "openai", BaseURL: "http://unused"}, http.DefaultClient)
	_, err := a.Complete(context.Background(), grammarRequest())
	if err == nil {
		t.Fatal("expected error without API key")
	}
	if ClassOf(err) != types.ErrClassAuth {
		t.Errorf("expected auth class, got %s", ClassOf(err))
	}
}

func TestOpenAIAdapter_StatusClassification(t *testing.T) {
	tests := []struct {
		status int
		class  types.ErrorClass
	}{
		{http.StatusUnauthorized, types.ErrClassAuth},
		{http.StatusForbidden, types.ErrClassAuth},
		{http.StatusTooManyRequests, types.ErrClassAPI},
		{http.StatusInternalServerError, types.ErrClassAPI},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "provider detail", tt.status)
		}))
		a := NewOpenAIAdapter("openai", config.ProviderConfig{
			Type: "openai", BaseURL: srv.URL, APIKey: "sk-test",
		}, srv.Client())

		_, err := a.Complete(context.Background(), grammarRequest())
		srv.Close()
		if err == nil {
			t.Fatalf("status %d: expected error", tt.status)
		}
		if got := ClassOf(err); got != tt.class {
			t.Errorf("status %d: class = %s, want %s", tt.status, got, tt.class)
		}
		var pe *Error
		if !errors.As(err, &pe) || pe.Status != tt.status {
			t.Errorf("status %d not carried in error: %v", tt.status, err)
		}
	}
}

func TestOpenAIAdapter_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 20 * time.Millisecond}
	a := NewOpenAIAdapter("openai", config.ProviderConfig{
		Type: "openai", BaseURL: srv.URL, APIKey: "sk-test",
	}, client)

	_, err := a.Complete(context.Background(), grammarRequest())
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if ClassOf(err) != types.ErrClassTimeout {
		t.Errorf("expected timeout class, got %s (%v)", ClassOf(err), err)
	}
}

func TestOpenAIAdapter_NetworkError(t *testing.T) {
	// Nothing listens here.
	a := NewOpenAIAdapter("openai", config.ProviderConfig{
		Type: "openai", BaseURL: "http://127.0.0.1:1", APIKey: "sk-test",
	}, &http.Client{Timeout: time.Second})

	_, err := a.Complete(context.Background(), grammarRequest())
	if err == nil {
		t.Fatal("expected network error")
	}
	if ClassOf(err) != types.ErrClassNetwork {
		t.Errorf("expected network class, got %s (%v)", ClassOf(err), err)
	}
}

func TestOpenAIAdapter_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	a := NewOpenAIAdapter("openai", config.ProviderConfig{
		Type: "openai", BaseURL: srv.URL, APIKey: "sk-test",
	}, srv.Client())

	_, err := a.Complete(context.Background(), grammarRequest())
	if ClassOf(err) != types.ErrClassParse {
		t.Errorf("expected parse class for empty choices, got %v", err)
	}
}

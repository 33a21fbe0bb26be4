package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/quillworks/quill-gateway/internal/config"
	"github.com/quillworks/quill-gateway/internal/types"
)

// OllamaAdapter handles a local/self-hosted Ollama inference server.
// No credential is required.
type OllamaAdapter struct {
	name   string
	cfg    config.ProviderConfig
	client *http.Client
}

func NewOllamaAdapter(name string, cfg config.ProviderConfig, client *http.Client) *OllamaAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3"
	}
	return &OllamaAdapter{name: name, cfg: cfg, client: client}
}

func (a *OllamaAdapter) Name() string { return a.name }

func (a *OllamaAdapter) Complete(ctx context.Context, req *types.Request) (string, error) {
	system, user := BuildPrompt(req)
	body := ollamaRequestBody{
		Model:  a.cfg.Model,
		System: system,
		Prompt: user,
		Stream: false,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", &Error{Provider: a.name, Class: types.ErrClassUnknown, Message: "marshal request: " + err.Error()}
	}

	url := a.cfg.BaseURL + "/api/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", &Error{Provider: a.name, Class: types.ErrClassUnknown, Message: "create request: " + err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", classifyTransport(a.name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransport(a.name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(a.name, resp.StatusCode, string(respBody))
	}

	var ollResp ollamaResponseBody
	if err := json.Unmarshal(respBody, &ollResp); err != nil {
		return "", parseFailure(a.name, err)
	}
	return ollResp.Response, nil
}

type ollamaRequestBody struct {
	Model  string `json:"model"`
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponseBody struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Package provider contains the backend adapters. Each adapter knows
// how to turn a canonical request into its backend's wire format, call
// it, and hand back the raw model output for suggestion parsing.
package provider

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/quillworks/quill-gateway/internal/config"
	"github.com/quillworks/quill-gateway/internal/types"
)

// Default provider call timeouts. Local inference is given more room.
const (
	DefaultCloudTimeout = 30 * time.Second
	DefaultLocalTimeout = 60 * time.Second
)

// Adapter is implemented once per backend. Complete returns the raw
// text output of the model; failures are *Error values carrying the
// taxonomy class.
type Adapter interface {
	Name() string
	Complete(ctx context.Context, req *types.Request) (string, error)
}

// Registry manages provider adapters.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

func (r *Registry) Register(name string, adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[name] = adapter
}

func (r *Registry) Get(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	return a, ok
}

// BuildFromConfig builds provider adapters from the providers config.
// Providers without usable credentials are still registered; selection
// policy decides whether they may be called.
func BuildFromConfig(provCfg *config.ProvidersConfig) *Registry {
	registry := NewRegistry()
	for name, cfg := range provCfg.Providers {
		timeout := cfg.Timeout
		if timeout <= 0 {
			if cfg.Local() {
				timeout = DefaultLocalTimeout
			} else {
				timeout = DefaultCloudTimeout
			}
		}
		maxConcurrent := cfg.MaxConcurrent
		if maxConcurrent <= 0 {
			maxConcurrent = 10
		}
		client := &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        maxConcurrent,
				MaxIdleConnsPerHost: maxConcurrent,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		}

		var adapter Adapter
		switch cfg.Type {
		case "anthropic":
			adapter = NewAnthropicAdapter(name, cfg, client)
		case "ollama":
			adapter = NewOllamaAdapter(name, cfg, client)
		default:
			// OpenAI-compatible is the lingua franca for everything else
			adapter = NewOpenAIAdapter(name, cfg, client)
		}
		registry.Register(name, adapter)
	}
	return registry
}

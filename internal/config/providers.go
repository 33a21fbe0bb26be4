package config

import "time"

type ProvidersConfig struct {
	Providers map[string]ProviderConfig `yaml:"providers"`
}

type ProviderConfig struct {
	Type          string            `yaml:"type"`
	BaseURL       string            `yaml:"base_url"`
	APIKey        string            `yaml:"api_key"`
	Model         string            `yaml:"model"`
	MaxConcurrent int               `yaml:"max_concurrent"`
	Timeout       time.Duration     `yaml:"timeout"`
	Headers       map[string]string `yaml:"headers,omitempty"`
}

// Local reports whether this backend is self-hosted inference, which
// needs no credential.
func (p ProviderConfig) Local() bool {
	return p.Type == "ollama"
}

// Usable reports whether the provider can actually be called: local
// backends always, cloud backends only with a credential present.
// A missing credential silently disqualifies a provider from the
// fallback chain rather than producing an error.
func (p ProviderConfig) Usable() bool {
	return p.Local() || p.APIKey != ""
}

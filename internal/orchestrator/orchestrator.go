// Package orchestrator turns a text-processing request into a cached,
// rate-limited, provider-routed, fallback-capable operation with a
// uniform response shape regardless of backend.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/quillworks/quill-gateway/internal/cache"
	"github.com/quillworks/quill-gateway/internal/config"
	"github.com/quillworks/quill-gateway/internal/provider"
	"github.com/quillworks/quill-gateway/internal/ratelimit"
	"github.com/quillworks/quill-gateway/internal/telemetry"
	"github.com/quillworks/quill-gateway/internal/types"
)

// route is the provider chain snapshot taken at the start of a call, so
// a concurrent reconfiguration never tears an in-flight request's view.
type route struct {
	primary      provider.Adapter
	primaryName  string
	fallback     provider.Adapter
	fallbackName string
}

// Orchestrator is the single entry point for request processing. The
// cache and rate limiter are owned here and injected at construction;
// no other component mutates them.
type Orchestrator struct {
	mu        sync.RWMutex
	registry  *provider.Registry
	providers *config.ProvidersConfig
	primary   string
	fallback  string

	cache   *cache.Cache
	limiter *ratelimit.TokenBucket
	health  *HealthTracker
	metrics *telemetry.Metrics
}

func New(registry *provider.Registry, providers *config.ProvidersConfig, orchCfg config.OrchestratorConfig, metrics *telemetry.Metrics) *Orchestrator {
	return &Orchestrator{
		registry:  registry,
		providers: providers,
		primary:   orchCfg.PrimaryProvider,
		fallback:  orchCfg.FallbackProvider,
		cache:     cache.New(orchCfg.CacheCapacity, orchCfg.CacheTTL),
		limiter:   ratelimit.NewTokenBucket(orchCfg.RateLimit.Capacity, orchCfg.RateLimit.RefillPerSecond),
		health:    NewHealthTracker(0, 0),
		metrics:   metrics,
	}
}

// Reconfigure swaps the provider chain, e.g. after a settings change or
// config reload. In-flight requests keep the chain they snapshotted;
// the cache and rate limiter carry over untouched.
func (o *Orchestrator) Reconfigure(providers *config.ProvidersConfig, orchCfg config.OrchestratorConfig) {
	registry := provider.BuildFromConfig(providers)
	o.mu.Lock()
	o.registry = registry
	o.providers = providers
	o.primary = orchCfg.PrimaryProvider
	o.fallback = orchCfg.FallbackProvider
	o.mu.Unlock()
	slog.Info("orchestrator reconfigured", "primary", orchCfg.PrimaryProvider, "fallback", orchCfg.FallbackProvider)
}

// Chain reports the current primary/fallback provider names.
func (o *Orchestrator) Chain() (primary, fallback string) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.primary, o.fallback
}

// Cache exposes the response cache for stats reporting.
func (o *Orchestrator) Cache() *cache.Cache { return o.cache }

// Limiter exposes the outbound token bucket for introspection.
func (o *Orchestrator) Limiter() *ratelimit.TokenBucket { return o.limiter }

// Process runs one request through the pipeline: validate, consult the
// cache, take a rate-limit token, call the primary provider, fall back
// at most once, classify any failure into the response.
//
// A non-nil error return means caller misuse (validation) or a
// cancelled context; every runtime failure comes back as a Response
// with Error set and no suggestions, so call sites branch instead of
// recovering.
func (o *Orchestrator) Process(ctx context.Context, req *types.Request) (*types.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := req.Fingerprint()
	if resp, ok := o.cache.Get(key); ok {
		if o.metrics != nil {
			o.metrics.RecordCacheEvent("hit")
		}
		return resp, nil
	}
	if o.metrics != nil {
		o.metrics.RecordCacheEvent("miss")
	}

	waitStart := time.Now()
	if err := o.limiter.Consume(ctx, 1); err != nil {
		return nil, err
	}
	if o.metrics != nil {
		o.metrics.RecordRateLimitWait(time.Since(waitStart))
	}

	resp := o.dispatch(ctx, req, o.snapshotRoute())
	if !resp.Failed() {
		o.cache.Set(key, resp)
	}
	return resp, nil
}

// snapshotRoute resolves the current provider chain under the lock.
// The fallback slot stays empty when the configured fallback has no
// usable credentials; missing credentials disqualify silently rather
// than erroring at selection time.
func (o *Orchestrator) snapshotRoute() route {
	o.mu.RLock()
	defer o.mu.RUnlock()

	var r route
	r.primaryName = o.primary
	if a, ok := o.registry.Get(o.primary); ok {
		r.primary = a
	}
	if o.fallback != "" && o.fallback != o.primary {
		if cfg, ok := o.providers.Providers[o.fallback]; ok && cfg.Usable() {
			if a, ok := o.registry.Get(o.fallback); ok {
				r.fallback = a
				r.fallbackName = o.fallback
			}
		}
	}
	return r
}

// dispatch invokes the provider chain and converts the outcome into a
// normalized Response. When both primary and fallback fail, the
// fallback's classified error is what the caller sees; the primary's
// is logged and discarded.
func (o *Orchestrator) dispatch(ctx context.Context, req *types.Request, r route) *types.Response {
	if r.primary == nil {
		name := r.primaryName
		if name == "" {
			name = "none"
		}
		err := &provider.Error{Provider: name, Class: types.ErrClassUnknown, Message: "no provider configured"}
		return types.ErrorResponse(req.Text, err.Error())
	}

	tryPrimary := true
	if r.fallback != nil && !o.health.IsAvailable(r.primaryName) {
		// Open circuit: don't burn a call on a provider that is known
		// to be down when a fallback exists.
		slog.Warn("primary circuit open, diverting to fallback",
			"primary", r.primaryName, "fallback", r.fallbackName)
		tryPrimary = false
	}

	var primaryErr error
	if tryPrimary {
		resp, err := o.invoke(ctx, r.primary, r.primaryName, req)
		if err == nil {
			return resp
		}
		primaryErr = err
		if !provider.ClassOf(err).Retryable() || r.fallback == nil {
			return types.ErrorResponse(req.Text, err.Error())
		}
	}

	if o.metrics != nil {
		o.metrics.RecordFallback(r.primaryName, r.fallbackName)
	}
	slog.Warn("falling back",
		"primary", r.primaryName,
		"fallback", r.fallbackName,
		"primary_error", primaryErr,
	)

	resp, err := o.invoke(ctx, r.fallback, r.fallbackName, req)
	if err != nil {
		return types.ErrorResponse(req.Text, err.Error())
	}
	return resp
}

// invoke performs one provider call: complete, parse, normalize.
func (o *Orchestrator) invoke(ctx context.Context, a provider.Adapter, name string, req *types.Request) (*types.Response, error) {
	start := time.Now()
	raw, err := a.Complete(ctx, req)
	duration := time.Since(start)

	if err == nil {
		var suggestions []types.Suggestion
		suggestions, err = provider.ParseSuggestions(raw)
		if err != nil {
			err = &provider.Error{Provider: name, Class: types.ErrClassParse, Message: err.Error()}
		} else {
			o.health.RecordSuccess(name)
			if o.metrics != nil {
				o.metrics.RecordRequest(string(req.Operation), name, "ok", duration)
			}
			slog.Info("provider call completed",
				"provider", name,
				"operation", string(req.Operation),
				"suggestions", len(suggestions),
				"duration_ms", duration.Milliseconds(),
			)
			return &types.Response{Original: req.Text, Suggestions: suggestions}, nil
		}
	}

	o.health.RecordFailure(name)
	if o.metrics != nil {
		o.metrics.RecordRequest(string(req.Operation), name, string(provider.ClassOf(err)), duration)
	}
	slog.Error("provider call failed",
		"provider", name,
		"operation", string(req.Operation),
		"class", string(provider.ClassOf(err)),
		"error", err,
		"duration_ms", duration.Milliseconds(),
	)
	return nil, err
}

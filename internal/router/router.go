// Package router implements the capability-based provider routing of
// spec.md §4.M: a provider registry, ordered fallback chains, an
// attempt log, and Prometheus-backed routing metrics. Grounded on the
// teacher's ports/llm/client.go (LLMClient/LLMClientFactory shape) and
// internal/infra/llm's provider-kind split between Anthropic- and
// OpenAI-compatible wire protocols.
package router

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"skillmint/internal/core"
	"skillmint/internal/llmstream"
)

// Provider is a single named backend capable of completing a request
// for one or more capabilities.
type Provider struct {
	Name string
	Kind llmstream.Kind
	Call func(ctx context.Context, req Request) (core.LLMResponse, error)
}

// Request is the uniform completion request handed to a Provider.Call.
type Request struct {
	Messages []core.Message
	Tools    []core.ToolSchema
}

// RoutingPolicy describes how one capability is routed: a primary
// provider, an ordered fallback list, and a per-attempt timeout.
// RetryCount is stored with the policy; RouteWithFallback makes one
// attempt per provider and does not retry a failed provider.
type RoutingPolicy struct {
	Capability string
	Primary    string
	Fallbacks  []string
	TimeoutMS  int
	RetryCount int
	Enabled    bool
}

// Attempt records one provider call made while routing a capability.
type Attempt struct {
	Provider string
	Err      error
	Duration time.Duration
}

var (
	routeAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skillmint_router_attempts_total",
		Help: "Routing attempts per provider and outcome.",
	}, []string{"provider", "outcome"})

	routeLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skillmint_router_latency_seconds",
		Help:    "Latency of individual provider attempts.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
)

func init() {
	prometheus.MustRegister(routeAttempts, routeLatency)
}

// Router holds registered providers and per-capability routing
// policies.
type Router struct {
	mu        sync.RWMutex
	providers map[string]Provider
	policies  map[string]RoutingPolicy
}

// New builds an empty router.
func New() *Router {
	return &Router{
		providers: make(map[string]Provider),
		policies:  make(map[string]RoutingPolicy),
	}
}

// RegisterProvider adds or replaces a provider by name.
func (r *Router) RegisterProvider(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name] = p
}

// SetPolicy installs or replaces the routing policy for a capability.
func (r *Router) SetPolicy(p RoutingPolicy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[p.Capability] = p
}

// Policies returns every configured routing policy.
func (r *Router) Policies() []RoutingPolicy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoutingPolicy, 0, len(r.policies))
	for _, p := range r.policies {
		out = append(out, p)
	}
	return out
}

// RouteWithFallback attempts the capability's primary provider, then
// each configured fallback in order, returning the first success. Every
// attempt (including failures) is appended to the returned attempt log
// and recorded in the Prometheus counters/histograms.
func (r *Router) RouteWithFallback(ctx context.Context, capability string, req Request) (core.LLMResponse, []Attempt, error) {
	r.mu.RLock()
	policy, ok := r.policies[capability]
	r.mu.RUnlock()
	if !ok {
		return core.LLMResponse{}, nil, core.NewError(core.KindBadRequest, "no routing policy for capability %q", capability)
	}
	if !policy.Enabled {
		return core.LLMResponse{}, nil, core.NewError(core.KindBadRequest, "routing policy %q is disabled", capability)
	}

	candidates := append([]string{policy.Primary}, policy.Fallbacks...)
	var attempts []Attempt
	var lastErr error

	for _, name := range candidates {
		r.mu.RLock()
		provider, ok := r.providers[name]
		r.mu.RUnlock()
		if !ok {
			lastErr = core.NewError(core.KindNotFound, "provider %q not registered", name)
			attempts = append(attempts, Attempt{Provider: name, Err: lastErr})
			continue
		}

		callCtx := ctx
		var cancel context.CancelFunc
		if policy.TimeoutMS > 0 {
			callCtx, cancel = context.WithTimeout(ctx, time.Duration(policy.TimeoutMS)*time.Millisecond)
		}

		start := time.Now()
		resp, err := provider.Call(callCtx, req)
		elapsed := time.Since(start)
		if cancel != nil {
			cancel()
		}

		routeLatency.WithLabelValues(name).Observe(elapsed.Seconds())
		attempts = append(attempts, Attempt{Provider: name, Err: err, Duration: elapsed})

		if err == nil {
			routeAttempts.WithLabelValues(name, "success").Inc()
			return resp, attempts, nil
		}

		routeAttempts.WithLabelValues(name, "failure").Inc()
		lastErr = err
		// Every failure kind (Auth/RateLimit/Timeout/Network/Unknown)
		// promotes to the next fallback, per spec.md §7.
	}

	if lastErr == nil {
		lastErr = core.NewError(core.KindUnknown, "no providers configured for capability %q", capability)
	}
	return core.LLMResponse{}, attempts, core.Wrap(core.KindOf(lastErr), lastErr, "all providers failed for capability %q", capability)
}

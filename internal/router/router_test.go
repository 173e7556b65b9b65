package router

import (
	"context"
	"testing"

	"skillmint/internal/core"
)

func okProvider(name, text string) Provider {
	return Provider{
		Name: name,
		Call: func(_ context.Context, _ Request) (core.LLMResponse, error) {
			return core.NewTextResponse(text), nil
		},
	}
}

func failProvider(name string, kind core.Kind) Provider {
	return Provider{
		Name: name,
		Call: func(_ context.Context, _ Request) (core.LLMResponse, error) {
			return core.LLMResponse{}, core.NewError(kind, "%s failed", name)
		},
	}
}

func TestRouteWithFallbackUsesPrimaryOnSuccess(t *testing.T) {
	r := New()
	r.RegisterProvider(okProvider("primary", "from primary"))
	r.SetPolicy(RoutingPolicy{Capability: "chat", Primary: "primary", Enabled: true})

	resp, attempts, err := r.RouteWithFallback(context.Background(), "chat", Request{})
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if resp.Text != "from primary" {
		t.Fatalf("got %q", resp.Text)
	}
	if len(attempts) != 1 {
		t.Fatalf("expected 1 attempt, got %d", len(attempts))
	}
}

func TestRouteWithFallbackFallsThroughOnFailure(t *testing.T) {
	r := New()
	r.RegisterProvider(failProvider("primary", core.KindRateLimit))
	r.RegisterProvider(okProvider("backup", "from backup"))
	r.SetPolicy(RoutingPolicy{Capability: "chat", Primary: "primary", Fallbacks: []string{"backup"}, Enabled: true})

	resp, attempts, err := r.RouteWithFallback(context.Background(), "chat", Request{})
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if resp.Text != "from backup" {
		t.Fatalf("got %q", resp.Text)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(attempts))
	}
}

func TestRouteWithFallbackFailsWhenAllProvidersFail(t *testing.T) {
	r := New()
	r.RegisterProvider(failProvider("primary", core.KindAuth))
	r.RegisterProvider(failProvider("backup", core.KindNetwork))
	r.SetPolicy(RoutingPolicy{Capability: "chat", Primary: "primary", Fallbacks: []string{"backup"}, Enabled: true})

	_, attempts, err := r.RouteWithFallback(context.Background(), "chat", Request{})
	if err == nil {
		t.Fatal("expected error when all providers fail")
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(attempts))
	}
	if core.KindOf(err) != core.KindNetwork {
		t.Fatalf("expected exhaustion error to preserve the last failure's kind NETWORK, got %v", core.KindOf(err))
	}
}

func TestRouteWithFallbackRejectsDisabledPolicy(t *testing.T) {
	r := New()
	r.SetPolicy(RoutingPolicy{Capability: "chat", Primary: "primary", Enabled: false})
	_, _, err := r.RouteWithFallback(context.Background(), "chat", Request{})
	if core.KindOf(err) != core.KindBadRequest {
		t.Fatalf("expected BAD_REQUEST, got %v", core.KindOf(err))
	}
}

func TestPoliciesReturnsConfigured(t *testing.T) {
	r := New()
	r.SetPolicy(RoutingPolicy{Capability: "chat", Primary: "p", Enabled: true})
	r.SetPolicy(RoutingPolicy{Capability: "vision", Primary: "p2", Enabled: true})
	if len(r.Policies()) != 2 {
		t.Fatalf("expected 2 policies, got %d", len(r.Policies()))
	}
}

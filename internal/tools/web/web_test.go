package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"skillmint/internal/core"
)

func TestWebFetchStripsScriptAndStyle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><style>body{}</style></head><body><script>alert(1)</script><p>hello world</p></body></html>`))
	}))
	defer server.Close()

	fetch := WebFetch{}
	out, err := fetch.Execute(context.Background(), map[string]any{"url": server.URL}, core.ToolContext{})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if strings.Contains(out, "alert(1)") {
		t.Fatalf("expected script contents stripped, got %q", out)
	}
	if !strings.Contains(out, "hello world") {
		t.Fatalf("expected body text present, got %q", out)
	}
}

func TestWebFetchRejectsEmptyURL(t *testing.T) {
	fetch := WebFetch{}
	_, err := fetch.Execute(context.Background(), map[string]any{}, core.ToolContext{})
	if core.KindOf(err) != core.KindBadRequest {
		t.Fatalf("expected BAD_REQUEST, got %v", core.KindOf(err))
	}
}

func TestWebFetchSurfacesHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetch := WebFetch{}
	_, err := fetch.Execute(context.Background(), map[string]any{"url": server.URL}, core.ToolContext{})
	if core.KindOf(err) != core.KindNetwork {
		t.Fatalf("expected NETWORK, got %v", core.KindOf(err))
	}
}

type stubProvider struct {
	calls   int
	results []SearchResult
}

func (s *stubProvider) Name() string { return "stub" }
func (s *stubProvider) Search(_ context.Context, _ string, _ int) ([]SearchResult, error) {
	s.calls++
	return s.results, nil
}

func TestWebSearchCachesResults(t *testing.T) {
	provider := &stubProvider{results: []SearchResult{{Title: "a", URL: "http://a", Snippet: "s"}}}
	cache := NewSearchCache(10, time.Minute)
	ws := WebSearch{Provider: provider, Cache: cache}

	tc := core.ToolContext{}
	if _, err := ws.Execute(context.Background(), map[string]any{"query": "golang"}, tc); err != nil {
		t.Fatalf("search: %v", err)
	}
	if _, err := ws.Execute(context.Background(), map[string]any{"query": "golang"}, tc); err != nil {
		t.Fatalf("search: %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("expected provider called once due to caching, got %d calls", provider.calls)
	}
}

func TestSearchCacheExpiresByTTL(t *testing.T) {
	cache := NewSearchCache(10, -time.Second) // already expired
	cache.Put("k", []SearchResult{{Title: "x"}})
	if _, ok := cache.Get("k"); ok {
		t.Fatal("expected expired entry to be a miss")
	}
}

func TestWebSearchRejectsEmptyQuery(t *testing.T) {
	ws := WebSearch{Provider: &stubProvider{}}
	_, err := ws.Execute(context.Background(), map[string]any{}, core.ToolContext{})
	if core.KindOf(err) != core.KindBadRequest {
		t.Fatalf("expected BAD_REQUEST, got %v", core.KindOf(err))
	}
}

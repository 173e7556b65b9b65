package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"skillmint/internal/core"
)

// SearchResult is one hit returned by a SearchProvider.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// SearchProvider abstracts over the concrete search backend. Name
// identifies the provider for cache keying and diagnostics.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// WebSearch runs a query against a configured SearchProvider, caching
// results in a SearchCache keyed by provider+query.
type WebSearch struct {
	Provider SearchProvider
	Cache    *SearchCache
}

func (WebSearch) Name() string        { return "web_search" }
func (WebSearch) Description() string { return "Search the web and return titles, URLs, and snippets." }
func (WebSearch) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"query":       {Type: "string", Description: "Search query."},
			"max_results": {Type: "integer", Description: "Maximum number of results to return (default 5)."},
		},
		Required: []string{"query"},
	}
}

func (w WebSearch) Execute(ctx context.Context, input map[string]any, _ core.ToolContext) (string, error) {
	query, _ := input["query"].(string)
	if query == "" {
		return "", core.NewError(core.KindBadRequest, "query is required")
	}
	maxResults := 5
	if n, ok := input["max_results"].(float64); ok && n > 0 {
		maxResults = int(n)
	}

	cacheKey := w.Provider.Name() + ":" + query
	if w.Cache != nil {
		if cached, ok := w.Cache.Get(cacheKey); ok {
			return formatResults(cached), nil
		}
	}

	results, err := w.Provider.Search(ctx, query, maxResults)
	if err != nil {
		return "", err
	}
	if w.Cache != nil {
		w.Cache.Put(cacheKey, results)
	}
	return formatResults(results), nil
}

func formatResults(results []SearchResult) string {
	if len(results) == 0 {
		return "未找到搜索结果"
	}
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n", i+1, r.Title, r.URL, r.Snippet)
	}
	return core.TruncateResult(b.String())
}

// DuckDuckGoProvider scrapes DuckDuckGo's HTML endpoint, requiring no
// API key, as the built-in default provider.
type DuckDuckGoProvider struct {
	Client *http.Client
}

func (DuckDuckGoProvider) Name() string { return "duckduckgo" }

func (p DuckDuckGoProvider) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}

	endpoint := "https://html.duckduckgo.com/html/?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, core.Wrap(core.KindBadRequest, err, "build search request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, core.Wrap(core.KindNetwork, err, "search %q", query)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, core.Wrap(core.KindNetwork, err, "parse search results")
	}

	var results []SearchResult
	doc.Find(".result").Each(func(_ int, sel *goquery.Selection) {
		if len(results) >= maxResults {
			return
		}
		titleSel := sel.Find(".result__title a")
		title := strings.TrimSpace(titleSel.Text())
		href, _ := titleSel.Attr("href")
		snippet := strings.TrimSpace(sel.Find(".result__snippet").Text())
		if title == "" || href == "" {
			return
		}
		results = append(results, SearchResult{Title: title, URL: href, Snippet: snippet})
	})
	return results, nil
}

// APIKeySearchProvider covers the key-based providers (Brave, Tavily,
// Metaso, Bocha, SerpApi) behind one JSON-GET contract: Endpoint is
// called with the query in a "q" parameter, the key is sent in the
// AuthHeader header, and the response must carry a top-level "results"
// array of {title, url, snippet} objects.
type APIKeySearchProvider struct {
	ProviderName string
	Endpoint     string
	APIKey       string
	AuthHeader   string
	Client       *http.Client
}

func (p APIKeySearchProvider) Name() string { return p.ProviderName }

func (p APIKeySearchProvider) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}

	endpoint := p.Endpoint + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, core.Wrap(core.KindBadRequest, err, "build search request")
	}
	if p.AuthHeader != "" && p.APIKey != "" {
		req.Header.Set(p.AuthHeader, p.APIKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, core.Wrap(core.KindNetwork, err, "search %q via %s", query, p.ProviderName)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, core.NewError(core.KindAuth, "%s rejected the configured API key", p.ProviderName)
	}
	if resp.StatusCode >= 400 {
		return nil, core.NewError(core.KindNetwork, "%s returned status %d", p.ProviderName, resp.StatusCode)
	}

	var payload struct {
		Results []SearchResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, core.Wrap(core.KindNetwork, err, "decode %s response", p.ProviderName)
	}
	if len(payload.Results) > maxResults {
		payload.Results = payload.Results[:maxResults]
	}
	return payload.Results, nil
}

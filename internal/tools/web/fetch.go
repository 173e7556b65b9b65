// Package web implements the network-facing tools of spec.md §4.G:
// web_fetch and web_search. web_fetch strips script/style markup with
// github.com/PuerkitoBio/goquery (carried over from the teacher's go.mod,
// which lists it as a domain dependency for HTML-shaped tool output even
// though the teacher's own code under the retrieved slice doesn't
// exercise it directly).
package web

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"skillmint/internal/core"
)

const fetchTimeout = 30 * time.Second

var blankLines = regexp.MustCompile(`\n{3,}`)

// WebFetch downloads a URL and returns its text content with <script>
// and <style> markup stripped and excess blank lines collapsed.
type WebFetch struct {
	Client *http.Client
}

func (WebFetch) Name() string        { return "web_fetch" }
func (WebFetch) Description() string { return "Fetch a URL and return its readable text content." }
func (WebFetch) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"url": {Type: "string", Description: "URL to fetch."},
		},
		Required: []string{"url"},
	}
}

func (w WebFetch) Execute(ctx context.Context, input map[string]any, _ core.ToolContext) (string, error) {
	url, _ := input["url"].(string)
	if url == "" {
		return "", core.NewError(core.KindBadRequest, "url is required")
	}

	client := w.Client
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", core.Wrap(core.KindBadRequest, err, "build request for %s", url)
	}

	resp, err := client.Do(req)
	if err != nil {
		if fetchCtx.Err() != nil {
			return "", core.Wrap(core.KindTimeout, err, "fetch %s timed out", url)
		}
		return "", core.Wrap(core.KindNetwork, err, "fetch %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", core.NewError(core.KindNetwork, "fetch %s returned status %d", url, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "html") {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", core.Wrap(core.KindNetwork, err, "read response body for %s", url)
		}
		return core.TruncateResult(string(body)), nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", core.Wrap(core.KindBadRequest, err, "parse HTML from %s", url)
	}
	doc.Find("script, style, noscript").Remove()
	text := strings.TrimSpace(doc.Text())
	text = blankLines.ReplaceAllString(text, "\n\n")
	return core.TruncateResult(text), nil
}

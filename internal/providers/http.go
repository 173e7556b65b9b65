// Package providers builds router.Provider values that speak to a real
// HTTP endpoint: either an Anthropic-compatible or an OpenAI-compatible
// chat-completions API, using the matching internal/llmstream adapter
// to parse the streamed response body. Grounded on the teacher's
// internal/infra/llm/openai_client.go and anthropic_client.go request
// construction (the same system/messages/tools JSON shape), generalized
// to hand off response parsing to llmstream rather than duplicating it
// per client.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"skillmint/internal/core"
	"skillmint/internal/llmstream"
	"skillmint/internal/router"
)

// HTTPConfig describes one provider endpoint.
type HTTPConfig struct {
	Name    string
	Kind    llmstream.Kind
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

// NewHTTPProvider builds a router.Provider whose Call POSTs the
// conversation to cfg.BaseURL in the wire shape cfg.Kind expects, and
// parses the streamed response body with the matching llmstream.Adapter.
func NewHTTPProvider(cfg HTTPConfig) router.Provider {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	adapter := llmstream.For(cfg.Kind)

	return router.Provider{
		Name: cfg.Name,
		Kind: cfg.Kind,
		Call: func(ctx context.Context, req router.Request) (core.LLMResponse, error) {
			body, err := encodeRequest(cfg, req)
			if err != nil {
				return core.LLMResponse{}, core.Wrap(core.KindBadRequest, err, "encode request for %s", cfg.Name)
			}

			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL, bytes.NewReader(body))
			if err != nil {
				return core.LLMResponse{}, core.Wrap(core.KindNetwork, err, "build request for %s", cfg.Name)
			}
			applyAuthHeaders(httpReq, cfg)

			resp, err := client.Do(httpReq)
			if err != nil {
				return core.LLMResponse{}, classifyTransportError(err, cfg.Name)
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				return core.LLMResponse{}, core.NewError(core.KindAuth, "%s returned %d", cfg.Name, resp.StatusCode)
			}
			if resp.StatusCode == http.StatusTooManyRequests {
				return core.LLMResponse{}, core.NewError(core.KindRateLimit, "%s rate limited", cfg.Name)
			}
			if resp.StatusCode >= 500 {
				return core.LLMResponse{}, core.NewError(core.KindNetwork, "%s returned %d", cfg.Name, resp.StatusCode)
			}
			if resp.StatusCode >= 400 {
				return core.LLMResponse{}, core.NewError(core.KindBadRequest, "%s returned %d", cfg.Name, resp.StatusCode)
			}

			return adapter.Parse(resp.Body)
		},
	}
}

func applyAuthHeaders(req *http.Request, cfg HTTPConfig) {
	req.Header.Set("Content-Type", "application/json")
	switch cfg.Kind {
	case llmstream.KindAnthropicCompat:
		req.Header.Set("x-api-key", cfg.APIKey)
		req.Header.Set("anthropic-version", "2023-06-01")
	default:
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}
}

func classifyTransportError(err error, provider string) error {
	return core.Wrap(core.KindNetwork, err, "%s request failed", provider)
}

// wireMessage is the shared {role, content} shape both protocols' chat
// completion endpoints accept for plain text turns.
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireToolFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  core.ParameterSchema   `json:"parameters"`
}

type wireTool struct {
	Type     string            `json:"type"`
	Function *wireToolFunction `json:"function,omitempty"`

	// Anthropic-compat shape fields (flattened, no nested "function").
	Name        string                `json:"name,omitempty"`
	Description string                `json:"description,omitempty"`
	InputSchema *core.ParameterSchema `json:"input_schema,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Stream   bool          `json:"stream"`
	Messages []wireMessage `json:"messages"`
	Tools    []wireTool    `json:"tools,omitempty"`
}

func encodeRequest(cfg HTTPConfig, req router.Request) ([]byte, error) {
	messages := make([]wireMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Text == "" {
			continue
		}
		messages = append(messages, wireMessage{Role: string(m.Role), Content: m.Text})
	}

	tools := make([]wireTool, 0, len(req.Tools))
	for _, t := range req.Tools {
		schema := t.InputSchema
		if cfg.Kind == llmstream.KindAnthropicCompat {
			tools = append(tools, wireTool{Name: t.Name, Description: t.Description, InputSchema: &schema})
		} else {
			tools = append(tools, wireTool{Type: "function", Function: &wireToolFunction{
				Name: t.Name, Description: t.Description, Parameters: t.InputSchema,
			}})
		}
	}

	return json.Marshal(chatRequest{Model: cfg.Model, Stream: true, Messages: messages, Tools: tools})
}

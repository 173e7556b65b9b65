package llmstream

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"skillmint/internal/core"
)

// ProtocolY parses the OpenAI-chat-shape SSE stream: unnamed
// "data: {...}" lines terminated by a literal "data: [DONE]",  each
// payload holding choices[0].delta.{content,tool_calls}. Grounded on
// the teacher's internal/infra/llm/openai_client.go StreamComplete.
type ProtocolY struct{}

type yToolAccumulator struct {
	id        string
	name      string
	arguments strings.Builder
}

type yStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// Parse consumes an OpenAI-chat-shape SSE body and returns the unified
// LLMResponse once the stream reaches "[DONE]" or EOF.
func (ProtocolY) Parse(r io.Reader) (core.LLMResponse, error) {
	scanner := newSSEScanner(r)

	accumulators := make(map[int]*yToolAccumulator)
	var order []int
	appendCall := func(idx int) *yToolAccumulator {
		acc, ok := accumulators[idx]
		if !ok {
			acc = &yToolAccumulator{}
			accumulators[idx] = acc
			order = append(order, idx)
		}
		return acc
	}

	var content strings.Builder
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		if payload == "[DONE]" {
			break
		}

		var chunk yStreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta
		if delta.Content != "" {
			content.WriteString(delta.Content)
		}
		for _, tc := range delta.ToolCalls {
			acc := appendCall(tc.Index)
			if tc.ID != "" {
				acc.id = tc.ID
			}
			if tc.Function.Name != "" {
				acc.name = tc.Function.Name
			}
			if tc.Function.Arguments != "" {
				acc.arguments.WriteString(tc.Function.Arguments)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return core.LLMResponse{}, core.Wrap(core.KindNetwork, err, "read OpenAI-chat-shape stream")
	}

	var calls []core.ToolCall
	for _, idx := range order {
		acc := accumulators[idx]
		input := map[string]any{}
		if acc.arguments.Len() > 0 {
			raw := acc.arguments.String()
			if err := json.Unmarshal([]byte(raw), &input); err != nil {
				if repaired, rerr := jsonrepair.JSONRepair(raw); rerr == nil {
					_ = json.Unmarshal([]byte(repaired), &input)
				}
			}
		}
		calls = append(calls, core.ToolCall{ID: acc.id, Name: acc.name, Input: input})
	}

	switch {
	case len(calls) > 0 && content.Len() > 0:
		return core.NewTextWithToolCallsResponse(content.String(), calls), nil
	case len(calls) > 0:
		return core.NewToolCallsResponse(calls), nil
	default:
		return core.NewTextResponse(content.String()), nil
	}
}

package llmstream

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"skillmint/internal/core"
)

// ProtocolX parses the Anthropic-shape SSE stream: named events
// (content_block_start/delta/stop, message_delta, message_stop) each
// carrying a "data: " JSON payload.
type ProtocolX struct{}

type xBlockAccumulator struct {
	blockType string
	text      strings.Builder
	toolID    string
	toolName  string
	toolJSON  strings.Builder
}

// Parse consumes an Anthropic-shape SSE body and returns the unified
// LLMResponse once the stream reaches message_stop or EOF.
func (ProtocolX) Parse(r io.Reader) (core.LLMResponse, error) {
	scanner := newSSEScanner(r)

	blocks := make(map[int]*xBlockAccumulator)
	var order []int

	block := func(idx int) *xBlockAccumulator {
		acc, ok := blocks[idx]
		if !ok {
			acc = &xBlockAccumulator{}
			blocks[idx] = acc
			order = append(order, idx)
		}
		return acc
	}

	var currentEvent string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "event:") {
			currentEvent = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			continue
		}
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		switch currentEvent {
		case "content_block_start":
			var evt struct {
				Index        int `json:"index"`
				ContentBlock struct {
					Type  string         `json:"type"`
					ID    string         `json:"id"`
					Name  string         `json:"name"`
					Input map[string]any `json:"input"`
				} `json:"content_block"`
			}
			if err := json.Unmarshal([]byte(payload), &evt); err != nil {
				continue
			}
			acc := block(evt.Index)
			acc.blockType = evt.ContentBlock.Type
			acc.toolID = evt.ContentBlock.ID
			acc.toolName = evt.ContentBlock.Name

		case "content_block_delta":
			var evt struct {
				Index int `json:"index"`
				Delta struct {
					Type        string `json:"type"`
					Text        string `json:"text"`
					PartialJSON string `json:"partial_json"`
				} `json:"delta"`
			}
			if err := json.Unmarshal([]byte(payload), &evt); err != nil {
				continue
			}
			acc := block(evt.Index)
			switch evt.Delta.Type {
			case "text_delta":
				acc.text.WriteString(evt.Delta.Text)
			case "input_json_delta":
				acc.toolJSON.WriteString(evt.Delta.PartialJSON)
			}

		case "message_stop":
			return buildXResponse(blocks, order), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return core.LLMResponse{}, core.Wrap(core.KindNetwork, err, "read Anthropic-shape stream")
	}
	return buildXResponse(blocks, order), nil
}

func buildXResponse(blocks map[int]*xBlockAccumulator, order []int) core.LLMResponse {
	var text strings.Builder
	var calls []core.ToolCall

	for _, idx := range order {
		acc := blocks[idx]
		switch acc.blockType {
		case "text":
			text.WriteString(acc.text.String())
		case "tool_use":
			input := map[string]any{}
			if acc.toolJSON.Len() > 0 {
				raw := acc.toolJSON.String()
				if err := json.Unmarshal([]byte(raw), &input); err != nil {
					if repaired, rerr := jsonrepair.JSONRepair(raw); rerr == nil {
						_ = json.Unmarshal([]byte(repaired), &input)
					}
				}
			}
			calls = append(calls, core.ToolCall{ID: acc.toolID, Name: acc.toolName, Input: input})
		}
	}

	switch {
	case len(calls) > 0 && text.Len() > 0:
		return core.NewTextWithToolCallsResponse(text.String(), calls)
	case len(calls) > 0:
		return core.NewToolCallsResponse(calls)
	default:
		return core.NewTextResponse(text.String())
	}
}

package llmstream

import (
	"strings"
	"testing"

	"skillmint/internal/core"
)

func TestProtocolXParsesTextOnly(t *testing.T) {
	stream := "event: content_block_start\n" +
		"data: {\"index\":0,\"content_block\":{\"type\":\"text\"}}\n\n" +
		"event: content_block_delta\n" +
		"data: {\"index\":0,\"delta\":{\"type\":\"text_delta\",\"text\":\"Hello, \"}}\n\n" +
		"event: content_block_delta\n" +
		"data: {\"index\":0,\"delta\":{\"type\":\"text_delta\",\"text\":\"world\"}}\n\n" +
		"event: message_stop\n" +
		"data: {}\n\n"

	resp, err := ProtocolX{}.Parse(strings.NewReader(stream))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if resp.Kind != core.ResponseText {
		t.Fatalf("expected ResponseText, got %v", resp.Kind)
	}
	if resp.Text != "Hello, world" {
		t.Fatalf("got %q", resp.Text)
	}
}

func TestProtocolXParsesToolUse(t *testing.T) {
	stream := "event: content_block_start\n" +
		"data: {\"index\":0,\"content_block\":{\"type\":\"tool_use\",\"id\":\"toolu_1\",\"name\":\"bash\"}}\n\n" +
		"event: content_block_delta\n" +
		"data: {\"index\":0,\"delta\":{\"type\":\"input_json_delta\",\"partial_json\":\"{\\\"command\\\":\"}}\n\n" +
		"event: content_block_delta\n" +
		"data: {\"index\":0,\"delta\":{\"type\":\"input_json_delta\",\"partial_json\":\"\\\"ls\\\"}\"}}\n\n" +
		"event: message_stop\n" +
		"data: {}\n\n"

	resp, err := ProtocolX{}.Parse(strings.NewReader(stream))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if resp.Kind != core.ResponseToolCalls {
		t.Fatalf("expected ResponseToolCalls, got %v", resp.Kind)
	}
	if len(resp.ToolCalls) != 1 || resp.ToolCalls[0].Name != "bash" {
		t.Fatalf("got %+v", resp.ToolCalls)
	}
	if resp.ToolCalls[0].Input["command"] != "ls" {
		t.Fatalf("got input %+v", resp.ToolCalls[0].Input)
	}
}

func TestProtocolYParsesTextDeltas(t *testing.T) {
	stream := "data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\" there\"}}]}\n\n" +
		"data: [DONE]\n\n"

	resp, err := ProtocolY{}.Parse(strings.NewReader(stream))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if resp.Text != "Hi there" {
		t.Fatalf("got %q", resp.Text)
	}
}

func TestProtocolYParsesToolCallsByIndex(t *testing.T) {
	stream := `data: {"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_1","function":{"name":"grep","arguments":"{\"pattern\":"}}]}}]}
data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"foo\"}"}}]}}]}
data: [DONE]
`
	resp, err := ProtocolY{}.Parse(strings.NewReader(stream))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(resp.ToolCalls))
	}
	if resp.ToolCalls[0].Name != "grep" || resp.ToolCalls[0].Input["pattern"] != "foo" {
		t.Fatalf("got %+v", resp.ToolCalls[0])
	}
}

func TestForSelectsAdapterByKind(t *testing.T) {
	if _, ok := For(KindAnthropicCompat).(ProtocolX); !ok {
		t.Fatal("expected ProtocolX for anthropic_compat")
	}
	if _, ok := For(KindOpenAICompat).(ProtocolY); !ok {
		t.Fatal("expected ProtocolY for openai_compat")
	}
}

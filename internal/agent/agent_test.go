package agent

import (
	"context"
	"strings"
	"testing"

	"skillmint/internal/core"
	"skillmint/internal/toolregistry"
)

type stubTool struct {
	name   string
	result string
	err    error
	calls  int
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub" }
func (s *stubTool) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{Type: "object", Properties: map[string]core.Property{}}
}
func (s *stubTool) Execute(_ context.Context, _ map[string]any, _ core.ToolContext) (string, error) {
	s.calls++
	return s.result, s.err
}

type scriptedLLM struct {
	responses []core.LLMResponse
	calls     int
}

func (l *scriptedLLM) Complete(_ context.Context, _ []core.Message, _ []core.ToolSchema) (core.LLMResponse, error) {
	if l.calls >= len(l.responses) {
		return core.NewTextResponse("fallback"), nil
	}
	resp := l.responses[l.calls]
	l.calls++
	return resp, nil
}

func TestExecuteTurnReturnsImmediatelyOnTextOnlyResponse(t *testing.T) {
	llm := &scriptedLLM{responses: []core.LLMResponse{core.NewTextResponse("all done")}}
	exec := New(Config{Registry: toolregistry.New(), LLM: llm, MaxIterations: 5})

	out, err := exec.ExecuteTurn(context.Background(), core.ToolContext{}, []core.Message{{Role: core.RoleUser, Text: "hi"}})
	if err != nil {
		t.Fatalf("execute turn: %v", err)
	}
	if llm.calls != 1 {
		t.Fatalf("expected 1 LLM call, got %d", llm.calls)
	}
	if out[len(out)-1].Text != "all done" {
		t.Fatalf("got %q", out[len(out)-1].Text)
	}
}

func TestExecuteTurnDispatchesToolCallThenFinishes(t *testing.T) {
	reader := &stubTool{name: "read_file", result: "file contents"}
	reg := toolregistry.New()
	reg.Register(reader, true)

	llm := &scriptedLLM{responses: []core.LLMResponse{
		core.NewToolCallsResponse([]core.ToolCall{{ID: "call1", Name: "read_file", Input: map[string]any{"path": "a.txt"}}}),
		core.NewTextResponse("the file says: file contents"),
	}}
	exec := New(Config{Registry: reg, LLM: llm, MaxIterations: 5})

	out, err := exec.ExecuteTurn(context.Background(), core.ToolContext{}, []core.Message{{Role: core.RoleUser, Text: "read a.txt"}})
	if err != nil {
		t.Fatalf("execute turn: %v", err)
	}
	if reader.calls != 1 {
		t.Fatalf("expected tool to be called once, got %d", reader.calls)
	}

	var sawResult bool
	for _, m := range out {
		for _, b := range m.Blocks {
			if b.Type == core.BlockToolResult && b.ResultText == "file contents" {
				sawResult = true
			}
		}
	}
	if !sawResult {
		t.Fatalf("expected a tool_result block with the tool's output, got %+v", out)
	}
}

func TestExecuteTurnRejectsToolOutsideAllowedSet(t *testing.T) {
	bash := &stubTool{name: "bash", result: "ran"}
	reg := toolregistry.New()
	reg.Register(bash, true)

	llm := &scriptedLLM{responses: []core.LLMResponse{
		core.NewToolCallsResponse([]core.ToolCall{{ID: "call1", Name: "bash", Input: map[string]any{}}}),
		core.NewTextResponse("done"),
	}}
	exec := New(Config{Registry: reg, LLM: llm, MaxIterations: 5})

	tc := core.ToolContext{AllowedTools: map[string]struct{}{"read_file": {}}}
	out, err := exec.ExecuteTurn(context.Background(), tc, []core.Message{{Role: core.RoleUser, Text: "run ls"}})
	if err != nil {
		t.Fatalf("execute turn: %v", err)
	}
	if bash.calls != 0 {
		t.Fatalf("expected bash to never execute, got %d calls", bash.calls)
	}

	var sawDenied bool
	for _, m := range out {
		for _, b := range m.Blocks {
			if b.Type == core.BlockToolResult && strings.Contains(b.ResultText, "不允许使用工具") {
				sawDenied = true
			}
		}
	}
	if !sawDenied {
		t.Fatalf("expected a tool-not-allowed result, got %+v", out)
	}
}

func TestExecuteTurnPrefixesToolExecutionErrors(t *testing.T) {
	failing := &stubTool{name: "bash", err: core.NewError(core.KindIO, "boom")}
	reg := toolregistry.New()
	reg.Register(failing, true)

	llm := &scriptedLLM{responses: []core.LLMResponse{
		core.NewToolCallsResponse([]core.ToolCall{{ID: "call1", Name: "bash", Input: map[string]any{}}}),
		core.NewTextResponse("done"),
	}}
	exec := New(Config{Registry: reg, LLM: llm, MaxIterations: 5})

	out, err := exec.ExecuteTurn(context.Background(), core.ToolContext{}, []core.Message{{Role: core.RoleUser, Text: "run it"}})
	if err != nil {
		t.Fatalf("execute turn: %v", err)
	}

	var sawPrefixed bool
	for _, m := range out {
		for _, b := range m.Blocks {
			if b.Type == core.BlockToolResult && strings.HasPrefix(b.ResultText, "工具执行错误: ") {
				sawPrefixed = true
			}
		}
	}
	if !sawPrefixed {
		t.Fatalf("expected a 工具执行错误-prefixed tool result, got %+v", out)
	}
}

func TestExecuteTurnDefaultsMaxIterationsToTen(t *testing.T) {
	exec := New(Config{Registry: toolregistry.New(), LLM: &scriptedLLM{}})
	if exec.cfg.MaxIterations != 10 {
		t.Fatalf("expected default MaxIterations 10, got %d", exec.cfg.MaxIterations)
	}
}

func TestExecuteTurnStopsAtIterationLimit(t *testing.T) {
	loop := &scriptedLLM{responses: []core.LLMResponse{
		core.NewToolCallsResponse([]core.ToolCall{{ID: "c1", Name: "noop", Input: map[string]any{}}}),
		core.NewToolCallsResponse([]core.ToolCall{{ID: "c2", Name: "noop", Input: map[string]any{}}}),
		core.NewToolCallsResponse([]core.ToolCall{{ID: "c3", Name: "noop", Input: map[string]any{}}}),
	}}
	reg := toolregistry.New()
	reg.Register(&stubTool{name: "noop", result: "ok"}, true)
	exec := New(Config{Registry: reg, LLM: loop, MaxIterations: 2})

	_, err := exec.ExecuteTurn(context.Background(), core.ToolContext{}, []core.Message{{Role: core.RoleUser, Text: "loop forever"}})
	if core.KindOf(err) != core.KindIterationLimit {
		t.Fatalf("expected ITERATION_LIMIT, got %v", err)
	}
}

func TestExecuteTurnRespectsCancelledContext(t *testing.T) {
	llm := &scriptedLLM{responses: []core.LLMResponse{core.NewTextResponse("should not be reached")}}
	exec := New(Config{Registry: toolregistry.New(), LLM: llm, MaxIterations: 5})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := exec.ExecuteTurn(ctx, core.ToolContext{}, []core.Message{{Role: core.RoleUser, Text: "hi"}})
	if core.KindOf(err) != core.KindCancelled {
		t.Fatalf("expected CANCELLED, got %v", err)
	}
	if llm.calls != 0 {
		t.Fatalf("expected no LLM calls after cancellation, got %d", llm.calls)
	}
}

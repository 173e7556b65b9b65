// Package agent implements the ReAct execution loop of spec.md §4.K:
// bounded-iteration think/act/observe, tool dispatch through the
// permission gate, and per-iteration tracing. Grounded on the teacher's
// internal/domain/agent/react/engine.go (ReactEngine's injected-dependency
// shape: logger, clock, id generator, tool registry, iteration bound)
// generalized to this module's simpler single-process runtime.
package agent

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	gocontext "skillmint/internal/context"
	"skillmint/internal/core"
	"skillmint/internal/obslog"
	"skillmint/internal/permissions"
	"skillmint/internal/toolregistry"
)

// defaultTrimBudget is DEFAULT_BUDGET from spec §4.K: the token budget
// each iteration's shaped view of history is trimmed against before
// being handed to the model.
const defaultTrimBudget = 100000

// microCompactKeepRecent is the number of most-recent messages whose
// tool results are left untouched by micro-compaction each iteration.
const microCompactKeepRecent = 3

var tracer = otel.Tracer("skillmint/agent")

// Clock abstracts time.Now for deterministic tests, mirroring the
// teacher's ports/agent/runtime.go Clock/ClockFunc/SystemClock trio.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the real wall-clock implementation.
var SystemClock Clock = ClockFunc(time.Now)

// Confirmer gates tool calls that require user confirmation under the
// active permissions.Mode.
type Confirmer interface {
	Confirm(ctx context.Context, toolName string, input map[string]any) (bool, error)
}

// LLM is the single call the executor needs from the router/provider
// layer: given the current conversation and available tools, produce
// the next model turn.
type LLM interface {
	Complete(ctx context.Context, messages []core.Message, tools []core.ToolSchema) (core.LLMResponse, error)
}

// Config bundles everything one Executor needs for the lifetime of a
// session.
type Config struct {
	Registry       *toolregistry.Registry
	LLM            LLM
	Confirmer      Confirmer
	Mode           permissions.Mode
	MaxIterations  int
	Clock          Clock
	Logger         obslog.Logger
	ContextManager *gocontext.Manager
}

// Executor runs the bounded think/act/observe loop for one session.
type Executor struct {
	cfg Config
}

// New builds an Executor, defaulting MaxIterations to 10 and Clock/Logger
// to their no-op-safe implementations when omitted.
func New(cfg Config) *Executor {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 10
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}
	cfg.Logger = obslog.OrNop(cfg.Logger)
	return &Executor{cfg: cfg}
}

// ExecuteTurn runs the ReAct loop to completion: repeatedly calling the
// LLM, dispatching any requested tool calls (permission-gated), and
// appending results to history, until the model responds with text and
// no further tool calls, the iteration bound is hit, or ctx is
// cancelled.
func (e *Executor) ExecuteTurn(ctx context.Context, tc core.ToolContext, history []core.Message) ([]core.Message, error) {
	messages := append([]core.Message(nil), history...)

	for i := 0; i < e.cfg.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return messages, core.Wrap(core.KindCancelled, err, "turn cancelled at iteration %d", i)
		}

		iterCtx, span := tracer.Start(ctx, "agent.iteration", trace.WithAttributes(
			attribute.Int("iteration", i),
		))

		if e.cfg.ContextManager != nil {
			compacted, cErr := e.cfg.ContextManager.AutoCompact(iterCtx, messages)
			if cErr != nil {
				span.End()
				return messages, cErr
			}
			messages = compacted
		}

		shaped := gocontext.TrimMessages(gocontext.MicroCompact(messages, len(messages)-microCompactKeepRecent), defaultTrimBudget)

		schemas := e.cfg.Registry.ListAllowed(tc.AllowedTools)
		resp, err := e.cfg.LLM.Complete(iterCtx, shaped, schemas)
		if err != nil {
			span.End()
			return messages, err
		}

		if resp.Text != "" {
			messages = append(messages, core.Message{Role: core.RoleAssistant, Text: resp.Text})
		}

		if len(resp.ToolCalls) == 0 {
			span.End()
			return messages, nil
		}

		messages = append(messages, assistantToolCallMessage(resp.ToolCalls))

		for _, call := range resp.ToolCalls {
			result := e.dispatch(iterCtx, call, tc)
			messages = append(messages, toolResultMessage(call.ID, result))
		}

		span.End()
	}

	return messages, core.NewError(core.KindIterationLimit, "exceeded %d iterations without a final answer", e.cfg.MaxIterations)
}

func assistantToolCallMessage(calls []core.ToolCall) core.Message {
	blocks := make([]core.ContentBlock, 0, len(calls))
	for _, c := range calls {
		blocks = append(blocks, core.ContentBlock{Type: core.BlockToolUse, ID: c.ID, Name: c.Name, Input: c.Input})
	}
	return core.Message{Role: core.RoleAssistant, Blocks: blocks}
}

func toolResultMessage(toolUseID, content string) core.Message {
	return core.Message{
		Role:   core.RoleTool,
		Blocks: []core.ContentBlock{{Type: core.BlockToolResult, ToolUseID: toolUseID, ResultText: content}},
	}
}

// dispatch executes a single tool call: normalizes the name, checks the
// allow-list, asks the configured Confirmer (when one is set) if the
// active mode requires confirmation, runs the tool, and converts any
// error into a textual tool result rather than failing the whole turn.
// Without a Confirmer, tools run without confirmation in every mode.
func (e *Executor) dispatch(ctx context.Context, call core.ToolCall, tc core.ToolContext) string {
	name := permissions.Normalize(call.Name)

	if !tc.Allows(name) {
		return fmt.Sprintf("此 Skill 不允许使用工具: %s", name)
	}

	tool, ok := e.cfg.Registry.Get(name)
	if !ok {
		return core.NewError(core.KindNotFound, "tool %q is not registered", name).Error()
	}

	if e.cfg.Mode.NeedsConfirmation(name) && e.cfg.Confirmer != nil {
		ok, err := e.cfg.Confirmer.Confirm(ctx, name, call.Input)
		if err != nil {
			return core.Wrap(core.KindConfirmTimeout, err, "confirm %q", name).Error()
		}
		if !ok {
			return core.NewError(core.KindConfirmDenied, "user declined %q", name).Error()
		}
	}

	_, span := tracer.Start(ctx, "agent.tool_call", trace.WithAttributes(attribute.String("tool", name)))
	defer span.End()

	result, err := tool.Execute(ctx, call.Input, tc)
	if err != nil {
		span.SetAttributes(attribute.String("error_kind", string(core.KindOf(err))))
		e.cfg.Logger.Warn("tool %s failed: %v", name, err)
		return "工具执行错误: " + err.Error()
	}
	return result
}

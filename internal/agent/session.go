package agent

import (
	"context"

	"skillmint/internal/core"
)

// Session owns the live message history for one conversation and adapts
// the stateless Executor to the two interfaces tools need to recurse
// back into agent behavior: orchestration.SubAgentRunner (the task
// tool) and interact.Compactor (the compact tool). Both adapters exist
// to avoid an import cycle: internal/tools/orchestration and
// internal/tools/interact cannot depend on internal/agent, since
// internal/agent depends on internal/toolregistry, which registers
// those tools.
type Session struct {
	Executor *Executor
	ToolCtx  core.ToolContext

	messages []core.Message
}

// NewSession starts a session from an initial system/user history.
func NewSession(exec *Executor, tc core.ToolContext, initial []core.Message) *Session {
	return &Session{Executor: exec, ToolCtx: tc, messages: append([]core.Message(nil), initial...)}
}

// Messages returns the live history accumulated so far.
func (s *Session) Messages() []core.Message { return s.messages }

// Run executes one turn against the current history, appending whatever
// the turn produces (even on error, since ExecuteTurn returns the
// partial history alongside the failure).
func (s *Session) Run(ctx context.Context) error {
	updated, err := s.Executor.ExecuteTurn(ctx, s.ToolCtx, s.messages)
	s.messages = updated
	return err
}

// RunSubAgent satisfies orchestration.SubAgentRunner: it spins up a
// fresh, isolated Session seeded with prompt as the sole user message
// and a ToolContext narrowed to allowedTools, runs it to completion, and
// returns the sub-agent's final assistant text.
func (s *Session) RunSubAgent(ctx context.Context, prompt string, allowedTools []string) (string, error) {
	childTC := s.ToolCtx
	if allowedTools != nil {
		allowed := make(map[string]struct{}, len(allowedTools))
		for _, t := range allowedTools {
			allowed[t] = struct{}{}
		}
		childTC.AllowedTools = allowed
	}

	child := NewSession(s.Executor, childTC, []core.Message{{Role: core.RoleUser, Text: prompt}})
	if err := child.Run(ctx); err != nil {
		return "", err
	}
	return lastAssistantText(child.messages), nil
}

func lastAssistantText(messages []core.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == core.RoleAssistant && messages[i].Text != "" {
			return messages[i].Text
		}
	}
	return ""
}

// ForceCompact satisfies interact.Compactor: it runs the configured
// context.Manager's unconditional compaction over the session's own
// live message slice and adopts the result in place.
func (s *Session) ForceCompact(ctx context.Context) (string, error) {
	if s.Executor.cfg.ContextManager == nil {
		return "", core.NewError(core.KindBadRequest, "no context manager configured for this session")
	}
	compacted, summary, err := s.Executor.cfg.ContextManager.ForceCompact(ctx, s.messages)
	if err != nil {
		return "", err
	}
	s.messages = compacted
	return summary, nil
}

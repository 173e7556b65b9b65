// Package interact implements the user-facing interrupt tools
// supplemented from original_source/ (see SPEC_FULL.md §4): ask_user,
// which pauses the agent loop for a human answer, and compact, which
// forces an immediate full context compaction.
package interact

import (
	"context"

	"skillmint/internal/core"
)

// Prompter abstracts the confirmation/question surface (wired to
// manifoldco/promptui at the CLI boundary in cmd/skillmintd).
type Prompter interface {
	AskUser(ctx context.Context, question string) (string, error)
}

// AskUser pauses the agent loop and relays a question to the human
// operator, returning their answer as the tool result.
type AskUser struct {
	Prompter Prompter
}

func (AskUser) Name() string        { return "ask_user" }
func (AskUser) Description() string { return "Ask the human operator a clarifying question and wait for their answer." }
func (AskUser) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"question": {Type: "string", Description: "Question to present to the human operator."},
		},
		Required: []string{"question"},
	}
}

func (a AskUser) Execute(ctx context.Context, input map[string]any, _ core.ToolContext) (string, error) {
	question, _ := input["question"].(string)
	if question == "" {
		return "", core.NewError(core.KindBadRequest, "question is required")
	}
	answer, err := a.Prompter.AskUser(ctx, question)
	if err != nil {
		return "", core.Wrap(core.KindCancelled, err, "ask_user")
	}
	return answer, nil
}

// Compactor abstracts the context package's forced-compaction operation,
// broken out as an interface to avoid an import cycle between
// internal/tools/interact and internal/context (which itself does not
// depend on the tool subsystem).
type Compactor interface {
	ForceCompact(ctx context.Context) (summary string, err error)
}

// Compact forces an immediate full context compaction regardless of the
// current token budget.
type Compact struct {
	Compactor Compactor
}

func (Compact) Name() string        { return "compact" }
func (Compact) Description() string { return "Force an immediate compaction of the conversation context." }
func (Compact) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{Type: "object", Properties: map[string]core.Property{}}
}

func (c Compact) Execute(ctx context.Context, _ map[string]any, _ core.ToolContext) (string, error) {
	summary, err := c.Compactor.ForceCompact(ctx)
	if err != nil {
		return "", err
	}
	return "已压缩上下文：" + summary, nil
}

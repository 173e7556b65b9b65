// Package orchestration implements the nested-execution tools of
// spec.md §4.K/N: task (spawns a sub-agent with a narrowed tool
// whitelist) and skill (loads and invokes a named SKILL.md package).
// Grounded on the teacher's internal/domain/agent/react/engine.go,
// which threads a comparable team/task-definition concept through the
// same ReAct engine rather than a separate execution path.
package orchestration

import (
	"context"

	"skillmint/internal/core"
	"skillmint/internal/permissions"
)

// AgentType selects the pre-defined whitelist a sub-agent spawned by
// the task tool runs under.
type AgentType string

const (
	AgentExplore        AgentType = "explore"
	AgentPlan           AgentType = "plan"
	AgentGeneralPurpose AgentType = "general-purpose"
)

// agentWhitelists defines the tool names each agent_type is narrowed to.
// general-purpose inherits the parent's full allowed set unmodified.
var agentWhitelists = map[AgentType][]string{
	AgentExplore: {"read_file", "glob", "grep", "list_dir", "file_stat", "web_fetch", "web_search"},
	AgentPlan:    {"read_file", "glob", "grep", "list_dir", "file_stat", "memory", "todo_write"},
}

// SubAgentRunner executes a full nested agent turn and returns its final
// answer text. Implemented by internal/agent to avoid an import cycle
// (internal/agent depends on the tool registry, which depends on this
// package).
type SubAgentRunner interface {
	RunSubAgent(ctx context.Context, prompt string, allowedTools []string) (string, error)
}

// Task spawns a sub-agent to carry out an isolated objective under a
// narrowed tool whitelist determined by agent_type.
type Task struct {
	Runner SubAgentRunner
}

func (Task) Name() string        { return "task" }
func (Task) Description() string { return "Spawn a sub-agent with a narrowed tool whitelist to carry out an isolated objective." }
func (Task) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"prompt":     {Type: "string", Description: "Objective for the sub-agent to pursue."},
			"agent_type": {Type: "string", Description: "One of: explore, plan, general-purpose.", Enum: []any{"explore", "plan", "general-purpose"}},
		},
		Required: []string{"prompt", "agent_type"},
	}
}

func (t Task) Execute(ctx context.Context, input map[string]any, tc core.ToolContext) (string, error) {
	prompt, _ := input["prompt"].(string)
	agentType, _ := input["agent_type"].(string)
	if prompt == "" {
		return "", core.NewError(core.KindBadRequest, "prompt is required")
	}

	var parentAllowed []string
	for name := range tc.AllowedTools {
		parentAllowed = append(parentAllowed, name)
	}
	if tc.AllowedTools == nil {
		parentAllowed = nil // nil parent means "unrestricted", not "empty"
	}

	child := agentWhitelists[AgentType(agentType)]
	narrowed := permissions.NarrowAllowedTools(parentAllowed, child)

	result, err := t.Runner.RunSubAgent(ctx, prompt, narrowed)
	if err != nil {
		return "", err
	}
	return core.TruncateResult(result), nil
}

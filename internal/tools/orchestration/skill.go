package orchestration

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"skillmint/internal/core"
	"skillmint/internal/permissions"
	"skillmint/internal/skillconfig"
)

const maxSkillCallDepth = 4

// CallStack tracks the chain of skill names currently being invoked
// within one session, enforcing spec.md §4.N's depth limit and cycle
// detection. It is carried in ToolContext-adjacent session state rather
// than ToolContext itself, since ToolContext is cloned freely per call.
type CallStack struct {
	names []string
}

// Push adds name to the stack, rejecting a push that would exceed the
// depth limit or that reintroduces a name already on the stack.
func (s *CallStack) Push(name string) error {
	if len(s.names) >= maxSkillCallDepth {
		return core.NewError(core.KindCallDepthExceeded, "skill call depth exceeds %d (stack: %v)", maxSkillCallDepth, s.names)
	}
	for _, n := range s.names {
		if n == name {
			return core.NewError(core.KindCallCycleDetected, "skill %q already on the call stack: %v", name, s.names)
		}
	}
	s.names = append(s.names, name)
	return nil
}

// Pop removes the most recently pushed name.
func (s *CallStack) Pop() {
	if len(s.names) > 0 {
		s.names = s.names[:len(s.names)-1]
	}
}

// AdoptedSkillCall is the structured result of a skill tool call: the
// skill's system prompt and its narrowed allowed-tools set. Skill.Execute
// returns it encoded as text by encodeAdoptedSkillCall.
type AdoptedSkillCall struct {
	SkillName    string
	SystemPrompt string
	AllowedTools []string
}

// Skill looks up a SKILL.md package by name under SkillsDir, narrows the
// parent's tool whitelist to the skill's declared allowed_tools, and
// returns the resulting AdoptedSkillCall encoded as the tool result text.
type Skill struct {
	SkillsDir string
	Stack     *CallStack
}

func (Skill) Name() string        { return "skill" }
func (Skill) Description() string { return "Invoke a named skill package, adopting its system prompt and tool whitelist." }
func (Skill) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"name":      {Type: "string", Description: "Skill name (matches a directory under the skills path)."},
			"arguments": {Type: "array", Description: "Positional arguments substituted into the skill's prompt.", Items: &core.Property{Type: "string"}},
		},
		Required: []string{"name"},
	}
}

func (sk Skill) Execute(_ context.Context, input map[string]any, tc core.ToolContext) (string, error) {
	name, _ := input["name"].(string)
	if name == "" {
		return "", core.NewError(core.KindInvalidSkillName, "skill name is required")
	}

	if err := sk.Stack.Push(name); err != nil {
		return "", err
	}
	defer sk.Stack.Pop()

	skillPath := filepath.Join(sk.SkillsDir, name, "SKILL.md")
	raw, err := os.ReadFile(skillPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", core.Wrap(core.KindSkillNotFound, err, "skill %q not found", name)
		}
		return "", core.Wrap(core.KindSkillReadFailed, err, "read skill %q", name)
	}

	cfg, err := skillconfig.Parse(string(raw))
	if err != nil {
		return "", err
	}

	var args []string
	if raw, ok := input["arguments"].([]any); ok {
		for _, a := range raw {
			if s, ok := a.(string); ok {
				args = append(args, s)
			}
		}
	}
	prompt := skillconfig.SubstituteArguments(cfg.SystemPrompt, args, "")

	var parentAllowed []string
	for t := range tc.AllowedTools {
		parentAllowed = append(parentAllowed, t)
	}
	if tc.AllowedTools == nil {
		parentAllowed = nil
	}
	narrowed := permissions.NarrowAllowedTools(parentAllowed, cfg.AllowedTools)

	adopted := AdoptedSkillCall{SkillName: name, SystemPrompt: prompt, AllowedTools: narrowed}
	return encodeAdoptedSkillCall(adopted), nil
}

// encodeAdoptedSkillCall renders the adopted call as a delimited text
// block: a "[SKILL_ADOPT name=... allowed_tools=a,b]" header (without
// the allowed_tools field when the set is unrestricted) followed by the
// system prompt. internal/agent does not parse this block; it reaches
// the model as an ordinary tool result.
func encodeAdoptedSkillCall(a AdoptedSkillCall) string {
	header := "[SKILL_ADOPT name=" + a.SkillName
	if a.AllowedTools != nil {
		header += " allowed_tools=" + strings.Join(a.AllowedTools, ",")
	}
	return header + "]\n" + a.SystemPrompt
}

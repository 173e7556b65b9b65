// Package skillconfig parses SKILL.md's YAML front matter and renders the
// documented placeholder substitutions. See spec.md §4.N.
package skillconfig

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"skillmint/internal/core"
)

// Config is the parsed shape of a SKILL.md file.
type Config struct {
	Name            string   `yaml:"name,omitempty"`
	Description     string   `yaml:"description,omitempty"`
	AllowedToolsRaw any      `yaml:"allowed_tools,omitempty"`
	Model           string   `yaml:"model,omitempty"`
	MaxIterations   int      `yaml:"max_iterations,omitempty"`
	ArgumentHint    string   `yaml:"argument_hint,omitempty"`
	UserInvocable   *bool    `yaml:"user_invocable,omitempty"`
	ContextMode     string   `yaml:"context_mode,omitempty"`

	AllowedTools []string `yaml:"-"`
	SystemPrompt string   `yaml:"-"`
}

const frontMatterDelim = "---"

// Parse splits raw SKILL.md content into YAML front matter (if present)
// and a prompt body. Content lacking a leading "---" delimiter is treated
// entirely as the prompt body with a zero-value Config.
func Parse(raw string) (Config, error) {
	trimmed := strings.TrimLeft(raw, "\n")
	if !strings.HasPrefix(trimmed, frontMatterDelim) {
		return Config{SystemPrompt: raw}, nil
	}

	rest := strings.TrimPrefix(trimmed, frontMatterDelim)
	rest = strings.TrimPrefix(rest, "\n")
	closeIdx := strings.Index(rest, "\n"+frontMatterDelim)
	if closeIdx < 0 {
		return Config{SystemPrompt: raw}, nil
	}

	yamlBlock := rest[:closeIdx]
	body := rest[closeIdx+len("\n"+frontMatterDelim):]
	body = strings.TrimPrefix(body, "\n")

	var cfg Config
	if err := yaml.Unmarshal([]byte(yamlBlock), &cfg); err != nil {
		return Config{}, core.Wrap(core.KindSkillReadFailed, err, "parse SKILL.md front matter")
	}
	cfg.AllowedTools = normalizeAllowedTools(cfg.AllowedToolsRaw)
	cfg.SystemPrompt = body
	return cfg, nil
}

// normalizeAllowedTools accepts a YAML array, a comma-separated string,
// or an inline array and returns a clean []string.
func normalizeAllowedTools(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				s = strings.TrimSpace(s)
				if s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	case string:
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return nil
	}
}

// SubstituteArguments rewrites placeholders in the prompt body:
// $ARGUMENTS -> all args space-joined; $ARGUMENTS[i] / $i -> ith arg
// (empty if out of range); ${CLAUDE_SESSION_ID} -> sessionID. Unknown
// placeholders pass through unchanged.
func SubstituteArguments(prompt string, args []string, sessionID string) string {
	result := strings.ReplaceAll(prompt, "${CLAUDE_SESSION_ID}", sessionID)
	result = substituteIndexedArgs(result, args)
	result = strings.ReplaceAll(result, "$ARGUMENTS", strings.Join(args, " "))
	return result
}

// substituteIndexedArgs rewrites $ARGUMENTS[i] and bare $i placeholders.
func substituteIndexedArgs(s string, args []string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		if strings.HasPrefix(s[i:], "$ARGUMENTS[") {
			end := strings.IndexByte(s[i:], ']')
			if end > 0 {
				idxStr := s[i+len("$ARGUMENTS[") : i+end]
				if n, err := strconv.Atoi(idxStr); err == nil {
					b.WriteString(argAt(args, n))
					i += end + 1
					continue
				}
			}
		}
		if s[i] == '$' && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '9' {
			j := i + 1
			for j < len(s) && s[j] >= '0' && s[j] <= '9' {
				j++
			}
			n, _ := strconv.Atoi(s[i+1 : j])
			b.WriteString(argAt(args, n))
			i = j
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func argAt(args []string, idx int) string {
	if idx < 0 || idx >= len(args) {
		return ""
	}
	return args[idx]
}

// RenderFrontMatter is the inverse of Parse for the documented field
// subset: it serializes cfg's YAML-tagged fields back into a front
// matter + prompt body document.
func RenderFrontMatter(cfg Config) (string, error) {
	type yamlOnly struct {
		Name            string `yaml:"name,omitempty"`
		Description     string `yaml:"description,omitempty"`
		AllowedTools    []string `yaml:"allowed_tools,omitempty"`
		Model           string `yaml:"model,omitempty"`
		MaxIterations   int    `yaml:"max_iterations,omitempty"`
		ArgumentHint    string `yaml:"argument_hint,omitempty"`
		UserInvocable   *bool  `yaml:"user_invocable,omitempty"`
		ContextMode     string `yaml:"context_mode,omitempty"`
	}
	block := yamlOnly{
		Name:          cfg.Name,
		Description:   cfg.Description,
		AllowedTools:  cfg.AllowedTools,
		Model:         cfg.Model,
		MaxIterations: cfg.MaxIterations,
		ArgumentHint:  cfg.ArgumentHint,
		UserInvocable: cfg.UserInvocable,
		ContextMode:   cfg.ContextMode,
	}
	out, err := yaml.Marshal(block)
	if err != nil {
		return "", core.Wrap(core.KindIO, err, "render front matter")
	}
	return frontMatterDelim + "\n" + string(out) + frontMatterDelim + "\n" + cfg.SystemPrompt, nil
}

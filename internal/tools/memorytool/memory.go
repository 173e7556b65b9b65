// Package memorytool implements the persistent memory and todo-list
// tools of spec.md §4.H. Memory entries are stored as individual
// <key>.md files under a configured directory, mirroring the teacher's
// skills-as-files convention (internal/infra/skills).
package memorytool

import (
	"context"
	"os"
	"path/filepath"
	"regexp"

	"skillmint/internal/core"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Memory reads, writes, lists, and deletes text entries under MemoryDir,
// one file per key named "<key>.md".
type Memory struct {
	MemoryDir string
}

func (Memory) Name() string { return "memory" }
func (Memory) Description() string {
	return "Read, write, list, or delete persistent memory entries."
}
func (Memory) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"action":  {Type: "string", Description: "One of: read, write, list, delete.", Enum: []any{"read", "write", "list", "delete"}},
			"key":     {Type: "string", Description: "Memory entry key (required for read/write/delete)."},
			"content": {Type: "string", Description: "Content to write (required for write)."},
		},
		Required: []string{"action"},
	}
}

func (m Memory) Execute(_ context.Context, input map[string]any, _ core.ToolContext) (string, error) {
	action, _ := input["action"].(string)
	key, _ := input["key"].(string)

	switch action {
	case "list":
		return m.list()
	case "read":
		return m.read(key)
	case "write":
		content, _ := input["content"].(string)
		return m.write(key, content)
	case "delete":
		return m.delete(key)
	default:
		return "", core.NewError(core.KindBadRequest, "unknown memory action %q", action)
	}
}

func (m Memory) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", core.NewError(core.KindBadRequest, "invalid memory key %q", key)
	}
	return filepath.Join(m.MemoryDir, key+".md"), nil
}

func (m Memory) list() (string, error) {
	entries, err := os.ReadDir(m.MemoryDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "(尚无记忆条目)", nil
		}
		return "", core.Wrap(core.KindIO, err, "list memory directory")
	}
	var keys []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".md" {
			keys = append(keys, e.Name()[:len(e.Name())-len(".md")])
		}
	}
	if len(keys) == 0 {
		return "(尚无记忆条目)", nil
	}
	out := ""
	for _, k := range keys {
		out += k + "\n"
	}
	return out, nil
}

func (m Memory) read(key string) (string, error) {
	p, err := m.path(key)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "记忆条目不存在：" + key, nil
		}
		return "", core.Wrap(core.KindIO, err, "read memory %s", key)
	}
	return core.TruncateResult(string(data)), nil
}

func (m Memory) write(key, content string) (string, error) {
	p, err := m.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(m.MemoryDir, 0o755); err != nil {
		return "", core.Wrap(core.KindIO, err, "create memory directory")
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		return "", core.Wrap(core.KindIO, err, "write memory %s", key)
	}
	return "已保存记忆条目：" + key, nil
}

func (m Memory) delete(key string) (string, error) {
	p, err := m.path(key)
	if err != nil {
		return "", err
	}
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return "记忆条目不存在：" + key, nil
		}
		return "", core.Wrap(core.KindIO, err, "delete memory %s", key)
	}
	return "已删除记忆条目：" + key, nil
}

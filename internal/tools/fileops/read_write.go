// Package fileops implements the file manipulation tools of spec.md §4.D:
// read_file, write_file, edit, glob, grep, list_dir, file_stat,
// file_delete, file_move, and file_copy. Every path argument is resolved
// through internal/sandbox before touching the filesystem. Grounded on
// the teacher's internal/infra/tools/builtin/pathutil (path resolution)
// and internal/diff/generator.go (edit's diff reporting).
package fileops

import (
	"context"
	"os"
	"path/filepath"

	"skillmint/internal/core"
	"skillmint/internal/sandbox"
)

// ReadFile reads a UTF-8 text file and returns its content, capped at
// core.MaxToolResultLen.
type ReadFile struct{}

func (ReadFile) Name() string        { return "read_file" }
func (ReadFile) Description() string { return "Read the contents of a text file." }
func (ReadFile) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"path": {Type: "string", Description: "Path to the file, relative to the workspace."},
		},
		Required: []string{"path"},
	}
}

func (ReadFile) Execute(_ context.Context, input map[string]any, tc core.ToolContext) (string, error) {
	rawPath, _ := input["path"].(string)
	resolved, err := sandbox.Resolve(rawPath, tc.WorkDir)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return "", core.Wrap(core.KindNotFound, err, "read %s", rawPath)
		}
		return "", core.Wrap(core.KindIO, err, "read %s", rawPath)
	}
	return core.TruncateResult(string(data)), nil
}

// WriteFile overwrites (or creates) a text file with the given content.
type WriteFile struct{}

func (WriteFile) Name() string        { return "write_file" }
func (WriteFile) Description() string { return "Write content to a file, creating parent directories as needed." }
func (WriteFile) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"path":    {Type: "string", Description: "Path to the file, relative to the workspace."},
			"content": {Type: "string", Description: "Content to write."},
		},
		Required: []string{"path", "content"},
	}
}

func (WriteFile) Execute(_ context.Context, input map[string]any, tc core.ToolContext) (string, error) {
	rawPath, _ := input["path"].(string)
	content, _ := input["content"].(string)
	resolved, err := sandbox.Resolve(rawPath, tc.WorkDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", core.Wrap(core.KindIO, err, "create parent directories for %s", rawPath)
	}
	if err := os.WriteFile(resolved, []byte(content), 0o644); err != nil {
		return "", core.Wrap(core.KindIO, err, "write %s", rawPath)
	}
	return "已写入 " + rawPath, nil
}

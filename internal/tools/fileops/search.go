package fileops

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"skillmint/internal/core"
	"skillmint/internal/sandbox"
)

var skipDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"target":       {},
}

// Glob finds files under the workspace matching a shell glob pattern.
type Glob struct{}

func (Glob) Name() string        { return "glob" }
func (Glob) Description() string { return "Find files matching a glob pattern, relative to the workspace." }
func (Glob) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"pattern": {Type: "string", Description: "Glob pattern, e.g. **/*.go or src/*.ts."},
		},
		Required: []string{"pattern"},
	}
}

func (Glob) Execute(_ context.Context, input map[string]any, tc core.ToolContext) (string, error) {
	pattern, _ := input["pattern"].(string)
	if pattern == "" {
		return "", core.NewError(core.KindBadPattern, "pattern must not be empty")
	}

	var matches []string
	err := filepath.WalkDir(tc.WorkDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			if _, skip := skipDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(tc.WorkDir, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if ok, _ := filepath.Match(pattern, rel); ok {
			matches = append(matches, rel)
			return nil
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(rel)); ok {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return "", core.Wrap(core.KindIO, err, "glob %s", pattern)
	}
	sort.Strings(matches)
	if len(matches) == 0 {
		return "未找到匹配文件", nil
	}
	return core.TruncateResult(strings.Join(matches, "\n")), nil
}

// sandboxedWorkDir re-resolves an optional path input against the
// workspace, falling back to the root when empty.
func sandboxedWorkDir(input map[string]any, key string, tc core.ToolContext) (string, error) {
	raw, _ := input[key].(string)
	if raw == "" {
		return tc.WorkDir, nil
	}
	return sandbox.Resolve(raw, tc.WorkDir)
}

package fileops

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"skillmint/internal/core"
)

const grepMaxLines = 500

// Grep searches file contents under a directory for a regular
// expression, capping results at grepMaxLines matches.
type Grep struct{}

func (Grep) Name() string        { return "grep" }
func (Grep) Description() string { return "Search file contents for a regular expression." }
func (Grep) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"pattern": {Type: "string", Description: "Regular expression to search for."},
			"path":    {Type: "string", Description: "Directory to search, relative to the workspace (default: workspace root)."},
		},
		Required: []string{"pattern"},
	}
}

func (Grep) Execute(_ context.Context, input map[string]any, tc core.ToolContext) (string, error) {
	pattern, _ := input["pattern"].(string)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", core.Wrap(core.KindBadRegex, err, "compile pattern %q", pattern)
	}

	root, err := sandboxedWorkDir(input, "path", tc)
	if err != nil {
		return "", err
	}

	var lines []string
	truncated := false
	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if len(lines) >= grepMaxLines {
			truncated = true
			return filepath.SkipAll
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && d.Name() != "." {
				return filepath.SkipDir
			}
			if _, skip := skipDirs[d.Name()]; skip {
				return filepath.SkipDir
			}
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer f.Close()

		rel, _ := filepath.Rel(tc.WorkDir, path)
		rel = filepath.ToSlash(rel)

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			if len(lines) >= grepMaxLines {
				truncated = true
				return filepath.SkipAll
			}
			if re.MatchString(scanner.Text()) {
				lines = append(lines, fmt.Sprintf("%s:%d:%s", rel, lineNo, scanner.Text()))
			}
		}
		return nil
	})
	if walkErr != nil {
		return "", core.Wrap(core.KindIO, walkErr, "grep %q", pattern)
	}

	if len(lines) == 0 {
		return "未找到匹配内容", nil
	}
	result := strings.Join(lines, "\n")
	if truncated {
		result += fmt.Sprintf("\n... [已截断，仅显示前 %d 条匹配]", grepMaxLines)
	}
	return core.TruncateResult(result), nil
}

package fileops

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"skillmint/internal/core"
	"skillmint/internal/sandbox"
)

// Edit replaces one exact occurrence of old_string with new_string in a
// file, unless replace_all is set. A non-unique old_string without
// replace_all is rejected with KindNotUnique. Grounded on the teacher's
// internal/diff/generator.go for the unified-diff-backed change report.
type Edit struct{}

func (Edit) Name() string        { return "edit" }
func (Edit) Description() string { return "Replace text in a file, reporting a unified diff of the change." }
func (Edit) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"path":        {Type: "string", Description: "Path to the file, relative to the workspace."},
			"old_string":  {Type: "string", Description: "Exact text to replace."},
			"new_string":  {Type: "string", Description: "Replacement text."},
			"replace_all": {Type: "boolean", Description: "Replace every occurrence instead of requiring a unique match."},
		},
		Required: []string{"path", "old_string", "new_string"},
	}
}

func (Edit) Execute(_ context.Context, input map[string]any, tc core.ToolContext) (string, error) {
	rawPath, _ := input["path"].(string)
	oldString, _ := input["old_string"].(string)
	newString, _ := input["new_string"].(string)
	replaceAll, _ := input["replace_all"].(bool)

	resolved, err := sandbox.Resolve(rawPath, tc.WorkDir)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return "", core.Wrap(core.KindNotFound, err, "edit %s", rawPath)
		}
		return "", core.Wrap(core.KindIO, err, "read %s", rawPath)
	}
	original := string(data)

	count := strings.Count(original, oldString)
	if count == 0 {
		return "", core.NewError(core.KindNotFound, "old_string not found in %s", rawPath)
	}
	if count > 1 && !replaceAll {
		return "", core.NewError(core.KindNotUnique, "old_string matches %d locations in %s; pass replace_all or a more specific old_string", count, rawPath)
	}

	var updated string
	replaced := count
	if replaceAll {
		updated = strings.ReplaceAll(original, oldString, newString)
	} else {
		updated = strings.Replace(original, oldString, newString, 1)
		replaced = 1
	}

	if err := os.WriteFile(resolved, []byte(updated), 0o644); err != nil {
		return "", core.Wrap(core.KindIO, err, "write %s", rawPath)
	}

	diff := unifiedDiff(original, updated, rawPath)
	return fmt.Sprintf("成功替换 %d 处\n%s", replaced, diff), nil
}

// unifiedDiff renders a best-effort unified diff using
// diffmatchpatch, mirroring the teacher's diff.Generator.
func unifiedDiff(oldContent, newContent, filename string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldContent, newContent, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	patches := dmp.PatchMake(oldContent, diffs)
	if len(patches) == 0 {
		return ""
	}
	text := dmp.PatchToText(patches)
	return fmt.Sprintf("--- a/%s\n+++ b/%s\n%s", filename, filename, text)
}

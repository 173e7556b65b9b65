package fileops

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"skillmint/internal/core"
	"skillmint/internal/sandbox"
)

// ListDir lists a directory's immediate children with human-readable
// size/type markers.
type ListDir struct{}

func (ListDir) Name() string        { return "list_dir" }
func (ListDir) Description() string { return "List the immediate contents of a directory." }
func (ListDir) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"path": {Type: "string", Description: "Directory path, relative to the workspace (default: workspace root)."},
		},
	}
}

func (ListDir) Execute(_ context.Context, input map[string]any, tc core.ToolContext) (string, error) {
	dir, err := sandboxedWorkDir(input, "path", tc)
	if err != nil {
		return "", err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", core.Wrap(core.KindNotFound, err, "list directory")
		}
		return "", core.Wrap(core.KindIO, err, "list directory")
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var lines []string
	for _, e := range entries {
		if e.IsDir() {
			lines = append(lines, fmt.Sprintf("[DIR]  %s", e.Name()))
			continue
		}
		info, err := e.Info()
		size := int64(0)
		if err == nil {
			size = info.Size()
		}
		lines = append(lines, fmt.Sprintf("[FILE] %s (%s)", e.Name(), humanSize(size)))
	}
	if len(lines) == 0 {
		return "(空目录)", nil
	}
	return core.TruncateResult(strings.Join(lines, "\n")), nil
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// FileStat reports type, size, modification time, and writability for a
// single path.
type FileStat struct{}

func (FileStat) Name() string        { return "file_stat" }
func (FileStat) Description() string { return "Report type, size, modification time, and writability of a path." }
func (FileStat) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"path": {Type: "string", Description: "Path to inspect, relative to the workspace."},
		},
		Required: []string{"path"},
	}
}

func (FileStat) Execute(_ context.Context, input map[string]any, tc core.ToolContext) (string, error) {
	rawPath, _ := input["path"].(string)
	resolved, err := sandbox.Resolve(rawPath, tc.WorkDir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return "", core.Wrap(core.KindNotFound, err, "stat %s", rawPath)
		}
		return "", core.Wrap(core.KindIO, err, "stat %s", rawPath)
	}
	fileType := "file"
	if info.IsDir() {
		fileType = "dir"
	}
	readonly := info.Mode().Perm()&0o200 == 0
	return fmt.Sprintf("{type: %s, size: %d, modified: %s, readonly: %t}",
		fileType, info.Size(), info.ModTime().UTC().Format(time.RFC3339), readonly), nil
}

// FileDelete removes a file, or a directory tree when recursive is set.
type FileDelete struct{}

func (FileDelete) Name() string        { return "file_delete" }
func (FileDelete) Description() string { return "Delete a file, or a directory tree with recursive=true." }
func (FileDelete) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"path":      {Type: "string", Description: "Path to delete, relative to the workspace."},
			"recursive": {Type: "boolean", Description: "Delete a non-empty directory and its contents."},
		},
		Required: []string{"path"},
	}
}

func (FileDelete) Execute(_ context.Context, input map[string]any, tc core.ToolContext) (string, error) {
	rawPath, _ := input["path"].(string)
	recursive, _ := input["recursive"].(bool)
	resolved, err := sandbox.Resolve(rawPath, tc.WorkDir)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return "", core.Wrap(core.KindNotFound, err, "delete %s", rawPath)
		}
		return "", core.Wrap(core.KindIO, err, "delete %s", rawPath)
	}

	if info.IsDir() {
		if !recursive {
			entries, err := os.ReadDir(resolved)
			if err != nil {
				return "", core.Wrap(core.KindIO, err, "read %s", rawPath)
			}
			if len(entries) > 0 {
				return "", core.NewError(core.KindNotEmpty, "%s is not empty; pass recursive=true", rawPath)
			}
		}
		if err := os.RemoveAll(resolved); err != nil {
			return "", core.Wrap(core.KindIO, err, "delete %s", rawPath)
		}
		return "已删除 " + rawPath, nil
	}

	if err := os.Remove(resolved); err != nil {
		return "", core.Wrap(core.KindIO, err, "delete %s", rawPath)
	}
	return "已删除 " + rawPath, nil
}

// FileMove renames/moves a file or directory within the workspace.
type FileMove struct{}

func (FileMove) Name() string        { return "file_move" }
func (FileMove) Description() string { return "Move or rename a file or directory within the workspace." }
func (FileMove) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"source":      {Type: "string", Description: "Current path, relative to the workspace."},
			"destination": {Type: "string", Description: "New path, relative to the workspace."},
		},
		Required: []string{"source", "destination"},
	}
}

func (FileMove) Execute(_ context.Context, input map[string]any, tc core.ToolContext) (string, error) {
	src, _ := input["source"].(string)
	dst, _ := input["destination"].(string)
	resolvedSrc, err := sandbox.Resolve(src, tc.WorkDir)
	if err != nil {
		return "", err
	}
	resolvedDst, err := sandbox.Resolve(dst, tc.WorkDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(resolvedDst), 0o755); err != nil {
		return "", core.Wrap(core.KindIO, err, "create destination directory for %s", dst)
	}
	if err := os.Rename(resolvedSrc, resolvedDst); err != nil {
		return "", core.Wrap(core.KindIO, err, "move %s to %s", src, dst)
	}
	return fmt.Sprintf("已将 %s 移动到 %s", src, dst), nil
}

// FileCopy copies a file, or an entire directory tree when the source is
// a directory, reporting the number of files copied.
type FileCopy struct{}

func (FileCopy) Name() string        { return "file_copy" }
func (FileCopy) Description() string { return "Copy a file or directory tree within the workspace." }
func (FileCopy) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"source":      {Type: "string", Description: "Path to copy from, relative to the workspace."},
			"destination": {Type: "string", Description: "Path to copy to, relative to the workspace."},
		},
		Required: []string{"source", "destination"},
	}
}

func (FileCopy) Execute(_ context.Context, input map[string]any, tc core.ToolContext) (string, error) {
	src, _ := input["source"].(string)
	dst, _ := input["destination"].(string)
	resolvedSrc, err := sandbox.Resolve(src, tc.WorkDir)
	if err != nil {
		return "", err
	}
	resolvedDst, err := sandbox.Resolve(dst, tc.WorkDir)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(resolvedSrc)
	if err != nil {
		if os.IsNotExist(err) {
			return "", core.Wrap(core.KindNotFound, err, "copy %s", src)
		}
		return "", core.Wrap(core.KindIO, err, "stat %s", src)
	}

	if !info.IsDir() {
		if err := copyFile(resolvedSrc, resolvedDst); err != nil {
			return "", core.Wrap(core.KindIO, err, "copy %s to %s", src, dst)
		}
		return fmt.Sprintf("已复制 1 个文件：%s -> %s", src, dst), nil
	}

	count := 0
	err = filepath.WalkDir(resolvedSrc, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(resolvedSrc, path)
		if err != nil {
			return err
		}
		target := filepath.Join(resolvedDst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if err := copyFile(path, target); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return "", core.Wrap(core.KindIO, err, "copy directory %s to %s", src, dst)
	}
	return fmt.Sprintf("已复制 %d 个文件：%s -> %s", count, src, dst), nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

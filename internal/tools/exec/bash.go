// Package exec implements the shell-execution tools of spec.md §4.F:
// bash (sync and background), bash_output, bash_kill, screenshot, and
// open_in_folder. Grounded on the teacher's
// internal/infra/tools/builtin/execution/bash_test.go. Results are plain
// text: synchronous bash returns labelled stdout and stderr sections, and
// a non-zero exit becomes a KindIO error carrying the exit code and that
// text.
package exec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"skillmint/internal/core"
	"skillmint/internal/tools/procmgr"
)

// denylist blocks a short list of unambiguously destructive commands.
// This is a coarse guard, not a sandbox: the permission-confirmation
// flow (internal/permissions) is the primary control.
var denylist = []string{
	"rm -rf /",
	"mkfs",
	":(){:|:&};:",
}

func isDenied(command string) bool {
	normalized := strings.Join(strings.Fields(command), " ")
	for _, bad := range denylist {
		if strings.Contains(normalized, bad) {
			return true
		}
	}
	return false
}

const defaultTimeout = 2 * time.Minute

// Bash runs a shell command. With background=true it delegates to
// procmgr.Manager.Spawn and returns immediately with the process id;
// otherwise it runs synchronously and returns combined stdout/stderr.
type Bash struct {
	Manager *procmgr.Manager
}

func (Bash) Name() string        { return "bash" }
func (Bash) Description() string { return "Execute a shell command, synchronously or in the background." }
func (Bash) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"command":    {Type: "string", Description: "Shell command to execute."},
			"background": {Type: "boolean", Description: "Run asynchronously and return a process id immediately."},
			"timeout_ms": {Type: "integer", Description: "Timeout in milliseconds for synchronous execution."},
		},
		Required: []string{"command"},
	}
}

func (b Bash) Execute(ctx context.Context, input map[string]any, tc core.ToolContext) (string, error) {
	command, _ := input["command"].(string)
	if command == "" {
		return "", core.NewError(core.KindBadRequest, "command is required")
	}
	if isDenied(command) {
		return "", core.NewError(core.KindBadRequest, "command %q is blocked", command)
	}

	background, _ := input["background"].(bool)
	if background {
		proc, err := b.Manager.Spawn(ctx, command, tc.WorkDir)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("已在后台启动，进程 id：%s", proc.ID), nil
	}

	timeout := defaultTimeout
	if ms, ok := input["timeout_ms"].(float64); ok && ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", command)
	cmd.Dir = tc.WorkDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	text := fmt.Sprintf("stdout:\n%s\nstderr:\n%s", stdout.String(), stderr.String())
	if err != nil {
		if runCtx.Err() != nil {
			return "", core.Wrap(core.KindTimeout, err, "command timed out: %s", command)
		}
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return "", core.NewError(core.KindIO, "command exited with code %d\n%s", exitCode, text)
	}
	return core.TruncateResult(text), nil
}

// BashOutput retrieves accumulated output from a background process
// started via Bash(background=true).
type BashOutput struct {
	Manager *procmgr.Manager
}

func (BashOutput) Name() string        { return "bash_output" }
func (BashOutput) Description() string { return "Fetch output and status from a background process." }
func (BashOutput) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"process_id": {Type: "string", Description: "Process id returned by bash(background=true)."},
			"block":      {Type: "boolean", Description: "Wait up to 30 seconds for the process to exit."},
		},
		Required: []string{"process_id"},
	}
}

func (bo BashOutput) Execute(ctx context.Context, input map[string]any, _ core.ToolContext) (string, error) {
	id, _ := input["process_id"].(string)
	block, _ := input["block"].(bool)

	if !block {
		proc, ok := bo.Manager.Get(id)
		if !ok {
			return "", core.NewError(core.KindNotFound, "no background process %q", id)
		}
		status, code, stdout, stderr := proc.Snapshot()
		return formatProcessOutput(status, code, stdout, stderr), nil
	}

	status, code, stdout, stderr, err := bo.Manager.WaitForOutput(ctx, id, 30*time.Second)
	if err != nil {
		return "", err
	}
	return formatProcessOutput(status, code, stdout, stderr), nil
}

func formatProcessOutput(status procmgr.Status, code int, stdout, stderr []string) string {
	statusText := map[procmgr.Status]string{
		procmgr.StatusRunning: "running",
		procmgr.StatusExited:  "exited",
		procmgr.StatusKilled:  "killed",
	}[status]
	text := fmt.Sprintf("status: %s\nexit_code: %d\nstdout:\n%s\nstderr:\n%s",
		statusText, code, strings.Join(stdout, "\n"), strings.Join(stderr, "\n"))
	return core.TruncateResult(text)
}

// BashKill terminates a running background process.
type BashKill struct {
	Manager *procmgr.Manager
}

func (BashKill) Name() string        { return "bash_kill" }
func (BashKill) Description() string { return "Kill a running background process." }
func (BashKill) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"process_id": {Type: "string", Description: "Process id to kill."},
		},
		Required: []string{"process_id"},
	}
}

func (bk BashKill) Execute(_ context.Context, input map[string]any, _ core.ToolContext) (string, error) {
	id, _ := input["process_id"].(string)
	if err := bk.Manager.Kill(id); err != nil {
		return "", err
	}
	return "已终止进程 " + id, nil
}

// OpenInFolder reveals a path in the host OS's file manager.
type OpenInFolder struct{}

func (OpenInFolder) Name() string        { return "open_in_folder" }
func (OpenInFolder) Description() string { return "Reveal a file or directory in the OS file manager." }
func (OpenInFolder) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"path": {Type: "string", Description: "Path to reveal, relative to the workspace."},
		},
		Required: []string{"path"},
	}
}

func (OpenInFolder) Execute(ctx context.Context, input map[string]any, tc core.ToolContext) (string, error) {
	rawPath, _ := input["path"].(string)
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", "-R", rawPath)
	case "windows":
		cmd = exec.CommandContext(ctx, "explorer", "/select,"+rawPath)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", rawPath)
	}
	cmd.Dir = tc.WorkDir
	if err := cmd.Run(); err != nil {
		return "", core.Wrap(core.KindIO, err, "open %s in file manager", rawPath)
	}
	return "已在文件管理器中打开 " + rawPath, nil
}

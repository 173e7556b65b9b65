package exec

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"skillmint/internal/core"
)

// Screenshot captures the full screen to a PNG file inside the
// workspace, dispatching to the platform-native capture utility.
type Screenshot struct{}

func (Screenshot) Name() string        { return "screenshot" }
func (Screenshot) Description() string { return "Capture a screenshot of the screen to a PNG file." }
func (Screenshot) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"path": {Type: "string", Description: "Destination path, relative to the workspace (default: auto-named)."},
		},
	}
}

func (Screenshot) Execute(ctx context.Context, input map[string]any, tc core.ToolContext) (string, error) {
	rawPath, _ := input["path"].(string)
	if rawPath == "" {
		rawPath = fmt.Sprintf("screenshot-%d.png", time.Now().UnixNano())
	}
	dest := filepath.Join(tc.WorkDir, rawPath)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", core.Wrap(core.KindIO, err, "create destination directory")
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "screencapture", "-x", dest)
	case "windows":
		// No single built-in CLI screenshot tool ships with Windows;
		// callers on Windows should configure an external capture utility.
		return "", core.NewError(core.KindBadRequest, "screenshot is not supported on this platform without an external capture tool")
	default:
		cmd = exec.CommandContext(ctx, "import", "-window", "root", dest)
	}

	if err := cmd.Run(); err != nil {
		return "", core.Wrap(core.KindIO, err, "capture screenshot")
	}
	return "已保存截图至 " + rawPath, nil
}

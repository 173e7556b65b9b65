package sandbox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"skillmint/internal/core"
)

func TestResolveStaysWithinWorkDir(t *testing.T) {
	base := t.TempDir()

	resolved, err := Resolve("note.txt", base)
	if err != nil {
		t.Fatalf("expected resolve to succeed, got: %v", err)
	}
	if !isWithin(t, base, resolved) {
		t.Fatalf("expected %q to stay within %q", resolved, base)
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	base := t.TempDir()

	_, err := Resolve("../escape.txt", base)
	if err == nil {
		t.Fatal("expected traversal to be rejected")
	}
	if core.KindOf(err) != core.KindSandboxEscape {
		t.Fatalf("expected SANDBOX_ESCAPE, got %v", core.KindOf(err))
	}
}

func TestResolveRejectsAbsoluteOutsideWorkDir(t *testing.T) {
	base := t.TempDir()

	_, err := Resolve(filepath.Dir(base), base)
	if err == nil {
		t.Fatal("expected absolute path outside base to be rejected")
	}
}

func TestResolveAllowsAnyPathWhenWorkDirUnset(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	resolved, err := Resolve("whatever.txt", "")
	if err != nil {
		t.Fatalf("expected resolve to succeed without a work dir, got: %v", err)
	}
	if filepath.Dir(resolved) != cwd {
		t.Fatalf("expected resolution against cwd %q, got %q", cwd, resolved)
	}
}

func TestResolveRejectsSymlinkEscape(t *testing.T) {
	base := t.TempDir()
	outside := t.TempDir()

	link := filepath.Join(base, "logs")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlink not supported: %v", err)
	}

	_, err := Resolve(filepath.Join("logs", "secret.txt"), base)
	if err == nil {
		t.Fatal("expected symlink escape to be rejected")
	}
}

func TestResolveHandlesNonExistentLeaf(t *testing.T) {
	base := t.TempDir()

	resolved, err := Resolve(filepath.Join("nested", "new.txt"), base)
	if err != nil {
		t.Fatalf("expected resolve to succeed for a non-existent leaf, got: %v", err)
	}
	if !isWithin(t, base, resolved) {
		t.Fatalf("expected %q to stay within %q", resolved, base)
	}
}

func isWithin(t *testing.T, base, path string) bool {
	t.Helper()
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

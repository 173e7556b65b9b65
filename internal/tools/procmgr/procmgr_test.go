package procmgr

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpawnCapturesOutputAndExits(t *testing.T) {
	m := NewManager()
	proc, err := m.Spawn(context.Background(), "echo hello", t.TempDir())
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}

	status, code, stdout, _, err := m.WaitForOutput(context.Background(), proc.ID, 2*time.Second)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if status != StatusExited {
		t.Fatalf("expected StatusExited, got %v", status)
	}
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if len(stdout) != 1 || stdout[0] != "hello" {
		t.Fatalf("expected [hello], got %v", stdout)
	}
}

func TestSpawnNonZeroExit(t *testing.T) {
	m := NewManager()
	proc, err := m.Spawn(context.Background(), "exit 7", t.TempDir())
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	status, code, _, _, err := m.WaitForOutput(context.Background(), proc.ID, 2*time.Second)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if status != StatusExited || code != 7 {
		t.Fatalf("expected exited/7, got %v/%d", status, code)
	}
}

func TestKillRunningProcess(t *testing.T) {
	m := NewManager()
	proc, err := m.Spawn(context.Background(), "sleep 30", t.TempDir())
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	if err := m.Kill(proc.ID); err != nil {
		t.Fatalf("kill: %v", err)
	}
	status, _, _, _, err := m.WaitForOutput(context.Background(), proc.ID, 2*time.Second)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if status != StatusKilled && status != StatusExited {
		t.Fatalf("expected killed/exited, got %v", status)
	}
}

func TestGetMissingProcess(t *testing.T) {
	m := NewManager()
	if _, ok := m.Get("doesnotexist"); ok {
		t.Fatal("expected missing process to be absent")
	}
}

func TestRingBufferBounds(t *testing.T) {
	r := &ring{}
	for i := 0; i < ringCapacity+100; i++ {
		r.append(strings.Repeat("x", 1))
	}
	if len(r.snapshot()) != ringCapacity {
		t.Fatalf("expected ring capped at %d, got %d", ringCapacity, len(r.snapshot()))
	}
}

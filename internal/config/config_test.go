package config

import (
	"os"
	"path/filepath"
	"testing"

	"skillmint/internal/permissions"
)

func TestLoadAppliesDefaultsWithNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	cwd, _ := os.Getwd()
	defer os.Chdir(cwd)
	os.Chdir(dir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxIterations != 10 {
		t.Fatalf("expected default max_iterations 10, got %d", cfg.MaxIterations)
	}
	if cfg.Mode() != permissions.ModeDefault {
		t.Fatalf("expected default permission mode")
	}
}

func TestLoadReadsExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	os.WriteFile(path, []byte("llm_provider: openai\nmax_iterations: 10\npermission_mode: unrestricted\n"), 0o644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLMProvider != "openai" {
		t.Fatalf("got provider %q", cfg.LLMProvider)
	}
	if cfg.MaxIterations != 10 {
		t.Fatalf("got max_iterations %d", cfg.MaxIterations)
	}
	if cfg.Mode() != permissions.ModeUnrestricted {
		t.Fatalf("expected unrestricted mode")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	os.WriteFile(path, []byte("llm_provider: openai\n"), 0o644)

	os.Setenv("SKILLMINT_LLM_PROVIDER", "anthropic")
	defer os.Unsetenv("SKILLMINT_LLM_PROVIDER")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLMProvider != "anthropic" {
		t.Fatalf("expected env override, got %q", cfg.LLMProvider)
	}
}

package skillconfig

import "testing"

const sampleSkill = `---
name: demo-skill
description: A demonstration skill
allowed_tools:
  - read_file
  - grep
max_iterations: 12
---
You are demo-skill. Arguments: $ARGUMENTS
First argument: $ARGUMENTS[0]
Shorthand: $0 $1
Session: ${CLAUDE_SESSION_ID}
`

func TestParseFrontMatterAndBody(t *testing.T) {
	cfg, err := Parse(sampleSkill)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Name != "demo-skill" {
		t.Fatalf("expected name demo-skill, got %q", cfg.Name)
	}
	if cfg.MaxIterations != 12 {
		t.Fatalf("expected max_iterations 12, got %d", cfg.MaxIterations)
	}
	if len(cfg.AllowedTools) != 2 || cfg.AllowedTools[0] != "read_file" || cfg.AllowedTools[1] != "grep" {
		t.Fatalf("unexpected allowed tools: %v", cfg.AllowedTools)
	}
	if cfg.SystemPrompt == "" {
		t.Fatal("expected non-empty prompt body")
	}
}

func TestParseCommaSeparatedAllowedTools(t *testing.T) {
	raw := "---\nname: demo\nallowed_tools: read_file, grep, bash\n---\nbody"
	cfg, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"read_file", "grep", "bash"}
	if len(cfg.AllowedTools) != len(want) {
		t.Fatalf("got %v, want %v", cfg.AllowedTools, want)
	}
	for i := range want {
		if cfg.AllowedTools[i] != want[i] {
			t.Fatalf("got %v, want %v", cfg.AllowedTools, want)
		}
	}
}

func TestParseWithoutFrontMatterTreatsWholeContentAsBody(t *testing.T) {
	cfg, err := Parse("just a plain prompt, no front matter")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Name != "" {
		t.Fatalf("expected empty name, got %q", cfg.Name)
	}
	if cfg.SystemPrompt != "just a plain prompt, no front matter" {
		t.Fatalf("unexpected prompt: %q", cfg.SystemPrompt)
	}
}

func TestSubstituteArguments(t *testing.T) {
	prompt := "all=$ARGUMENTS first=$ARGUMENTS[0] second=$1 session=${CLAUDE_SESSION_ID}"
	got := SubstituteArguments(prompt, []string{"alpha", "beta"}, "sess-123")
	want := "all=alpha beta first=alpha second=beta session=sess-123"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSubstituteArgumentsOutOfRangeYieldsEmpty(t *testing.T) {
	got := SubstituteArguments("value=$ARGUMENTS[5]", []string{"only"}, "sess")
	if got != "value=" {
		t.Fatalf("got %q, want %q", got, "value=")
	}
}

func TestRenderFrontMatterRoundTrip(t *testing.T) {
	cfg, err := Parse(sampleSkill)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rendered, err := RenderFrontMatter(cfg)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	reparsed, err := Parse(rendered)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if reparsed.Name != cfg.Name || reparsed.MaxIterations != cfg.MaxIterations {
		t.Fatalf("round trip mismatch: %+v vs %+v", reparsed, cfg)
	}
}

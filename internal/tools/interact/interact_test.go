package interact

import (
	"context"
	"errors"
	"testing"

	"skillmint/internal/core"
)

type stubPrompter struct {
	answer string
	err    error
}

func (s stubPrompter) AskUser(_ context.Context, _ string) (string, error) {
	return s.answer, s.err
}

func TestAskUserReturnsAnswer(t *testing.T) {
	a := AskUser{Prompter: stubPrompter{answer: "yes, proceed"}}
	got, err := a.Execute(context.Background(), map[string]any{"question": "continue?"}, core.ToolContext{})
	if err != nil {
		t.Fatalf("ask_user: %v", err)
	}
	if got != "yes, proceed" {
		t.Fatalf("got %q", got)
	}
}

func TestAskUserRequiresQuestion(t *testing.T) {
	a := AskUser{Prompter: stubPrompter{}}
	_, err := a.Execute(context.Background(), map[string]any{}, core.ToolContext{})
	if core.KindOf(err) != core.KindBadRequest {
		t.Fatalf("expected BAD_REQUEST, got %v", core.KindOf(err))
	}
}

func TestAskUserPropagatesCancellation(t *testing.T) {
	a := AskUser{Prompter: stubPrompter{err: errors.New("interrupted")}}
	_, err := a.Execute(context.Background(), map[string]any{"question": "q"}, core.ToolContext{})
	if core.KindOf(err) != core.KindCancelled {
		t.Fatalf("expected CANCELLED, got %v", core.KindOf(err))
	}
}

type stubCompactor struct {
	summary string
	err     error
}

func (s stubCompactor) ForceCompact(_ context.Context) (string, error) {
	return s.summary, s.err
}

func TestCompactReturnsSummary(t *testing.T) {
	c := Compact{Compactor: stubCompactor{summary: "12 messages compacted"}}
	got, err := c.Execute(context.Background(), map[string]any{}, core.ToolContext{})
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	if got != "已压缩上下文：12 messages compacted" {
		t.Fatalf("got %q", got)
	}
}

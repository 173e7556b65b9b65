package main

import (
	"context"

	"github.com/manifoldco/promptui"
)

// newlinePrompter implements interact.Prompter using promptui's line
// editor, so an ask_user tool call pauses the CLI for an interactive
// answer rather than failing in a non-interactive runtime.
type newlinePrompter struct{}

func (newlinePrompter) AskUser(_ context.Context, question string) (string, error) {
	p := promptui.Prompt{Label: question}
	return p.Run()
}

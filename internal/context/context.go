// Package context implements the token-budgeted context management of
// spec.md §4.J: token estimation, hard trimming, micro-compaction of
// stale tool output, and full LLM-driven compaction with transcript
// persistence. Grounded on the teacher's internal/context/manager.go
// (EstimateTokens' len/4 heuristic, the keep-first-and-last trimming
// strategy) generalized to this module's richer Message/ContentBlock
// shape.
package context

import (
	gocontext "context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"skillmint/internal/core"
)

// tokensPerChar mirrors the teacher's "1 token ≈ 4 chars" heuristic.
const tokensPerChar = 4

// EstimateTokens approximates the token cost of a message slice using
// the same coarse len/4 heuristic as the teacher, generalized to
// account for structured content blocks via Message.SerializedLen.
func EstimateTokens(messages []core.Message) int {
	total := 0
	for _, m := range messages {
		total += m.SerializedLen() / tokensPerChar
	}
	return total
}

// ShouldCompress reports whether messages have crossed the given
// fraction of limit tokens (default threshold 0.8, matching the
// teacher).
func ShouldCompress(messages []core.Message, limit int, threshold float64) bool {
	if threshold <= 0 {
		threshold = 0.8
	}
	return float64(EstimateTokens(messages)) > float64(limit)*threshold
}

const keepRecentCount = 10

// trimFillFraction is the fraction of the token budget (converted to
// chars via tokensPerChar) available to fill with middle messages once
// the first and last message are reserved.
const trimFillFraction = 0.7

// TrimMessages keeps the first and last message unconditionally and
// fills backward from the end with as many of the remaining middle
// messages as fit within 0.7*tokenBudget*4 chars (after reserving room
// for the first and last message themselves). If any middle messages
// are dropped, a single synthetic notice is inserted between the first
// message and the preserved tail. It is a no-op when there are 2 or
// fewer messages, or when the whole history already fits the budget.
func TrimMessages(messages []core.Message, tokenBudget int) []core.Message {
	if len(messages) <= 2 {
		return messages
	}
	if EstimateTokens(messages) <= tokenBudget {
		return messages
	}

	first := messages[0]
	last := messages[len(messages)-1]
	charBudget := trimFillFraction * float64(tokenBudget) * tokensPerChar
	fillBudget := charBudget - float64(first.SerializedLen()+last.SerializedLen())

	var kept []core.Message
	accumulated := 0
	for i := len(messages) - 2; i >= 1; i-- {
		chars := messages[i].SerializedLen()
		if float64(accumulated+chars) > fillBudget {
			break
		}
		accumulated += chars
		kept = append([]core.Message{messages[i]}, kept...)
	}

	dropped := (len(messages) - 2) - len(kept)
	result := make([]core.Message, 0, len(kept)+3)
	result = append(result, first)
	if dropped > 0 {
		result = append(result, core.Message{
			Role: core.RoleUser,
			Text: fmt.Sprintf("[前 %d 条消息已省略]", dropped),
		})
	}
	result = append(result, kept...)
	result = append(result, last)
	return result
}

const microCompactMarker = "[已执行]"

// MicroCompact replaces the content of stale tool results with a short
// marker while preserving their correlating ids, for every message
// index strictly before keepFromIndex. It handles both the Blocks-style
// tool_result content and the flat ToolCallID/ToolCalls shape used by
// Protocol Y conversations.
func MicroCompact(messages []core.Message, keepFromIndex int) []core.Message {
	result := make([]core.Message, len(messages))
	copy(result, messages)

	for i := 0; i < keepFromIndex && i < len(result); i++ {
		msg := result[i]
		if len(msg.Blocks) > 0 {
			newBlocks := make([]core.ContentBlock, len(msg.Blocks))
			copy(newBlocks, msg.Blocks)
			for j, b := range newBlocks {
				if b.Type == core.BlockToolResult {
					newBlocks[j].ResultText = microCompactMarker
				}
			}
			msg.Blocks = newBlocks
		} else if msg.Role == core.RoleTool {
			msg.Text = microCompactMarker
		}
		result[i] = msg
	}
	return result
}

// Summarizer produces a short natural-language summary of a message
// range, delegating to the configured LLM. It is the one piece of
// AutoCompact/ForceCompact that depends on a live model call.
type Summarizer interface {
	Summarize(ctx gocontext.Context, messages []core.Message) (string, error)
}

// Manager owns the full compaction lifecycle for one session,
// persisting the pre-compaction transcript as JSONL before truncating
// in-memory history.
type Manager struct {
	Summarizer   Summarizer
	TranscriptDir string
	SessionID    string

	TokenLimit int
	Threshold  float64
}

// AutoCompact compresses messages in place if they have crossed the
// configured threshold, returning the possibly-unmodified slice.
func (m *Manager) AutoCompact(ctx gocontext.Context, messages []core.Message) ([]core.Message, error) {
	if !ShouldCompress(messages, m.TokenLimit, m.Threshold) {
		return messages, nil
	}
	return m.compact(ctx, messages)
}

// ForceCompact compacts unconditionally, regardless of current token
// usage. The agent loop owns the live message slice, so it is the one
// that calls this and adopts the result; the interact.Compact tool
// reaches it through a thin adapter (see internal/agent).
func (m *Manager) ForceCompact(ctx gocontext.Context, messages []core.Message) ([]core.Message, string, error) {
	compacted, err := m.compact(ctx, messages)
	if err != nil {
		return nil, "", err
	}
	return compacted, fmt.Sprintf("%d -> %d 条消息", len(messages), len(compacted)), nil
}

// compact persists the pre-compaction transcript, asks the summarizer
// for a synopsis of the messages being dropped, and returns a trimmed
// history of [system, summary-notice, recent...].
func (m *Manager) compact(ctx gocontext.Context, messages []core.Message) ([]core.Message, error) {
	if err := m.persistTranscript(messages); err != nil {
		return nil, err
	}

	if len(messages) <= keepRecentCount+1 {
		return messages, nil
	}

	toSummarize := messages[1 : len(messages)-keepRecentCount]
	summary := "[历史对话已省略]"
	if m.Summarizer != nil && len(toSummarize) > 0 {
		s, err := m.Summarizer.Summarize(ctx, toSummarize)
		if err == nil && s != "" {
			summary = s
		}
	}

	result := make([]core.Message, 0, keepRecentCount+2)
	result = append(result, messages[0])
	result = append(result, core.Message{Role: core.RoleUser, Text: "[对话摘要] " + summary})
	result = append(result, messages[len(messages)-keepRecentCount:]...)
	return result, nil
}

func (m *Manager) persistTranscript(messages []core.Message) error {
	if m.TranscriptDir == "" {
		return nil
	}
	if err := os.MkdirAll(m.TranscriptDir, 0o755); err != nil {
		return core.Wrap(core.KindIO, err, "create transcript directory")
	}
	filename := fmt.Sprintf("%s-%d.jsonl", m.SessionID, time.Now().UnixNano())
	path := filepath.Join(m.TranscriptDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return core.Wrap(core.KindIO, err, "create transcript file")
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, msg := range messages {
		if err := enc.Encode(msg); err != nil {
			return core.Wrap(core.KindIO, err, "write transcript entry")
		}
	}
	return nil
}

// Package llmstream implements the two SSE streaming wire-protocol
// adapters of spec.md §4.I, unified into core.LLMResponse. Grounded on
// the teacher's internal/infra/llm/stream_scanner.go (buffered scanner
// sizing) and internal/infra/llm/openai_client.go's StreamComplete
// (tool-call delta accumulation by index).
package llmstream

import (
	"bufio"
	"io"
)

const (
	scannerInitialBuffer = 64 * 1024
	scannerMaxBuffer      = 512 * 1024
)

// newSSEScanner builds a line scanner sized for typical SSE event
// payloads, growing up to scannerMaxBuffer for unusually large chunks.
func newSSEScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, scannerInitialBuffer), scannerMaxBuffer)
	return scanner
}

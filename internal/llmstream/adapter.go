package llmstream

import (
	"io"

	"skillmint/internal/core"
)

// Adapter parses one provider's SSE wire shape into the uniform
// core.LLMResponse.
type Adapter interface {
	Parse(r io.Reader) (core.LLMResponse, error)
}

// Kind tags which wire shape a provider speaks, used by internal/providers
// to pick the adapter that parses that provider's responses.
type Kind string

const (
	KindAnthropicCompat Kind = "anthropic_compat"
	KindOpenAICompat    Kind = "openai_compat"
)

// For resolves the Adapter implementation for a given provider Kind.
func For(kind Kind) Adapter {
	switch kind {
	case KindAnthropicCompat:
		return ProtocolX{}
	case KindOpenAICompat:
		return ProtocolY{}
	default:
		return ProtocolY{}
	}
}

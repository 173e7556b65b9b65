package providers

import (
	"context"

	"skillmint/internal/core"
	"skillmint/internal/router"
)

// RouterLLM adapts a router.Router to the internal/agent.LLM interface,
// always routing through the capability named "chat".
type RouterLLM struct {
	Router *router.Router
}

func (r RouterLLM) Complete(ctx context.Context, messages []core.Message, tools []core.ToolSchema) (core.LLMResponse, error) {
	resp, _, err := r.Router.RouteWithFallback(ctx, "chat", router.Request{Messages: messages, Tools: tools})
	return resp, err
}

// Package llm routes chat turns through a language model and speaks the
// function-call protocol the assistant uses to take actions.
package llm

import "context"

// Role values for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role    string
	Content string
}

// Provider turns an ordered message list into a single completion.
type Provider interface {
	Chat(ctx context.Context, messages []ChatMessage) (string, error)
	Name() string
}

package llmHandlers

import (
	"context"
)

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type Message struct {
	Role    MessageRole
	Content string
}

// Client is a plain chat completion: one system instruction followed by the conversation.
type Client interface {
	Chat(ctx context.Context, systemMessage string, messages []Message) (string, error)
}

// Package llm provides clients for text-completion services.
package llm

import "context"

// LLM is the interface for interacting with Large Language Models.
type LLM interface {
	// Complete generates a completion for a given prompt.
	Complete(ctx context.Context, prompt string) (string, error)
	// Chat generates a response for a list of chat messages.
	Chat(ctx context.Context, messages []ChatMessage) (string, error)
	// Stream generates a streaming completion for a given prompt.
	Stream(ctx context.Context, prompt string) (<-chan string, error)
}

// MessageRole represents the role of a message sender.
type MessageRole string

const (
	// MessageRoleSystem is for system instructions.
	MessageRoleSystem MessageRole = "system"
	// MessageRoleUser is for user messages.
	MessageRoleUser MessageRole = "user"
	// MessageRoleAssistant is for assistant responses.
	MessageRoleAssistant MessageRole = "assistant"
)

// ChatMessage is a single message in a chat conversation.
type ChatMessage struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// NewUserMessage creates a user chat message.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Role: MessageRoleUser, Content: content}
}

// NewSystemMessage creates a system chat message.
func NewSystemMessage(content string) ChatMessage {
	return ChatMessage{Role: MessageRoleSystem, Content: content}
}

// NewAssistantMessage creates an assistant chat message.
func NewAssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: MessageRoleAssistant, Content: content}
}

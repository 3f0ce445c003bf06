package port

import (
	"context"
	"encoding/json"
)

// ChatMessage is a single turn in an assistant conversation. Assistant turns
// that requested tools must carry the ToolCalls they made: the API rejects a
// tool-role result whose preceding assistant message lacks the matching call.
type ChatMessage struct {
	Role       string     `json:"role"` // system, user, assistant, tool
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolDef describes a callable tool exposed to the model.
type ToolDef struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON schema
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ChatInput carries a conversation and the tools available to the model.
type ChatInput struct {
	Messages []ChatMessage
	Tools    []ToolDef
}

// ChatOutput is the model's reply: either content, tool calls, or both.
type ChatOutput struct {
	Content   string
	ToolCalls []ToolCall
	ModelUsed string
}

// ChatClient abstracts an LLM chat-completion backend with tool calling.
type ChatClient interface {
	Complete(ctx context.Context, input ChatInput) (*ChatOutput, error)
}

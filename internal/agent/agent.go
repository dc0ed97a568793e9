package agent

import "context"

// StreamEventType identifies streamed event kinds.
type StreamEventType int

const (
	StreamEventMessage StreamEventType = iota
	StreamEventToolCall
)

// StreamEvent carries either a message or tool call from the engine stream.
type StreamEvent struct {
	Type     StreamEventType
	Message  string
	ToolCall ToolCall
}

// Stream yields incremental engine events.
type Stream interface {
	Recv() (StreamEvent, error)
}

// Provider streams reasoning-engine responses for a prompt.
type Provider interface {
	Stream(ctx context.Context, prompt Prompt) (Stream, error)
}

// ToolCall describes a tool invocation emitted by the engine.
type ToolCall struct {
	ID   string
	Name string
	Args ToolCallArgs
}

// ToolResult carries the captured output for one resolved tool call.
type ToolResult struct {
	CallID string
	Output string
}

// ToolDefinition describes a callable tool exposed to the engine.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  *ToolSchema
}

// Prompt is the fully assembled request sent to a provider: the system
// instructions, the ordered transcript, and the declared tool schema.
type Prompt struct {
	Instructions string
	InputItems   []HistoryItem
	Tools        []ToolDefinition
}

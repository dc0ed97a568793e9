package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// defaultOpenRouterBaseURL is the default OpenRouter API base URL.
const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// HTTPDoer abstracts HTTP clients used by providers.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// OpenRouterProvider implements Provider for the OpenRouter API.
type OpenRouterProvider struct {
	APIKey  string
	BaseURL string
	Client  HTTPDoer
	Model   string
}

// NewOpenRouterProvider constructs an OpenRouter provider with explicit settings.
func NewOpenRouterProvider(model, apiKey, baseURL string, client HTTPDoer) (*OpenRouterProvider, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenRouterProvider{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
		Model:   model,
	}, nil
}

// Stream sends a prompt to OpenRouter and returns a stream of events.
func (p *OpenRouterProvider) Stream(ctx context.Context, prompt Prompt) (Stream, error) {
	messages, err := buildChatMessages(prompt)
	if err != nil {
		return nil, err
	}
	requestBody := chatRequest{
		Model:    p.Model,
		Stream:   true,
		Messages: messages,
	}
	if len(prompt.Tools) > 0 {
		requestBody.Tools = buildChatTools(prompt.Tools)
		requestBody.ToolChoice = "auto"
	}
	payload, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := p.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openrouter error: %s", strings.TrimSpace(string(body)))
	}

	events, err := parseChatStream(resp.Body)
	if err != nil {
		return nil, err
	}
	return &staticStream{events: events}, nil
}

// chatRequest is the JSON payload sent to OpenRouter.
type chatRequest struct {
	Model      string        `json:"model"`
	Stream     bool          `json:"stream"`
	Messages   []chatMessage `json:"messages"`
	Tools      []chatTool    `json:"tools,omitempty"`
	ToolChoice string        `json:"tool_choice,omitempty"`
}

// chatMessage represents a single chat-completions message.
type chatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

// chatTool describes a function tool for the chat-completions schema.
type chatTool struct {
	Type     string             `json:"type"`
	Function chatToolDefinition `json:"function"`
}

// chatToolDefinition describes a tool's function signature.
type chatToolDefinition struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Parameters  *ToolSchema `json:"parameters,omitempty"`
}

// chatToolCall represents a tool call emitted by the engine.
type chatToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function chatFunctionCall `json:"function"`
}

// chatFunctionCall describes the name and arguments of a tool call.
type chatFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// buildChatMessages converts a prompt into chat-completions messages.
func buildChatMessages(prompt Prompt) ([]chatMessage, error) {
	messages := make([]chatMessage, 0, len(prompt.InputItems)+1)
	if strings.TrimSpace(prompt.Instructions) != "" {
		messages = append(messages, chatMessage{
			Role:    "system",
			Content: prompt.Instructions,
		})
	}
	for _, item := range prompt.InputItems {
		msg, err := toChatMessage(item)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// toChatMessage converts a transcript item into a chat-completions message.
func toChatMessage(item HistoryItem) (chatMessage, error) {
	switch content := item.Content.(type) {
	case HistoryText:
		return chatMessage{Role: item.Role, Content: content.Text}, nil
	case ToolCall:
		args := content.Args
		if args == nil {
			args = ToolCallArgs{}
		}
		payload, err := json.Marshal(args)
		if err != nil {
			return chatMessage{}, fmt.Errorf("marshal tool args: %w", err)
		}
		if content.ID == "" {
			return chatMessage{}, fmt.Errorf("tool call id is required")
		}
		return chatMessage{
			Role: item.Role,
			ToolCalls: []chatToolCall{{
				ID:   content.ID,
				Type: "function",
				Function: chatFunctionCall{
					Name:      content.Name,
					Arguments: string(payload),
				},
			}},
		}, nil
	case ToolResult:
		return chatMessage{
			Role:       "tool",
			Content:    content.Output,
			ToolCallID: content.CallID,
		}, nil
	default:
		return chatMessage{}, fmt.Errorf("unsupported history content type %T", item.Content)
	}
}

// buildChatTools converts tool definitions into chat-completions tool payloads.
func buildChatTools(defs []ToolDefinition) []chatTool {
	tools := make([]chatTool, 0, len(defs))
	for _, def := range defs {
		params := def.Parameters
		if params == nil {
			defaultSchema := ToolSchema{Type: "object"}
			params = &defaultSchema
		}
		tools = append(tools, chatTool{
			Type: "function",
			Function: chatToolDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  params,
			},
		})
	}
	return tools
}

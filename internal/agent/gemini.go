package agent

import (
	"context"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// Generation settings used for triage analysis.
const (
	geminiTemperature     = 0
	geminiMaxOutputTokens = 1024
)

// GeminiProvider implements Provider on the official genai client.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider constructs a Gemini provider. The API key may be empty,
// in which case the genai client reads it from the environment.
func NewGeminiProvider(ctx context.Context, model, apiKey string) (*GeminiProvider, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

// Stream sends a prompt to Gemini and returns the response as a stream.
func (p *GeminiProvider) Stream(ctx context.Context, prompt Prompt) (Stream, error) {
	contents, err := buildGeminiContents(prompt.InputItems)
	if err != nil {
		return nil, err
	}
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](geminiTemperature),
		MaxOutputTokens: geminiMaxOutputTokens,
	}
	if strings.TrimSpace(prompt.Instructions) != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: prompt.Instructions}},
		}
	}
	if len(prompt.Tools) > 0 {
		config.Tools = buildGeminiTools(prompt.Tools)
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return nil, err
	}
	events, err := geminiResponseEvents(resp)
	if err != nil {
		return nil, err
	}
	return &staticStream{events: events}, nil
}

// buildGeminiContents converts transcript items into genai contents.
func buildGeminiContents(items []HistoryItem) ([]*genai.Content, error) {
	// Function responses must carry the tool name, which lives on the
	// originating call, not the result.
	callNames := map[string]string{}
	for _, item := range items {
		if call, ok := item.Content.(ToolCall); ok {
			callNames[call.ID] = call.Name
		}
	}

	contents := make([]*genai.Content, 0, len(items))
	for _, item := range items {
		switch content := item.Content.(type) {
		case HistoryText:
			role := "user"
			if item.Role == RoleAssistant {
				role = "model"
			}
			contents = append(contents, &genai.Content{
				Role:  role,
				Parts: []*genai.Part{{Text: content.Text}},
			})
		case ToolCall:
			args, err := content.Args.Decode()
			if err != nil {
				return nil, err
			}
			contents = append(contents, &genai.Content{
				Role: "model",
				Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{
					ID:   content.ID,
					Name: content.Name,
					Args: args,
				}}},
			})
		case ToolResult:
			contents = append(contents, &genai.Content{
				Role: "user",
				Parts: []*genai.Part{{FunctionResponse: &genai.FunctionResponse{
					ID:       content.CallID,
					Name:     callNames[content.CallID],
					Response: map[string]any{"output": content.Output},
				}}},
			})
		default:
			return nil, fmt.Errorf("unsupported history content type %T", item.Content)
		}
	}
	return contents, nil
}

// buildGeminiTools converts tool definitions into genai function declarations.
func buildGeminiTools(defs []ToolDefinition) []*genai.Tool {
	declarations := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, def := range defs {
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  geminiSchema(def.Parameters),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: declarations}}
}

// geminiSchema converts a tool schema into the genai schema shape.
func geminiSchema(schema *ToolSchema) *genai.Schema {
	if schema == nil {
		return &genai.Schema{Type: genai.TypeObject}
	}
	converted := &genai.Schema{
		Description: schema.Description,
		Required:    schema.Required,
	}
	switch schema.Type {
	case "object":
		converted.Type = genai.TypeObject
	case "string":
		converted.Type = genai.TypeString
	case "integer":
		converted.Type = genai.TypeInteger
	default:
		converted.Type = genai.TypeObject
	}
	if len(schema.Properties) > 0 {
		converted.Properties = make(map[string]*genai.Schema, len(schema.Properties))
		for name, property := range schema.Properties {
			property := property
			converted.Properties[name] = geminiSchema(&property)
		}
	}
	return converted
}

// geminiResponseEvents converts a generate-content response into stream events.
func geminiResponseEvents(resp *genai.GenerateContentResponse) ([]StreamEvent, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates")
	}
	var events []StreamEvent
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			events = append(events, StreamEvent{
				Type:    StreamEventMessage,
				Message: part.Text,
			})
		}
		if part.FunctionCall != nil {
			args, err := ArgsFromMap(part.FunctionCall.Args)
			if err != nil {
				return nil, err
			}
			events = append(events, StreamEvent{
				Type: StreamEventToolCall,
				ToolCall: ToolCall{
					ID:   part.FunctionCall.ID,
					Name: part.FunctionCall.Name,
					Args: args,
				},
			})
		}
	}
	return events, nil
}

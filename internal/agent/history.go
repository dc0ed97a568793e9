package agent

import "fmt"

// Transcript roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// HistoryContent represents a single typed content item in a turn.
type HistoryContent interface {
	historyContent()
}

// HistoryText holds plain text content for a history item.
type HistoryText struct {
	Text string
}

// historyContent marks HistoryText as HistoryContent.
func (HistoryText) historyContent() {}

// historyContent marks ToolCall as HistoryContent.
func (ToolCall) historyContent() {}

// historyContent marks ToolResult as HistoryContent.
func (ToolResult) historyContent() {}

// HistoryItem captures a single transcript item with a role and typed content.
type HistoryItem struct {
	Role    string
	Content HistoryContent
}

// UserPrompt builds a user-authored transcript item.
func UserPrompt(text string) HistoryItem {
	return HistoryItem{Role: RoleUser, Content: HistoryText{Text: text}}
}

// AssistantText builds an assistant text transcript item.
func AssistantText(text string) HistoryItem {
	return HistoryItem{Role: RoleAssistant, Content: HistoryText{Text: text}}
}

// AssistantTexts returns every assistant text message in transcript order.
func AssistantTexts(transcript []HistoryItem) []string {
	texts := make([]string, 0, len(transcript))
	for _, item := range transcript {
		if item.Role != RoleAssistant {
			continue
		}
		if text, ok := item.Content.(HistoryText); ok {
			texts = append(texts, text.Text)
		}
	}
	return texts
}

// ValidateTranscript checks the tool-call resolution invariant: every
// ToolResult resolves exactly one earlier pending ToolCall with the same id,
// and no id is resolved twice.
func ValidateTranscript(transcript []HistoryItem) error {
	pending := map[string]bool{}
	resolved := map[string]bool{}
	for i, item := range transcript {
		switch content := item.Content.(type) {
		case HistoryText:
		case ToolCall:
			if content.ID == "" {
				return fmt.Errorf("transcript item %d: tool call without an id", i)
			}
			if pending[content.ID] || resolved[content.ID] {
				return fmt.Errorf("transcript item %d: duplicate tool call id %q", i, content.ID)
			}
			pending[content.ID] = true
		case ToolResult:
			if !pending[content.CallID] {
				if resolved[content.CallID] {
					return fmt.Errorf("transcript item %d: tool call id %q resolved twice", i, content.CallID)
				}
				return fmt.Errorf("transcript item %d: tool result for unknown call id %q", i, content.CallID)
			}
			delete(pending, content.CallID)
			resolved[content.CallID] = true
		default:
			return fmt.Errorf("transcript item %d: unsupported content type %T", i, item.Content)
		}
	}
	return nil
}

// PendingToolCalls returns the ids of tool calls that have no matching result.
func PendingToolCalls(transcript []HistoryItem) []string {
	resolved := map[string]bool{}
	for _, item := range transcript {
		if result, ok := item.Content.(ToolResult); ok {
			resolved[result.CallID] = true
		}
	}
	var pending []string
	for _, item := range transcript {
		if call, ok := item.Content.(ToolCall); ok && !resolved[call.ID] {
			pending = append(pending, call.ID)
		}
	}
	return pending
}

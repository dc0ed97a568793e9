package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrReasoning signals a malformed or unavailable reasoning-engine response.
// Nothing from a turn that fails this way reaches the transcript.
var ErrReasoning = errors.New("reasoning engine failure")

// AgentTurn is one validated engine response: text, possibly empty, plus an
// ordered, possibly empty, sequence of tool calls.
type AgentTurn struct {
	Text      string
	ToolCalls []ToolCall
}

// NextTurn invokes the provider on the assembled prompt, drains its stream,
// and validates the shape of every event before anything is returned. Engine
// output is untrusted: a tool call without a name, a duplicate call id, or an
// unknown event kind converts the whole turn into ErrReasoning.
func NextTurn(ctx context.Context, provider Provider, prompt Prompt) (AgentTurn, error) {
	stream, err := provider.Stream(ctx, prompt)
	if err != nil {
		return AgentTurn{}, fmt.Errorf("%w: %v", ErrReasoning, err)
	}

	var turn AgentTurn
	// Engines may reuse an explicit call id across invocations; seed the
	// duplicate check with every id already in the transcript so no id can
	// be resolved twice.
	seen := map[string]bool{}
	for _, item := range prompt.InputItems {
		if call, ok := item.Content.(ToolCall); ok {
			seen[call.ID] = true
		}
	}
	for {
		event, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return AgentTurn{}, fmt.Errorf("%w: %v", ErrReasoning, err)
		}
		switch event.Type {
		case StreamEventMessage:
			turn.Text += event.Message
		case StreamEventToolCall:
			call := event.ToolCall
			if call.Name == "" {
				return AgentTurn{}, fmt.Errorf("%w: tool call without a name", ErrReasoning)
			}
			if call.ID == "" {
				call.ID = synthesizeCallID(seen, len(prompt.InputItems)+len(turn.ToolCalls))
			}
			if seen[call.ID] {
				return AgentTurn{}, fmt.Errorf("%w: duplicate tool call id %q", ErrReasoning, call.ID)
			}
			seen[call.ID] = true
			turn.ToolCalls = append(turn.ToolCalls, call)
		default:
			return AgentTurn{}, fmt.Errorf("%w: unknown stream event type %d", ErrReasoning, event.Type)
		}
	}
	return turn, nil
}

// synthesizeCallID picks the first free call-N id at or above n.
func synthesizeCallID(seen map[string]bool, n int) string {
	for {
		id := fmt.Sprintf("call-%d", n)
		if !seen[id] {
			return id
		}
		n++
	}
}

// AppendTurn appends a validated agent turn to the transcript: the text item
// first, then each tool call in request order. An empty turn still appends an
// empty assistant message so the transcript records that the engine answered.
func AppendTurn(transcript []HistoryItem, turn AgentTurn) []HistoryItem {
	if turn.Text != "" || len(turn.ToolCalls) == 0 {
		transcript = append(transcript, AssistantText(turn.Text))
	}
	for _, call := range turn.ToolCalls {
		transcript = append(transcript, HistoryItem{Role: RoleAssistant, Content: call})
	}
	return transcript
}

package cucumber

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"docktor/internal/agent"
	"docktor/internal/cluster"
	"docktor/internal/diagnose"
	"docktor/internal/report"
)

// featureState holds scenario state for one triage run.
type featureState struct {
	events  []cluster.Event
	turns   []agent.AgentTurn
	repeat  bool
	invoked int

	executed []string
	result   *diagnose.Result
}

// InitializeScenario wires cucumber steps to the feature state.
func InitializeScenario(ctx *godog.ScenarioContext) {
	state := &featureState{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		*state = featureState{}
		return ctx, nil
	})

	ctx.Step(`^a cluster with (\d+) warning events?$`, state.aClusterWithWarningEvents)
	ctx.Step(`^the agent answers "([^"]*)" without tool calls$`, state.theAgentAnswersWithoutToolCalls)
	ctx.Step(`^the agent first requests these diagnostic commands:$`, state.theAgentFirstRequestsCommands)
	ctx.Step(`^the agent then answers "([^"]*)"$`, state.theAgentThenAnswers)
	ctx.Step(`^the agent requests a diagnostic command on every invocation$`, state.theAgentRequestsCommandsForever)
	ctx.Step(`^the triage run completes$`, state.theTriageRunCompletes)
	ctx.Step(`^the report states that no issues were found$`, state.theReportStatesNoIssues)
	ctx.Step(`^(\d+) commands? were executed$`, state.commandsWereExecuted)
	ctx.Step(`^(\d+) reasoning invocations? (?:was|were) counted$`, state.reasoningInvocationsWereCounted)
	ctx.Step(`^the report contains "([^"]*)"$`, state.theReportContains)
	ctx.Step(`^the report pairs every command with its output$`, state.theReportPairsCommands)
	ctx.Step(`^every requested command was resolved before the report$`, state.everyCommandWasResolved)
}

func (s *featureState) aClusterWithWarningEvents(count int) error {
	for i := 0; i < count; i++ {
		s.events = append(s.events, cluster.Event{
			Name:      fmt.Sprintf("event-%d", i+1),
			Type:      "Warning",
			Reason:    "BackOff",
			Message:   fmt.Sprintf("Back-off restarting failed container %d", i+1),
			Namespace: "default",
		})
	}
	return nil
}

func (s *featureState) theAgentAnswersWithoutToolCalls(text string) error {
	s.turns = append(s.turns, agent.AgentTurn{Text: text})
	return nil
}

func (s *featureState) theAgentFirstRequestsCommands(table *godog.Table) error {
	var calls []agent.ToolCall
	for i, row := range table.Rows {
		if len(row.Cells) == 0 {
			return fmt.Errorf("row %d has no cells", i)
		}
		command := strings.TrimSpace(row.Cells[0].Value)
		args, err := agent.ArgsFromMap(map[string]any{"command": command})
		if err != nil {
			return err
		}
		calls = append(calls, agent.ToolCall{
			ID:   fmt.Sprintf("call-%d", i+1),
			Name: diagnose.DiagnosticToolName,
			Args: args,
		})
	}
	s.turns = append(s.turns, agent.AgentTurn{Text: "Let me check.", ToolCalls: calls})
	return nil
}

func (s *featureState) theAgentThenAnswers(text string) error {
	s.turns = append(s.turns, agent.AgentTurn{Text: text})
	return nil
}

func (s *featureState) theAgentRequestsCommandsForever() error {
	s.repeat = true
	return nil
}

func (s *featureState) theTriageRunCompletes() error {
	orchestrator := &diagnose.Orchestrator{
		Collector: fixedCollector{events: s.events},
		Provider:  s,
		Executor:  s,
		Assembler: report.NewRenderer(time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)),
	}
	result, err := orchestrator.Run(context.Background())
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	s.result = result
	return nil
}

func (s *featureState) theReportStatesNoIssues() error {
	return s.theReportContains("No failing events found in the cluster")
}

func (s *featureState) commandsWereExecuted(count int) error {
	if len(s.executed) != count {
		return fmt.Errorf("expected %d executed commands, got %d (%v)", count, len(s.executed), s.executed)
	}
	if len(s.result.State.CommandOutputs) != count {
		return fmt.Errorf("expected %d recorded outputs, got %d", count, len(s.result.State.CommandOutputs))
	}
	return nil
}

func (s *featureState) reasoningInvocationsWereCounted(count int) error {
	if s.result.State.Analyses != count {
		return fmt.Errorf("expected %d analyses, got %d", count, s.result.State.Analyses)
	}
	return nil
}

func (s *featureState) theReportContains(text string) error {
	if !strings.Contains(s.result.Report, text) {
		return fmt.Errorf("report does not contain %q:\n%s", text, s.result.Report)
	}
	return nil
}

func (s *featureState) theReportPairsCommands() error {
	for _, command := range s.executed {
		if err := s.theReportContains(command); err != nil {
			return err
		}
		if err := s.theReportContains("output of " + command); err != nil {
			return err
		}
	}
	return nil
}

func (s *featureState) everyCommandWasResolved() error {
	if pending := agent.PendingToolCalls(s.result.State.Transcript); len(pending) != 0 {
		return fmt.Errorf("unresolved tool calls: %v", pending)
	}
	return agent.ValidateTranscript(s.result.State.Transcript)
}

// Stream implements agent.Provider: it replays the scripted turns, or keeps
// requesting one diagnostic command per invocation in repeat mode.
func (s *featureState) Stream(ctx context.Context, prompt agent.Prompt) (agent.Stream, error) {
	s.invoked++
	var turn agent.AgentTurn
	if s.repeat {
		args, err := agent.ArgsFromMap(map[string]any{"command": fmt.Sprintf("kubectl get pods --round=%d", s.invoked)})
		if err != nil {
			return nil, err
		}
		turn = agent.AgentTurn{
			Text: fmt.Sprintf("Round %d, digging deeper.", s.invoked),
			ToolCalls: []agent.ToolCall{{
				ID:   fmt.Sprintf("call-%d", s.invoked),
				Name: diagnose.DiagnosticToolName,
				Args: args,
			}},
		}
	} else {
		if s.invoked > len(s.turns) {
			return nil, fmt.Errorf("no scripted turn for invocation %d", s.invoked)
		}
		turn = s.turns[s.invoked-1]
	}

	var events []agent.StreamEvent
	if turn.Text != "" {
		events = append(events, agent.StreamEvent{Type: agent.StreamEventMessage, Message: turn.Text})
	}
	for _, call := range turn.ToolCalls {
		events = append(events, agent.StreamEvent{Type: agent.StreamEventToolCall, ToolCall: call})
	}
	return &scriptedStream{events: events}, nil
}

// Execute implements diagnose.Executor and records every command.
func (s *featureState) Execute(ctx context.Context, command string) string {
	s.executed = append(s.executed, command)
	return "output of " + command
}

type scriptedStream struct {
	events []agent.StreamEvent
	index  int
}

func (s *scriptedStream) Recv() (agent.StreamEvent, error) {
	if s.index >= len(s.events) {
		return agent.StreamEvent{}, io.EOF
	}
	event := s.events[s.index]
	s.index++
	return event, nil
}

type fixedCollector struct {
	events []cluster.Event
}

func (c fixedCollector) Collect(ctx context.Context) ([]cluster.Event, error) {
	return c.events, nil
}

package diagnose

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"docktor/internal/agent"
	"docktor/internal/cluster"
)

// MaxAnalyses bounds reasoning invocations per run, counting the initial
// analyze call. It guards against unbounded tool-call loops.
const MaxAnalyses = 5

// Collector supplies the warning-event batch for a run.
type Collector interface {
	Collect(ctx context.Context) ([]cluster.Event, error)
}

// Assembler renders the final document from a completed run.
type Assembler interface {
	Assemble(events []cluster.Event, transcript []agent.HistoryItem, commandOutputs []string, failureReason string) string
}

// Result is the terminal outcome of one run.
type Result struct {
	State  RunState
	Report string

	// FailureReason is set when the run was cut short by a recovered
	// reasoning failure; the report still carries the partial transcript.
	FailureReason string
}

// Orchestrator drives one triage run through the state machine
// Start → Collect → Analyze → {RunTools, Report} → ContinueAnalyze → … .
// One orchestrator instance drives one run at a time; nothing is shared
// across runs.
type Orchestrator struct {
	Collector Collector
	Provider  agent.Provider
	Executor  Executor
	Assembler Assembler

	// MaxAnalyses overrides the default bound when between 1 and MaxAnalyses.
	MaxAnalyses int

	Options Options
}

// Run executes the state machine to completion. Only a collection failure is
// returned as an error; reasoning failures degrade into a partial report.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	run := RunState{RunID: uuid.NewString()}
	bound := o.bound()
	o.logf(styleTask, "run %s started", run.RunID)

	// Zero-progress guard: no state may recur with an identical transcript
	// length and pending-call set.
	visited := map[string]bool{}
	var pending []agent.ToolCall
	var failure string

	state := StateCollect
	for state != StateReport {
		key := progressKey(state, &run, pending)
		if visited[key] {
			o.logf(styleError, "zero-progress cycle detected in %s; forcing report", state)
			break
		}
		visited[key] = true

		switch state {
		case StateCollect:
			events, err := o.Collector.Collect(ctx)
			if err != nil {
				return nil, err
			}
			run.Events = events
			run.Index = cluster.Index(events)
			o.logf(styleTask, "collected %d warning events", len(events))
			state = StateAnalyze

		case StateAnalyze:
			if len(run.Events) == 0 {
				// Short-circuit: no engine call for a healthy cluster.
				run.Transcript = append(run.Transcript, agent.AssistantText(noIssuesMessage))
				run.Analyses++
				state = StateReport
				continue
			}
			run.Transcript = append(run.Transcript, agent.UserPrompt(analysisPrompt(run.Events)))
			turn, err := o.analyze(ctx, &run)
			if err != nil {
				failure = err.Error()
				o.logf(styleError, "reasoning failed: %v", err)
				state = StateReport
				continue
			}
			pending, state = o.route(ctx, &run, turn, bound)

		case StateRunTools:
			o.runTools(ctx, &run, pending)
			pending = nil
			state = StateContinueAnalyze

		case StateContinueAnalyze:
			turn, err := o.analyze(ctx, &run)
			if err != nil {
				failure = err.Error()
				o.logf(styleError, "reasoning failed: %v", err)
				state = StateReport
				continue
			}
			pending, state = o.route(ctx, &run, turn, bound)

		default:
			return nil, fmt.Errorf("orchestrator entered unexpected state %s", state)
		}
	}

	report := o.Assembler.Assemble(run.Events, run.Transcript, run.CommandOutputs, failure)
	return &Result{State: run, Report: report, FailureReason: failure}, nil
}

// analyze invokes the reasoning engine on the transcript, appends the
// validated turn, and counts the invocation.
func (o *Orchestrator) analyze(ctx context.Context, run *RunState) (agent.AgentTurn, error) {
	prompt := agent.Prompt{
		Instructions: systemInstructions,
		InputItems:   run.Transcript,
		Tools:        []agent.ToolDefinition{DiagnosticTool()},
	}
	o.logf(styleTask, "reasoning invocation %d", run.Analyses+1)
	turn, err := agent.NextTurn(ctx, o.Provider, prompt)
	if err != nil {
		return agent.AgentTurn{}, err
	}
	run.Transcript = agent.AppendTurn(run.Transcript, turn)
	run.Analyses++
	if turn.Text != "" {
		o.logBlock(styleOutput, "analysis", turn.Text)
	}
	return turn, nil
}

// route applies the post-analyze transition rule: tool calls below the bound
// go to RunTools; tool calls at the bound are resolved and then reported
// (resolve-then-report); no tool calls go straight to Report.
func (o *Orchestrator) route(ctx context.Context, run *RunState, turn agent.AgentTurn, bound int) ([]agent.ToolCall, State) {
	if len(turn.ToolCalls) == 0 {
		return nil, StateReport
	}
	if run.Analyses >= bound {
		o.logf(styleTask, "iteration bound reached; resolving final tool batch before report")
		o.runTools(ctx, run, turn.ToolCalls)
		return nil, StateReport
	}
	return turn.ToolCalls, StateRunTools
}

// runTools resolves every tool call of the triggering turn in request order,
// appending one ToolResult per call and recording the raw output.
func (o *Orchestrator) runTools(ctx context.Context, run *RunState, calls []agent.ToolCall) {
	for _, call := range calls {
		o.logf(styleToolCall, "tool call id=%s name=%s command=%s", call.ID, call.Name, callCommand(call))
		output := resolveToolCall(ctx, o.Executor, call)
		run.Transcript = append(run.Transcript, agent.HistoryItem{
			Role:    agent.RoleTool,
			Content: agent.ToolResult{CallID: call.ID, Output: output},
		})
		run.CommandOutputs = append(run.CommandOutputs, output)
		o.logBlock(styleToolResult, fmt.Sprintf("tool result id=%s", call.ID), output)
	}
}

// bound returns the effective reasoning-invocation bound.
func (o *Orchestrator) bound() int {
	if o.MaxAnalyses >= 1 && o.MaxAnalyses <= MaxAnalyses {
		return o.MaxAnalyses
	}
	return MaxAnalyses
}

// progressKey fingerprints a state entry for the zero-progress guard.
func progressKey(state State, run *RunState, pending []agent.ToolCall) string {
	ids := make([]string, 0, len(pending))
	for _, call := range pending {
		ids = append(ids, call.ID)
	}
	return fmt.Sprintf("%s|%d|%s", state, len(run.Transcript), strings.Join(ids, ","))
}

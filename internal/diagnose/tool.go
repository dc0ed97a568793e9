package diagnose

import (
	"context"
	"fmt"

	"docktor/internal/agent"
)

// DiagnosticToolName is the single tool declared to the reasoning engine.
const DiagnosticToolName = "execute_diagnostic"

// DiagnosticTool declares the diagnostic command tool schema.
func DiagnosticTool() agent.ToolDefinition {
	params := agent.ObjectSchema(
		map[string]agent.ToolSchema{
			"command": agent.StringSchema("Shell command to run, e.g. a kubectl query."),
		},
		[]string{"command"},
		agent.BoolPointer(false),
	)
	return agent.ToolDefinition{
		Name:        DiagnosticToolName,
		Description: "Run a diagnostic shell command against the cluster and return its combined stdout and stderr.",
		Parameters:  &params,
	}
}

// resolveToolCall produces the result text for one tool call. Unknown tool
// names and bad arguments resolve to explanatory text; the run never aborts
// on a tool call.
func resolveToolCall(ctx context.Context, executor Executor, call agent.ToolCall) string {
	if call.Name != DiagnosticToolName {
		return fmt.Sprintf("unsupported tool %q; only %s is available", call.Name, DiagnosticToolName)
	}
	command, err := call.Args.RequiredString("command")
	if err != nil {
		return executionErrorPrefix + err.Error()
	}
	return executor.Execute(ctx, command)
}

// callCommand extracts the command argument for logging and reporting.
func callCommand(call agent.ToolCall) string {
	command, _, err := call.Args.OptionalString("command")
	if err != nil || command == "" {
		return "(invalid command)"
	}
	return command
}

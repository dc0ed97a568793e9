package diagnose

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

// executionErrorPrefix marks a captured command failure inside a tool result,
// so the reasoning engine can react to the failure instead of the run dying.
const executionErrorPrefix = "Error executing command: "

// Executor runs a single named diagnostic command. Implementations never fail
// upward: every outcome, including execution errors, is a string result.
type Executor interface {
	Execute(ctx context.Context, command string) string
}

// ShellExecutor runs diagnostic commands through the system shell and
// captures combined stdout and stderr.
type ShellExecutor struct {
	// Timeout bounds one command; zero means only the run context applies.
	Timeout time.Duration
}

// Execute runs the command. Non-zero exit, missing binaries, timeouts, and
// cancellation are all returned as error-marker text, never as an error.
func (e ShellExecutor) Execute(ctx context.Context, command string) string {
	if strings.TrimSpace(command) == "" {
		return executionErrorPrefix + "empty command"
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(output.String())
		if msg == "" {
			msg = err.Error()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			msg = ctxErr.Error() + ": " + msg
		}
		return executionErrorPrefix + msg
	}
	return output.String()
}

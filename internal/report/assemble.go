package report

import (
	"fmt"
	"strings"
	"time"

	"docktor/internal/agent"
	"docktor/internal/cluster"
)

// timestampLayout formats the generation time in the report header.
const timestampLayout = "2006-01-02 15:04:05"

// recommendationsFooter closes every report.
const recommendationsFooter = `## Recommendations

Based on the analysis above, consider the following actions:

1. **Review Critical Events:** Focus on events with high count or recent timestamps
2. **Check Resource Usage:** Monitor CPU, memory, and storage usage
3. **Verify Configurations:** Ensure deployments and services are properly configured
4. **Monitor Logs:** Check application logs for additional context
5. **Regular Health Checks:** Set up monitoring and alerting for cluster health

## Generated by Docktor
*Kubernetes Cluster Analysis Tool*
`

// Renderer assembles the triage report. The generation time is fixed at
// construction so assembly is a pure function of the run state.
type Renderer struct {
	generatedAt time.Time
}

// NewRenderer builds a renderer stamped with the given generation time.
func NewRenderer(generatedAt time.Time) *Renderer {
	return &Renderer{generatedAt: generatedAt}
}

// GeneratedAt returns the renderer's fixed generation time.
func (r *Renderer) GeneratedAt() time.Time {
	return r.generatedAt
}

// Assemble renders the markdown document: every agent analysis in
// chronological order and every executed command paired with its output in
// execution order.
func (r *Renderer) Assemble(events []cluster.Event, transcript []agent.HistoryItem, commandOutputs []string, failureReason string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Kubernetes Cluster Analysis Report\n\n")
	fmt.Fprintf(&b, "**Generated on:** %s\n\n", r.generatedAt.Format(timestampLayout))

	b.WriteString("## Executive Summary\n\n")
	fmt.Fprintf(&b, "Total events analyzed: %d\n", len(events))
	fmt.Fprintf(&b, "Warning events found: %d\n\n", len(events))

	b.WriteString("## Events Overview\n\n")
	if len(events) > 0 {
		b.WriteString("### Warning Events Found\n\n")
		for i, event := range events {
			fmt.Fprintf(&b, "**%d. %s** (Namespace: `%s`)\n\n", i+1, event.Reason, event.Namespace)
			fmt.Fprintf(&b, "- **Message:** %s\n", event.Message)
			fmt.Fprintf(&b, "- **Count:** %d\n", event.Count)
			fmt.Fprintf(&b, "- **Last Seen:** %s\n", formatSeen(event.LastSeen))
			fmt.Fprintf(&b, "- **Involved Object:** %s\n\n", event.InvolvedObject())
		}
	} else {
		b.WriteString("### No Warning Events Found\n\nThe cluster appears to be healthy with no warning events detected.\n\n")
	}

	b.WriteString("## AI Analysis\n\n")
	for i, text := range agent.AssistantTexts(transcript) {
		fmt.Fprintf(&b, "### Analysis %d\n\n%s\n\n", i+1, text)
	}

	if commands := executedCommands(transcript); len(commands) > 0 {
		b.WriteString("## Commands Executed\n\n")
		for i, cmd := range commands {
			fmt.Fprintf(&b, "### Command %d\n\n", i+1)
			fmt.Fprintf(&b, "```bash\n%s\n```\n\n", cmd.Command)
			fmt.Fprintf(&b, "**Output:**\n```\n%s\n```\n\n", strings.TrimRight(cmd.Output, "\n"))
		}
	}

	if failureReason != "" {
		fmt.Fprintf(&b, "## Run Failure\n\nThe analysis ended early: %s\n\nThe sections above cover the transcript up to that point.\n\n", failureReason)
	}

	b.WriteString(recommendationsFooter)
	return b.String()
}

// executedCommand pairs one diagnostic command with its captured output.
type executedCommand struct {
	Command string
	Output  string
}

// executedCommands walks the transcript and pairs every tool result with the
// command argument of its originating call, in execution order.
func executedCommands(transcript []agent.HistoryItem) []executedCommand {
	commands := map[string]string{}
	for _, item := range transcript {
		if call, ok := item.Content.(agent.ToolCall); ok {
			command, _, err := call.Args.OptionalString("command")
			if err != nil || command == "" {
				command = "(invalid command)"
			}
			commands[call.ID] = command
		}
	}

	var executed []executedCommand
	for _, item := range transcript {
		if result, ok := item.Content.(agent.ToolResult); ok {
			executed = append(executed, executedCommand{
				Command: commands[result.CallID],
				Output:  result.Output,
			})
		}
	}
	return executed
}

// formatSeen renders an event timestamp, tolerating unset values.
func formatSeen(seen time.Time) string {
	if seen.IsZero() {
		return "N/A"
	}
	return seen.UTC().Format(timestampLayout)
}

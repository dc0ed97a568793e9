package diagnose

import (
	"strings"

	"docktor/internal/cluster"
)

// systemInstructions frame every reasoning invocation.
const systemInstructions = "You are a Kubernetes cluster triage assistant. " +
	"Analyze warning events, diagnose likely root causes, and suggest fixes. " +
	"Use the execute_diagnostic tool when you need more information from the cluster."

// noIssuesMessage is the synthesized agent response for an empty event batch.
const noIssuesMessage = "No failing events found in the cluster. Everything looks good!"

// analysisPrompt renders the collected events into the opening user prompt.
func analysisPrompt(events []cluster.Event) string {
	var b strings.Builder
	b.WriteString("Analyze the following Kubernetes events and provide insights:\n\n")
	for _, event := range events {
		b.WriteString(event.Summary())
		b.WriteString("\n")
	}
	b.WriteString("\nPlease summarize the issues and suggest potential solutions.\n")
	b.WriteString("If you need to run any kubectl commands to get more information, use the execute_diagnostic tool.\n")
	return b.String()
}

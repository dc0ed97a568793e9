package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"docktor/internal/agent"
	"docktor/internal/cluster"
)

var fixedTime = time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

func sampleTranscript() []agent.HistoryItem {
	return []agent.HistoryItem{
		agent.UserPrompt("analyze these events"),
		agent.AssistantText("The pod is crash looping."),
		{Role: agent.RoleAssistant, Content: agent.ToolCall{
			ID:   "call-1",
			Name: "execute_diagnostic",
			Args: agent.ToolCallArgs{"command": json.RawMessage(`"kubectl get pods -n default"`)},
		}},
		{Role: agent.RoleTool, Content: agent.ToolResult{CallID: "call-1", Output: "NAME READY STATUS\napp-1 0/1 CrashLoopBackOff\n"}},
		agent.AssistantText("The container exits on startup; check the image tag."),
	}
}

func TestAssembleIsIdempotent(t *testing.T) {
	renderer := NewRenderer(fixedTime)
	events := []cluster.Event{{Name: "backoff", Reason: "BackOff", Message: "restart", Namespace: "default", Count: 3}}
	transcript := sampleTranscript()
	outputs := []string{"NAME READY STATUS\napp-1 0/1 CrashLoopBackOff\n"}

	first := renderer.Assemble(events, transcript, outputs, "")
	second := renderer.Assemble(events, transcript, outputs, "")
	if first != second {
		t.Fatalf("assembly is not byte-identical across calls")
	}
}

func TestAssembleSectionsAndOrder(t *testing.T) {
	renderer := NewRenderer(fixedTime)
	events := []cluster.Event{
		{Name: "backoff", Reason: "BackOff", Message: "Back-off restarting failed container", Namespace: "default", Count: 3, InvolvedObjectKind: "Pod", InvolvedObjectName: "app-1", LastSeen: fixedTime},
	}
	content := renderer.Assemble(events, sampleTranscript(), []string{"output"}, "")

	for _, want := range []string{
		"# Kubernetes Cluster Analysis Report",
		"**Generated on:** 2024-05-01 12:30:00",
		"Warning events found: 1",
		"**1. BackOff** (Namespace: `default`)",
		"- **Involved Object:** app-1 (Pod)",
		"### Analysis 1",
		"### Analysis 2",
		"### Command 1",
		"kubectl get pods -n default",
		"## Recommendations",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("report missing %q\n%s", want, content)
		}
	}

	if strings.Index(content, "The pod is crash looping.") > strings.Index(content, "check the image tag.") {
		t.Fatalf("analyses out of chronological order")
	}
}

func TestAssembleHealthyCluster(t *testing.T) {
	renderer := NewRenderer(fixedTime)
	transcript := []agent.HistoryItem{agent.AssistantText("No failing events found in the cluster. Everything looks good!")}
	content := renderer.Assemble(nil, transcript, nil, "")

	if !strings.Contains(content, "### No Warning Events Found") {
		t.Fatalf("healthy note missing:\n%s", content)
	}
	if strings.Contains(content, "## Commands Executed") {
		t.Fatalf("unexpected commands section for a run without tools")
	}
}

func TestAssembleCarriesFailureIndicator(t *testing.T) {
	renderer := NewRenderer(fixedTime)
	content := renderer.Assemble(nil, nil, nil, "reasoning engine failure: rate limited")
	if !strings.Contains(content, "## Run Failure") || !strings.Contains(content, "rate limited") {
		t.Fatalf("failure indicator missing:\n%s", content)
	}
}

func TestExecutedCommandsPairsInExecutionOrder(t *testing.T) {
	transcript := []agent.HistoryItem{
		{Role: agent.RoleAssistant, Content: agent.ToolCall{ID: "call-1", Name: "execute_diagnostic", Args: agent.ToolCallArgs{"command": json.RawMessage(`"kubectl get pods"`)}}},
		{Role: agent.RoleAssistant, Content: agent.ToolCall{ID: "call-2", Name: "execute_diagnostic", Args: agent.ToolCallArgs{"command": json.RawMessage(`"kubectl get nodes"`)}}},
		{Role: agent.RoleTool, Content: agent.ToolResult{CallID: "call-1", Output: "pods"}},
		{Role: agent.RoleTool, Content: agent.ToolResult{CallID: "call-2", Output: "nodes"}},
	}
	commands := executedCommands(transcript)
	if len(commands) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(commands))
	}
	if commands[0].Command != "kubectl get pods" || commands[0].Output != "pods" {
		t.Fatalf("unexpected first pair: %+v", commands[0])
	}
	if commands[1].Command != "kubectl get nodes" || commands[1].Output != "nodes" {
		t.Fatalf("unexpected second pair: %+v", commands[1])
	}
}

func TestWriteNamesFileByTimestamp(t *testing.T) {
	dir := t.TempDir()
	path, err := Write(dir, fixedTime, "content")
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Base(path) != "cluster-analysis-20240501-123000.md" {
		t.Fatalf("unexpected filename: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "content" {
		t.Fatalf("unexpected content: %q", data)
	}
}

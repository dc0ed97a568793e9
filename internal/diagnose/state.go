package diagnose

import (
	"docktor/internal/agent"
	"docktor/internal/cluster"
)

// State identifies one orchestrator phase.
type State int

const (
	StateStart State = iota
	StateCollect
	StateAnalyze
	StateRunTools
	StateContinueAnalyze
	StateReport
	StateEnd
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateCollect:
		return "collect"
	case StateAnalyze:
		return "analyze"
	case StateRunTools:
		return "run_tools"
	case StateContinueAnalyze:
		return "continue_analyze"
	case StateReport:
		return "report"
	case StateEnd:
		return "end"
	default:
		return "unknown"
	}
}

// RunState threads the mutable run data through every transition. It lives
// for exactly one run: created at Start, consumed at Report, never shared.
type RunState struct {
	RunID          string
	Events         []cluster.Event
	Index          cluster.EventIndex
	Transcript     []agent.HistoryItem
	CommandOutputs []string

	// Analyses counts completed reasoning invocations; it is the loop bound.
	Analyses int
}

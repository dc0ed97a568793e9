package cluster

import (
	"fmt"
	"strings"
	"time"
)

// Event is one normalized warning event. Immutable once collected.
type Event struct {
	Name               string
	Type               string
	Reason             string
	Message            string
	Count              int32
	FirstSeen          time.Time
	LastSeen           time.Time
	EventTime          time.Time
	Source             string
	Namespace          string
	InvolvedObjectKind string
	InvolvedObjectName string
}

// EventIndex is a lookup index keyed by event name, unique within one batch.
type EventIndex map[string]Event

// Index builds the name-keyed index for a collected batch.
func Index(events []Event) EventIndex {
	index := make(EventIndex, len(events))
	for _, event := range events {
		index[event.Name] = event
	}
	return index
}

// Summary renders the one-line form used in analysis prompts.
func (e Event) Summary() string {
	return fmt.Sprintf("Event: %s - %s (Namespace: %s)", e.Reason, e.Message, e.Namespace)
}

// InvolvedObject renders the object reference as "name (Kind)".
func (e Event) InvolvedObject() string {
	name := e.InvolvedObjectName
	if strings.TrimSpace(name) == "" {
		name = "N/A"
	}
	kind := e.InvolvedObjectKind
	if strings.TrimSpace(kind) == "" {
		kind = "N/A"
	}
	return fmt.Sprintf("%s (%s)", name, kind)
}

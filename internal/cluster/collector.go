package cluster

import (
	"context"
	"errors"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// ErrCollection signals that the cluster event query itself failed.
var ErrCollection = errors.New("cluster event query failed")

const (
	// warningFieldSelector narrows the query to warning-type events.
	warningFieldSelector = "type=" + corev1.EventTypeWarning

	// collectBatchLimit caps one collection batch; no pagination.
	collectBatchLimit = 100
)

// Collector queries a cluster for warning events and normalizes them.
type Collector struct {
	client    kubernetes.Interface
	namespace string
}

// NewCollector builds a collector. An empty namespace queries all namespaces.
func NewCollector(client kubernetes.Interface, namespace string) *Collector {
	return &Collector{client: client, namespace: namespace}
}

// Collect fetches the warning-event batch in arrival order. An empty cluster
// yields an empty slice, not an error; only the query itself can fail.
func (c *Collector) Collect(ctx context.Context) ([]Event, error) {
	list, err := c.client.CoreV1().Events(c.namespace).List(ctx, metav1.ListOptions{
		FieldSelector: warningFieldSelector,
		Limit:         collectBatchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCollection, err)
	}

	events := make([]Event, 0, len(list.Items))
	for _, item := range list.Items {
		// The field selector already narrows server-side; keep the guard for
		// backends that ignore selectors.
		if item.Type != corev1.EventTypeWarning {
			continue
		}
		events = append(events, fromCoreEvent(item))
	}
	return events, nil
}

// fromCoreEvent flattens a core/v1 event into the normalized record.
func fromCoreEvent(item corev1.Event) Event {
	event := Event{
		Name:               item.Name,
		Type:               item.Type,
		Reason:             item.Reason,
		Message:            item.Message,
		Count:              item.Count,
		FirstSeen:          item.FirstTimestamp.Time,
		LastSeen:           item.LastTimestamp.Time,
		EventTime:          item.EventTime.Time,
		Namespace:          item.Namespace,
		InvolvedObjectKind: item.InvolvedObject.Kind,
		InvolvedObjectName: item.InvolvedObject.Name,
	}
	if item.Source.Component != "" {
		event.Source = item.Source.Component
		if item.Source.Host != "" {
			event.Source += "/" + item.Source.Host
		}
	}
	return event
}

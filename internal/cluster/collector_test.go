package cluster

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

func warningEvent(name, namespace, reason, message string, count int32) *corev1.Event {
	return &corev1.Event{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Type:       corev1.EventTypeWarning,
		Reason:     reason,
		Message:    message,
		Count:      count,
		Source:     corev1.EventSource{Component: "kubelet", Host: "node-1"},
		InvolvedObject: corev1.ObjectReference{
			Kind:      "Pod",
			Name:      name + "-pod",
			Namespace: namespace,
		},
		FirstTimestamp: metav1.NewTime(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)),
		LastTimestamp:  metav1.NewTime(time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)),
	}
}

func TestCollectMapsWarningEvents(t *testing.T) {
	clientset := fake.NewSimpleClientset(
		warningEvent("backoff", "default", "BackOff", "Back-off restarting failed container", 7),
		&corev1.Event{
			ObjectMeta: metav1.ObjectMeta{Name: "scheduled", Namespace: "default"},
			Type:       corev1.EventTypeNormal,
			Reason:     "Scheduled",
		},
	)

	collector := NewCollector(clientset, metav1.NamespaceAll)
	events, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 warning event, got %d", len(events))
	}
	event := events[0]
	if event.Name != "backoff" || event.Reason != "BackOff" || event.Count != 7 {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Source != "kubelet/node-1" {
		t.Fatalf("unexpected source: %q", event.Source)
	}
	if event.InvolvedObject() != "backoff-pod (Pod)" {
		t.Fatalf("unexpected involved object: %q", event.InvolvedObject())
	}
	if event.LastSeen.IsZero() {
		t.Fatalf("last seen not mapped")
	}
}

func TestCollectEmptyClusterIsNotAnError(t *testing.T) {
	collector := NewCollector(fake.NewSimpleClientset(), metav1.NamespaceAll)
	events, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}

func TestCollectQueryFailure(t *testing.T) {
	clientset := fake.NewSimpleClientset()
	clientset.PrependReactor("list", "events", func(action k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, fmt.Errorf("connection refused")
	})

	collector := NewCollector(clientset, metav1.NamespaceAll)
	if _, err := collector.Collect(context.Background()); !errors.Is(err, ErrCollection) {
		t.Fatalf("expected ErrCollection, got %v", err)
	}
}

func TestIndexKeyedByName(t *testing.T) {
	events := []Event{
		{Name: "backoff", Reason: "BackOff"},
		{Name: "failedmount", Reason: "FailedMount"},
	}
	index := Index(events)
	if len(index) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(index))
	}
	if index["failedmount"].Reason != "FailedMount" {
		t.Fatalf("unexpected entry: %+v", index["failedmount"])
	}
}

package daemon

import (
	"encoding/json"
	"sync"
	"testing"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.IncEventsDelivered()
	m.IncEventsDelivered()
	m.IncEventsReceived()
	m.IncReconnections()
	m.IncNotificationsTotal()
	m.SetConnectedSessions(3)

	if got := m.GetEventsDelivered(); got != 2 {
		t.Errorf("Expected 2 events delivered, got %d", got)
	}
	if got := m.GetEventsReceived(); got != 1 {
		t.Errorf("Expected 1 event received, got %d", got)
	}
	if got := m.GetReconnections(); got != 1 {
		t.Errorf("Expected 1 reconnection, got %d", got)
	}
	if got := m.GetNotificationsTotal(); got != 1 {
		t.Errorf("Expected 1 notification, got %d", got)
	}
	if got := m.GetConnectedSessions(); got != 3 {
		t.Errorf("Expected 3 sessions, got %d", got)
	}
}

func TestMetricsConcurrentIncrements(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.IncEventsDelivered()
			}
		}()
	}
	wg.Wait()

	if got := m.GetEventsDelivered(); got != 5000 {
		t.Errorf("Expected 5000 events delivered, got %d", got)
	}
}

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.IncEventsDelivered()
	m.SetConnectedSessions(1)

	snap := m.GetSnapshot()

	if snap.EventsDelivered != 1 {
		t.Errorf("Expected 1 event delivered in snapshot, got %d", snap.EventsDelivered)
	}
	if snap.ConnectedSessions != 1 {
		t.Errorf("Expected 1 session in snapshot, got %d", snap.ConnectedSessions)
	}
	if snap.StartTime.IsZero() {
		t.Error("Expected a start time")
	}
	if snap.Uptime == "" {
		t.Error("Expected an uptime string")
	}

	// Snapshots serialize for the stats endpoint
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("Expected JSON output")
	}
}

package daemon

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/taskwell/taskwell/internal/events"
)

func getTestSocketPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test-taskwell.sock")
}

func setupTestHub(t *testing.T) (*Server, string) {
	t.Helper()
	socketPath := getTestSocketPath(t)

	server, err := NewServer(socketPath)
	if err != nil {
		t.Fatalf("Failed to create test hub: %v", err)
	}

	t.Cleanup(func() {
		_ = server.Shutdown()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go func() { _ = server.Start(ctx) }()

	// Wait for socket
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(socketPath); err == nil {
			time.Sleep(10 * time.Millisecond)
			return server, socketPath
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("Timeout waiting for hub socket")
	return nil, ""
}

func connectRawSession(t *testing.T, socketPath string) (net.Conn, *json.Encoder, *json.Decoder) {
	t.Helper()

	conn, err := (&net.Dialer{}).DialContext(context.Background(), "unix", socketPath)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn, json.NewEncoder(conn), json.NewDecoder(conn)
}

func sendSubscribeMessage(t *testing.T, encoder *json.Encoder, userID string) {
	t.Helper()
	msg := events.Message{
		Version:   events.ProtocolVersion,
		Type:      "subscribe",
		Subscribe: &events.SubscribeMessage{UserID: userID},
	}
	if err := encoder.Encode(msg); err != nil {
		t.Fatalf("Failed to send subscribe: %v", err)
	}
}

func waitForEvent(t *testing.T, ch <-chan events.Event, timeout time.Duration) events.Event {
	t.Helper()
	select {
	case event, ok := <-ch:
		if !ok {
			t.Fatal("Channel closed")
		}
		return event
	case <-time.After(timeout):
		t.Fatalf("Timeout waiting for event")
		return events.Event{}
	}
}

func waitForNoEvent(t *testing.T, ch <-chan events.Event, timeout time.Duration) {
	t.Helper()
	select {
	case event := <-ch:
		t.Fatalf("Unexpected event: %+v", event)
	case <-time.After(timeout):
	}
}

func setupSubscribedClient(t *testing.T, socketPath, userID string) (*events.Client, <-chan events.Event) {
	t.Helper()

	client := events.NewClient(socketPath)
	t.Cleanup(func() {
		_ = client.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect client: %v", err)
	}
	if err := client.SubscribeUser(userID); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	ch, err := client.Listen(context.Background())
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	// Give the hub a moment to register the subscription
	time.Sleep(50 * time.Millisecond)
	return client, ch
}

func TestServerStartStop(t *testing.T) {
	server, socketPath := setupTestHub(t)

	if _, err := os.Stat(socketPath); err != nil {
		t.Fatalf("Expected socket file: %v", err)
	}

	if err := server.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	// Socket file should be gone after shutdown
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(socketPath); os.IsNotExist(err) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("Socket file still present after shutdown")
}

func TestEventRoutedToRecipient(t *testing.T) {
	server, socketPath := setupTestHub(t)

	_, recipientCh := setupSubscribedClient(t, socketPath, "user-recipient")

	event := events.Event{
		ID:           "evt-1",
		Type:         events.EventTaskCreated,
		TaskTitle:    "Wire the hub",
		RecipientIDs: []string{"user-recipient"},
	}
	if err := server.Broadcast(event); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}

	got := waitForEvent(t, recipientCh, 2*time.Second)
	if got.ID != "evt-1" {
		t.Errorf("Expected event evt-1, got %s", got.ID)
	}
	if got.SequenceID == 0 {
		t.Error("Expected hub-assigned sequence id")
	}
}

func TestEventNotRoutedToNonRecipient(t *testing.T) {
	server, socketPath := setupTestHub(t)

	_, recipientCh := setupSubscribedClient(t, socketPath, "user-a")
	_, bystanderCh := setupSubscribedClient(t, socketPath, "user-b")

	event := events.Event{
		ID:           "evt-2",
		Type:         events.EventCommentAdded,
		RecipientIDs: []string{"user-a"},
	}
	if err := server.Broadcast(event); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}

	waitForEvent(t, recipientCh, 2*time.Second)
	waitForNoEvent(t, bystanderCh, 200*time.Millisecond)
}

func TestEventWithoutRecipientsGoesToAllSubscribed(t *testing.T) {
	server, socketPath := setupTestHub(t)

	_, chA := setupSubscribedClient(t, socketPath, "user-a")
	_, chB := setupSubscribedClient(t, socketPath, "user-b")

	event := events.Event{ID: "evt-3", Type: events.EventProjectUpdated}
	if err := server.Broadcast(event); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}

	waitForEvent(t, chA, 2*time.Second)
	waitForEvent(t, chB, 2*time.Second)
}

func TestUnsubscribedSessionReceivesNothing(t *testing.T) {
	server, socketPath := setupTestHub(t)

	// Connected but never subscribed
	client := events.NewClient(socketPath)
	t.Cleanup(func() { _ = client.Close() })
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	ch, err := client.Listen(context.Background())
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if err := server.Broadcast(events.Event{ID: "evt-4", Type: events.EventTaskDeleted}); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}

	waitForNoEvent(t, ch, 200*time.Millisecond)
}

func TestPublishedEventFansOut(t *testing.T) {
	_, socketPath := setupTestHub(t)

	publisher := events.NewClient(socketPath)
	t.Cleanup(func() { _ = publisher.Close() })
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := publisher.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	_, recipientCh := setupSubscribedClient(t, socketPath, "user-x")

	event := events.Event{
		ID:           "evt-5",
		Type:         events.EventTaskStatusChanged,
		OldValue:     "todo",
		NewValue:     "in_progress",
		RecipientIDs: []string{"user-x"},
	}
	if err := publisher.Publish(event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	got := waitForEvent(t, recipientCh, 2*time.Second)
	if got.OldValue != "todo" || got.NewValue != "in_progress" {
		t.Errorf("Expected status payload preserved, got old=%q new=%q", got.OldValue, got.NewValue)
	}
}

func TestSequenceIDsIncrease(t *testing.T) {
	server, socketPath := setupTestHub(t)

	_, ch := setupSubscribedClient(t, socketPath, "user-seq")

	for i := 0; i < 3; i++ {
		if err := server.Broadcast(events.Event{ID: "evt", Type: events.EventTaskUpdated, RecipientIDs: []string{"user-seq"}}); err != nil {
			t.Fatalf("Broadcast failed: %v", err)
		}
	}

	var last int64
	for i := 0; i < 3; i++ {
		got := waitForEvent(t, ch, 2*time.Second)
		if got.SequenceID <= last {
			t.Errorf("Expected increasing sequence, got %d after %d", got.SequenceID, last)
		}
		last = got.SequenceID
	}
}

func TestRawSessionAnswersSubscribeAndReceivesEvent(t *testing.T) {
	server, socketPath := setupTestHub(t)

	_, encoder, decoder := connectRawSession(t, socketPath)
	sendSubscribeMessage(t, encoder, "user-raw")
	time.Sleep(50 * time.Millisecond)

	if err := server.Broadcast(events.Event{ID: "evt-raw", Type: events.EventCommentUpdated, RecipientIDs: []string{"user-raw"}}); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var msg events.Message
		if err := decoder.Decode(&msg); err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if msg.Type == "event" && msg.Event != nil && msg.Event.ID == "evt-raw" {
			return
		}
	}
	t.Fatal("Never received the broadcast event")
}

func TestMetricsTrackSessions(t *testing.T) {
	server, socketPath := setupTestHub(t)

	setupSubscribedClient(t, socketPath, "user-m1")
	setupSubscribedClient(t, socketPath, "user-m2")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if server.Metrics().GetConnectedSessions() == 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("Expected 2 connected sessions, got %d", server.Metrics().GetConnectedSessions())
}

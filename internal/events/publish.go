package events

import "log/slog"

// Emit publishes an event without ever surfacing a failure to the
// caller. The mutation that already committed to the store is the source
// of truth; delivery is at-most-once best-effort, so a transport failure
// is logged and dropped rather than turned into a user-visible error.
//
// A nil publisher is a silent no-op, which keeps tests and
// notification-less deployments free of wiring.
func Emit(publisher Publisher, event Event) {
	if publisher == nil {
		return
	}

	if err := publisher.Publish(event); err != nil {
		slog.Warn("event publish failed",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err)
	}
}

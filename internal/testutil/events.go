package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/taskwell/taskwell/internal/events"
)

// RecordingPublisher captures published events for assertions
type RecordingPublisher struct {
	mu        sync.Mutex
	Published []events.Event
}

// Connect is a no-op
func (p *RecordingPublisher) Connect(ctx context.Context) error { return nil }

// Close is a no-op
func (p *RecordingPublisher) Close() error { return nil }

// Publish records the event
func (p *RecordingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Published = append(p.Published, event)
	return nil
}

// Events returns a copy of the captured events
func (p *RecordingPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Event, len(p.Published))
	copy(out, p.Published)
	return out
}

// LastEvent returns the most recently captured event, or false if none
func (p *RecordingPublisher) LastEvent() (events.Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Published) == 0 {
		return events.Event{}, false
	}
	return p.Published[len(p.Published)-1], true
}

// EventsOfType returns the captured events with the given type
func (p *RecordingPublisher) EventsOfType(eventType events.EventType) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, e := range p.Published {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// FailingPublisher fails every publish. Used to verify commands succeed
// even when the notification transport is down.
type FailingPublisher struct {
	mu    sync.Mutex
	Calls int
}

// Connect is a no-op
func (p *FailingPublisher) Connect(ctx context.Context) error { return nil }

// Close is a no-op
func (p *FailingPublisher) Close() error { return nil }

// Publish fails unconditionally
func (p *FailingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls++
	return errors.New("publisher unavailable")
}

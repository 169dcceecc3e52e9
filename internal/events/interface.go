package events

import "context"

// Publisher hands completed-mutation events to the async transport.
// Publishing is fire-and-forget relative to the command's response: the
// command never waits for a subscriber.
type Publisher interface {
	// Connect establishes a connection to the hub socket
	Connect(ctx context.Context) error

	// Publish queues an event for delivery. It must not block; a full
	// queue returns an error the caller is expected to log and drop.
	Publish(event Event) error

	// Close closes the connection and stops all goroutines
	Close() error
}

// Subscriber receives the notification stream for a user's sessions
type Subscriber interface {
	// SubscribeUser registers this session for a user's notifications
	SubscribeUser(userID string) error

	// Listen starts receiving events from the hub
	Listen(ctx context.Context) (<-chan Event, error)
}

// Compile-time verification that *Client implements both sides
var (
	_ Publisher  = (*Client)(nil)
	_ Subscriber = (*Client)(nil)
)

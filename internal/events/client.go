package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

// Client is a connection to the notification hub. It is used from two
// sides: command handlers publish events through it, and delivery
// consumers subscribe to a user's notification stream.
type Client struct {
	socketPath string
	conn       net.Conn
	encoder    *json.Encoder
	decoder    *json.Decoder
	mu         sync.Mutex

	eventQueue chan Event
	userID     string

	// Reconnection configuration
	maxRetries int
	baseDelay  time.Duration

	ctx        context.Context
	cancel     context.CancelFunc
	senderDone chan struct{}
	closeOnce  sync.Once
}

// NewClient creates a hub client but does not connect
func NewClient(socketPath string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		socketPath: socketPath,
		eventQueue: make(chan Event, 100),
		maxRetries: 5,
		baseDelay:  time.Second,
		ctx:        ctx,
		cancel:     cancel,
		senderDone: make(chan struct{}),
	}
}

// Connect dials the hub socket and starts the background sender
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to dial hub socket: %w", err)
	}

	c.conn = conn
	c.encoder = json.NewEncoder(conn)
	c.decoder = json.NewDecoder(conn)

	go c.runSender()

	return nil
}

// Publish queues an event for delivery to the hub. Non-blocking: a full
// queue returns an error rather than stalling the command handler.
func (c *Client) Publish(event Event) error {
	select {
	case <-c.ctx.Done():
		return fmt.Errorf("client closed")
	default:
	}

	select {
	case c.eventQueue <- event:
		return nil
	default:
		return fmt.Errorf("event queue full")
	}
}

// runSender drains the queue and writes events to the socket, retrying
// with backoff on transient failures
func (c *Client) runSender() {
	defer close(c.senderDone)

	for {
		select {
		case <-c.ctx.Done():
			return
		case event, ok := <-c.eventQueue:
			if !ok {
				return
			}
			if err := c.sendWithRetry(event); err != nil {
				slog.Warn("event delivery abandoned",
					"event_type", event.Type,
					"event_id", event.ID,
					"error", err)
			}
		}
	}
}

// sendWithRetry attempts to deliver one event, reconnecting between
// attempts with exponential backoff
func (c *Client) sendWithRetry(event Event) error {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay * (1 << (attempt - 1))
			select {
			case <-c.ctx.Done():
				return lastErr
			case <-time.After(delay):
			}
			if err := c.reconnect(); err != nil {
				lastErr = err
				continue
			}
		}

		if err := c.send(Message{Version: ProtocolVersion, Type: "event", Event: &event}); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

// send writes one message to the socket under the connection lock
func (c *Client) send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.encoder == nil {
		return fmt.Errorf("not connected")
	}
	return c.encoder.Encode(msg)
}

// reconnect re-dials the socket and replays the session's subscription
func (c *Client) reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			slog.Debug("error closing stale connection", "error", err)
		}
	}

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(c.ctx, "unix", c.socketPath)
	if err != nil {
		return ClassifyConnectionError(err)
	}

	c.conn = conn
	c.encoder = json.NewEncoder(conn)
	c.decoder = json.NewDecoder(conn)

	if c.userID != "" {
		msg := Message{
			Version:   ProtocolVersion,
			Type:      "subscribe",
			Subscribe: &SubscribeMessage{UserID: c.userID},
		}
		if err := c.encoder.Encode(msg); err != nil {
			return fmt.Errorf("failed to resend subscription: %w", err)
		}
	}

	return nil
}

// SubscribeUser registers this session for a user's notifications
func (c *Client) SubscribeUser(userID string) error {
	c.mu.Lock()
	c.userID = userID
	c.mu.Unlock()

	return c.send(Message{
		Version:   ProtocolVersion,
		Type:      "subscribe",
		Subscribe: &SubscribeMessage{UserID: userID},
	})
}

// Listen starts receiving events from the hub. The returned channel is
// closed when the connection drops or ctx is cancelled. Ping messages are
// answered internally and not surfaced.
func (c *Client) Listen(ctx context.Context) (<-chan Event, error) {
	c.mu.Lock()
	decoder := c.decoder
	c.mu.Unlock()

	if decoder == nil {
		return nil, fmt.Errorf("not connected")
	}

	out := make(chan Event, 32)

	go func() {
		defer close(out)
		for {
			var msg Message
			if err := decoder.Decode(&msg); err != nil {
				return
			}

			switch msg.Type {
			case "ping":
				if err := c.send(Message{Version: ProtocolVersion, Type: "pong"}); err != nil {
					slog.Debug("failed to answer ping", "error", err)
				}
			case "event":
				if msg.Event == nil {
					continue
				}
				select {
				case out <- *msg.Event:
				case <-ctx.Done():
					return
				case <-c.ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close shuts down the client and its goroutines
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		if c.conn != nil {
			err = c.conn.Close()
			c.conn = nil
			c.encoder = nil
			c.decoder = nil
		}
		c.mu.Unlock()
	})
	return err
}

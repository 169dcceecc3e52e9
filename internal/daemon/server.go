package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/taskwell/taskwell/internal/events"
)

// session represents one connected client session
type session struct {
	conn      net.Conn
	send      chan events.Message
	userID    string // empty until the session subscribes
	lastPong  time.Time
	mu        sync.Mutex // protects userID and lastPong
	closeOnce sync.Once  // ensures send channel is closed only once
}

// Server is the notification hub. Command handlers publish completed
// mutations to it over the unix socket; it fans each event out to the
// connected sessions of that event's recipients.
type Server struct {
	socketPath        string
	listener          net.Listener
	sessions          map[*session]bool
	mu                sync.RWMutex
	ctx               context.Context
	cancel            context.CancelFunc
	broadcast         chan events.Event
	metrics           *Metrics
	sequenceCounter   atomic.Int64
	sessionBufferSize int
	shutdownOnce      sync.Once
}

// getEnvInt reads an integer from an environment variable, returning defaultVal if not set or invalid
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

// NewServer creates a hub listening on the given unix socket path
func NewServer(socketPath string) (*Server, error) {
	dir := filepath.Dir(socketPath)
	if dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create socket directory: %w", err)
		}
	}

	// Remove stale socket file if it exists
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return nil, fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	lc := net.ListenConfig{}
	listener, err := lc.Listen(context.Background(), "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket listener: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	broadcastBuffer := getEnvInt("TASKWELL_HUB_BROADCAST_BUFFER", 100)
	sessionBuffer := getEnvInt("TASKWELL_HUB_SESSION_BUFFER", 10)

	return &Server{
		socketPath:        socketPath,
		listener:          listener,
		sessions:          make(map[*session]bool),
		ctx:               ctx,
		cancel:            cancel,
		broadcast:         make(chan events.Event, broadcastBuffer),
		metrics:           NewMetrics(),
		sessionBufferSize: sessionBuffer,
	}, nil
}

// Start runs the hub. It starts three goroutines: accept, broadcast, and
// health monitoring, then blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	slog.Info("hub starting", "socket", s.socketPath)

	combinedCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-s.ctx.Done()
		cancel()
	}()

	acceptErr := make(chan error, 1)
	go func() {
		acceptErr <- s.acceptLoop(combinedCtx)
	}()

	go s.broadcastLoop(combinedCtx)
	go s.monitorHealth(combinedCtx)

	select {
	case <-combinedCtx.Done():
		slog.Info("hub context cancelled, shutting down")
	case err := <-acceptErr:
		if err != nil {
			slog.Error("accept loop error", "error", err)
		}
	}

	return s.Shutdown()
}

// acceptLoop accepts incoming session connections
func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		// Deadline lets us re-check context cancellation between accepts
		if err := s.listener.(*net.UnixListener).SetDeadline(time.Now().Add(1 * time.Second)); err != nil {
			slog.Warn("error setting listener deadline", "error", err)
		}

		conn, err := s.listener.Accept()
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			return fmt.Errorf("accept error: %w", err)
		}

		sess := &session{
			conn:     conn,
			send:     make(chan events.Message, s.sessionBufferSize),
			lastPong: time.Now(),
		}

		s.mu.Lock()
		s.sessions[sess] = true
		s.mu.Unlock()

		s.updateSessionCount()

		slog.Info("session connected", "total_sessions", s.getSessionCount())

		go s.handleSession(sess)
		go s.sessionWriter(sess)
	}
}

// broadcastLoop stamps each event with a sequence number and fans it out
// to the sessions of its recipients
func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event := <-s.broadcast:
			event.SequenceID = s.sequenceCounter.Add(1)

			s.metrics.IncNotificationsTotal()

			recipients := make(map[string]bool, len(event.RecipientIDs))
			for _, id := range event.RecipientIDs {
				recipients[id] = true
			}

			s.mu.RLock()
			for sess := range s.sessions {
				sess.mu.Lock()
				userID := sess.userID
				sess.mu.Unlock()

				// Only subscribed sessions receive events. An event with no
				// recipient list goes to every subscribed session.
				if userID == "" {
					continue
				}
				if len(recipients) > 0 && !recipients[userID] {
					continue
				}

				msg := events.Message{
					Version: events.ProtocolVersion,
					Type:    "event",
					Event:   &event,
				}

				// Non-blocking send: a slow session drops the event rather
				// than stalling delivery to everyone else
				if !s.sendToSession(sess, msg) {
					slog.Warn("session send queue full, event dropped", "user_id", userID)
				}
			}
			s.mu.RUnlock()
		}
	}
}

// handleSession reads messages from a connected session
func (s *Server) handleSession(sess *session) {
	defer func() {
		s.removeSession(sess)
		slog.Info("session disconnected", "total_sessions", s.getSessionCount())
	}()

	decoder := json.NewDecoder(sess.conn)

	for {
		var msg events.Message

		if err := decoder.Decode(&msg); err != nil {
			return
		}

		if msg.Version != 0 && msg.Version != events.ProtocolVersion {
			slog.Warn("protocol version mismatch", "got", msg.Version, "want", events.ProtocolVersion)
		}

		switch msg.Type {
		case "event":
			if msg.Event != nil {
				s.metrics.IncEventsReceived()
				select {
				case s.broadcast <- *msg.Event:
				default:
					slog.Warn("broadcast channel full, event dropped")
				}
			}

		case "subscribe":
			if msg.Subscribe != nil {
				sess.mu.Lock()
				sess.userID = msg.Subscribe.UserID
				sess.mu.Unlock()
				slog.Info("session subscribed", "user_id", msg.Subscribe.UserID)
			}

		case "pong":
			sess.mu.Lock()
			sess.lastPong = time.Now()
			sess.mu.Unlock()
		}
	}
}

// sessionWriter sends queued messages to a session
func (s *Server) sessionWriter(sess *session) {
	encoder := json.NewEncoder(sess.conn)

	for msg := range sess.send {
		if err := encoder.Encode(msg); err != nil {
			return
		}
	}
}

// monitorHealth sends ping messages and evicts stale sessions
func (s *Server) monitorHealth(ctx context.Context) {
	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	healthTicker := time.NewTicker(60 * time.Second)
	defer healthTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-pingTicker.C:
			s.mu.RLock()
			sessions := make([]*session, 0, len(s.sessions))
			for sess := range s.sessions {
				sessions = append(sessions, sess)
			}
			s.mu.RUnlock()

			pingMsg := events.Message{
				Version: events.ProtocolVersion,
				Type:    "ping",
				Event: &events.Event{
					Type: events.EventPing,
				},
			}

			for _, sess := range sessions {
				if !s.sendToSession(sess, pingMsg) {
					slog.Warn("failed to send ping, session queue full")
				}
			}

		case <-healthTicker.C:
			// Two-phase locking: collect stale sessions under the read lock,
			// remove them outside it
			s.mu.RLock()
			staleSessions := make([]*session, 0)
			now := time.Now()
			for sess := range s.sessions {
				sess.mu.Lock()
				lastPong := sess.lastPong
				sess.mu.Unlock()

				if now.Sub(lastPong) > 90*time.Second {
					staleSessions = append(staleSessions, sess)
				}
			}
			s.mu.RUnlock()

			for _, sess := range staleSessions {
				slog.Info("removing stale session", "last_pong_ago", now.Sub(sess.lastPong).String())
				s.removeSession(sess)
			}
		}
	}
}

// Broadcast queues an event for fan-out (non-blocking)
func (s *Server) Broadcast(event events.Event) error {
	select {
	case s.broadcast <- event:
		return nil
	default:
		return fmt.Errorf("broadcast channel full")
	}
}

// Metrics returns the hub's live metrics
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Shutdown gracefully shuts down the hub
func (s *Server) Shutdown() error {
	var err error
	s.shutdownOnce.Do(func() {
		slog.Info("shutting down hub")

		s.cancel()

		if s.listener != nil {
			if closeErr := s.listener.Close(); closeErr != nil {
				slog.Warn("error closing listener", "error", closeErr)
			}
		}

		s.mu.Lock()
		for sess := range s.sessions {
			if closeErr := sess.conn.Close(); closeErr != nil {
				slog.Warn("error closing session connection", "error", closeErr)
			}
			sess.closeOnce.Do(func() {
				close(sess.send)
			})
		}
		s.sessions = make(map[*session]bool)
		s.mu.Unlock()

		if removeErr := os.Remove(s.socketPath); removeErr != nil && !os.IsNotExist(removeErr) {
			slog.Warn("failed to remove socket file", "error", removeErr)
		}

		close(s.broadcast)
	})

	return err
}

func (s *Server) getSessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Server) updateSessionCount() {
	count := s.getSessionCount()
	s.metrics.SetConnectedSessions(int32(count))
}

// removeSession safely removes a session from the hub
func (s *Server) removeSession(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()

	if err := sess.conn.Close(); err != nil {
		slog.Debug("error closing session connection", "error", err)
	}
	sess.closeOnce.Do(func() {
		close(sess.send)
	})

	s.updateSessionCount()
}

// sendToSession attempts a non-blocking send to a session's queue.
// Returns false if the queue is full.
func (s *Server) sendToSession(sess *session, msg events.Message) bool {
	select {
	case sess.send <- msg:
		s.metrics.IncEventsDelivered()
		return true
	default:
		return false
	}
}

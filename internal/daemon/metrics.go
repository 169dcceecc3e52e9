package daemon

import (
	"sync/atomic"
	"time"
)

// Metrics tracks hub statistics using atomic operations for thread-safety
type Metrics struct {
	EventsDelivered    atomic.Int64
	EventsReceived     atomic.Int64
	Reconnections      atomic.Int64
	NotificationsTotal atomic.Int64
	ConnectedSessions  atomic.Int32
	StartTime          time.Time
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime: time.Now(),
	}
}

// IncEventsDelivered increments the events delivered counter
func (m *Metrics) IncEventsDelivered() {
	m.EventsDelivered.Add(1)
}

// IncEventsReceived increments the events received counter
func (m *Metrics) IncEventsReceived() {
	m.EventsReceived.Add(1)
}

// IncReconnections increments the reconnections counter
func (m *Metrics) IncReconnections() {
	m.Reconnections.Add(1)
}

// IncNotificationsTotal increments the notifications fan-out counter
func (m *Metrics) IncNotificationsTotal() {
	m.NotificationsTotal.Add(1)
}

// SetConnectedSessions sets the current connected session count
func (m *Metrics) SetConnectedSessions(count int32) {
	m.ConnectedSessions.Store(count)
}

// GetEventsDelivered returns the total events delivered
func (m *Metrics) GetEventsDelivered() int64 {
	return m.EventsDelivered.Load()
}

// GetEventsReceived returns the total events received
func (m *Metrics) GetEventsReceived() int64 {
	return m.EventsReceived.Load()
}

// GetReconnections returns the total reconnections
func (m *Metrics) GetReconnections() int64 {
	return m.Reconnections.Load()
}

// GetNotificationsTotal returns the total notification fan-outs
func (m *Metrics) GetNotificationsTotal() int64 {
	return m.NotificationsTotal.Load()
}

// GetConnectedSessions returns the current connected session count
func (m *Metrics) GetConnectedSessions() int32 {
	return m.ConnectedSessions.Load()
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	EventsDelivered    int64     `json:"events_delivered"`
	EventsReceived     int64     `json:"events_received"`
	Reconnections      int64     `json:"reconnections"`
	NotificationsTotal int64     `json:"notifications_total"`
	ConnectedSessions  int32     `json:"connected_sessions"`
	StartTime          time.Time `json:"start_time"`
	Uptime             string    `json:"uptime"`
}

// GetSnapshot returns a snapshot of current metrics
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	return MetricsSnapshot{
		EventsDelivered:    m.GetEventsDelivered(),
		EventsReceived:     m.GetEventsReceived(),
		Reconnections:      m.GetReconnections(),
		NotificationsTotal: m.GetNotificationsTotal(),
		ConnectedSessions:  m.GetConnectedSessions(),
		StartTime:          m.StartTime,
		Uptime:             time.Since(m.StartTime).String(),
	}
}

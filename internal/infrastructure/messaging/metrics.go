package messaging

import (
	"sync"
	"time"

	"github.com/staffbook/staffbook/internal/domain/shared"
)

// Metrics counts publishes per event type and handler outcomes.
type Metrics struct {
	mu        sync.Mutex
	published map[shared.EventType]int64
	execs     int64
	failures  int64
	busy      time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{published: make(map[shared.EventType]int64)}
}

func (m *Metrics) RecordPublish(eventType shared.EventType) {
	m.mu.Lock()
	m.published[eventType]++
	m.mu.Unlock()
}

func (m *Metrics) RecordHandlerExecution(took time.Duration, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.execs++
	m.busy += took
	if !ok {
		m.failures++
	}
}

// Published returns how many events of eventType were published.
func (m *Metrics) Published(eventType shared.EventType) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.published[eventType]
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	TotalPublished         int64
	TotalHandlerExecs      int64
	HandlerFailures        int64
	HandlerSuccessRate     float64
	AverageHandlerDuration time.Duration
}

// Snapshot copies the counters. With no handler runs the success rate is 1.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{TotalHandlerExecs: m.execs, HandlerFailures: m.failures, HandlerSuccessRate: 1}
	for _, n := range m.published {
		s.TotalPublished += n
	}
	if m.execs > 0 {
		s.HandlerSuccessRate = float64(m.execs-m.failures) / float64(m.execs)
		s.AverageHandlerDuration = m.busy / time.Duration(m.execs)
	}
	return s
}

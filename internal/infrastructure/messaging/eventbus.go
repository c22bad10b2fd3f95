// Package messaging implements the in-process event bus staff commands publish to.
package messaging

import (
	"errors"
	"sync"
	"time"

	"github.com/staffbook/staffbook/internal/domain/shared"
	"github.com/staffbook/staffbook/pkg/logger"
)

var (
	ErrEventBusClosed = errors.New("event bus is closed")
	ErrNilHandler     = errors.New("handler cannot be nil")
	ErrNilEvent       = errors.New("event cannot be nil")
)

// Config configures NewBus.
type Config struct {
	// Async hands each delivery to a goroutine bounded by Workers.
	// Sync delivery runs handlers on the publisher's goroutine.
	Async   bool
	Workers int

	Logger  *logger.Logger
	Metrics bool
}

// DefaultConfig is synchronous delivery with metrics on.
func DefaultConfig() Config {
	return Config{Workers: 10, Metrics: true}
}

// Bus delivers events to subscribers in the same process. Typed
// subscribers run before catch-all ones, each group in subscription order.
type Bus struct {
	log   *logger.Logger
	stats *Metrics // nil when disabled
	async bool
	slots chan struct{}

	mu       sync.RWMutex
	typed    map[shared.EventType][]shared.EventHandler
	catchAll []shared.EventHandler
	chain    []Middleware
	closed   bool

	done     chan struct{}
	inFlight sync.WaitGroup
}

var _ shared.EventBus = (*Bus)(nil)

func NewBus(cfg Config) *Bus {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 10
	}
	b := &Bus{
		log:   cfg.Logger.With(logger.Component("eventbus")),
		async: cfg.Async,
		slots: make(chan struct{}, cfg.Workers),
		typed: make(map[shared.EventType][]shared.EventHandler),
		done:  make(chan struct{}),
	}
	if cfg.Metrics {
		b.stats = NewMetrics()
	}
	return b
}

// Use adds m to the chain applied to handlers subscribed after the call.
// The first middleware added is the outermost.
func (b *Bus) Use(m Middleware) {
	b.mu.Lock()
	b.chain = append(b.chain, m)
	b.mu.Unlock()
}

// Subscribe registers handler for one event type.
func (b *Bus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	h, err := b.prepare(handler)
	if err != nil {
		return err
	}
	defer b.mu.Unlock()
	b.typed[eventType] = append(b.typed[eventType], h)
	b.log.Debug("subscribed handler", logger.EventType(string(eventType)))
	return nil
}

// SubscribeAll registers handler for every event.
func (b *Bus) SubscribeAll(handler shared.EventHandler) error {
	h, err := b.prepare(handler)
	if err != nil {
		return err
	}
	defer b.mu.Unlock()
	b.catchAll = append(b.catchAll, h)
	b.log.Debug("subscribed catch-all handler")
	return nil
}

// prepare validates handler and wraps it in the chain. On success it
// returns with mu held.
func (b *Bus) prepare(handler shared.EventHandler) (shared.EventHandler, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrEventBusClosed
	}
	for i := len(b.chain) - 1; i >= 0; i-- {
		handler = b.chain[i](handler)
	}
	return handler, nil
}

// Publish delivers event. Handler failures are logged and counted but never
// returned; only a nil event or a closed bus fail Publish.
func (b *Bus) Publish(event shared.Event) error {
	if event == nil {
		return ErrNilEvent
	}
	kind := event.EventType()

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}
	targets := append(append([]shared.EventHandler(nil), b.typed[kind]...), b.catchAll...)
	if b.async {
		// Counted under the read lock so Close cannot start waiting first.
		b.inFlight.Add(len(targets))
	}
	b.mu.RUnlock()

	if b.stats != nil {
		b.stats.RecordPublish(kind)
	}
	if len(targets) == 0 {
		b.log.Debug("no handlers for event", logger.EventType(string(kind)))
		return nil
	}

	for _, h := range targets {
		if b.async {
			b.dispatch(event, h)
		} else {
			b.deliver(event, h)
		}
	}
	return nil
}

// dispatch runs one delivery on a worker slot. The caller has already
// counted it in inFlight. Deliveries still waiting for a slot when the bus
// closes are dropped.
func (b *Bus) dispatch(event shared.Event, h shared.EventHandler) {
	go func() {
		defer b.inFlight.Done()
		select {
		case b.slots <- struct{}{}:
		case <-b.done:
			return
		}
		defer func() { <-b.slots }()
		b.deliver(event, h)
	}()
}

func (b *Bus) deliver(event shared.Event, h shared.EventHandler) {
	start := time.Now()
	err := h(event)
	if b.stats != nil {
		b.stats.RecordHandlerExecution(time.Since(start), err == nil)
	}
	if err != nil {
		b.log.Error("handler error",
			logger.EventType(string(event.EventType())),
			logger.Bool("async", b.async),
			logger.Err(err),
		)
	}
}

// Close stops accepting events and waits for running handlers. It is
// idempotent.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.done)
	b.mu.Unlock()

	b.inFlight.Wait()
	b.log.Debug("event bus closed")
	return nil
}

// Metrics returns the counters, or nil when disabled.
func (b *Bus) Metrics() *Metrics { return b.stats }

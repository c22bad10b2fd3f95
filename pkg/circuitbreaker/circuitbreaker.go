// Package circuitbreaker stops calling a failing dependency for a while and
// probes it again before letting traffic back through.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the breaker position.
type State uint8

const (
	StateClosed   State = iota // every call goes through
	StateOpen                  // calls are rejected until the cool-down ends
	StateHalfOpen              // a bounded number of probes go through
)

var stateNames = [...]string{"closed", "open", "half-open"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

var (
	ErrCircuitOpen = errors.New("circuit breaker is open")
	ErrProbesBusy  = errors.New("circuit breaker probe already in flight")
)

// IsRejected reports whether err came from the breaker rather than the call.
func IsRejected(err error) bool {
	return errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrProbesBusy)
}

// ══════════════════════════════════════════════════════════════════════════════
// SETTINGS
// ══════════════════════════════════════════════════════════════════════════════

// Settings tune a breaker. Zero fields take the values shown in parentheses.
type Settings struct {
	Name string

	// MaxFailures in a row trip a closed breaker (5).
	MaxFailures int
	// ProbeSuccesses in a row close a half-open breaker (2).
	ProbeSuccesses int
	// Cooldown is the time spent open before probing (30s).
	Cooldown time.Duration
	// MaxProbes bounds concurrent half-open calls (1).
	MaxProbes int

	// OnStateChange runs under the breaker lock and must not call back into it.
	OnStateChange func(name string, from, to State)
	// IsFailure decides which errors count. Nil counts every non-nil error.
	IsFailure func(error) bool
	// Clock replaces time.Now.
	Clock func() time.Time
}

func (s Settings) withDefaults() Settings {
	if s.MaxFailures <= 0 {
		s.MaxFailures = 5
	}
	if s.ProbeSuccesses <= 0 {
		s.ProbeSuccesses = 2
	}
	if s.Cooldown <= 0 {
		s.Cooldown = 30 * time.Second
	}
	if s.MaxProbes <= 0 {
		s.MaxProbes = 1
	}
	if s.Clock == nil {
		s.Clock = time.Now
	}
	return s
}

// ══════════════════════════════════════════════════════════════════════════════
// BREAKER
// ══════════════════════════════════════════════════════════════════════════════

// Counts are running totals since creation or the last Reset.
type Counts struct {
	Calls     int
	Rejected  int
	Successes int
	Failures  int

	// streak is positive for consecutive successes, negative for failures.
	streak int
}

// CircuitBreaker is safe for concurrent use.
type CircuitBreaker struct {
	settings Settings

	mu       sync.Mutex
	state    State
	counts   Counts
	openedAt time.Time
	inFlight int
}

// New returns a closed breaker.
func New(s Settings) *CircuitBreaker {
	return &CircuitBreaker{settings: s.withDefaults()}
}

// Execute calls fn unless the breaker turns it away, then records the result.
// Rejections return ErrCircuitOpen or ErrProbesBusy without calling fn.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.enter(); err != nil {
		return err
	}
	err := fn(ctx)
	cb.leave(err)
	return err
}

func (cb *CircuitBreaker) enter() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && cb.settings.Clock().Sub(cb.openedAt) >= cb.settings.Cooldown {
		cb.moveTo(StateHalfOpen)
	}
	switch {
	case cb.state == StateClosed:
		return nil
	case cb.state == StateHalfOpen && cb.inFlight < cb.settings.MaxProbes:
		cb.inFlight++
		return nil
	case cb.state == StateHalfOpen:
		cb.counts.Rejected++
		return ErrProbesBusy
	}
	cb.counts.Rejected++
	return ErrCircuitOpen
}

func (cb *CircuitBreaker) leave(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.counts.Calls++
	if cb.state == StateHalfOpen && cb.inFlight > 0 {
		cb.inFlight--
	}

	if err != nil && (cb.settings.IsFailure == nil || cb.settings.IsFailure(err)) {
		cb.counts.Failures++
		cb.counts.streak = min(cb.counts.streak, 0) - 1
		if cb.state == StateHalfOpen || -cb.counts.streak >= cb.settings.MaxFailures {
			cb.moveTo(StateOpen)
		}
		return
	}

	cb.counts.Successes++
	cb.counts.streak = max(cb.counts.streak, 0) + 1
	if cb.state == StateHalfOpen && cb.counts.streak >= cb.settings.ProbeSuccesses {
		cb.moveTo(StateClosed)
	}
}

// moveTo must be called with mu held. Every move restarts the streak.
func (cb *CircuitBreaker) moveTo(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	cb.counts.streak = 0
	cb.inFlight = 0
	if to == StateOpen {
		cb.openedAt = cb.settings.Clock()
	}
	if cb.settings.OnStateChange != nil {
		cb.settings.OnStateChange(cb.settings.Name, from, to)
	}
}

// State returns the current position. An open breaker whose cool-down has
// passed still reports open until the next call.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.counts
}

// Reset closes the breaker and zeroes its counts without a state callback.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state, cb.counts, cb.inFlight = StateClosed, Counts{}, 0
}

func (cb *CircuitBreaker) Name() string { return cb.settings.Name }

// CacheBreaker suits an optional cache: trip fast, probe again soon.
func CacheBreaker(onStateChange func(name string, from, to State)) *CircuitBreaker {
	return New(Settings{
		Name:           "redis-cache",
		MaxFailures:    3,
		ProbeSuccesses: 1,
		Cooldown:       15 * time.Second,
		MaxProbes:      1,
		OnStateChange:  onStateChange,
	})
}

// Package resilience provides reliability patterns for calls to optional
// collaborators such as the event queue.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the circuit breaker is open and rejecting calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type state int

const (
	stateClosed state = iota
	stateOpen
	stateHalfOpen
)

func (s state) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Breaker opens after maxFailures consecutive failures and rejects calls
// until timeout has elapsed; then one trial call decides whether it closes.
type Breaker struct {
	name        string
	mu          sync.Mutex
	state       state
	failures    int
	maxFailures int
	timeout     time.Duration
	openedAt    time.Time
	now         func() time.Time // for testing
}

// NewBreaker creates a named circuit breaker.
func NewBreaker(name string, maxFailures int, timeout time.Duration) *Breaker {
	return &Breaker{
		name:        name,
		maxFailures: max(maxFailures, 1),
		timeout:     timeout,
		now:         time.Now,
	}
}

// Execute runs fn if the circuit is closed or half-open.
// Returns ErrCircuitOpen if the circuit is open.
func (b *Breaker) Execute(fn func() error) error {
	if !b.allowRequest() {
		return ErrCircuitOpen
	}

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.onFailure()
		return err
	}

	b.onSuccess()
	return nil
}

// State reports the current state as "closed", "open" or "half-open".
func (b *Breaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.String()
}

func (b *Breaker) allowRequest() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateClosed, stateHalfOpen:
		return true
	case stateOpen:
		if b.now().Sub(b.openedAt) >= b.timeout {
			b.state = stateHalfOpen
			return true
		}
	}
	return false
}

// onFailure must be called with b.mu held.
func (b *Breaker) onFailure() {
	b.failures++
	if b.state == stateHalfOpen || b.failures >= b.maxFailures {
		if b.state != stateOpen {
			slog.Warn("circuit breaker opened", "breaker", b.name, "failures", b.failures)
		}
		b.state = stateOpen
		b.openedAt = b.now()
	}
}

// onSuccess must be called with b.mu held.
func (b *Breaker) onSuccess() {
	if b.state != stateClosed {
		slog.Info("circuit breaker closed", "breaker", b.name)
	}
	b.failures = 0
	b.state = stateClosed
}

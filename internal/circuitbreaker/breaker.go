// Package circuitbreaker implements a three-state breaker placed in front of
// the REST transport. Repeated venue failures open the breaker so a degraded
// venue is not hammered while it recovers.
package circuitbreaker

import (
	"sync"
	"time"
)

// State is the breaker state.
type State int

// Breaker states.
const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	}
	return "UNKNOWN"
}

// Config holds the breaker thresholds.
type Config struct {
	// FailThreshold is the number of consecutive failures that open the breaker.
	FailThreshold int
	// SuccessThreshold is the number of consecutive half-open successes that
	// close the breaker again.
	SuccessThreshold int
	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration
}

// Breaker is a three-state circuit breaker. The zero value is not usable;
// construct with New.
type Breaker struct {
	mu        sync.Mutex
	state     State
	failures  int
	successes int
	openedAt  time.Time
	cfg       Config

	// now is replaceable in tests.
	now func() time.Time
}

// New creates a closed Breaker with the given thresholds.
func New(cfg Config) *Breaker {
	return &Breaker{cfg: cfg, now: time.Now}
}

// Allow reports whether a request may proceed. An open breaker whose timeout
// has elapsed transitions to half-open and allows one probe through.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if b.now().Sub(b.openedAt) >= b.cfg.Timeout {
			b.state = StateHalfOpen
			b.successes = 0
			return true
		}
		return false
	}
	return false
}

// Record reports the outcome of a request that Allow let through.
func (b *Breaker) Record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		if success {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.cfg.FailThreshold {
			b.state = StateOpen
			b.openedAt = b.now()
		}
	case StateHalfOpen:
		if !success {
			b.state = StateOpen
			b.openedAt = b.now()
			b.successes = 0
			return
		}
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.state = StateClosed
			b.failures = 0
			b.successes = 0
		}
	case StateOpen:
		// Late results for requests issued before the breaker opened.
		if !success {
			b.openedAt = b.now()
		}
	}
}

// State returns the current breaker state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Reset forces the breaker closed and clears its counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}

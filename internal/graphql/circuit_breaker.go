// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package graphql

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ManuGH/storefront/internal/metrics"
)

// State is the position of a CircuitBreaker.
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// ErrCircuitOpen is returned without contacting the API while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeFailure
	outcomeIgnored
)

// CircuitBreaker stops calling the platform API after repeated outages.
// After the cooldown a single probe call is let through while other callers
// keep getting ErrCircuitOpen; a successful probe closes the circuit, a
// failed one reopens it.
type CircuitBreaker struct {
	upstream  string
	threshold int
	cooldown  time.Duration
	isFailure func(error) bool
	now       func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

// NewCircuitBreaker returns a closed breaker. isFailure decides which errors
// count as outages; nil counts every error.
func NewCircuitBreaker(threshold int, cooldown time.Duration, isFailure func(error) bool) *CircuitBreaker {
	if threshold < 1 {
		threshold = 1
	}
	if isFailure == nil {
		isFailure = func(err error) bool { return err != nil }
	}
	cb := &CircuitBreaker{
		upstream:  "graphql",
		threshold: threshold,
		cooldown:  cooldown,
		isFailure: isFailure,
		now:       time.Now,
	}
	metrics.SetBreakerState(cb.upstream, StateClosed.String())
	return cb
}

// Execute calls fn unless the circuit is open and records its outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	return cb.ExecuteContext(context.Background(), func(context.Context) error { return fn() })
}

// ExecuteContext is Execute for a call bound to ctx. A failure after ctx has
// ended belongs to the caller and leaves the breaker as it was.
func (cb *CircuitBreaker) ExecuteContext(ctx context.Context, fn func(context.Context) error) error {
	probe, ok := cb.admit()
	if !ok {
		return ErrCircuitOpen
	}
	err := fn(ctx)
	cb.observe(probe, cb.classify(ctx, err))
	return err
}

// State reports the current position.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) classify(ctx context.Context, err error) outcome {
	switch {
	case err == nil:
		return outcomeSuccess
	case ctx.Err() != nil, errors.Is(err, ErrCanceled):
		return outcomeIgnored
	case cb.isFailure(err):
		return outcomeFailure
	default:
		return outcomeSuccess
	}
}

// admit reports whether a call may run and whether it is the half-open probe.
func (cb *CircuitBreaker) admit() (probe, ok bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return false, true
	case StateOpen:
		if cb.now().Sub(cb.openedAt) <= cb.cooldown {
			return false, false
		}
		cb.moveTo(StateHalfOpen)
	}
	if cb.probing {
		return false, false
	}
	cb.probing = true
	return true, true
}

func (cb *CircuitBreaker) observe(probe bool, o outcome) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if probe {
		cb.probing = false
	}
	if o == outcomeIgnored {
		return
	}

	switch cb.state {
	case StateClosed:
		if o == outcomeSuccess {
			cb.failures = 0
			return
		}
		cb.failures++
		if cb.failures >= cb.threshold {
			cb.trip("threshold")
		}
	case StateHalfOpen:
		// Calls admitted before the trip finish here too; only the probe decides.
		if !probe {
			return
		}
		if o == outcomeFailure {
			cb.trip("probe_failed")
			return
		}
		cb.failures = 0
		cb.moveTo(StateClosed)
	}
}

// trip and moveTo expect cb.mu to be held.
func (cb *CircuitBreaker) trip(cause string) {
	cb.openedAt = cb.now()
	cb.moveTo(StateOpen)
	metrics.RecordBreakerTrip(cb.upstream, cause)
}

func (cb *CircuitBreaker) moveTo(s State) {
	if cb.state == s {
		return
	}
	cb.state = s
	metrics.SetBreakerState(cb.upstream, s.String())
}

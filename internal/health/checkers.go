// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"errors"

	"github.com/ManuGH/storefront/internal/graphql"
)

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker reports a dependency unhealthy when its Ping fails.
type PingChecker struct {
	name   string
	pinger Pinger
}

// NewPingChecker creates a checker around p.
func NewPingChecker(name string, p Pinger) *PingChecker {
	return &PingChecker{name: name, pinger: p}
}

func (c *PingChecker) Name() string {
	return c.name
}

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	if err := c.pinger.Ping(ctx); err != nil {
		msg := "ping failed"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "ping timed out"
		}
		return CheckResult{Status: StatusUnhealthy, Message: msg, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy, Message: "reachable"}
}

// BreakerChecker reports the platform API circuit breaker without sending
// a request. An open breaker means degraded service, not an unready instance.
type BreakerChecker struct {
	breaker *graphql.CircuitBreaker
}

// NewBreakerChecker creates a checker for b.
func NewBreakerChecker(b *graphql.CircuitBreaker) *BreakerChecker {
	return &BreakerChecker{breaker: b}
}

func (c *BreakerChecker) Name() string {
	return "api_circuit"
}

func (c *BreakerChecker) Check(context.Context) CheckResult {
	switch c.breaker.State() {
	case graphql.StateOpen:
		return CheckResult{Status: StatusDegraded, Message: "circuit open"}
	case graphql.StateHalfOpen:
		return CheckResult{Status: StatusDegraded, Message: "circuit half-open"}
	default:
		return CheckResult{Status: StatusHealthy, Message: "circuit closed"}
	}
}

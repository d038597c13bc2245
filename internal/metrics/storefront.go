// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics holds the storefront's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Action status labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	formActionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_form_action_total",
		Help: "Form action outcomes by action and status",
	}, []string{"action", "status"}) // status=success|error

	sessionEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_session_events_total",
		Help: "Customer session lifecycle events by backend",
	}, []string{"backend", "event"}) // event=start|destroy|expired

	sessionStoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_session_store_errors_total",
		Help: "Session store failures by backend and operation",
	}, []string{"backend", "op"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cache_lookups_total",
		Help: "Cache lookups by cache name and result",
	}, []string{"cache", "result"}) // result=hit|miss|shared

	pagesRendered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_pages_rendered_total",
		Help: "Rendered pages by page and mode",
	}, []string{"page", "mode"}) // mode=dynamic|prerendered|export

	configReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_config_reloads_total",
		Help: "Configuration reload attempts by result",
	}, []string{"result"})

	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "storefront_upstream_breaker_state",
		Help: "Upstream circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"upstream"})

	breakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_upstream_breaker_trips_total",
		Help: "Upstream circuit breaker transitions to open",
	}, []string{"upstream", "cause"})
)

var breakerStateValues = map[string]float64{
	"closed":    0,
	"half-open": 1,
	"open":      2,
}

// RecordAction counts a form action outcome.
func RecordAction(action, status string) {
	formActionTotal.WithLabelValues(action, status).Inc()
}

// RecordSessionEvent counts a session lifecycle event.
func RecordSessionEvent(backend, event string) {
	sessionEventsTotal.WithLabelValues(backend, event).Inc()
}

// RecordSessionsSwept counts expired sessions dropped by a store's sweep.
func RecordSessionsSwept(backend string, n int) {
	sessionEventsTotal.WithLabelValues(backend, "swept").Add(float64(n))
}

// RecordSessionStoreError counts a failed session store operation.
func RecordSessionStoreError(backend, op string) {
	sessionStoreErrors.WithLabelValues(backend, op).Inc()
}

// RecordCacheLookup counts a cache lookup result.
func RecordCacheLookup(cache, result string) {
	cacheLookups.WithLabelValues(cache, result).Inc()
}

// RecordPageRender counts a rendered page.
func RecordPageRender(page, mode string) {
	pagesRendered.WithLabelValues(page, mode).Inc()
}

// RecordConfigReload counts a configuration reload attempt.
func RecordConfigReload(success bool) {
	result := StatusSuccess
	if !success {
		result = StatusError
	}
	configReloads.WithLabelValues(result).Inc()
}

// SetBreakerState publishes the breaker state of an upstream. Unknown states
// are ignored.
func SetBreakerState(upstream, state string) {
	if v, ok := breakerStateValues[state]; ok {
		breakerState.WithLabelValues(upstream).Set(v)
	}
}

// RecordBreakerTrip counts a breaker opening.
func RecordBreakerTrip(upstream, cause string) {
	breakerTrips.WithLabelValues(upstream, cause).Inc()
}

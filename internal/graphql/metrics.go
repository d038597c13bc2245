// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package graphql

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_graphql_request_total",
			Help: "Total number of GraphQL operations sent to the platform API",
		},
		[]string{"operation", "status_class"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_graphql_request_duration_seconds",
			Help:    "Duration of GraphQL operations",
			Buckets: prometheus.ExponentialBuckets(0.025, 2.0, 9),
		},
		[]string{"operation", "status_class"},
	)
	requestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_graphql_request_errors_total",
			Help: "Number of GraphQL operations that failed, by kind",
		},
		[]string{"operation", "kind"}, // kind=transport|http|graphql|decode|circuit_open
	)
)

func statusClass(err error, status int) string {
	if status == 0 && err != nil {
		return "error"
	}
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	case status > 0:
		return "1xx"
	}
	return "unknown"
}

func recordRequestMetrics(operation string, status int, duration time.Duration, err error) {
	class := statusClass(err, status)
	requestTotal.WithLabelValues(operation, class).Inc()
	requestDuration.WithLabelValues(operation, class).Observe(duration.Seconds())
}

func recordRequestError(operation, kind string) {
	requestErrors.WithLabelValues(operation, kind).Inc()
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pageRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_http_request_duration_seconds",
		Help:    "Request latency by route pattern, locale and status",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"method", "route", "locale", "status"})

	pageRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_http_requests_in_flight",
		Help: "Requests currently being served",
	})

	pageResponseBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_http_response_size_bytes",
		Help:    "Response body size by route pattern",
		Buckets: prometheus.ExponentialBuckets(256, 4, 7),
	}, []string{"route"})
)

// Metrics records request latency and response size. Probe endpoints are
// not recorded.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isProbe(r) {
				next.ServeHTTP(w, r)
				return
			}
			pageRequestsInFlight.Inc()
			defer pageRequestsInFlight.Dec()

			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route, locale := routeLabels(r)
			pageRequestDuration.
				WithLabelValues(r.Method, route, locale, strconv.Itoa(ww.Status())).
				Observe(time.Since(start).Seconds())
			if n := ww.BytesWritten(); n > 0 {
				pageResponseBytes.WithLabelValues(route).Observe(float64(n))
			}
		})
	}
}

// routeLabels returns the matched chi pattern ("unmatched" when routing
// failed) and the {locale} parameter ("none" outside localized routes).
func routeLabels(r *http.Request) (route, locale string) {
	route, locale = "unmatched", "none"
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return route, locale
	}
	if p := rctx.RoutePattern(); p != "" {
		route = p
	}
	if l := rctx.URLParam("locale"); l != "" && route != "unmatched" {
		locale = l
	}
	return route, locale
}

func isProbe(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/readyz", "/metrics":
		return true
	}
	return false
}

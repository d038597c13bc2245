// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAction(t *testing.T) {
	before := testutil.ToFloat64(formActionTotal.WithLabelValues("register_customer", StatusError))
	RecordAction("register_customer", StatusError)
	RecordAction("register_customer", StatusError)
	after := testutil.ToFloat64(formActionTotal.WithLabelValues("register_customer", StatusError))
	assert.InDelta(t, 2, after-before, 0.001)
}

func TestSetBreakerState(t *testing.T) {
	SetBreakerState("graphql", "open")
	assert.InDelta(t, 2, testutil.ToFloat64(breakerState.WithLabelValues("graphql")), 0.001)

	SetBreakerState("graphql", "bogus")
	assert.InDelta(t, 2, testutil.ToFloat64(breakerState.WithLabelValues("graphql")), 0.001)

	SetBreakerState("graphql", "closed")
	assert.InDelta(t, 0, testutil.ToFloat64(breakerState.WithLabelValues("graphql")), 0.001)
}

func TestRecordBreakerTrip(t *testing.T) {
	before := testutil.ToFloat64(breakerTrips.WithLabelValues("graphql", "threshold"))
	RecordBreakerTrip("graphql", "threshold")
	assert.InDelta(t, 1, testutil.ToFloat64(breakerTrips.WithLabelValues("graphql", "threshold"))-before, 0.001)
}

func TestRecordConfigReload(t *testing.T) {
	before := testutil.ToFloat64(configReloads.WithLabelValues(StatusError))
	RecordConfigReload(false)
	assert.InDelta(t, 1, testutil.ToFloat64(configReloads.WithLabelValues(StatusError))-before, 0.001)
}

func TestRecordSessionEvent_Gathered(t *testing.T) {
	RecordSessionEvent("memory", "start")

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	var found *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "storefront_session_events_total" {
			found = mf
		}
	}
	require.NotNil(t, found, "session event family not registered")
	assert.Equal(t, dto.MetricType_COUNTER, found.GetType())
}

func TestPromhttpExposure(t *testing.T) {
	RecordPageRender("change_password", "prerendered")

	srv := httptest.NewServer(promhttp.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := new(strings.Builder)
	_, err = io.Copy(body, resp.Body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), "storefront_pages_rendered_total")
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package graphql

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, mock *MockServer) *Client {
	t.Helper()
	c, err := New(Config{
		Endpoint:         mock.URL,
		StorefrontToken:  "sf-token",
		ChannelID:        1,
		Timeout:          500 * time.Millisecond,
		RateLimit:        1000,
		Burst:            1000,
		BreakerThreshold: 2,
		BreakerReset:     time.Minute,
		HTTPClient:       &http.Client{Timeout: 500 * time.Millisecond},
	})
	require.NoError(t, err)
	return c
}

func TestNew_RejectsRelativeEndpoint(t *testing.T) {
	_, err := New(Config{Endpoint: "/graphql"})
	require.Error(t, err)
}

func TestDo_SendsHeadersAndDecodesData(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.On("CustomerName", MockResponse{Data: map[string]any{
		"customer": map[string]any{"firstName": "Jane"},
	}})

	c := newTestClient(t, mock)
	var out struct {
		Customer struct {
			FirstName string `json:"firstName"`
		} `json:"customer"`
	}
	err := c.Do(context.Background(), Request{
		OperationName:       "CustomerName",
		Query:               "query CustomerName { customer { firstName } }",
		Variables:           map[string]any{"x": 1},
		CustomerAccessToken: "cust-token",
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Jane", out.Customer.FirstName)

	reqs := mock.Requests("CustomerName")
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer sf-token", reqs[0].Header.Get("Authorization"))
	assert.Equal(t, "cust-token", reqs[0].Header.Get(CustomerTokenHeader))
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))
	assert.EqualValues(t, 1, reqs[0].Variables["x"])
}

func TestDo_OmitsCustomerHeaderWithoutToken(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()

	c := newTestClient(t, mock)
	require.NoError(t, c.Ping(context.Background()))

	reqs := mock.Requests("Ping")
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].Header.Get(CustomerTokenHeader))
}

func TestDo_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		resp     MockResponse
		sentinel error
		status   int
	}{
		{name: "unauthorized", resp: MockResponse{Status: 401, Raw: "nope"}, sentinel: ErrUnauthorized, status: 401},
		{name: "forbidden", resp: MockResponse{Status: 403}, sentinel: ErrUnauthorized, status: 403},
		{name: "server error", resp: MockResponse{Status: 500}, sentinel: ErrUpstreamError, status: 500},
		{name: "bad request", resp: MockResponse{Status: 400}, sentinel: ErrRejected, status: 400},
		{name: "malformed json", resp: MockResponse{Raw: "{not-json"}, sentinel: ErrBadResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockServer()
			defer mock.Close()
			mock.On("Op", tt.resp)

			err := newTestClient(t, mock).Do(context.Background(), Request{OperationName: "Op", Query: "query Op { x }"}, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, "Op", apiErr.Operation)
		})
	}
}

func TestDo_TopLevelErrors(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.On("Op", MockResponse{Errors: []GraphQLError{{Message: "Field 'x' doesn't exist"}}})

	err := newTestClient(t, mock).Do(context.Background(), Request{OperationName: "Op"}, nil)
	var respErr *ResponseError
	require.True(t, errors.As(err, &respErr))
	require.Len(t, respErr.Errors, 1)
	assert.Equal(t, "Field 'x' doesn't exist", respErr.Errors[0].Message)
	assert.False(t, IsAPIError(err))
}

func TestDo_TransportFailureIsNotAPIError(t *testing.T) {
	mock := NewMockServer()
	c := newTestClient(t, mock)
	mock.Close()

	err := c.Do(context.Background(), Request{OperationName: "Op"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.False(t, IsAPIError(err))
}

func TestDo_Timeout(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.On("Slow", MockResponse{Delay: 2 * time.Second, Data: map[string]any{}})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := newTestClient(t, mock).Do(ctx, Request{OperationName: "Slow"}, nil)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestDo_BreakerOpensOnOutage(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.On("Op", MockResponse{Status: http.StatusBadGateway})

	c := newTestClient(t, mock)
	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, c.Do(context.Background(), Request{OperationName: "Op"}, nil), ErrUpstreamError)
	}
	assert.Equal(t, StateOpen, c.Breaker().State())
	assert.ErrorIs(t, c.Do(context.Background(), Request{OperationName: "Op"}, nil), ErrCircuitOpen)
	assert.Len(t, mock.Requests("Op"), 2)
}

func TestDo_CallerCancellationKeepsBreakerClosed(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.On("Slow", MockResponse{Delay: 200 * time.Millisecond, Data: map[string]any{}})
	mock.On("Ping", MockResponse{Data: map[string]any{"__typename": "Query"}})

	c := newTestClient(t, mock)
	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)
		err := c.Do(ctx, Request{OperationName: "Slow"}, nil)
		cancel()

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCanceled)
		assert.NotErrorIs(t, err, ErrUpstreamUnavailable)
	}

	assert.Equal(t, StateClosed, c.Breaker().State())
	assert.NoError(t, c.Ping(context.Background()))
}

func TestDo_CallerDeadlineKeepsBreakerClosed(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.On("Slow", MockResponse{Delay: 200 * time.Millisecond, Data: map[string]any{}})

	c := newTestClient(t, mock)
	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		err := c.Do(ctx, Request{OperationName: "Slow"}, nil)
		cancel()
		assert.ErrorIs(t, err, ErrTimeout)
	}
	assert.Equal(t, StateClosed, c.Breaker().State())
}

func TestDo_CanceledBeforeSendSkipsTheAPI(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.On("Op", MockResponse{Data: map[string]any{}})

	c := newTestClient(t, mock)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Do(ctx, Request{OperationName: "Op"}, nil)
	assert.ErrorIs(t, err, ErrCanceled)
	assert.Empty(t, mock.Requests("Op"))
	assert.Equal(t, StateClosed, c.Breaker().State())
}

func TestPing_BadResponse(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.On("Ping", MockResponse{Data: map[string]any{}})

	assert.ErrorIs(t, newTestClient(t, mock).Ping(context.Background()), ErrBadResponse)
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package graphql is the storefront's client for the commerce platform's
// GraphQL storefront API.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	xglog "github.com/ManuGH/storefront/internal/log"
	"github.com/ManuGH/storefront/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// CustomerTokenHeader carries the signed-in customer's access token.
const CustomerTokenHeader = "X-Bc-Customer-Access-Token"

const (
	defaultTimeout          = 10 * time.Second
	defaultRateLimit        = 20
	defaultRateBurst        = 40
	defaultBreakerThreshold = 5
	defaultBreakerReset     = 30 * time.Second
	maxErrBodyBytes         = 512
	maxResponseBytes        = 4 << 20
)

// Config configures the platform API client.
type Config struct {
	Endpoint         string
	StorefrontToken  string
	ChannelID        int
	Timeout          time.Duration
	RateLimit        float64 // requests/sec
	Burst            int
	BreakerThreshold int
	BreakerReset     time.Duration

	// HTTPClient overrides the instrumented default client.
	HTTPClient *http.Client
}

// Request is a single GraphQL operation.
type Request struct {
	OperationName       string
	Query               string
	Variables           map[string]any
	CustomerAccessToken string
}

type requestBody struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type responseEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// Client talks to the platform GraphQL endpoint.
type Client struct {
	endpoint  string
	token     string
	channelID int
	http      *http.Client
	limiter   *rate.Limiter
	breaker   *CircuitBreaker
	logger    zerolog.Logger
}

// New creates a client. The endpoint must be an absolute http(s) URL.
func New(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return nil, fmt.Errorf("graphql: invalid endpoint %q", cfg.Endpoint)
	}
	cfg = normalizeConfig(cfg)

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		transport := &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   20,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ResponseHeaderTimeout: cfg.Timeout,
		}
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(transport),
		}
	}

	return &Client{
		endpoint:  endpoint,
		token:     cfg.StorefrontToken,
		channelID: cfg.ChannelID,
		http:      httpClient,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		breaker:   NewCircuitBreaker(cfg.BreakerThreshold, cfg.BreakerReset, countsAsOutage),
		logger:    xglog.WithComponent("graphql"),
	}, nil
}

func normalizeConfig(cfg Config) Config {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultRateBurst
	}
	if cfg.BreakerThreshold <= 0 {
		cfg.BreakerThreshold = defaultBreakerThreshold
	}
	if cfg.BreakerReset <= 0 {
		cfg.BreakerReset = defaultBreakerReset
	}
	return cfg
}

// countsAsOutage decides which failures trip the breaker. Domain and client
// errors mean the platform is up.
func countsAsOutage(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) ||
		errors.Is(err, ErrUpstreamError) ||
		errors.Is(err, ErrTimeout)
}

// Breaker exposes the client's circuit breaker state.
func (c *Client) Breaker() *CircuitBreaker {
	return c.breaker
}

// Do sends req and decodes the response data into out (which may be nil).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	op := req.OperationName
	if op == "" {
		op = "anonymous"
	}

	ctx, span := telemetry.Tracer("storefront.graphql").Start(ctx, "graphql."+op,
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.Int("storefront.channel_id", c.channelID))

	err := c.wait(ctx, op)
	if err == nil {
		err = c.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
			return c.do(ctx, op, req, out)
		})
	}

	var respErr *ResponseError
	switch {
	case err == nil:
		span.SetAttributes(telemetry.GraphQLAttributes(op, 0)...)
		span.SetStatus(codes.Ok, "")
	case errors.As(err, &respErr):
		span.SetAttributes(telemetry.GraphQLAttributes(op, len(respErr.Errors))...)
		span.SetStatus(codes.Error, "graphql errors")
	default:
		errType := "transport"
		switch {
		case errors.Is(err, ErrCircuitOpen):
			errType = "circuit_open"
			recordRequestError(op, errType)
		case errors.Is(err, ErrCanceled):
			errType = "canceled"
		case IsAPIError(err):
			errType = "http"
		}
		span.SetAttributes(telemetry.ErrorAttributes(errType)...)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// wait blocks on the outbound limiter. Its failures stay outside the breaker:
// they come from the caller's deadline, not from the platform.
func (c *Client) wait(ctx context.Context, op string) error {
	err := c.limiter.Wait(ctx)
	if err == nil {
		return nil
	}
	recordRequestError(op, "rate_limit")
	sentinel := ErrTimeout
	if errors.Is(ctx.Err(), context.Canceled) {
		sentinel = ErrCanceled
	}
	return &APIError{Sentinel: sentinel, Operation: op, Err: err}
}

func (c *Client) do(ctx context.Context, op string, req Request, out any) error {
	payload, err := json.Marshal(requestBody{
		Query:         req.Query,
		OperationName: req.OperationName,
		Variables:     req.Variables,
	})
	if err != nil {
		return fmt.Errorf("graphql: %s: encode request: %w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("graphql: %s: build request: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}
	if req.CustomerAccessToken != "" {
		httpReq.Header.Set(CustomerTokenHeader, req.CustomerAccessToken)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		recordRequestMetrics(op, 0, duration, err)
		recordRequestError(op, "transport")
		c.logger.Warn().
			Err(err).
			Str(xglog.FieldEvent, "graphql.transport_failed").
			Str(xglog.FieldOperation, op).
			Int64(xglog.FieldDuration, duration.Milliseconds()).
			Msg("graphql request failed")
		return &APIError{Sentinel: classifyTransport(ctx, err), Operation: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	recordRequestMetrics(op, resp.StatusCode, duration, nil)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBodyBytes))
		recordRequestError(op, "http")
		c.logger.Warn().
			Str(xglog.FieldEvent, "graphql.http_error").
			Str(xglog.FieldOperation, op).
			Int(xglog.FieldStatus, resp.StatusCode).
			Msg("graphql request rejected")
		return &APIError{
			Sentinel:  classifyStatus(resp.StatusCode),
			Operation: op,
			Status:    resp.StatusCode,
			Body:      strings.TrimSpace(string(body)),
		}
	}

	var env responseEnvelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		recordRequestError(op, "decode")
		return &APIError{Sentinel: ErrBadResponse, Operation: op, Err: err}
	}
	if len(env.Errors) > 0 {
		recordRequestError(op, "graphql")
		return &ResponseError{Operation: op, Errors: env.Errors}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		recordRequestError(op, "decode")
		return &APIError{Sentinel: ErrBadResponse, Operation: op, Err: err}
	}

	c.logger.Debug().
		Str(xglog.FieldEvent, "graphql.request_ok").
		Str(xglog.FieldOperation, op).
		Int64(xglog.FieldDuration, duration.Milliseconds()).
		Msg("graphql request completed")
	return nil
}

func classifyTransport(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(ctx.Err(), context.Canceled):
		return ErrCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrUpstreamUnavailable
}

func classifyStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status >= 500:
		return ErrUpstreamError
	default:
		return ErrRejected
	}
}

const pingQuery = `query Ping { __typename }`

// Ping runs a trivial query against the API.
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		Typename string `json:"__typename"`
	}
	if err := c.Do(ctx, Request{OperationName: "Ping", Query: pingQuery}, &out); err != nil {
		return err
	}
	if out.Typename == "" {
		return &APIError{Sentinel: ErrBadResponse, Operation: "Ping"}
	}
	return nil
}

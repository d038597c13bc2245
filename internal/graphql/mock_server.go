// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package graphql

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// RecordedRequest is a request captured by MockServer.
type RecordedRequest struct {
	OperationName string
	Query         string
	Variables     map[string]any
	Header        http.Header
}

// MockResponse is a scripted reply for one operation.
type MockResponse struct {
	Status int   // defaults to 200
	Data   any   // marshalled under "data"
	Errors []GraphQLError
	Raw    string        // sent verbatim when set
	Delay  time.Duration // artificial latency
}

// MockServer provides a configurable GraphQL mock server for testing.
// Responses are keyed by operationName.
type MockServer struct {
	*httptest.Server
	mu        sync.RWMutex
	responses map[string]MockResponse
	requests  []RecordedRequest
}

// NewMockServer creates a new GraphQL mock server that answers Ping.
func NewMockServer() *MockServer {
	mock := &MockServer{
		responses: map[string]MockResponse{
			"Ping": {Data: map[string]any{"__typename": "Query"}},
		},
	}
	mock.Server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// On scripts the response for an operation.
func (m *MockServer) On(operation string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[operation] = resp
}

// Requests returns the captured requests for an operation.
func (m *MockServer) Requests(operation string) []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []RecordedRequest
	for _, r := range m.requests {
		if r.OperationName == operation {
			out = append(out, r)
		}
	}
	return out
}

// Reset clears scripted responses (except Ping) and captured requests.
func (m *MockServer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	ping := m.responses["Ping"]
	m.responses = map[string]MockResponse{"Ping": ping}
	m.requests = nil
}

func (m *MockServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body requestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.requests = append(m.requests, RecordedRequest{
		OperationName: body.OperationName,
		Query:         body.Query,
		Variables:     body.Variables,
		Header:        r.Header.Clone(),
	})
	resp, ok := m.responses[body.OperationName]
	m.mu.Unlock()

	if !ok {
		resp = MockResponse{Errors: []GraphQLError{{Message: "unknown operation " + body.OperationName}}}
	}
	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
			return
		}
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if resp.Raw != "" {
		_, _ = w.Write([]byte(resp.Raw))
		return
	}
	out := map[string]any{"data": resp.Data}
	if len(resp.Errors) > 0 {
		out["errors"] = resp.Errors
	}
	_ = json.NewEncoder(w).Encode(out)
}

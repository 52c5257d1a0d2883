// Package testutil provides testing utilities for the content API client.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock API endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// RecordedRequest is a request seen by the mock server.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// MockAPI is a configurable mock content API server for testing.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	counts   map[string]int
	requests []RecordedRequest
}

// NewMockAPI creates a new mock API server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers: make(map[string]http.HandlerFunc),
		counts:   make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		mock.mu.Lock()
		mock.counts[r.URL.Path]++
		mock.requests = append(mock.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
		})
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		WriteResponse(w, NewFailureResponse(http.StatusNotFound, "not found"))
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters and recorded requests.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts = make(map[string]int)
	m.requests = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		WriteResponse(w, resp)
	})
}

// SetGatedResponse configures a response that is held until release is closed
// or receives a value. Each request consumes one value.
func (m *MockAPI) SetGatedResponse(path string, release <-chan struct{}, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		WriteResponse(w, resp)
	})
}

// RequestCount returns the number of requests made to path.
func (m *MockAPI) RequestCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counts[path]
}

// TotalRequests returns the number of requests made to any path.
func (m *MockAPI) TotalRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// LastRequest returns the most recent request, if any.
func (m *MockAPI) LastRequest() (RecordedRequest, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.requests) == 0 {
		return RecordedRequest{}, false
	}
	return m.requests[len(m.requests)-1], true
}

// WriteResponse writes resp to w; useful inside custom handlers.
func WriteResponse(w http.ResponseWriter, resp MockResponse) {
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

func jsonHeaders() map[string]string {
	return map[string]string{"Content-Type": "application/json; charset=utf-8"}
}

// NewEnvelopeResponse creates a 200 OK success envelope around data.
// pagination and filters are omitted when nil.
func NewEnvelopeResponse(data any, pagination any, filters any) MockResponse {
	env := map[string]any{
		"success": true,
		"data":    data,
	}
	if pagination != nil {
		env["pagination"] = pagination
	}
	if filters != nil {
		env["filters"] = filters
	}
	body, err := json.Marshal(env)
	if err != nil {
		panic("testutil: marshal envelope: " + err.Error())
	}
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers:    jsonHeaders(),
	}
}

// NewApplicationErrorResponse creates a 200 OK envelope with success=false.
func NewApplicationErrorResponse(message string) MockResponse {
	body, _ := json.Marshal(map[string]any{"success": false, "error": message})
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers:    jsonHeaders(),
	}
}

// NewMissingSuccessResponse creates a 200 OK JSON body without a success flag.
func NewMissingSuccessResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"data": []}`,
		Headers:    jsonHeaders(),
	}
}

// NewFailureResponse creates a non-2xx JSON response with an error field.
func NewFailureResponse(status int, message string) MockResponse {
	body, _ := json.Marshal(map[string]any{"success": false, "error": message})
	return MockResponse{
		StatusCode: status,
		Body:       string(body),
		Headers:    jsonHeaders(),
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return NewFailureResponse(http.StatusInternalServerError, "Internal server error")
}

// NewHTMLResponse creates a 200 OK response that is not JSON.
func NewHTMLResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "text/html; charset=utf-8"},
	}
}

package httputil

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

// Doer is the request-level seam between the predictor client and the
// transport. *http.Client satisfies it; tests swap in a MockClient.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// MockClient implements Doer with scripted responses. Responses are
// consumed in the order they were queued; once the script runs out every
// further request gets an empty 200. All methods are safe for concurrent
// use so emitter tests can post from worker goroutines.
type MockClient struct {
	mu sync.Mutex

	// DoFunc, when set, handles every request and bypasses the script.
	DoFunc func(req *http.Request) (*http.Response, error)
	// DefaultError, when set, fails every request and bypasses the script.
	DefaultError error

	requests []*http.Request
	script   []mockResponse
	next     int
}

type mockResponse struct {
	status int
	body   string
	err    error
}

// NewMockClient creates an empty-scripted mock.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// AddResponse queues one canned response.
func (m *MockClient) AddResponse(status int, body string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockResponse{status: status, body: body})
	return m
}

// AddError queues one transport failure.
func (m *MockClient) AddError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockResponse{err: err})
	return m
}

// Do records the request and plays the next scripted response.
func (m *MockClient) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if m.DoFunc != nil {
		return m.DoFunc(req)
	}
	if m.DefaultError != nil {
		return nil, m.DefaultError
	}

	if m.next < len(m.script) {
		r := m.script[m.next]
		m.next++
		if r.err != nil {
			return nil, r.err
		}
		return &http.Response{
			StatusCode: r.status,
			Body:       io.NopCloser(bytes.NewBufferString(r.body)),
			Header:     make(http.Header),
			Request:    req,
		}, nil
	}

	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString("")),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

// GetRequest returns the nth recorded request, nil if out of range.
func (m *MockClient) GetRequest(n int) *http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n < 0 || n >= len(m.requests) {
		return nil
	}
	return m.requests[n]
}

// RequestCount returns the number of recorded requests.
func (m *MockClient) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

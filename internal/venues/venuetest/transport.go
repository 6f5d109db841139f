// Package venuetest provides a recording transport double for venue service tests.
package venuetest

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
)

// Call records one Get invocation.
type Call struct {
	Endpoint string
	Query    url.Values
}

// Transport answers every endpoint with a canned JSON body, or with Err when set.
type Transport struct {
	mu        sync.Mutex
	Responses map[string]string
	Err       error
	calls     []Call
}

// NewTransport returns a double serving responses keyed by endpoint.
func NewTransport(responses map[string]string) *Transport {
	return &Transport{Responses: responses}
}

func (t *Transport) Get(_ context.Context, endpoint string, query url.Values, result interface{}) error {
	t.mu.Lock()
	t.calls = append(t.calls, Call{Endpoint: endpoint, Query: query})
	t.mu.Unlock()

	if t.Err != nil {
		return t.Err
	}
	body, ok := t.Responses[endpoint]
	if !ok {
		body = "{}"
	}
	return json.Unmarshal([]byte(body), result)
}

// Calls returns the recorded invocations.
func (t *Transport) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Call(nil), t.calls...)
}

// CallCount returns how many times Get was invoked.
func (t *Transport) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}

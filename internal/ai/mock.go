// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ai

import (
	"context"
	"encoding/json"
	"sync"
)

// MockClient is a Completer for tests that replays a fixed response
type MockClient struct {
	mu       sync.Mutex
	Response json.RawMessage
	Err      error
	// Block, when set, makes calls wait until it is closed or ctx is done
	Block    chan struct{}
	calls    int
	requests []ObjectRequest
}

// NewMockClient creates a mock that returns response
func NewMockClient(response string) *MockClient {
	return &MockClient{Response: json.RawMessage(response)}
}

func (m *MockClient) Available() bool { return true }

func (m *MockClient) GenerateObject(ctx context.Context, req ObjectRequest) (json.RawMessage, error) {
	m.mu.Lock()
	m.calls++
	m.requests = append(m.requests, req)
	block, resp, err := m.Block, m.Response, m.Err
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Calls returns how many times GenerateObject ran
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent request
func (m *MockClient) LastRequest() ObjectRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return ObjectRequest{}
	}
	return m.requests[len(m.requests)-1]
}

// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package scheduler

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/tejzpr/thread-mcp/internal/insights"
)

type fakeRefresher struct {
	mu    sync.Mutex
	live  []string
	calls []string
	fail  map[string]bool
}

func (f *fakeRefresher) Refresh(_ context.Context, userID string) (insights.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, userID)
	if f.fail[userID] {
		return insights.Result{}, errors.New("boom")
	}
	return insights.Result{Source: insights.SourceHeuristic}, nil
}

func (f *fakeRefresher) Users() []string { return f.live }

func (f *fakeRefresher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestRefreshAll_MergesUsers(t *testing.T) {
	r := &fakeRefresher{live: []string{"carol", "alice"}, fail: map[string]bool{"bob": true}}
	s := NewScheduler(r, 15, []string{"bob", "alice", ""}, quietLogger())

	s.RefreshAll(context.Background())

	assert.Equal(t, []string{"alice", "bob", "carol"}, r.Calls())
}

func TestRefreshAll_StopsOnCancel(t *testing.T) {
	r := &fakeRefresher{live: []string{"alice", "bob"}}
	s := NewScheduler(r, 15, nil, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.RefreshAll(ctx)

	assert.Empty(t, r.Calls())
}

func TestStartStop(t *testing.T) {
	r := &fakeRefresher{live: []string{"alice"}}
	s := NewScheduler(r, 15, nil, quietLogger())
	s.interval = 10 * time.Millisecond

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return len(r.Calls()) > 0 }, time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop()
	n := len(r.Calls())
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, len(r.Calls()))
}

func TestStop_AfterContextCancel(t *testing.T) {
	s := NewScheduler(&fakeRefresher{}, 15, nil, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked after context cancel")
	}
}

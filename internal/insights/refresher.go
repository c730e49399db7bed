// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package insights

import (
	"context"
	"sync"

	"github.com/tejzpr/thread-mcp/internal/logging"
	"github.com/tejzpr/thread-mcp/internal/metrics"
)

// Job produces one generation result
type Job func(ctx context.Context) (Result, error)

// Refresher runs at most one live regeneration at a time. A new trigger
// cancels the previous run, and a result is only committed while its
// generation is still the latest.
type Refresher struct {
	job     Job
	commit  func(Result)
	logger  logging.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	latest   *Result
	inflight int
	settled  chan struct{}
	running  sync.WaitGroup
}

// NewRefresher creates a refresher that hands committed results to commit
func NewRefresher(job Job, commit func(Result), logger logging.Logger, m *metrics.Metrics) *Refresher {
	if commit == nil {
		commit = func(Result) {}
	}
	return &Refresher{
		job:     job,
		commit:  commit,
		logger:  logging.OrDiscard(logger),
		metrics: m,
		settled: make(chan struct{}),
	}
}

// Trigger starts a new generation in the background and returns its number
func (r *Refresher) Trigger(ctx context.Context) uint64 {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.gen++
	gen := r.gen
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.inflight++
	r.running.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.running.Done()
		defer r.finish()
		defer cancel()
		r.run(runCtx, gen)
	}()
	return gen
}

// Refresh runs a generation synchronously and reports whether it was committed
func (r *Refresher) Refresh(ctx context.Context) (Result, bool) {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.gen++
	gen := r.gen
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.inflight++
	r.mu.Unlock()
	defer r.finish()
	defer cancel()

	return r.run(runCtx, gen)
}

// finish wakes Await callers once a run has committed or given up
func (r *Refresher) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inflight--
	close(r.settled)
	r.settled = make(chan struct{})
}

// Await returns the latest committed result, waiting while runs are still
// in flight. It reports false once nothing is running and nothing has
// been committed, or when ctx ends first.
func (r *Refresher) Await(ctx context.Context) (Result, bool) {
	for {
		r.mu.Lock()
		if r.latest != nil {
			res := *r.latest
			r.mu.Unlock()
			return res, true
		}
		if r.inflight == 0 {
			r.mu.Unlock()
			return Result{}, false
		}
		settled := r.settled
		r.mu.Unlock()

		select {
		case <-settled:
		case <-ctx.Done():
			return Result{}, false
		}
	}
}

func (r *Refresher) run(ctx context.Context, gen uint64) (Result, bool) {
	res, err := r.job(ctx)
	if err != nil {
		r.logger.WithFields(logging.Fields{
			"generation": gen,
			"error":      err.Error(),
		}).Warn("insight refresh failed")
		return res, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		r.metrics.RecordStaleDiscarded()
		r.logger.WithField("generation", gen).Debug("discarding stale insight result")
		return res, false
	}
	r.latest = &res
	r.commit(res)
	return res, true
}

// Latest returns the last committed result
func (r *Refresher) Latest() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latest == nil {
		return Result{}, false
	}
	return *r.latest, true
}

// Generation returns the number of the most recent trigger
func (r *Refresher) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// Stop cancels any in-flight run and waits for background runs to exit
func (r *Refresher) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()
	r.running.Wait()
}

// Wait blocks until background runs have finished
func (r *Refresher) Wait() {
	r.running.Wait()
}

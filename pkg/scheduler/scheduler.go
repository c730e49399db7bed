// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package scheduler

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tejzpr/thread-mcp/internal/insights"
)

// Refresher regenerates insights for one user
type Refresher interface {
	Refresh(ctx context.Context, userID string) (insights.Result, error)
	Users() []string
}

// Scheduler handles periodic insight regeneration
type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	users     []string
	logger    *logrus.Logger
	stopChan  chan bool
	started   atomic.Bool
	stopOnce  sync.Once
	done      chan struct{}
}

// NewScheduler creates a new scheduler. Each tick refreshes the configured
// users plus every user that already has live state.
func NewScheduler(r Refresher, intervalMinutes int, users []string, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scheduler{
		refresher: r,
		interval:  time.Duration(intervalMinutes) * time.Minute,
		users:     users,
		logger:    logger,
		stopChan:  make(chan bool),
		done:      make(chan struct{}),
	}
}

// Start begins the scheduler
func (s *Scheduler) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	ticker := time.NewTicker(s.interval)
	go func() {
		defer close(s.done)
		for {
			select {
			case <-ticker.C:
				s.RefreshAll(ctx)
			case <-s.stopChan:
				ticker.Stop()
				return
			case <-ctx.Done():
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the scheduler and waits for the current round to finish
func (s *Scheduler) Stop() {
	if !s.started.Load() {
		return
	}
	s.stopOnce.Do(func() {
		select {
		case s.stopChan <- true:
		case <-s.done:
		}
		<-s.done
	})
}

// RefreshAll regenerates insights for every known user once
func (s *Scheduler) RefreshAll(ctx context.Context) {
	for _, userID := range s.targets() {
		if ctx.Err() != nil {
			return
		}
		res, err := s.refresher.Refresh(ctx, userID)
		if err != nil {
			s.logger.WithError(err).WithField("user", userID).Warn("Scheduled refresh failed")
			continue
		}
		s.logger.WithFields(logrus.Fields{
			"user":     userID,
			"insights": len(res.Insights),
			"source":   res.Source,
		}).Debug("Scheduled refresh complete")
	}
}

func (s *Scheduler) targets() []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range [][]string{s.users, s.refresher.Users()} {
		for _, u := range list {
			if u != "" && !seen[u] {
				seen[u] = true
				out = append(out, u)
			}
		}
	}
	sort.Strings(out)
	return out
}

// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"

	"github.com/tejzpr/thread-mcp/internal/logging"
)

// BreakerState mirrors the circuit breaker state for metrics
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerHalfOpen
	BreakerOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerHalfOpen:
		return "half-open"
	case BreakerOpen:
		return "open"
	default:
		return "unknown"
	}
}

// GuardConfig configures the Guarded decorator
type GuardConfig struct {
	// Timeout bounds every call. Default: 20 seconds.
	Timeout time.Duration

	// FailureThreshold failures out of FailureWindow calls open the breaker
	FailureThreshold uint
	FailureWindow    uint

	// OpenDelay is how long the breaker stays open before half-open. Default: 30 seconds.
	OpenDelay time.Duration

	Logger        logging.Logger
	OnStateChange func(from, to BreakerState)
}

// DefaultGuardConfig returns the stock guard settings
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		Timeout:          20 * time.Second,
		FailureThreshold: 3,
		FailureWindow:    5,
		OpenDelay:        30 * time.Second,
	}
}

// Guarded wraps a Completer with a per-call timeout and a circuit breaker.
// It never retries: each GenerateObject is at most one upstream call.
type Guarded struct {
	next    Completer
	cb      circuitbreaker.CircuitBreaker[json.RawMessage]
	timeout time.Duration
}

// NewGuarded creates the decorator
func NewGuarded(next Completer, cfg GuardConfig) *Guarded {
	def := DefaultGuardConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.FailureWindow == 0 {
		cfg.FailureWindow = def.FailureWindow
	}
	if cfg.FailureThreshold == 0 || cfg.FailureThreshold > cfg.FailureWindow {
		cfg.FailureThreshold = min(def.FailureThreshold, cfg.FailureWindow)
	}
	if cfg.OpenDelay <= 0 {
		cfg.OpenDelay = def.OpenDelay
	}

	builder := circuitbreaker.NewBuilder[json.RawMessage]().
		WithFailureThresholdRatio(cfg.FailureThreshold, cfg.FailureWindow).
		WithDelay(cfg.OpenDelay).
		WithSuccessThreshold(1)

	if cfg.Logger != nil || cfg.OnStateChange != nil {
		builder = builder.OnStateChanged(func(event circuitbreaker.StateChangedEvent) {
			from, to := convertState(event.OldState), convertState(event.NewState)
			if cfg.Logger != nil {
				cfg.Logger.WithFields(logging.Fields{
					"from_state": from.String(),
					"to_state":   to.String(),
				}).Warn("ai circuit breaker state change")
			}
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(from, to)
			}
		})
	}

	return &Guarded{
		next:    next,
		cb:      builder.Build(),
		timeout: cfg.Timeout,
	}
}

func convertState(state circuitbreaker.State) BreakerState {
	switch state {
	case circuitbreaker.HalfOpenState:
		return BreakerHalfOpen
	case circuitbreaker.OpenState:
		return BreakerOpen
	default:
		return BreakerClosed
	}
}

func (g *Guarded) Available() bool { return g.next.Available() }

// State returns the current breaker state
func (g *Guarded) State() BreakerState {
	return convertState(g.cb.State())
}

// GenerateObject runs one bounded call through the breaker
func (g *Guarded) GenerateObject(ctx context.Context, req ObjectRequest) (json.RawMessage, error) {
	if !g.next.Available() {
		return nil, ErrUnavailable
	}
	if g.cb.IsOpen() {
		return nil, ErrBreakerOpen
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := failsafe.With(g.cb).Get(func() (json.RawMessage, error) {
		return g.next.GenerateObject(callCtx, req)
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return nil, ErrBreakerOpen
	}
	return raw, err
}

// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package metrics exposes the prometheus counters of the insight engine.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "thread"

// Metrics holds the engine's collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	generations        *prometheus.CounterVec
	fallbacks          *prometheus.CounterVec
	insights           *prometheus.CounterVec
	storeFallbacks     *prometheus.CounterVec
	staleDiscarded     prometheus.Counter
	notificationWrites *prometheus.CounterVec
	breakerState       *prometheus.GaugeVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.generations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insight_generations_total",
			Help:      "Insight generation cycles by result source",
		},
		[]string{"source"},
	)
	m.fallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insight_ai_fallbacks_total",
			Help:      "Generations that fell back to heuristics, by reason",
		},
		[]string{"reason"},
	)
	m.insights = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insights_emitted_total",
			Help:      "Insights emitted by kind",
		},
		[]string{"kind"},
	)
	m.storeFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_demo_fallbacks_total",
			Help:      "Store reads served from the demo dataset, by collection",
		},
		[]string{"collection"},
	)
	m.staleDiscarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insight_stale_results_discarded_total",
			Help:      "Generation results discarded because a newer generation started",
		},
	)
	m.notificationWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_writes_total",
			Help:      "Notification store writes by outcome",
		},
		[]string{"outcome"},
	)
	m.breakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ai_circuit_breaker_state",
			Help:      "Current state of the AI circuit breaker (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	m.registry.MustRegister(
		m.generations,
		m.fallbacks,
		m.insights,
		m.storeFallbacks,
		m.staleDiscarded,
		m.notificationWrites,
		m.breakerState,
	)
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordGeneration(source string) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(source).Inc()
}

func (m *Metrics) RecordFallback(reason string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordInsight(kind string) {
	if m == nil {
		return
	}
	m.insights.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordStoreFallback(collection string) {
	if m == nil {
		return
	}
	m.storeFallbacks.WithLabelValues(collection).Inc()
}

func (m *Metrics) RecordStaleDiscarded() {
	if m == nil {
		return
	}
	m.staleDiscarded.Inc()
}

// RecordNotificationWrite records a store write; ok=false counts a failure
func (m *Metrics) RecordNotificationWrite(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.notificationWrites.WithLabelValues(outcome).Inc()
}

// SetBreakerState records a circuit breaker state (0=closed, 1=half-open, 2=open)
func (m *Metrics) SetBreakerState(name string, state float64) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(name).Set(state)
}

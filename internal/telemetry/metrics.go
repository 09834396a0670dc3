/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package telemetry exposes Prometheus metrics and OTLP tracing for the
// recommendation service.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestDuration tracks API request latency by route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "soundlog",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "status"})

	// APIActiveConnections counts in-flight HTTP requests.
	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "soundlog",
		Subsystem: "http",
		Name:      "active_connections",
		Help:      "In-flight HTTP requests.",
	})

	// ProviderRequests counts calls to the music catalog provider.
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soundlog",
		Subsystem: "provider",
		Name:      "requests_total",
		Help:      "Catalog provider calls by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	// AIRequests counts AI generation attempts by outcome.
	AIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soundlog",
		Subsystem: "ai",
		Name:      "requests_total",
		Help:      "AI generation attempts by outcome.",
	}, []string{"outcome"})

	// QuotaDenials counts requests refused by the AI quota governor.
	QuotaDenials = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "soundlog",
		Subsystem: "ai",
		Name:      "quota_denials_total",
		Help:      "AI calls denied by the sliding-window governor.",
	})

	// StrategyFailures counts soft failures inside aggregation strategies.
	StrategyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soundlog",
		Subsystem: "recommend",
		Name:      "strategy_failures_total",
		Help:      "Soft failures swallowed by aggregation strategies.",
	}, []string{"strategy"})

	// RecommendationsServed counts composed recommendation responses.
	RecommendationsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soundlog",
		Subsystem: "recommend",
		Name:      "served_total",
		Help:      "Recommendation responses by type.",
	}, []string{"type"})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

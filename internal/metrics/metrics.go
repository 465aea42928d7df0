// Package metrics holds the Prometheus collectors of the API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "electrokart",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	ChatIntents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "electrokart",
			Name:      "chat_intents_total",
			Help:      "Chat messages by detected intent",
		},
		[]string{"intent"},
	)

	ChatFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "electrokart",
			Name:      "chat_catalog_failures_total",
			Help:      "Chat requests answered with an empty result after a catalog error",
		},
	)

	VisualSearchStrategies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "electrokart",
			Name:      "visual_search_strategy_total",
			Help:      "Visual searches by the fallback strategy that produced the result",
		},
		[]string{"strategy"},
	)

	KnowledgeBaseProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "electrokart",
			Name:      "knowledge_base_products",
			Help:      "Products held in the chat knowledge base",
		},
	)
)

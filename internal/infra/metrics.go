package infra

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gateway metrics, served from the debug listener at /metrics.
var (
	// FeedMessages counts inbound feed messages by feed id and channel.
	FeedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pair_feed_messages_total",
		Help: "Inbound feed messages processed",
	}, []string{"feed", "channel"})

	// FeedDropped counts messages discarded before reaching the engine
	// (unknown symbol, parse failure, full inbox).
	FeedDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pair_feed_dropped_total",
		Help: "Feed messages discarded before reaching the engine",
	}, []string{"feed", "reason"})

	// FeedReconnects counts reconnect attempts per feed.
	FeedReconnects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pair_feed_reconnects_total",
		Help: "Feed reconnect attempts",
	}, []string{"feed"})

	// CandleFetches counts historical candle fetches by kind and outcome.
	CandleFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pair_candle_fetches_total",
		Help: "Historical candle fetches",
	}, []string{"kind", "outcome"})

	// OrderSubmissions counts order submissions by type and outcome.
	OrderSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pair_order_submissions_total",
		Help: "Order submissions",
	}, []string{"type", "outcome"})

	// BreakerTrips counts circuit breaker openings per upstream service.
	BreakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pair_breaker_trips_total",
		Help: "Circuit breaker openings per upstream service",
	}, []string{"service"})

	// PairMark tracks the latest derived pair mark price.
	PairMark = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pair_mark_price",
		Help: "Latest synthetic pair mark price",
	})
)

// MetricsHandler returns the Prometheus exposition handler for the debug mux.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

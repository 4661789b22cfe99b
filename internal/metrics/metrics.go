package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Connection metrics
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "huddle_connections_active",
			Help: "Authenticated connections currently registered",
		},
	)

	HandshakeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_handshake_failures_total",
			Help: "Connections refused during handshake",
		},
		[]string{"reason"}, // "missing", "invalid", "timeout", "no_auth_frame", "malformed"
	)

	RoomSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "huddle_room_subscriptions",
			Help: "Live connection-to-room subscriptions",
		},
	)

	// Event metrics
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_events_total",
			Help: "Inbound events handled",
		},
		[]string{"event", "result"},
	)

	EventDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "huddle_event_duration_seconds",
			Help:    "Inbound event handling duration",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"event"},
	)

	// Fan-out metrics
	FanoutDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "huddle_fanout_delivered_total",
			Help: "Frames queued to subscribers",
		},
	)

	FanoutDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "huddle_fanout_dropped_total",
			Help: "Frames dropped on backpressure",
		},
	)

	SignalsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_signals_dropped_total",
			Help: "Signaling payloads not delivered",
		},
		[]string{"reason"}, // "target_gone", "not_subscribed", "backpressure"
	)

	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_rate_limit_hits_total",
			Help: "Events rejected by the rate limiter",
		},
		[]string{"event"},
	)

	// Infrastructure metrics
	StoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "huddle_store_latency_seconds",
			Help:    "Membership and persistence call latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25},
		},
		[]string{"op"},
	)
)

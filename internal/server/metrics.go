// Package server implements the authoritative room server of §4.9: a
// registry of rooms, one goroutine per connection, and a per-room ticker
// broadcasting ServerFrame at the configured tick rate.
package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics follow a bounded-cardinality convention: no per-player or
// per-room labels, since room/player counts are unbounded and would blow
// up label cardinality.
var (
	roomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lockstep_rooms_active",
		Help: "Number of rooms currently tracked by the registry.",
	})

	connectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lockstep_connections_active",
		Help: "Number of currently connected clients across all rooms.",
	})

	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lockstep_room_tick_duration_seconds",
		Help:    "Wall-clock time spent building and broadcasting one ServerFrame.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.02, 0.05},
	})

	frameLossRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lockstep_frame_loss_requests_total",
		Help: "Total FRAME_LOSS replay requests served.",
	})

	divergenceEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lockstep_divergence_events_total",
		Help: "Total times a connection was dropped for a protocol or framing violation.",
	})

	droppedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lockstep_dropped_messages_total",
		Help: "Messages dropped before processing, by reason.",
	}, []string{"reason"}) // bounded: "unknown_type", "not_playing", "bad_payload", "rate_limited"
)

func recordTick(d time.Duration) { tickDuration.Observe(d.Seconds()) }

func recordDropped(reason string) { droppedMessages.WithLabelValues(reason).Inc() }

// Package metrics exposes Prometheus counters and gauges for the
// simulation loop's runtime behavior: how long each fixed-timestep
// advance took, how many physics ticks ran, how many celestial recomputes
// happened, how many telemetry frames were queued for broadcast, and how
// many traffic aircraft and telemetry clients are active.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AdvanceDuration is the wall-clock time spent inside one call to
	// simloop.Loop.Advance, which may run zero or more fixed-timestep
	// integration steps depending on accumulated time.
	AdvanceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "skyforge_loop_advance_duration_seconds",
		Help:    "Wall-clock duration of one simulation loop Advance call.",
		Buckets: prometheus.ExponentialBuckets(0.00002, 2, 14),
	})

	// PhysicsTicks counts fixed-timestep integration steps taken.
	PhysicsTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skyforge_physics_ticks_total",
		Help: "Number of fixed-timestep RK4 integration steps taken.",
	})

	// CelestialUpdates counts celestial engine recomputations (at most
	// once per simulated second, per the engine's own update interval).
	CelestialUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skyforge_celestial_updates_total",
		Help: "Number of times the celestial engine recomputed body positions.",
	})

	// TelemetryBroadcasts counts telemetry frames queued for WebSocket
	// delivery, regardless of how many clients eventually receive them.
	TelemetryBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skyforge_telemetry_broadcasts_total",
		Help: "Number of telemetry frames queued for websocket broadcast.",
	})

	// TrafficAircraft reports the number of AI traffic aircraft currently
	// simulated.
	TrafficAircraft = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skyforge_traffic_aircraft",
		Help: "Number of AI traffic aircraft currently simulated.",
	})

	// TelemetryClients reports the number of connected WebSocket clients.
	TelemetryClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skyforge_telemetry_clients",
		Help: "Number of currently connected telemetry websocket clients.",
	})
)

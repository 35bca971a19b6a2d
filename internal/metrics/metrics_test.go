package metrics

import "testing"

func TestCountersAreRegisteredDistinctly(t *testing.T) {
	PhysicsTicks.Add(0)
	CelestialUpdates.Add(0)
	TelemetryBroadcasts.Add(0)
	TrafficAircraft.Set(3)
	TelemetryClients.Set(1)
	AdvanceDuration.Observe(0.001)
}

package traffic

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/quat"

	"github.com/windrose/skyforge/internal/coords"
)

func testWaypoints() []Waypoint {
	return []Waypoint{
		{Name: "alpha", LLA: coords.LLA{Lat: 37.6 * math.Pi / 180, Lon: -122.3 * math.Pi / 180}},
		{Name: "bravo", LLA: coords.LLA{Lat: 37.7 * math.Pi / 180, Lon: -122.2 * math.Pi / 180}},
	}
}

func TestNewAircraftStartsInLoiter(t *testing.T) {
	a := NewAircraft("ai-1", 42, testWaypoints(), [2]float64{1000, 2000}, [2]float64{60, 80})
	if a.state != StateLoiter {
		t.Errorf("state = %v, want StateLoiter", a.state)
	}
	if a.CruiseAltitudeM < 1000 || a.CruiseAltitudeM > 2000 {
		t.Errorf("cruise altitude = %v, want within [1000, 2000]", a.CruiseAltitudeM)
	}
}

func TestLoiterTransitionsToTransitAfterDuration(t *testing.T) {
	a := NewAircraft("ai-1", 7, testWaypoints(), [2]float64{1000, 1000}, [2]float64{70, 70})
	a.loiterRemain = 0.01

	a.Update(1.0, nil)
	if a.state != StateTransit {
		t.Errorf("state after loiter expiry = %v, want StateTransit", a.state)
	}
}

func TestTransitReachesWaypointAndLoiters(t *testing.T) {
	wps := testWaypoints()
	a := NewAircraft("ai-1", 7, wps, [2]float64{1000, 1000}, [2]float64{500, 500})
	a.enterTransit(wps[1])
	a.Position = wps[1].LLA
	a.Position.Alt = a.CruiseAltitudeM

	a.Update(1.0, nil)
	if a.state != StateLoiter {
		t.Errorf("state after reaching target = %v, want StateLoiter", a.state)
	}
}

func TestAvoidanceRaisesAltitudeNearObstacle(t *testing.T) {
	wps := testWaypoints()
	a := NewAircraft("ai-1", 3, wps, [2]float64{100, 100}, [2]float64{60, 60})
	a.Position.Alt = 100
	obstacle := Obstacle{Name: "tower", LLA: a.Position}

	a.Update(0.1, []Obstacle{obstacle})
	if a.Position.Alt < avoidanceFloorAltM {
		t.Errorf("altitude after avoidance = %v, want >= %v", a.Position.Alt, avoidanceFloorAltM)
	}
}

func TestOrientationIsUnitQuaternion(t *testing.T) {
	a := NewAircraft("ai-1", 9, testWaypoints(), [2]float64{1000, 1000}, [2]float64{60, 60})
	q := a.Orientation()
	n := quat.Abs(q)
	if math.Abs(n-1) > 1e-6 {
		t.Errorf("orientation quaternion magnitude = %v, want 1", n)
	}
}

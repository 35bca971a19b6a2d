package rigidbody

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/windrose/skyforge/internal/coords"
)

func TestNewProducesUnitOrientation(t *testing.T) {
	s := New(coords.LLA{Lat: 0.6, Lon: -2.1, Alt: 500}, math.Pi/4)
	if n := quat.Abs(s.Orientation); math.Abs(n-1) > 1e-9 {
		t.Errorf("orientation norm = %v, want 1", n)
	}
}

func TestNewStartsAtRest(t *testing.T) {
	s := New(coords.LLA{Lat: 0.3, Lon: 1.1, Alt: 1000}, 0)
	if s.Velocity.X != 0 || s.Velocity.Y != 0 || s.Velocity.Z != 0 {
		t.Errorf("Velocity = %v, want zero", s.Velocity)
	}
	if s.AngularVelocity.X != 0 || s.AngularVelocity.Y != 0 || s.AngularVelocity.Z != 0 {
		t.Errorf("AngularVelocity = %v, want zero", s.AngularVelocity)
	}
}

func TestRecomputeDerivedClampsAltitudeAGL(t *testing.T) {
	s := New(coords.LLA{Lat: 0, Lon: 0, Alt: -50}, 0)
	if s.AltitudeAGL != 0 {
		t.Errorf("AltitudeAGL = %v, want 0 for below-ground geodetic altitude", s.AltitudeAGL)
	}
	if !s.OnGround {
		t.Error("expected OnGround true at negative altitude")
	}
}

func TestRenormalizeOrientationFixesDrift(t *testing.T) {
	s := New(coords.LLA{Lat: 0, Lon: 0, Alt: 0}, 0)
	s.Orientation = quat.Scale(3, s.Orientation)
	s.RenormalizeOrientation()
	if n := quat.Abs(s.Orientation); math.Abs(n-1) > 1e-9 {
		t.Errorf("orientation norm after renormalize = %v, want 1", n)
	}
}

func TestRenormalizeOrientationRecoversFromZero(t *testing.T) {
	s := New(coords.LLA{Lat: 0, Lon: 0, Alt: 0}, 0)
	s.Orientation = quat.Number{}
	s.RenormalizeOrientation()
	if s.Orientation != (quat.Number{Real: 1}) {
		t.Errorf("Orientation = %v, want identity after degenerate renormalize", s.Orientation)
	}
}

func TestVelocityBodyMatchesForwardFlight(t *testing.T) {
	s := New(coords.LLA{Lat: 0.5, Lon: 0.2, Alt: 2000}, 0)
	s.Velocity = s.ENU.ToECEFVector(r3.Vec{Y: 50})
	s.RecomputeDerived()

	body := s.VelocityBody()
	if math.Abs(body.X-50) > 1e-6 {
		t.Errorf("body-frame forward speed = %v, want ~50 (nose points north at heading 0)", body.X)
	}
}

package integrator

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/quat"

	"github.com/windrose/skyforge/internal/aero"
	"github.com/windrose/skyforge/internal/atmosphere"
	"github.com/windrose/skyforge/internal/coords"
	"github.com/windrose/skyforge/internal/rigidbody"
)

func testProfile() *aero.Profile {
	return &aero.Profile{
		Mass:       1000,
		InertiaXYZ: [3]float64{2000, 3000, 4000},
		WingArea:   16,
		MaxThrust:  5000,
		CL0:        0.2,
		CLAlpha:    5.0,
		CD0:        0.03,
		CDAlphaSq:  0.5,
		StallAlpha: 15 * math.Pi / 180,
	}
}

func vacuum(float64) atmosphere.State { return atmosphere.State{} }

func TestStepPreservesOrientationNorm(t *testing.T) {
	p := testProfile()
	s := rigidbody.New(coords.LLA{Lat: 0.4, Lon: -1.2, Alt: 5000}, 0.3)

	for i := 0; i < 50; i++ {
		Step(p, s, aero.Controls{}, vacuum)
	}

	if n := quat.Abs(s.Orientation); math.Abs(n-1) > 1e-6 {
		t.Errorf("orientation norm after 50 steps = %v, want ~1", n)
	}
}

func TestStepFreeFallAccumulatesDownwardVelocity(t *testing.T) {
	p := testProfile()
	s := rigidbody.New(coords.LLA{Lat: 0, Lon: 0, Alt: 5000}, 0)
	initialAlt := s.Geodetic.Alt

	for i := 0; i < 120; i++ {
		Step(p, s, aero.Controls{}, vacuum)
	}

	if s.Geodetic.Alt >= initialAlt {
		t.Errorf("altitude after 1s of free fall = %v, want less than initial %v", s.Geodetic.Alt, initialAlt)
	}
	if s.VerticalSpeed >= 0 {
		t.Errorf("VerticalSpeed = %v, want negative under gravity alone", s.VerticalSpeed)
	}
}

func TestStepIsDeterministic(t *testing.T) {
	p := testProfile()
	s1 := rigidbody.New(coords.LLA{Lat: 0.1, Lon: 0.2, Alt: 1000}, 1.0)
	s2 := rigidbody.New(coords.LLA{Lat: 0.1, Lon: 0.2, Alt: 1000}, 1.0)

	controls := aero.Controls{Throttle: 0.8, Elevator: 0.1}
	for i := 0; i < 10; i++ {
		Step(p, s1, controls, vacuum)
		Step(p, s2, controls, vacuum)
	}

	if s1.Position != s2.Position {
		t.Errorf("Position diverged: %v vs %v, want bit-identical repeated runs", s1.Position, s2.Position)
	}
	if s1.Orientation != s2.Orientation {
		t.Errorf("Orientation diverged: %v vs %v", s1.Orientation, s2.Orientation)
	}
}

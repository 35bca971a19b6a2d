package aero

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/windrose/skyforge/internal/atmosphere"
	"github.com/windrose/skyforge/internal/coords"
	"github.com/windrose/skyforge/internal/rigidbody"
)

func testProfile() *Profile {
	return &Profile{
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

func TestGravityActsDownInVacuum(t *testing.T) {
	p := testProfile()
	s := rigidbody.New(coords.LLA{Lat: 0, Lon: 0, Alt: 3000}, 0)
	s.Velocity = r3.Vec{} // no lift, no drag, no thrust, no gear
	s.RecomputeDerived()

	force, _ := Assemble(p, s, Controls{}, atmosphere.State{})
	wantDir := r3.Scale(-1, s.ENU.Up)
	gotDir := r3.Scale(1/r3.Norm(force), force)
	if r3.Norm(r3.Sub(gotDir, wantDir)) > 1e-9 {
		t.Errorf("gravity force direction = %v, want %v", gotDir, wantDir)
	}
	wantMag := stdGravity * p.Mass
	if math.Abs(r3.Norm(force)-wantMag) > 1e-6 {
		t.Errorf("gravity magnitude = %v, want %v", r3.Norm(force), wantMag)
	}
}

func TestStallClampsLift(t *testing.T) {
	p := testProfile()
	p.CD0, p.CDAlphaSq = 0, 0 // no drag, so the body Z force is lift alone
	atmo := atmosphere.State{Density: 1.225}

	atStall := p.StallAlpha
	above := p.StallAlpha + 0.2

	vAtStall := r3.Vec{X: 50 * math.Cos(atStall), Z: 50 * math.Sin(atStall)}
	vAbove := r3.Vec{X: 50 * math.Cos(above), Z: 50 * math.Sin(above)}

	fAtStall, _ := aerodynamics(p, vAtStall, Controls{}, atmo)
	fAbove, _ := aerodynamics(p, vAbove, Controls{}, atmo)

	liftAtStall := -fAtStall.Z
	liftAbove := -fAbove.Z
	if liftAbove > liftAtStall {
		t.Errorf("lift past stall (%v) exceeds lift at stall (%v)", liftAbove, liftAtStall)
	}
}

func TestBrakeFrictionInterpolatesLinearly(t *testing.T) {
	g := GearContact{RollingFriction: 0.02, BrakingFriction: 0.4}
	for _, tc := range []struct{ brakes, want float64 }{
		{0, 0.02},
		{1, 0.4},
		{0.5, 0.21},
	} {
		got := g.RollingFriction + (g.BrakingFriction-g.RollingFriction)*tc.brakes
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("brakes=%v: mu = %v, want %v", tc.brakes, got, tc.want)
		}
	}
}

func TestControlsClamp(t *testing.T) {
	c := Controls{Throttle: 2, Elevator: -5, Aileron: 5, Rudder: -5, Brakes: -1}.Clamp()
	if c.Throttle != 1 || c.Elevator != -1 || c.Aileron != 1 || c.Rudder != -1 || c.Brakes != 0 {
		t.Errorf("clamp produced %+v", c)
	}
}

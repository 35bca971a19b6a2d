package simloop

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"gonum.org/v1/gonum/spatial/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/windrose/skyforge/internal/aero"
	"github.com/windrose/skyforge/internal/atmosphere"
	"github.com/windrose/skyforge/internal/clock"
	"github.com/windrose/skyforge/internal/coords"
	"github.com/windrose/skyforge/internal/rigidbody"
)

func taildraggerProfile() *aero.Profile {
	return &aero.Profile{
		Mass:          1200,
		InertiaXYZ:    [3]float64{1500, 2200, 3000},
		WingArea:      17,
		MaxThrust:     5500,
		CL0:           0.25,
		CLAlpha:       5.5,
		CD0:           0.035,
		CDAlphaSq:     0.6,
		StallAlpha:    16 * math.Pi / 180,
		PitchElevator: 2.0,
		RollAileron:   1.5,
		YawRudder:     1.0,
		PitchDamping:  0.3,
		RollDamping:   0.4,
		YawDamping:    0.3,
		Gear: []aero.GearContact{
			{Position: [3]float64{2, 0, 1}, SpringConstant: 80000, Damping: 4000, RollingFriction: 0.02, BrakingFriction: 0.4},
			{Position: [3]float64{-1, -2, 1}, SpringConstant: 80000, Damping: 4000, RollingFriction: 0.02, BrakingFriction: 0.4, Steerable: true},
			{Position: [3]float64{-1, 2, 1}, SpringConstant: 80000, Damping: 4000, RollingFriction: 0.02, BrakingFriction: 0.4},
		},
	}
}

func sfoStart() coords.LLA {
	return coords.LLA{Lat: 37.613931 * math.Pi / 180, Lon: -122.358089 * math.Pi / 180, Alt: 0}
}

func TestLerpIdenticalStatesIsIdentity(t *testing.T) {
	q := quat.Number{Real: 0.9, Imag: 0.1, Jmag: 0.2, Kmag: 0.3}
	n := quat.Abs(q)
	q = quat.Scale(1/n, q)
	s := RenderState{Position: r3.Vec{X: 1, Y: 2, Z: 3}, Orientation: q, Tick: 5}

	for _, alpha := range []float64{0, 0.25, 0.5, 0.75, 1} {
		got := Lerp(s, s, alpha)
		if r3.Norm(r3.Sub(got.Position, s.Position)) > 1e-12 {
			t.Errorf("alpha=%v: position drifted to %v", alpha, got.Position)
		}
		dot := got.Orientation.Real*s.Orientation.Real + got.Orientation.Imag*s.Orientation.Imag +
			got.Orientation.Jmag*s.Orientation.Jmag + got.Orientation.Kmag*s.Orientation.Kmag
		if math.Abs(math.Abs(dot)-1) > 1e-9 {
			t.Errorf("alpha=%v: orientation drifted, dot=%v", alpha, dot)
		}
	}
}

func TestStaticWeightOnWheelsSettles(t *testing.T) {
	p := taildraggerProfile()
	s := rigidbody.New(sfoStart(), 280*math.Pi/180)
	c := clock.New(1735732800, 1.0) // 2025-01-01T12:00:00Z
	loop := NewLoop(p, s, c, nil, func() aero.Controls { return aero.Controls{} })

	for i := 0; i < 5*120; i++ {
		loop.Advance(1.0 / 120)
	}

	if s.Groundspeed > 0.5 {
		t.Errorf("groundspeed after 5s static = %v, want < 0.5", s.Groundspeed)
	}
	if !s.OnGround {
		t.Error("expected on-ground after settling on the runway")
	}
}

func TestBallisticTrajectoryMatchesParabola(t *testing.T) {
	p := taildraggerProfile()
	p.Gear = nil
	// High enough that 30 s of free fall (~4413 m) stays above the -5 m
	// emergency floor, which would otherwise zero the velocity.
	lla := coords.LLA{Lat: 0, Lon: 0, Alt: 6000}
	s := rigidbody.New(lla, 0)
	enu := coords.ENUFrameAt(lla.Lat, lla.Lon, coords.LLAToECEF(lla))
	s.Velocity = enu.ToECEFVector(r3.Vec{X: 100, Y: 0, Z: 0})
	s.RecomputeDerived()

	c := clock.New(1735732800, 1.0)
	noControls := func() aero.Controls { return aero.Controls{} }
	loop := NewLoop(p, s, c, nil, noControls)
	loop.AtmosphereAt = func(float64) atmosphere.State { return atmosphere.State{} }

	startAlt := s.Geodetic.Alt
	startHoriz := s.VelocityENU.X

	for i := 0; i < 30*120; i++ {
		loop.Advance(1.0 / 120)
	}

	if math.Abs(s.VelocityENU.X-startHoriz) > 0.5 {
		t.Errorf("horizontal ENU velocity changed: start=%v end=%v", startHoriz, s.VelocityENU.X)
	}
	if s.Geodetic.Alt >= startAlt {
		t.Errorf("altitude did not decrease under gravity: start=%v end=%v", startAlt, s.Geodetic.Alt)
	}
	wantAlt := startAlt - 0.5*9.80665*30*30
	if math.Abs(s.Geodetic.Alt-wantAlt) > 1 {
		t.Errorf("altitude after 30s = %v, want parabola %v within 1 m", s.Geodetic.Alt, wantAlt)
	}
}

func TestDrainZeroesAccumulator(t *testing.T) {
	p := taildraggerProfile()
	s := rigidbody.New(sfoStart(), 0)
	c := clock.New(1735732800, 1.0)
	loop := NewLoop(p, s, c, nil, func() aero.Controls { return aero.Controls{} })

	loop.Advance(0.3) // leaves a fractional accumulator
	loop.Drain()
	if loop.accumulator != 0 {
		t.Errorf("accumulator after Drain = %v, want 0", loop.accumulator)
	}
}

func TestEnforceAltitudeFloorLogsWarnWhenItFires(t *testing.T) {
	p := taildraggerProfile()
	p.Gear = nil
	s := rigidbody.New(sfoStart(), 0)
	c := clock.New(1735732800, 1.0)
	loop := NewLoop(p, s, c, nil, func() aero.Controls { return aero.Controls{} })

	testLogger, hook := logrustest.NewNullLogger()
	loop.Logger = testLogger

	lla := s.Geodetic
	lla.Alt = -50
	s.Position = coords.LLAToECEF(lla)
	s.RecomputeDerived()

	loop.enforceAltitudeFloor()

	if s.Geodetic.Alt != 0 {
		t.Errorf("Geodetic.Alt after reset = %v, want 0", s.Geodetic.Alt)
	}
	entries := hook.AllEntries()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	if entries[0].Level != logrus.WarnLevel {
		t.Errorf("log level = %v, want Warn", entries[0].Level)
	}
}

func TestEnforceAltitudeFloorSilentWhenAboveThreshold(t *testing.T) {
	p := taildraggerProfile()
	s := rigidbody.New(sfoStart(), 0)
	c := clock.New(1735732800, 1.0)
	loop := NewLoop(p, s, c, nil, func() aero.Controls { return aero.Controls{} })

	testLogger, hook := logrustest.NewNullLogger()
	loop.Logger = testLogger

	loop.enforceAltitudeFloor()

	if len(hook.AllEntries()) != 0 {
		t.Errorf("got %d log entries, want 0 when altitude is within bounds", len(hook.AllEntries()))
	}
}

package simloop

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/windrose/skyforge/internal/aero"
	"github.com/windrose/skyforge/internal/atmosphere"
	"github.com/windrose/skyforge/internal/celestial"
	"github.com/windrose/skyforge/internal/clock"
	"github.com/windrose/skyforge/internal/coords"
	"github.com/windrose/skyforge/internal/integrator"
	"github.com/windrose/skyforge/internal/rigidbody"
)

// InputSampler supplies control inputs sampled once per tick. The window
// system is the real implementation; tests substitute a closure.
type InputSampler func() aero.Controls

// Loop owns the authoritative rigid-body state and runs the fixed
// timestep accumulator. It is driven by repeated calls to Advance from a
// single goroutine; no internal synchronization guards the authoritative
// state, only the published snapshot.
type Loop struct {
	Profile   *aero.Profile
	State     *rigidbody.State
	Clock     *clock.Clock
	Celestial *celestial.Engine
	Sample    InputSampler

	// AtmosphereAt resolves altitude to atmospheric properties. Defaults to
	// atmosphere.At; tests substitute a constant (e.g. vacuum) to exercise
	// the integrator in isolation from the atmosphere model.
	AtmosphereAt func(altitude float64) atmosphere.State

	// Logger receives the Warn diagnostic emitted whenever
	// enforceAltitudeFloor actually fires. Defaults to logrus's standard
	// logger; callers wire in their own configured logger.
	Logger *logrus.Logger

	accumulator float64
	tickCount   uint64
	prevRender  RenderState
	currRender  RenderState

	render    atomic.Pointer[RenderState]
	telemetry atomic.Pointer[TelemetrySnapshot]
	sky       atomic.Pointer[celestial.Snapshot]
}

// NewLoop builds a Loop over an initial state and profile; the first
// render snapshot is published immediately so readers never observe a nil
// pointer.
func NewLoop(profile *aero.Profile, state *rigidbody.State, c *clock.Clock, eng *celestial.Engine, sample InputSampler) *Loop {
	l := &Loop{Profile: profile, State: state, Clock: c, Celestial: eng, Sample: sample, AtmosphereAt: atmosphere.At, Logger: logrus.StandardLogger()}
	initial := snapshotOf(state, 0)
	l.prevRender = initial
	l.currRender = initial
	l.publish()
	return l
}

// Advance runs the accumulator for wallDt seconds of real time, stepping
// the integrator zero or more times at the fixed timestep, then publishes
// an interpolated render snapshot exactly once.
func (l *Loop) Advance(wallDt float64) {
	l.accumulator += wallDt * l.Clock.TimeScale()
	l.Clock.Advance(wallDt)

	for l.accumulator >= integrator.FixedDt {
		l.prevRender = l.currRender
		controls := aero.Controls{}
		if l.Sample != nil {
			controls = l.Sample().Clamp()
		}

		integrator.Step(l.Profile, l.State, controls, l.AtmosphereAt)
		l.enforceAltitudeFloor()

		l.tickCount++
		l.currRender = snapshotOf(l.State, l.tickCount)
		l.accumulator -= integrator.FixedDt
	}

	alpha := l.accumulator / integrator.FixedDt
	interpolated := Lerp(l.prevRender, l.currRender, alpha)
	l.render.Store(&interpolated)

	l.publishTelemetry()
	if l.Celestial != nil {
		snap := l.Celestial.Update(l.Clock, l.State.Geodetic)
		l.sky.Store(&snap)
	}
}

// Drain empties the accumulator without stepping, used on transition to a
// paused or menu state so no retained wall-time debt resumes ticking.
func (l *Loop) Drain() { l.accumulator = 0 }

// RenderSnapshot returns the most recently published, interpolated state.
func (l *Loop) RenderSnapshot() RenderState { return *l.render.Load() }

// TelemetrySnapshotNow returns the most recently published telemetry.
func (l *Loop) TelemetrySnapshotNow() TelemetrySnapshot { return *l.telemetry.Load() }

// CelestialSnapshotNow returns the most recently published celestial
// state, or the zero value if no celestial engine was attached.
func (l *Loop) CelestialSnapshotNow() celestial.Snapshot {
	if p := l.sky.Load(); p != nil {
		return *p
	}
	return celestial.Snapshot{}
}

func (l *Loop) publish() {
	initial := l.currRender
	l.render.Store(&initial)
	l.publishTelemetry()
}

// enforceAltitudeFloor implements the emergency reset: altitude below the
// ellipsoid by more than 5 m resets to the surface and zeroes kinematics.
func (l *Loop) enforceAltitudeFloor() {
	if l.State.Geodetic.Alt >= -5 {
		return
	}
	if l.Logger != nil {
		l.Logger.WithField("altitude_m", l.State.Geodetic.Alt).Warn("simloop: altitude underflow, resetting to surface and zeroing kinematics")
	}
	fixed := l.State.Geodetic
	fixed.Alt = 0
	l.State.Position = coords.LLAToECEF(fixed)
	l.State.Velocity = r3.Vec{}
	l.State.AngularVelocity = r3.Vec{}
	l.State.RecomputeDerived()
}

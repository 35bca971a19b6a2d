// Package integrator advances the 13-scalar rigid-body state with a fixed-
// timestep RK4 integrator.
package integrator

import (
	"gonum.org/v1/gonum/spatial/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/windrose/skyforge/internal/aero"
	"github.com/windrose/skyforge/internal/atmosphere"
	"github.com/windrose/skyforge/internal/rigidbody"
)

// FixedDt is the mandatory simulation timestep.
const FixedDt = 1.0 / 120.0

// derivative is the instantaneous time-derivative of the 13-element state.
type derivative struct {
	posDot   r3.Vec
	velDot   r3.Vec
	orientDot quat.Number
	omegaDot r3.Vec
}

// sample is a fully-formed state used for a single RK4 stage evaluation.
// Unlike rigidbody.State it carries no derived fields — each stage
// recomputes them on a scratch State for force assembly, and the final
// State's derived fields are recomputed after the full step completes.
type sample struct {
	pos   r3.Vec
	vel   r3.Vec
	orient quat.Number
	omega r3.Vec
}

// Step advances s by FixedDt using RK4, evaluating forces at the four
// stages with the quaternion renormalised before each evaluation — left
// unconstrained it drifts off unit length inside the mid-stages.
func Step(p *aero.Profile, s *rigidbody.State, c aero.Controls, atmoAt func(altitude float64) atmosphere.State) {
	dt := FixedDt
	inertia := p.InertiaVec()

	base := sample{pos: s.Position, vel: s.Velocity, orient: s.Orientation, omega: s.AngularVelocity}

	k1 := derive(p, inertia, base, c, atmoAt)
	k2 := derive(p, inertia, advance(base, k1, dt/2), c, atmoAt)
	k3 := derive(p, inertia, advance(base, k2, dt/2), c, atmoAt)
	k4 := derive(p, inertia, advance(base, k3, dt), c, atmoAt)

	s.Position = r3.Add(base.pos, r3.Scale(dt/6, sumPos(k1, k2, k3, k4)))
	s.Velocity = r3.Add(base.vel, r3.Scale(dt/6, sumVel(k1, k2, k3, k4)))
	s.AngularVelocity = r3.Add(base.omega, r3.Scale(dt/6, sumOmega(k1, k2, k3, k4)))
	s.Orientation = quat.Add(base.orient, quat.Scale(dt/6, sumOrient(k1, k2, k3, k4)))

	s.RenormalizeOrientation()
	s.RecomputeDerived()
}

// advance computes a mid-stage sample state = base + h*d, renormalising
// the quaternion immediately.
func advance(base sample, d derivative, h float64) sample {
	next := sample{
		pos:   r3.Add(base.pos, r3.Scale(h, d.posDot)),
		vel:   r3.Add(base.vel, r3.Scale(h, d.velDot)),
		orient: quat.Add(base.orient, quat.Scale(h, d.orientDot)),
		omega: r3.Add(base.omega, r3.Scale(h, d.omegaDot)),
	}
	if n := quat.Abs(next.orient); n > 0 {
		next.orient = quat.Scale(1/n, next.orient)
	}
	return next
}

// derive evaluates the equations of motion at a sample state, assembling
// forces via the aero package.
func derive(p *aero.Profile, inertia r3.Vec, st sample, c aero.Controls, atmoAt func(float64) atmosphere.State) derivative {
	scratch := &rigidbody.State{
		Position:        st.pos,
		Velocity:        st.vel,
		Orientation:     st.orient,
		AngularVelocity: st.omega,
	}
	scratch.RecomputeDerived()

	atmo := atmoAt(scratch.Geodetic.Alt)
	force, moment := aero.Assemble(p, scratch, c, atmo)

	velDot := r3.Scale(1/p.Mass, force)

	// q_dot = 1/2 * q (x) (0, omega_body)
	omegaQuat := quat.Number{Imag: st.omega.X, Jmag: st.omega.Y, Kmag: st.omega.Z}
	orientDot := quat.Scale(0.5, quat.Mul(st.orient, omegaQuat))

	// omega_dot = I^-1 (M - omega x I*omega), I diagonal.
	iOmega := r3.Vec{X: inertia.X * st.omega.X, Y: inertia.Y * st.omega.Y, Z: inertia.Z * st.omega.Z}
	gyroscopic := r3.Cross(st.omega, iOmega)
	net := r3.Sub(moment, gyroscopic)
	omegaDot := r3.Vec{X: net.X / inertia.X, Y: net.Y / inertia.Y, Z: net.Z / inertia.Z}

	return derivative{posDot: st.vel, velDot: velDot, orientDot: orientDot, omegaDot: omegaDot}
}

// sumPos, sumVel, sumOmega, sumOrient apply the fixed RK4 weighting
// 1/6, 2/6, 2/6, 1/6 in a single fixed summation order so repeated runs
// with identical inputs are bit-identical (determinism note).
func sumPos(k1, k2, k3, k4 derivative) r3.Vec {
	return weightedSum3(k1.posDot, k2.posDot, k3.posDot, k4.posDot)
}

func sumVel(k1, k2, k3, k4 derivative) r3.Vec {
	return weightedSum3(k1.velDot, k2.velDot, k3.velDot, k4.velDot)
}

func sumOmega(k1, k2, k3, k4 derivative) r3.Vec {
	return weightedSum3(k1.omegaDot, k2.omegaDot, k3.omegaDot, k4.omegaDot)
}

func weightedSum3(a, b, c, d r3.Vec) r3.Vec {
	return r3.Add(a, r3.Add(r3.Scale(2, b), r3.Add(r3.Scale(2, c), d)))
}

func sumOrient(k1, k2, k3, k4 derivative) quat.Number {
	return quat.Add(k1.orientDot, quat.Add(quat.Scale(2, k2.orientDot), quat.Add(quat.Scale(2, k3.orientDot), k4.orientDot)))
}

// Package rigidbody holds the 6-DOF rigid body state: the
// authoritative 13-scalar ECEF state integrated by the physics loop, and
// the derived ENU-frame diagnostics recomputed from it every tick.
package rigidbody

import (
	"math"

	"gonum.org/v1/gonum/spatial/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/windrose/skyforge/internal/coords"
)

// State is the complete rigid-body state of the aircraft.
type State struct {
	// Authoritative, integrated by internal/integrator.
	Position       r3.Vec      // ECEF, meters
	Velocity       r3.Vec      // ECEF, m/s
	Orientation    quat.Number // unit quaternion, body-to-ECEF
	AngularVelocity r3.Vec     // body frame, rad/s

	// Derived, recomputed each tick — never integrated.
	Geodetic     coords.LLA
	ENU          coords.ENUFrame
	VelocityENU  r3.Vec
	Groundspeed  float64 // m/s, horizontal ENU magnitude
	VerticalSpeed float64 // m/s, ENU up component
	AltitudeAGL  float64 // m, clamped non-negative
	OnGround     bool
}

// New builds an initial state from a geodetic position and a true heading
// in radians (0 = north, increasing clockwise), wings level, at rest.
func New(initial coords.LLA, headingRad float64) *State {
	pos := coords.LLAToECEF(initial)
	enu := coords.ENUFrameAt(initial.Lat, initial.Lon, pos)

	// Body +X (nose) points along the heading in the local ENU plane.
	sinH, cosH := math.Sincos(headingRad)
	nose := r3.Add(r3.Scale(sinH, enu.East), r3.Scale(cosH, enu.North))
	right := r3.Add(r3.Scale(cosH, enu.East), r3.Scale(-sinH, enu.North))
	down := r3.Scale(-1, enu.Up)

	s := &State{
		Position:    pos,
		Velocity:    r3.Vec{},
		Orientation: coords.MatrixToQuat(nose, right, down),
	}
	s.RecomputeDerived()
	return s
}

// RecomputeDerived refreshes every field derived from the authoritative
// state. Called once per integration step, never itself integrated.
func (s *State) RecomputeDerived() {
	s.Geodetic = coords.ECEFToLLA(s.Position)
	s.ENU = coords.ENUFrameAt(s.Geodetic.Lat, s.Geodetic.Lon, s.Position)
	s.VelocityENU = s.ENU.ToENUVector(s.Velocity)
	s.Groundspeed = math.Hypot(s.VelocityENU.X, s.VelocityENU.Y)
	s.VerticalSpeed = s.VelocityENU.Z
	s.AltitudeAGL = math.Max(0, s.Geodetic.Alt)
	s.OnGround = s.Geodetic.Alt <= 0.05
}

// VelocityBody returns the linear velocity expressed in the body frame,
// used for angle-of-attack computation.
func (s *State) VelocityBody() r3.Vec {
	return quat.Rotate(quat.Conj(s.Orientation), s.Velocity)
}

// RenormalizeOrientation corrects quaternion drift by rescaling to unit
// magnitude.
func (s *State) RenormalizeOrientation() {
	n := quat.Abs(s.Orientation)
	if n == 0 {
		s.Orientation = quat.Number{Real: 1}
		return
	}
	if math.Abs(n-1) > 1e-9 {
		s.Orientation = quat.Scale(1/n, s.Orientation)
	}
}

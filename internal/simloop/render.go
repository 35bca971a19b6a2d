package simloop

import (
	"math"

	"gonum.org/v1/gonum/spatial/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/windrose/skyforge/internal/rigidbody"
)

// RenderState is the interpolated, consumer-visible snapshot of the
// aircraft state. No consumer reads the authoritative integrator state
// directly.
type RenderState struct {
	Position    r3.Vec
	Orientation quat.Number
	Tick        uint64
}

func snapshotOf(s *rigidbody.State, tick uint64) RenderState {
	return RenderState{Position: s.Position, Orientation: s.Orientation, Tick: tick}
}

// Lerp interpolates position linearly and orientation by shortest-arc
// spherical interpolation. Lerp(s, s, alpha) == s for all alpha.
func Lerp(prev, curr RenderState, alpha float64) RenderState {
	return RenderState{
		Position:    r3.Add(r3.Scale(1-alpha, prev.Position), r3.Scale(alpha, curr.Position)),
		Orientation: slerp(prev.Orientation, curr.Orientation, alpha),
		Tick:        curr.Tick,
	}
}

// slerp performs shortest-arc spherical linear interpolation between two
// unit quaternions, falling back to normalized lerp when the angle
// between them is small enough to risk division by zero.
func slerp(a, b quat.Number, alpha float64) quat.Number {
	dot := a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag

	if dot < 0 {
		b = quat.Scale(-1, b)
		dot = -dot
	}

	const epsilon = 1e-6
	if dot > 1-epsilon {
		result := quat.Number{
			Real: a.Real + alpha*(b.Real-a.Real),
			Imag: a.Imag + alpha*(b.Imag-a.Imag),
			Jmag: a.Jmag + alpha*(b.Jmag-a.Jmag),
			Kmag: a.Kmag + alpha*(b.Kmag-a.Kmag),
		}
		n := quat.Abs(result)
		if n == 0 {
			return a
		}
		return quat.Scale(1/n, result)
	}

	theta0 := math.Acos(dot)
	theta := theta0 * alpha
	sinTheta0 := math.Sin(theta0)
	sinTheta := math.Sin(theta)

	s0 := math.Cos(theta) - dot*sinTheta/sinTheta0
	s1 := sinTheta / sinTheta0

	return quat.Number{
		Real: s0*a.Real + s1*b.Real,
		Imag: s0*a.Imag + s1*b.Imag,
		Jmag: s0*a.Jmag + s1*b.Jmag,
		Kmag: s0*a.Kmag + s1*b.Kmag,
	}
}

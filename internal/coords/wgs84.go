// Package coords implements WGS-84 ellipsoid geodesy: conversions between
// geodetic (lat/lon/alt), ECEF, and local ENU frames. All vector and
// rotation quantities are expressed with gonum's spatial types so the
// rest of the simulation never hand-rolls vector algebra.
package coords

import (
	"math"

	"gonum.org/v1/gonum/spatial/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// WGS-84 defining constants.
const (
	SemiMajorAxis      = 6378137.0          // a, meters
	InverseFlattening  = 298.257223563      // 1/f
	Flattening         = 1.0 / InverseFlattening
	eccentricitySq     = Flattening * (2 - Flattening) // e^2
)

// LLA is a geodetic position: latitude and longitude in radians,
// altitude above the WGS-84 ellipsoid in meters.
type LLA struct {
	Lat, Lon, Alt float64
}

// ENUFrame is an orthonormal East-North-Up basis anchored at an ECEF origin.
type ENUFrame struct {
	Origin            r3.Vec
	East, North, Up   r3.Vec
}

// LLAToECEF converts a geodetic position to ECEF meters using the
// closed-form WGS-84 expression.
func LLAToECEF(p LLA) r3.Vec {
	sinLat, cosLat := math.Sincos(p.Lat)
	sinLon, cosLon := math.Sincos(p.Lon)

	n := SemiMajorAxis / math.Sqrt(1-eccentricitySq*sinLat*sinLat)

	return r3.Vec{
		X: (n + p.Alt) * cosLat * cosLon,
		Y: (n + p.Alt) * cosLat * sinLon,
		Z: (n*(1-eccentricitySq) + p.Alt) * sinLat,
	}
}

// ECEFToLLA recovers geodetic coordinates from an ECEF position using
// Bowring's method, fixed at three iterations.
func ECEFToLLA(p r3.Vec) LLA {
	x, y, z := p.X, p.Y, p.Z

	lonRadius := math.Hypot(x, y)
	if lonRadius < 1e-9 {
		// Degenerate near the polar axis: longitude is undefined, fall back to 0.
		lat := math.Copysign(math.Pi/2, z)
		if z == 0 {
			lat = 0
		}
		return LLA{Lat: lat, Lon: 0, Alt: math.Abs(z) - SemiMajorAxis*(1-Flattening)}
	}

	lon := math.Atan2(y, x)

	// Bowring initial guess via reduced (parametric) latitude.
	b := SemiMajorAxis * (1 - Flattening)
	theta := math.Atan2(z*SemiMajorAxis, lonRadius*b)
	epsSq := (SemiMajorAxis*SemiMajorAxis - b*b) / (b * b)

	sinTheta, cosTheta := math.Sincos(theta)
	lat := math.Atan2(z+epsSq*b*sinTheta*sinTheta*sinTheta,
		lonRadius-eccentricitySq*SemiMajorAxis*cosTheta*cosTheta*cosTheta)

	var n float64
	for i := 0; i < 3; i++ {
		sinLat := math.Sin(lat)
		n = SemiMajorAxis / math.Sqrt(1-eccentricitySq*sinLat*sinLat)
		alt := lonRadius/math.Cos(lat) - n
		lat = math.Atan2(z, lonRadius*(1-eccentricitySq*n/(n+alt)))
	}

	sinLat := math.Sin(lat)
	n = SemiMajorAxis / math.Sqrt(1-eccentricitySq*sinLat*sinLat)
	alt := lonRadius/math.Cos(lat) - n

	return LLA{Lat: lat, Lon: lon, Alt: alt}
}

// ENUFrameAt builds the local East-North-Up basis at the given geodetic
// position, anchored at originECEF (typically LLAToECEF of the same lat/lon).
func ENUFrameAt(lat, lon float64, originECEF r3.Vec) ENUFrame {
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)

	return ENUFrame{
		Origin: originECEF,
		East:   r3.Vec{X: -sinLon, Y: cosLon, Z: 0},
		North:  r3.Vec{X: -sinLat * cosLon, Y: -sinLat * sinLon, Z: cosLat},
		Up:     r3.Vec{X: cosLat * cosLon, Y: cosLat * sinLon, Z: sinLat},
	}
}

// ToECEFVector rotates a direction vector expressed in this ENU frame
// into ECEF. No translation is applied — this is for directions, not points.
func (f ENUFrame) ToECEFVector(v r3.Vec) r3.Vec {
	return r3.Add(r3.Scale(v.X, f.East), r3.Add(r3.Scale(v.Y, f.North), r3.Scale(v.Z, f.Up)))
}

// ToENUVector rotates an ECEF direction vector into this ENU frame.
func (f ENUFrame) ToENUVector(v r3.Vec) r3.Vec {
	return r3.Vec{X: r3.Dot(v, f.East), Y: r3.Dot(v, f.North), Z: r3.Dot(v, f.Up)}
}

// ToECEFPoint converts a point expressed relative to this frame's origin
// (in ENU-direction units) into an absolute ECEF point.
func (f ENUFrame) ToECEFPoint(v r3.Vec) r3.Vec {
	return r3.Add(f.Origin, f.ToECEFVector(v))
}

// ENUToECEFQuat returns the rotation that carries the canonical ENU basis
// (X=east, Y=north, Z=up) onto the ECEF basis at (lat, lon). Used to orient
// static ENU-authored geometry.
func ENUToECEFQuat(lat, lon float64) quat.Number {
	f := ENUFrameAt(lat, lon, r3.Vec{})
	return matrixToQuat(f.East, f.North, f.Up)
}

// MatrixToQuat builds the unit quaternion whose rotation matrix has the
// given columns, via the standard Shepperd trace method. Used wherever an
// orientation is assembled from three orthonormal body axes rather than
// integrated directly.
func MatrixToQuat(col0, col1, col2 r3.Vec) quat.Number {
	return matrixToQuat(col0, col1, col2)
}

func matrixToQuat(col0, col1, col2 r3.Vec) quat.Number {
	m00, m10, m20 := col0.X, col0.Y, col0.Z
	m01, m11, m21 := col1.X, col1.Y, col1.Z
	m02, m12, m22 := col2.X, col2.Y, col2.Z

	trace := m00 + m11 + m22
	var w, x, y, z float64
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1.0)
		w = 0.25 / s
		x = (m21 - m12) * s
		y = (m02 - m20) * s
		z = (m10 - m01) * s
	case m00 > m11 && m00 > m22:
		s := 2.0 * math.Sqrt(1.0+m00-m11-m22)
		w = (m21 - m12) / s
		x = 0.25 * s
		y = (m01 + m10) / s
		z = (m02 + m20) / s
	case m11 > m22:
		s := 2.0 * math.Sqrt(1.0+m11-m00-m22)
		w = (m02 - m20) / s
		x = (m01 + m10) / s
		y = 0.25 * s
		z = (m12 + m21) / s
	default:
		s := 2.0 * math.Sqrt(1.0+m22-m00-m11)
		w = (m10 - m01) / s
		x = (m02 + m20) / s
		y = (m12 + m21) / s
		z = 0.25 * s
	}
	return quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z}
}

// Rotate applies a unit quaternion to a vector (body-to-ECEF style rotation).
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	return quat.Rotate(q, v)
}

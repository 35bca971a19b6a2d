package ephemeris

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/windrose/skyforge/internal/clock"
)

// Star is one catalog entry: a fixed J2000 direction plus display data.
type Star struct {
	Name        string
	RADeg       float64
	DecDeg      float64
	Magnitude   float64
	j2000Dir    r3.Vec // computed once at load
}

// NewStar builds a Star from catalog fields, precomputing its J2000 unit
// direction from right ascension and declination.
func NewStar(name string, raDeg, decDeg, magnitude float64) Star {
	raRad := raDeg * degToRad
	decRad := decDeg * degToRad
	cosDec := math.Cos(decRad)
	return Star{
		Name:      name,
		RADeg:     raDeg,
		DecDeg:    decDeg,
		Magnitude: magnitude,
		j2000Dir: r3.Vec{
			X: cosDec * math.Cos(raRad),
			Y: cosDec * math.Sin(raRad),
			Z: math.Sin(decRad),
		},
	}
}

// ECEFDirection rotates the star's fixed J2000 direction to ECEF by the
// single GMST z-axis rotation.
func (s Star) ECEFDirection(jd float64) r3.Vec {
	gmst := clock.GMSTRadians(jd)
	return rotateZ(s.j2000Dir, gmst)
}

// AltitudeAboveHorizon returns the star's altitude above the local horizon
// in radians, given the observer's ENU up direction in ECEF.
func (s Star) AltitudeAboveHorizon(jd float64, upECEF r3.Vec) float64 {
	dir := s.ECEFDirection(jd)
	return math.Asin(clampUnit(r3.Dot(dir, upECEF)))
}

func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

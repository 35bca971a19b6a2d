// Package ephemeris computes the ECEF positions of the Sun, Moon, planets,
// and catalog stars from a Julian Date, using truncated series accurate
// enough for visual navigation rather than precision astrometry.
package ephemeris

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/windrose/skyforge/internal/clock"
)

const (
	auMeters = 1.495978707e11
	degToRad = math.Pi / 180
)

// Body is a celestial body's position at a given instant.
type Body struct {
	Name          string
	DirectionECEF r3.Vec // unit vector, observer to body
	DistanceM     float64
	PositionECEF  r3.Vec // body center, ECEF meters
}

// SunPosition returns the Sun's position using a simplified SPA: mean
// longitude, mean anomaly, equation of centre, ecliptic longitude, and a
// truncated radius series, rotated ecliptic to equatorial then to ECEF by
// GMST.
func SunPosition(jd float64) Body {
	t := clock.JulianCenturiesJ2000(jd)

	meanLon := normDeg(280.46646 + 36000.76983*t + 0.0003032*t*t)
	meanAnom := normDeg(357.52911 + 35999.05029*t - 0.0001537*t*t)
	meanAnomRad := meanAnom * degToRad

	center := (1.914602-0.004817*t-0.000014*t*t)*math.Sin(meanAnomRad) +
		(0.019993-0.000101*t)*math.Sin(2*meanAnomRad) +
		0.000289*math.Sin(3*meanAnomRad)

	trueLon := meanLon + center
	trueAnomRad := meanAnomRad + center*degToRad

	radiusAU := 1.000001018 * (1 - 0.016708617*0.016708617) / (1 + 0.016708617*math.Cos(trueAnomRad))

	obliquity := (23.4393 - 0.0130*t) * degToRad
	lonRad := trueLon * degToRad

	eqX := math.Cos(lonRad)
	eqY := math.Cos(obliquity) * math.Sin(lonRad)
	eqZ := math.Sin(obliquity) * math.Sin(lonRad)

	eci := r3.Vec{X: eqX, Y: eqY, Z: eqZ}
	distanceM := radiusAU * auMeters

	return toECEFBody("sun", eci, distanceM, jd)
}

// normDeg reduces an angle in degrees to [0, 360).
func normDeg(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// toECEFBody rotates an ECI unit direction about the z-axis by GMST,
// yielding ECEF direction and absolute position.
func toECEFBody(name string, eciDir r3.Vec, distanceM, jd float64) Body {
	gmst := clock.GMSTRadians(jd)
	dir := rotateZ(eciDir, gmst)
	dir = r3.Scale(1/r3.Norm(dir), dir)
	return Body{
		Name:          name,
		DirectionECEF: dir,
		DistanceM:     distanceM,
		PositionECEF:  r3.Scale(distanceM, dir),
	}
}

// rotateZ rotates v about the z-axis by angle radians, eastward positive.
func rotateZ(v r3.Vec, angle float64) r3.Vec {
	sinA, cosA := math.Sincos(angle)
	return r3.Vec{
		X: v.X*cosA - v.Y*sinA,
		Y: v.X*sinA + v.Y*cosA,
		Z: v.Z,
	}
}

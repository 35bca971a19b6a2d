package ephemeris

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/windrose/skyforge/internal/clock"
)

// moonTerm is one term of the truncated ELP2000 longitude/latitude/distance
// series, indexed by (D, M, M', F) multipliers against the fundamental
// arguments.
type moonTerm struct {
	d, m, mp, f float64 // argument multipliers
	coeff       float64 // degrees (lon/lat) or km (distance)
}

// Top-weight longitude terms (coefficients in degrees, used as-is) of the
// truncated ELP2000 series, sufficient for ~0.1 degree accuracy.
var moonLongitudeTerms = []moonTerm{
	{0, 0, 1, 0, 6.288774},
	{2, 0, -1, 0, 1.274027},
	{2, 0, 0, 0, 0.658314},
	{0, 0, 2, 0, 0.213618},
	{0, 1, 0, 0, -0.185116},
	{0, 0, 0, 2, -0.114332},
	{2, 0, -2, 0, 0.058793},
	{2, -1, -1, 0, 0.057066},
	{2, 0, 1, 0, 0.053322},
	{2, -1, 0, 0, 0.045758},
	{0, 1, -1, 0, -0.040923},
	{1, 0, 0, 0, -0.034720},
	{0, 1, 1, 0, -0.030383},
	{2, 0, 0, -2, 0.015327},
	{0, 0, 1, 2, -0.012528},
	{0, 0, 1, -2, 0.010980},
	{4, 0, -1, 0, 0.010675},
	{0, 3, 0, 0, 0.010034},
	{4, 0, -2, 0, 0.008548},
	{2, 1, -1, 0, -0.007888},
	{2, 1, 0, 0, -0.006766},
	{1, 0, -1, 0, -0.005163},
	{1, 1, 0, 0, 0.004987},
	{2, -1, 1, 0, 0.004036},
}

var moonLatitudeTerms = []moonTerm{
	{0, 0, 0, 1, 5.128122},
	{0, 0, 1, 1, 0.280602},
	{0, 0, 1, -1, 0.277693},
	{2, 0, 0, -1, 0.173237},
	{2, 0, -1, 1, 0.055413},
	{2, 0, -1, -1, 0.046271},
	{2, 0, 0, 1, 0.032573},
	{0, 0, 2, 1, 0.017198},
	{2, 0, 1, -1, 0.009266},
	{0, 0, 2, -1, 0.008822},
}

var moonDistanceTerms = []moonTerm{
	{0, 0, 1, 0, -20905.355},
	{2, 0, -1, 0, -3699.111},
	{2, 0, 0, 0, -2955.968},
	{0, 0, 2, 0, -569.925},
	{0, 1, 0, 0, 48.888},
	{2, 0, -2, 0, -3.149},
	{2, -1, -1, 0, 246.158},
	{2, 0, 1, 0, -152.138},
	{2, -1, 0, 0, -170.733},
	{0, 1, -1, 0, -204.586},
	{1, 0, 0, 0, -129.620},
	{0, 1, 1, 0, 108.743},
}

// MoonPosition returns the Moon's position from the truncated ELP2000
// series evaluated at jd, rotated to ECEF.
func MoonPosition(jd float64) Body {
	t := clock.JulianCenturiesJ2000(jd)

	lp := normDeg(218.3164477 + 481267.88123421*t - 0.0015786*t*t)
	d := normDeg(297.8501921 + 445267.1114034*t - 0.0018819*t*t)
	m := normDeg(357.5291092 + 35999.0502909*t - 0.0001536*t*t)
	mp := normDeg(134.9633964 + 477198.8675055*t + 0.0087414*t*t)
	f := normDeg(93.2720950 + 483202.0175233*t - 0.0036539*t*t)

	lonSum := 0.0
	for _, term := range moonLongitudeTerms {
		arg := (term.d*d + term.m*m + term.mp*mp + term.f*f) * degToRad
		lonSum += term.coeff * sinDeg(arg)
	}
	latSum := 0.0
	for _, term := range moonLatitudeTerms {
		arg := (term.d*d + term.m*m + term.mp*mp + term.f*f) * degToRad
		latSum += term.coeff * sinDeg(arg)
	}
	distSumKm := 0.0
	for _, term := range moonDistanceTerms {
		arg := (term.d*d + term.m*m + term.mp*mp + term.f*f) * degToRad
		distSumKm += term.coeff * cosDeg(arg)
	}

	eclipticLon := normDeg(lp + lonSum)
	eclipticLat := latSum
	distanceM := (385000.56 + distSumKm) * 1000

	obliquity := (23.4393 - 0.0130*t) * degToRad
	lonRad := eclipticLon * degToRad
	latRad := eclipticLat * degToRad

	cosLat := math.Cos(latRad)
	x := cosLat * math.Cos(lonRad)
	y := math.Cos(obliquity)*cosLat*math.Sin(lonRad) - math.Sin(obliquity)*math.Sin(latRad)
	z := math.Sin(obliquity)*cosLat*math.Sin(lonRad) + math.Cos(obliquity)*math.Sin(latRad)

	return toECEFBody("moon", r3.Vec{X: x, Y: y, Z: z}, distanceM, jd)
}

// sinDeg, cosDeg take an angle already in radians; named for the degree-
// valued series terms they evaluate.
func sinDeg(rad float64) float64 { return math.Sin(rad) }
func cosDeg(rad float64) float64 { return math.Cos(rad) }

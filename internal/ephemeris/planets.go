package ephemeris

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/windrose/skyforge/internal/clock"
)

// keplerianElements holds mean orbital elements at J2000 and their secular
// rates per Julian century (degrees/century except a and e, which are
// AU/century and per century respectively).
type keplerianElements struct {
	name                       string
	a, aDot                    float64 // semi-major axis, AU
	e, eDot                    float64 // eccentricity
	i, iDot                    float64 // inclination, deg
	l, lDot                    float64 // mean longitude, deg
	longPeri, longPeriDot      float64 // longitude of perihelion, deg
	longNode, longNodeDot      float64 // longitude of ascending node, deg
}

// Mean elements from the standard low-precision planetary ephemeris
// tables, valid 1800-2050. Covers all eight solar system planets except
// Earth: Earth's own heliocentric position is tracked separately below
// (earthElements) purely to subtract it from each planet's position,
// since Earth is the observer and is never itself a body to render.
var planetElements = []keplerianElements{
	{
		name: "mercury",
		a: 0.38709927, aDot: 0.00000037,
		e: 0.20563593, eDot: 0.00001906,
		i: 7.00497902, iDot: -0.00594749,
		l: 252.25032350, lDot: 149472.67411175,
		longPeri: 77.45779628, longPeriDot: 0.16047689,
		longNode: 48.33076593, longNodeDot: -0.12534081,
	},
	{
		name: "venus",
		a: 0.72333566, aDot: 0.00000390,
		e: 0.00677672, eDot: -0.00004107,
		i: 3.39467605, iDot: -0.00078890,
		l: 181.97909950, lDot: 58517.81538729,
		longPeri: 131.60246718, longPeriDot: 0.00268329,
		longNode: 76.67984255, longNodeDot: -0.27769418,
	},
	{
		name: "mars",
		a: 1.52371034, aDot: 0.00001847,
		e: 0.09339410, eDot: 0.00007882,
		i: 1.84969142, iDot: -0.00813131,
		l: -4.55343205, lDot: 19140.30268499,
		longPeri: -23.94362959, longPeriDot: 0.44441088,
		longNode: 49.55953891, longNodeDot: -0.29257343,
	},
	{
		name: "jupiter",
		a: 5.20288700, aDot: -0.00011607,
		e: 0.04838624, eDot: -0.00013253,
		i: 1.30439695, iDot: -0.00183714,
		l: 34.39644051, lDot: 3034.74612775,
		longPeri: 14.72847983, longPeriDot: 0.21252668,
		longNode: 100.47390909, longNodeDot: 0.20469106,
	},
	{
		name: "saturn",
		a: 9.53667594, aDot: -0.00125060,
		e: 0.05386179, eDot: -0.00050991,
		i: 2.48599187, iDot: 0.00193609,
		l: 49.95424423, lDot: 1222.49362201,
		longPeri: 92.59887831, longPeriDot: -0.41897216,
		longNode: 113.66242448, longNodeDot: -0.28867794,
	},
	{
		name: "uranus",
		a: 19.18916464, aDot: -0.00196176,
		e: 0.04725744, eDot: -0.00004397,
		i: 0.77263783, iDot: -0.00242939,
		l: 313.23810451, lDot: 428.48202785,
		longPeri: 170.95427630, longPeriDot: 0.40805281,
		longNode: 74.01692503, longNodeDot: 0.04240589,
	},
	{
		name: "neptune",
		a: 30.06992276, aDot: 0.00026291,
		e: 0.00859048, eDot: 0.00005105,
		i: 1.77004347, iDot: 0.00035372,
		l: -55.12002969, lDot: 218.45945325,
		longPeri: 44.96476227, longPeriDot: -0.32241464,
		longNode: 131.78422574, longNodeDot: -0.00508664,
	},
}

// earthElements lets PlanetPosition subtract Earth's own heliocentric
// position, since the tables are all heliocentric.
var earthElements = keplerianElements{
	name: "earth",
	a: 1.00000261, aDot: 0.00000562,
	e: 0.01671123, eDot: -0.00004392,
	i: -0.00001531, iDot: -0.01294668,
	l: 100.46457166, lDot: 35999.37244981,
	longPeri: 102.93768193, longPeriDot: 0.32327364,
	longNode: 0.0, longNodeDot: 0.0,
}

// keplerSolve solves M = E - e*sin(E) for E by Newton iteration, five
// iterations from a mean-anomaly initial guess.
func keplerSolve(meanAnomRad, e float64) float64 {
	ecc := meanAnomRad
	for iter := 0; iter < 5; iter++ {
		delta := (ecc - e*math.Sin(ecc) - meanAnomRad) / (1 - e*math.Cos(ecc))
		ecc -= delta
	}
	return ecc
}

// heliocentricPosition returns a planet's heliocentric ecliptic position
// in AU at Julian centuries t past J2000.
func heliocentricPosition(el keplerianElements, t float64) r3.Vec {
	a := el.a + el.aDot*t
	e := el.e + el.eDot*t
	incl := (el.i + el.iDot*t) * degToRad
	meanLon := el.l + el.lDot*t
	longPeri := el.longPeri + el.longPeriDot*t
	longNode := el.longNode + el.longNodeDot*t

	meanAnomDeg := normDeg(meanLon - longPeri)
	meanAnomRad := meanAnomDeg * degToRad
	if meanAnomRad > math.Pi {
		meanAnomRad -= 2 * math.Pi
	}

	eccAnom := keplerSolve(meanAnomRad, e)

	xOrb := a * (math.Cos(eccAnom) - e)
	yOrb := a * math.Sqrt(1-e*e) * math.Sin(eccAnom)

	argPeri := (longPeri - longNode) * degToRad
	nodeRad := longNode * degToRad

	cosArg, sinArg := math.Cos(argPeri), math.Sin(argPeri)
	cosNode, sinNode := math.Cos(nodeRad), math.Sin(nodeRad)
	cosIncl, sinIncl := math.Cos(incl), math.Sin(incl)

	xp := cosArg*xOrb - sinArg*yOrb
	yp := sinArg*xOrb + cosArg*yOrb

	x := (cosNode*xp - sinNode*cosIncl*yp)
	y := (sinNode*xp + cosNode*cosIncl*yp)
	z := sinIncl * yp

	return r3.Vec{X: x, Y: y, Z: z}
}

// PlanetPosition returns the named planet's geocentric equatorial J2000
// position, subtracting Earth's own heliocentric position and rotating
// ecliptic to equatorial, then to ECEF by GMST. name must match one of
// the entries in planetElements; ok is false for an unrecognised name.
func PlanetPosition(name string, jd float64) (body Body, ok bool) {
	var el keplerianElements
	found := false
	for _, candidate := range planetElements {
		if candidate.name == name {
			el = candidate
			found = true
			break
		}
	}
	if !found {
		return Body{}, false
	}

	t := clock.JulianCenturiesJ2000(jd)
	helioPlanet := heliocentricPosition(el, t)
	helioEarth := heliocentricPosition(earthElements, t)
	geoEcliptic := r3.Sub(helioPlanet, helioEarth)

	obliquity := (23.4393 - 0.0130*t) * degToRad
	cosObl, sinObl := math.Cos(obliquity), math.Sin(obliquity)
	eqX := geoEcliptic.X
	eqY := cosObl*geoEcliptic.Y - sinObl*geoEcliptic.Z
	eqZ := sinObl*geoEcliptic.Y + cosObl*geoEcliptic.Z

	distanceAU := r3.Norm(r3.Vec{X: eqX, Y: eqY, Z: eqZ})
	if distanceAU < 1e-9 {
		return Body{}, false
	}
	dir := r3.Scale(1/distanceAU, r3.Vec{X: eqX, Y: eqY, Z: eqZ})

	return toECEFBody(name, dir, distanceAU*auMeters, jd), true
}

// PlanetNames lists the planets PlanetPosition can resolve.
func PlanetNames() []string {
	names := make([]string, len(planetElements))
	for i, el := range planetElements {
		names[i] = el.name
	}
	return names
}

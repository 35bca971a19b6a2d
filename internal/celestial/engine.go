// Package celestial orchestrates the ephemeris at a coarse cadence and
// derives observer-dependent quantities (sun altitude, lunar phase,
// visible stars) every frame.
package celestial

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/windrose/skyforge/internal/clock"
	"github.com/windrose/skyforge/internal/coords"
	"github.com/windrose/skyforge/internal/ephemeris"
	"github.com/windrose/skyforge/internal/metrics"
)

// updateIntervalJD is one sim-second expressed in Julian Date units; the
// ephemeris recomputes when accumulated JD delta reaches this threshold.
const updateIntervalJD = 1.0 / 86400.0

var trackedPlanets = ephemeris.PlanetNames()

// Snapshot is the published celestial state for a single frame.
type Snapshot struct {
	JulianDate   float64
	Sun          ephemeris.Body
	Moon         ephemeris.Body
	Planets      []ephemeris.Body
	SunAltitude  float64 // radians above local horizon
	LunarPhase   float64 // 0..1, (1+cos γ)/2: 1 = Moon toward the Sun (new), 0 = opposite (full)
	StarsVisible bool
}

// Engine holds the ephemeris state and the catalog, recomputing bodies on
// the coarse cadence and observer derivations every frame.
type Engine struct {
	stars []ephemeris.Star

	lastUpdateJD float64
	haveUpdate   bool

	sun     ephemeris.Body
	moon    ephemeris.Body
	planets []ephemeris.Body
}

// New creates an Engine over the given star catalog.
func New(stars []ephemeris.Star) *Engine {
	return &Engine{stars: stars}
}

// Update recomputes the ephemeris if the Julian Date has advanced by at
// least one sim-second since the last recompute; otherwise it holds the
// prior bodies constant. Observer-dependent derivations are always
// recomputed fresh from whichever bodies are current.
func (e *Engine) Update(c *clock.Clock, observerLLA coords.LLA) Snapshot {
	jd := c.JulianDate()

	if !e.haveUpdate || jd-e.lastUpdateJD >= updateIntervalJD {
		e.sun = ephemeris.SunPosition(jd)
		e.moon = ephemeris.MoonPosition(jd)
		e.planets = e.planets[:0]
		for _, name := range trackedPlanets {
			if body, ok := ephemeris.PlanetPosition(name, jd); ok {
				e.planets = append(e.planets, body)
			}
		}
		e.lastUpdateJD = jd
		e.haveUpdate = true
		metrics.CelestialUpdates.Inc()
	}

	observerPos := coords.LLAToECEF(observerLLA)
	enu := coords.ENUFrameAt(observerLLA.Lat, observerLLA.Lon, observerPos)

	sunDirFromObserver := r3.Sub(e.sun.PositionECEF, observerPos)
	sunDirFromObserver = r3.Scale(1/r3.Norm(sunDirFromObserver), sunDirFromObserver)
	sunAltitude := math.Asin(clampUnit(r3.Dot(sunDirFromObserver, enu.Up)))

	phase := lunarPhase(e.sun.PositionECEF, observerPos, e.moon.PositionECEF)

	planetsCopy := make([]ephemeris.Body, len(e.planets))
	copy(planetsCopy, e.planets)

	return Snapshot{
		JulianDate:   jd,
		Sun:          e.sun,
		Moon:         e.moon,
		Planets:      planetsCopy,
		SunAltitude:  sunAltitude,
		LunarPhase:   phase,
		StarsVisible: sunAltitude < -6*math.Pi/180, // civil twilight threshold
	}
}

// Stars returns the catalog this engine was built with.
func (e *Engine) Stars() []ephemeris.Star { return e.stars }

// lunarPhase computes f = (1 + cos(gamma)) / 2 where gamma is the angle
// Sun-observer-Moon.
func lunarPhase(sunECEF, observerECEF, moonECEF r3.Vec) float64 {
	toSun := r3.Sub(sunECEF, observerECEF)
	toMoon := r3.Sub(moonECEF, observerECEF)
	nSun, nMoon := r3.Norm(toSun), r3.Norm(toMoon)
	if nSun < 1e-6 || nMoon < 1e-6 {
		return 0.5
	}
	cosGamma := r3.Dot(toSun, toMoon) / (nSun * nMoon)
	return (1 + clampUnit(cosGamma)) / 2
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

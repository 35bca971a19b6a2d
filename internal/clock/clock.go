// Package clock maintains simulation time and its celestial-mechanics
// derivations (Julian Date, Julian centuries, Greenwich Mean Sidereal Time).
package clock

import "math"

const secondsPerDay = 86400.0

// Clock tracks a scaled, monotonic simulation time anchored to a Unix epoch.
type Clock struct {
	epochUnix float64 // mission-start wall time, Unix seconds
	elapsed   float64 // accumulated sim seconds since epoch
	timeScale float64 // sim-seconds per wall-second
}

// New creates a Clock starting at epochUnix with the given time scale
// (1.0 = real time).
func New(epochUnix, timeScale float64) *Clock {
	if timeScale == 0 {
		timeScale = 1.0
	}
	return &Clock{epochUnix: epochUnix, timeScale: timeScale}
}

// Advance moves the clock forward by wallDt seconds of real time.
func (c *Clock) Advance(wallDt float64) {
	c.elapsed += wallDt * c.timeScale
}

// SetTimeScale changes the sim-seconds-per-wall-second ratio.
func (c *Clock) SetTimeScale(scale float64) { c.timeScale = scale }

// TimeScale returns the current time scale.
func (c *Clock) TimeScale() float64 { return c.timeScale }

// ElapsedSeconds returns sim-seconds elapsed since the epoch.
func (c *Clock) ElapsedSeconds() float64 { return c.elapsed }

// UnixSeconds returns the current simulated Unix time.
func (c *Clock) UnixSeconds() float64 { return c.epochUnix + c.elapsed }

// JulianDate returns the current Julian Date (TT approximated by UTC).
func (c *Clock) JulianDate() float64 {
	return UnixToJD(c.UnixSeconds())
}

// UnixToJD converts Unix seconds to a Julian Date.
func UnixToJD(unixSeconds float64) float64 {
	return 2440587.5 + unixSeconds/secondsPerDay
}

// JulianCenturiesJ2000 returns Julian centuries elapsed since J2000.0 for
// the given Julian Date.
func JulianCenturiesJ2000(jd float64) float64 {
	return (jd - J2000JD) / 36525.0
}

// J2000JD is the Julian Date of the J2000.0 epoch.
const J2000JD = 2451545.0

// GMSTRadians returns Greenwich Mean Sidereal Time in radians, reduced to
// [0, 2π), per the IAU 1982 polynomial.
func GMSTRadians(jd float64) float64 {
	t := JulianCenturiesJ2000(jd)
	deg := 280.46061837 +
		360.98564736629*(jd-J2000JD) +
		0.000387933*t*t -
		t*t*t/38710000.0

	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg * math.Pi / 180
}

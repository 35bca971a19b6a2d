// Package atmosphere implements the ISA standard atmosphere as a pure
// function of geopotential altitude.
package atmosphere

import "math"

// Sea-level reference conditions.
const (
	SeaLevelDensity  = 1.225    // kg/m^3
	SeaLevelPressure = 101325.0 // Pa
	SeaLevelTemp     = 288.15   // K
	GasConstantAir   = 287.05287 // J/(kg*K)
	Gamma            = 1.4      // ratio of specific heats for air
	g0               = 9.80665  // m/s^2
)

// State is the set of atmospheric properties at a given altitude.
type State struct {
	Density      float64 // kg/m^3
	Pressure     float64 // Pa
	Temperature  float64 // K
	SpeedOfSound float64 // m/s
}

// layer describes one ISA lapse-rate segment starting at its base altitude.
type layer struct {
	baseAlt  float64 // m
	baseTemp float64 // K
	basePres float64 // Pa
	lapse    float64 // K/m, 0 for isothermal layers
}

// isaLayers covers the troposphere, stratosphere and mesosphere segments
// from sea level up to 84852 m, sufficient range for any altitude this
// simulator reaches.
var isaLayers = []layer{
	{0, SeaLevelTemp, SeaLevelPressure, -0.0065},
	{11000, 216.65, 22632.06, 0},
	{20000, 216.65, 5474.89, 0.001},
	{32000, 228.65, 868.02, 0.0028},
	{47000, 270.65, 110.91, 0},
	{51000, 270.65, 66.94, -0.0028},
	{71000, 214.65, 3.96, -0.002},
	{84852, 186.87, 0.3734, 0},
}

// At returns atmospheric properties at altitude (meters above the
// ellipsoid, clamped at zero).
func At(altitude float64) State {
	if altitude < 0 {
		altitude = 0
	}

	l := isaLayers[0]
	for i := len(isaLayers) - 1; i >= 0; i-- {
		if altitude >= isaLayers[i].baseAlt {
			l = isaLayers[i]
			break
		}
	}

	dh := altitude - l.baseAlt
	var temp, pres float64
	if l.lapse != 0 {
		temp = l.baseTemp + l.lapse*dh
		pres = l.basePres * math.Pow(temp/l.baseTemp, -g0/(l.lapse*GasConstantAir))
	} else {
		temp = l.baseTemp
		pres = l.basePres * math.Exp(-g0*dh/(GasConstantAir*l.baseTemp))
	}

	density := pres / (GasConstantAir * temp)
	speedOfSound := math.Sqrt(Gamma * GasConstantAir * temp)

	return State{
		Density:      density,
		Pressure:     pres,
		Temperature:  temp,
		SpeedOfSound: speedOfSound,
	}
}

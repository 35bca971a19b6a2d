// Package aero assembles aerodynamic, propulsive, gravitational, and
// landing-gear forces and moments on a rigid body.
package aero

import "gonum.org/v1/gonum/spatial/r3"

// Profile holds the aircraft parameters: mass, inertia,
// aerodynamic coefficients, and landing gear. Aircraft differ only in
// these values — the force model is the same for every aircraft, so no
// virtual dispatch is introduced.
type Profile struct {
	Mass    float64 `yaml:"mass"`
	Inertia r3.Vec  `yaml:"-"` // diagonal moments of inertia, kg*m^2

	InertiaXYZ [3]float64 `yaml:"inertia"`
	WingArea   float64    `yaml:"wing_area"`
	WingSpan   float64    `yaml:"wing_span"`
	MaxThrust  float64    `yaml:"max_thrust"`

	CL0       float64 `yaml:"cl0"`
	CLAlpha   float64 `yaml:"cl_alpha"`
	CD0       float64 `yaml:"cd0"`
	CDAlphaSq float64 `yaml:"cd_alpha_sq"`
	StallAlpha float64 `yaml:"stall_alpha"` // radians

	// Moment coefficients. Zero-valued until a profile supplies them.
	PitchElevator float64 `yaml:"pitch_elevator"`
	RollAileron   float64 `yaml:"roll_aileron"`
	YawRudder     float64 `yaml:"yaw_rudder"`
	PitchDamping  float64 `yaml:"pitch_damping"`
	RollDamping   float64 `yaml:"roll_damping"`
	YawDamping    float64 `yaml:"yaw_damping"`

	Gear []GearContact `yaml:"gear"`
}

// GearContact is one landing-gear attachment point.
type GearContact struct {
	Position         [3]float64 `yaml:"position"` // body frame, meters
	SpringConstant   float64    `yaml:"spring_k"`  // N/m
	Damping          float64    `yaml:"damping"`   // N*s/m
	RollingFriction  float64    `yaml:"rolling_friction"`
	BrakingFriction  float64    `yaml:"braking_friction"`
	Steerable        bool       `yaml:"steerable"`
}

// PositionVec returns the gear attachment point as a body-frame vector.
func (g GearContact) PositionVec() r3.Vec {
	return r3.Vec{X: g.Position[0], Y: g.Position[1], Z: g.Position[2]}
}

// InertiaVec returns the diagonal inertia tensor as a vector, building it
// from InertiaXYZ if Inertia was not set directly (e.g. after YAML load).
func (p *Profile) InertiaVec() r3.Vec {
	if p.Inertia == (r3.Vec{}) {
		return r3.Vec{X: p.InertiaXYZ[0], Y: p.InertiaXYZ[1], Z: p.InertiaXYZ[2]}
	}
	return p.Inertia
}

// Controls is the five-scalar control surface input.
type Controls struct {
	Throttle float64 // [0, 1]
	Elevator float64 // [-1, 1]
	Aileron  float64 // [-1, 1]
	Rudder   float64 // [-1, 1]
	Brakes   float64 // [0, 1]
}

// Clamp restricts every control to its defined range.
func (c Controls) Clamp() Controls {
	return Controls{
		Throttle: clamp(c.Throttle, 0, 1),
		Elevator: clamp(c.Elevator, -1, 1),
		Aileron:  clamp(c.Aileron, -1, 1),
		Rudder:   clamp(c.Rudder, -1, 1),
		Brakes:   clamp(c.Brakes, 0, 1),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package aero

import (
	"math"

	"gonum.org/v1/gonum/spatial/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/windrose/skyforge/internal/atmosphere"
	"github.com/windrose/skyforge/internal/coords"
	"github.com/windrose/skyforge/internal/rigidbody"
)

const (
	stdGravity       = 9.80665 // m/s^2
	seaLevelRho0     = 1.225   // kg/m^3, thrust lapse reference
	minFrictionSpeed = 0.01    // m/s, below which lateral friction is zero
)

// Assemble computes the total force (ECEF) and moment (body frame) acting
// on the aircraft. Pure in its inputs.
func Assemble(p *Profile, s *rigidbody.State, c Controls, atmo atmosphere.State) (forceECEF, momentBody r3.Vec) {
	vBody := s.VelocityBody()
	q := 0.5 * atmo.Density * r3.Norm(vBody) * r3.Norm(vBody)

	aeroForce, aeroMoment := aerodynamics(p, vBody, c, atmo)
	thrustForce := thrust(p, c, atmo)
	gravityForce := gravity(p, s)
	damping := DampingMoment(p, s.AngularVelocity, q)

	forceECEF = r3.Add(quat.Rotate(s.Orientation, r3.Add(aeroForce, thrustForce)), gravityForce)
	momentBody = r3.Add(aeroMoment, damping)

	for _, g := range p.Gear {
		gf, gm := gearContact(p, s, c, g)
		forceECEF = r3.Add(forceECEF, gf)
		momentBody = r3.Add(momentBody, gm)
	}

	return forceECEF, momentBody
}

// aerodynamics returns lift+drag force and control-surface moments, both
// in the body frame. Attitude damping is computed separately by
// DampingMoment, which needs angular velocity that this pure function
// does not take.
func aerodynamics(p *Profile, vBody r3.Vec, c Controls, atmo atmosphere.State) (forceBody, momentBody r3.Vec) {
	speed := r3.Norm(vBody)

	var alpha float64
	if speed > 1e-3 {
		alpha = math.Atan2(vBody.Z, vBody.X)
	}
	if alpha > p.StallAlpha {
		alpha = p.StallAlpha
	} else if alpha < -p.StallAlpha {
		alpha = -p.StallAlpha
	}

	q := 0.5 * atmo.Density * speed * speed

	cl := p.CL0 + p.CLAlpha*alpha
	cd := p.CD0 + p.CDAlphaSq*alpha*alpha

	lift := q * p.WingArea * cl
	drag := q * p.WingArea * cd

	var dragDir r3.Vec
	if speed > 1e-6 {
		dragDir = r3.Scale(-1/speed, vBody)
	}

	liftDir := r3.Vec{Z: -1} // body -Z, wings level
	forceBody = r3.Add(r3.Scale(lift, liftDir), r3.Scale(drag, dragDir))

	pitchMoment := q * p.WingArea * p.PitchElevator * c.Elevator
	rollMoment := q * p.WingArea * p.RollAileron * c.Aileron
	yawMoment := q * p.WingArea * p.YawRudder * c.Rudder

	momentBody = r3.Vec{X: rollMoment, Y: pitchMoment, Z: yawMoment}
	return forceBody, momentBody
}

// DampingMoment returns the attitude-damping moment from body angular
// velocity and dynamic pressure, linear in both.
func DampingMoment(p *Profile, omega r3.Vec, q float64) r3.Vec {
	return r3.Vec{
		X: -p.RollDamping * q * omega.X,
		Y: -p.PitchDamping * q * omega.Y,
		Z: -p.YawDamping * q * omega.Z,
	}
}

// thrust returns the propulsive force in body frame, acting along +X,
// lapsing with density ratio.
func thrust(p *Profile, c Controls, atmo atmosphere.State) r3.Vec {
	mag := p.MaxThrust * c.Throttle * (atmo.Density / seaLevelRho0)
	return r3.Vec{X: mag}
}

// gravity returns the gravitational force in ECEF. Up is expressed in ECEF
// components already (coords.ENUFrame stores direction vectors in ECEF),
// so no further rotation is needed. Acts at the centre of mass, never
// contributing a moment.
func gravity(p *Profile, s *rigidbody.State) r3.Vec {
	return r3.Scale(-stdGravity*p.Mass, s.ENU.Up)
}

// gearContact implements the spring-damper landing-gear force law: normal
// force from compression and vertical rate, rolling/braking friction
// opposing horizontal contact velocity, and a lateral nosewheel steering
// force from rudder input.
func gearContact(p *Profile, s *rigidbody.State, c Controls, g GearContact) (forceECEF, momentBody r3.Vec) {
	attachECEF := quat.Rotate(s.Orientation, g.PositionVec())
	contactPoint := r3.Add(s.Position, attachECEF)

	contactAlt := coords.ECEFToLLA(contactPoint).Alt
	compression := -contactAlt
	if compression <= 0 {
		return r3.Vec{}, r3.Vec{}
	}

	omegaCrossR := r3.Cross(s.AngularVelocity, g.PositionVec())
	contactVelECEF := r3.Add(s.Velocity, quat.Rotate(s.Orientation, omegaCrossR))
	contactVelENU := s.ENU.ToENUVector(contactVelECEF)

	vUp := contactVelENU.Z
	vHoriz := r3.Vec{X: contactVelENU.X, Y: contactVelENU.Y}

	normalMag := math.Max(0, g.SpringConstant*compression-g.Damping*vUp)
	normalENU := r3.Scale(normalMag, r3.Vec{Z: 1})

	mu := g.RollingFriction + (g.BrakingFriction-g.RollingFriction)*c.Brakes
	hSpeed := r3.Norm(vHoriz)

	var frictionENU r3.Vec
	if hSpeed >= minFrictionSpeed {
		frictionENU = r3.Scale(-mu*normalMag/hSpeed, vHoriz)
	}

	totalENU := r3.Add(normalENU, frictionENU)

	if g.Steerable {
		rightBodyECEF := quat.Rotate(s.Orientation, r3.Vec{Y: 1})
		rightENU := s.ENU.ToENUVector(rightBodyECEF)
		rightENU.Z = 0
		lateral := c.Rudder * 0.3 * normalMag * 0.3
		totalENU = r3.Add(totalENU, r3.Scale(lateral, rightENU))
	}

	forceECEF = s.ENU.ToECEFVector(totalENU)
	forceBody := quat.Rotate(quat.Conj(s.Orientation), forceECEF)
	momentBody = r3.Cross(g.PositionVec(), forceBody)

	return forceECEF, momentBody
}

// Package traffic implements the AI plane waypoint loiter/transit state
// machine: point-mass aircraft that orbit and transit between named
// waypoints, rebuilding orientation each tick from heading and bank.
package traffic

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/windrose/skyforge/internal/coords"
)

// State names the AI plane's flight-phase state machine.
type State int

const (
	StateLoiter State = iota
	StateTransit
)

const (
	loiterRadiusM       = 1500
	loiterBankDeg       = 20
	loiterMinDurationS  = 30
	loiterMaxDurationS  = 90
	avoidanceRangeM     = 2500
	avoidanceFloorAltM  = 500
)

// Waypoint is a named loiter/transit target.
type Waypoint struct {
	Name string
	LLA  coords.LLA
}

// Obstacle is a named point the traffic engine enforces an altitude floor
// around.
type Obstacle struct {
	Name string
	LLA  coords.LLA
}

// Aircraft is one AI traffic plane: a point mass with heading, bank, and
// cruise parameters drawn once at spawn.
type Aircraft struct {
	Name string

	rng *rand.Rand

	CruiseAltitudeM float64
	CruiseSpeedMps  float64

	Position coords.LLA
	HeadingRad float64
	BankRad    float64

	state         State
	waypoints     []Waypoint
	target        Waypoint
	loiterRemain  float64
}

// NewAircraft spawns an AI plane at a starting waypoint, drawing cruise
// altitude and speed once from the seeded RNG, and entering Loiter around
// that starting waypoint.
func NewAircraft(name string, seed int64, waypoints []Waypoint, altRangeM [2]float64, speedRangeMps [2]float64) *Aircraft {
	rng := rand.New(rand.NewSource(seed))
	start := waypoints[rng.Intn(len(waypoints))]

	a := &Aircraft{
		Name:            name,
		rng:             rng,
		waypoints:       waypoints,
		Position:        start.LLA,
		CruiseAltitudeM: altRangeM[0] + rng.Float64()*(altRangeM[1]-altRangeM[0]),
		CruiseSpeedMps:  speedRangeMps[0] + rng.Float64()*(speedRangeMps[1]-speedRangeMps[0]),
	}
	a.Position.Alt = a.CruiseAltitudeM
	a.enterLoiter(start)
	return a
}

func (a *Aircraft) enterLoiter(wp Waypoint) {
	a.state = StateLoiter
	a.target = wp
	a.loiterRemain = loiterMinDurationS + a.rng.Float64()*(loiterMaxDurationS-loiterMinDurationS)
}

func (a *Aircraft) enterTransit(wp Waypoint) {
	a.state = StateTransit
	a.target = wp
	a.BankRad = 0
}

// pickDifferentWaypoint returns a waypoint other than exclude, or exclude
// itself if the list has only one entry.
func (a *Aircraft) pickDifferentWaypoint(exclude Waypoint) Waypoint {
	if len(a.waypoints) <= 1 {
		return exclude
	}
	for {
		candidate := a.waypoints[a.rng.Intn(len(a.waypoints))]
		if candidate.Name != exclude.Name {
			return candidate
		}
	}
}

// Update advances the aircraft by dt seconds, running the loiter/transit
// state machine and applying altitude-floor avoidance against obstacles.
func (a *Aircraft) Update(dt float64, obstacles []Obstacle) {
	switch a.state {
	case StateLoiter:
		a.updateLoiter(dt)
	case StateTransit:
		a.updateTransit(dt)
	}
	a.applyAvoidance(obstacles)
}

func (a *Aircraft) updateLoiter(dt float64) {
	a.BankRad = loiterBankDeg * math.Pi / 180
	angularRate := a.CruiseSpeedMps / loiterRadiusM
	a.HeadingRad = normalizeAngle(a.HeadingRad + angularRate*dt)

	targetECEF := coords.LLAToECEF(a.target.LLA)
	enu := coords.ENUFrameAt(a.target.LLA.Lat, a.target.LLA.Lon, targetECEF)
	offset := r3.Vec{X: loiterRadiusM * math.Sin(a.HeadingRad), Y: loiterRadiusM * math.Cos(a.HeadingRad)}
	posECEF := enu.ToECEFPoint(offset)
	a.Position = coords.ECEFToLLA(posECEF)
	a.Position.Alt = a.CruiseAltitudeM

	a.loiterRemain -= dt
	if a.loiterRemain <= 0 {
		a.enterTransit(a.pickDifferentWaypoint(a.target))
	}
}

func (a *Aircraft) updateTransit(dt float64) {
	bearing, distance := bearingAndDistance(a.Position, a.target.LLA)
	a.HeadingRad = bearing

	posECEF := coords.LLAToECEF(a.Position)
	enu := coords.ENUFrameAt(a.Position.Lat, a.Position.Lon, posECEF)
	step := a.CruiseSpeedMps * dt
	heading := r3.Vec{X: math.Sin(bearing), Y: math.Cos(bearing)}
	newECEF := r3.Add(posECEF, enu.ToECEFVector(r3.Scale(step, heading)))
	a.Position = coords.ECEFToLLA(newECEF)
	a.Position.Alt = a.CruiseAltitudeM

	if distance <= loiterRadiusM {
		a.enterLoiter(a.target)
		a.HeadingRad = bearing
	}
}

// applyAvoidance raises altitude to the floor when within range of any
// obstacle, for the duration of that proximity.
func (a *Aircraft) applyAvoidance(obstacles []Obstacle) {
	for _, o := range obstacles {
		_, distance := bearingAndDistance(a.Position, o.LLA)
		if distance < avoidanceRangeM && a.Position.Alt < avoidanceFloorAltM {
			a.Position.Alt = avoidanceFloorAltM
		}
	}
}

// Orientation rebuilds the body-to-ECEF quaternion from (LLA, heading,
// bank): the ENU basis rotated by heading about up, then by bank about
// the resulting nose axis.
func (a *Aircraft) Orientation() quat.Number {
	posECEF := coords.LLAToECEF(a.Position)
	enu := coords.ENUFrameAt(a.Position.Lat, a.Position.Lon, posECEF)

	sinH, cosH := math.Sincos(a.HeadingRad)
	nose := r3.Add(r3.Scale(sinH, enu.East), r3.Scale(cosH, enu.North))
	right := r3.Add(r3.Scale(cosH, enu.East), r3.Scale(-sinH, enu.North))
	down := r3.Scale(-1, enu.Up)

	bankQuat := axisAngleQuat(nose, a.BankRad)
	right = quat.Rotate(bankQuat, right)
	down = quat.Rotate(bankQuat, down)

	return coords.MatrixToQuat(nose, right, down)
}

func axisAngleQuat(axis r3.Vec, angle float64) quat.Number {
	n := r3.Norm(axis)
	if n == 0 {
		return quat.Number{Real: 1}
	}
	axis = r3.Scale(1/n, axis)
	sinHalf, cosHalf := math.Sincos(angle / 2)
	return quat.Number{Real: cosHalf, Imag: axis.X * sinHalf, Jmag: axis.Y * sinHalf, Kmag: axis.Z * sinHalf}
}

func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// bearingAndDistance returns the true bearing (radians, 0=north) and
// great-circle-ish ENU horizontal distance (meters) from p1 to p2,
// adequate at the scale of a single mission's airspace.
func bearingAndDistance(p1, p2 coords.LLA) (bearingRad, distanceM float64) {
	ecef2 := coords.LLAToECEF(p2)
	enu1 := coords.ENUFrameAt(p1.Lat, p1.Lon, coords.LLAToECEF(p1))
	offset := enu1.ToENUVector(r3.Sub(ecef2, enu1.Origin))
	distanceM = math.Hypot(offset.X, offset.Y)
	bearingRad = math.Atan2(offset.X, offset.Y)
	return bearingRad, distanceM
}

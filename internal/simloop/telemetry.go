package simloop

import (
	"math"

	"gonum.org/v1/gonum/spatial/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/windrose/skyforge/internal/coords"
)

const (
	radToDeg   = 180 / math.Pi
	mpsToKnots = 1.9438445
	mpsToFtMin = 196.850394
	metersToFt = 3.2808399
)

// TelemetrySnapshot is the unit-converted, human-readable aircraft state
// published for dashboards and text-to-speech, separate from the
// ECEF/radian render snapshot the renderer consumes.
type TelemetrySnapshot struct {
	HeadingDeg     float64
	PitchDeg       float64
	BankDeg        float64
	AirspeedKt     float64
	GroundspeedKt  float64
	VerticalSpeedFtMin float64
	AltitudeMSLFt  float64
	AltitudeAGLFt  float64
	LatitudeDeg    float64
	LongitudeDeg   float64
	AngleOfAttackDeg float64
	OnGround       bool
	Tick           uint64
}

func (l *Loop) publishTelemetry() {
	s := l.State
	heading, pitch, bank := eulerFromQuat(s.Orientation, s.ENU)
	if heading < 0 {
		heading += 2 * math.Pi
	}
	vBody := s.VelocityBody()

	var alpha float64
	if speed := math.Hypot(vBody.X, vBody.Z); speed > 1e-3 {
		alpha = math.Atan2(vBody.Z, vBody.X)
	}

	snap := TelemetrySnapshot{
		HeadingDeg:         heading * radToDeg,
		PitchDeg:           pitch * radToDeg,
		BankDeg:            bank * radToDeg,
		AirspeedKt:         vectorNorm(vBody) * mpsToKnots,
		GroundspeedKt:      s.Groundspeed * mpsToKnots,
		VerticalSpeedFtMin: s.VerticalSpeed * mpsToFtMin,
		AltitudeMSLFt:      s.Geodetic.Alt * metersToFt,
		AltitudeAGLFt:      s.AltitudeAGL * metersToFt,
		LatitudeDeg:        s.Geodetic.Lat * radToDeg,
		LongitudeDeg:       s.Geodetic.Lon * radToDeg,
		AngleOfAttackDeg:   alpha * radToDeg,
		OnGround:           s.OnGround,
		Tick:               l.tickCount,
	}
	l.telemetry.Store(&snap)
}

// eulerFromQuat extracts heading (from true north, clockwise), pitch, and
// bank in radians from a body-to-ECEF orientation and the local ENU frame,
// via the standard ZYX aerospace Euler decomposition of the body axes
// projected into the local horizon.
func eulerFromQuat(q quat.Number, enu coords.ENUFrame) (heading, pitch, bank float64) {
	noseENU := enu.ToENUVector(quat.Rotate(q, r3.Vec{X: 1}))
	rightENU := enu.ToENUVector(quat.Rotate(q, r3.Vec{Y: 1}))
	downENU := enu.ToENUVector(quat.Rotate(q, r3.Vec{Z: 1}))

	heading = math.Atan2(noseENU.X, noseENU.Y)
	pitch = math.Asin(clampUnit(noseENU.Z))
	bank = math.Atan2(-rightENU.Z, -downENU.Z)
	return heading, pitch, bank
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

func vectorNorm(v r3.Vec) float64 { return r3.Norm(v) }

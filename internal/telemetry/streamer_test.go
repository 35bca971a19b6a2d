package telemetry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/windrose/skyforge/internal/celestial"
	"github.com/windrose/skyforge/internal/simloop"
)

func sampleMessage() *Message {
	render := simloop.RenderState{
		Position:    r3.Vec{X: 1, Y: 2, Z: 3},
		Orientation: quat.Number{Real: 1},
		Tick:        42,
	}
	snap := simloop.TelemetrySnapshot{HeadingDeg: 90, AltitudeMSLFt: 1000, Tick: 42}
	sky := celestial.Snapshot{SunAltitude: 30 * math.Pi / 180, LunarPhase: 0.5, StarsVisible: true}
	return BuildMessage(render, snap, sky)
}

func TestBuildMessageCarriesAllFields(t *testing.T) {
	msg := sampleMessage()
	if msg.HeadingDeg != 90 {
		t.Errorf("HeadingDeg = %v, want 90", msg.HeadingDeg)
	}
	if math.Abs(msg.SunAltitudeDeg-30) > 1e-9 {
		t.Errorf("SunAltitudeDeg = %v, want 30", msg.SunAltitudeDeg)
	}
	if msg.PositionECEF != [3]float64{1, 2, 3} {
		t.Errorf("PositionECEF = %v, want [1 2 3]", msg.PositionECEF)
	}
}

func TestFilterMessagePublicHidesSkyAndECEF(t *testing.T) {
	msg := sampleMessage()
	filtered := filterMessage(msg, ClearancePublic)

	if filtered.SunAltitudeDeg != 0 || filtered.LunarPhase != 0 || filtered.StarsVisible {
		t.Error("expected celestial fields hidden at public clearance")
	}
	if filtered.PositionECEF != ([3]float64{}) {
		t.Error("expected ECEF position hidden at public clearance")
	}
	if filtered.HeadingDeg != 90 {
		t.Error("expected pilot-facing fields to survive filtering")
	}
}

func TestFilterMessageOperatorShowsSkyHidesECEF(t *testing.T) {
	msg := sampleMessage()
	filtered := filterMessage(msg, ClearanceOperator)

	if math.Abs(filtered.SunAltitudeDeg-30) > 1e-9 {
		t.Error("expected celestial fields visible at operator clearance")
	}
	if filtered.PositionECEF != ([3]float64{}) {
		t.Error("expected ECEF position still hidden below commander clearance")
	}
}

func TestFilterMessageCommanderShowsEverything(t *testing.T) {
	msg := sampleMessage()
	filtered := filterMessage(msg, ClearanceCommander)

	if filtered.PositionECEF != [3]float64{1, 2, 3} {
		t.Error("expected ECEF position visible at commander clearance")
	}
}

func TestClearanceFromTokenUnknownDefaultsPublic(t *testing.T) {
	if got := clearanceFromToken("nonsense"); got != ClearancePublic {
		t.Errorf("clearanceFromToken(nonsense) = %v, want ClearancePublic", got)
	}
}

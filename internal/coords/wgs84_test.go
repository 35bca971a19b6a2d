package coords

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestRoundTripLLAECEF(t *testing.T) {
	alts := []float64{0, 1000, 10000, 400000}
	for latDeg := -85.0; latDeg <= 85.0; latDeg += 17 {
		for lonDeg := -180.0; lonDeg <= 180.0; lonDeg += 37 {
			for _, alt := range alts {
				want := LLA{
					Lat: latDeg * math.Pi / 180,
					Lon: lonDeg * math.Pi / 180,
					Alt: alt,
				}
				got := ECEFToLLA(LLAToECEF(want))

				horizErr := math.Hypot(got.Lat-want.Lat, got.Lon-want.Lon) * SemiMajorAxis
				if horizErr > 1e-3 {
					t.Errorf("lat=%.1f lon=%.1f alt=%.0f: horizontal error %.6f mm", latDeg, lonDeg, alt, horizErr*1000)
				}
				if math.Abs(got.Alt-want.Alt) > 1e-3 {
					t.Errorf("lat=%.1f lon=%.1f alt=%.0f: altitude error %.6f mm", latDeg, lonDeg, alt, math.Abs(got.Alt-want.Alt)*1000)
				}
			}
		}
	}
}

func TestENUFrameOrthonormal(t *testing.T) {
	for latDeg := -80.0; latDeg <= 80.0; latDeg += 13 {
		for lonDeg := -170.0; lonDeg <= 180.0; lonDeg += 29 {
			lat := latDeg * math.Pi / 180
			lon := lonDeg * math.Pi / 180
			f := ENUFrameAt(lat, lon, r3.Vec{})

			pairs := [][2]r3.Vec{{f.East, f.North}, {f.North, f.Up}, {f.East, f.Up}}
			for _, p := range pairs {
				if d := r3.Dot(p[0], p[1]); math.Abs(d) > 1e-12 {
					t.Errorf("lat=%.1f lon=%.1f: axes not orthogonal, dot=%g", latDeg, lonDeg, d)
				}
			}
			for _, v := range []r3.Vec{f.East, f.North, f.Up} {
				if n := r3.Norm(v); math.Abs(n-1) > 1e-12 {
					t.Errorf("lat=%.1f lon=%.1f: axis not unit norm, got %g", latDeg, lonDeg, n)
				}
			}
		}
	}
}

func TestENUToECEFQuatOrientsUp(t *testing.T) {
	lat, lon := 37.613931*math.Pi/180, -122.358089*math.Pi/180
	q := ENUToECEFQuat(lat, lon)
	up := Rotate(q, r3.Vec{Z: 1})
	want := ENUFrameAt(lat, lon, r3.Vec{}).Up
	if r3.Norm(r3.Sub(up, want)) > 1e-9 {
		t.Errorf("rotated ENU up = %v, want %v", up, want)
	}
}

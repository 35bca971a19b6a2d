package atmosphere

import (
	"math"
	"testing"
)

func TestSeaLevel(t *testing.T) {
	s := At(0)
	if math.Abs(s.Density-SeaLevelDensity) > 1e-3 {
		t.Errorf("density = %v, want %v", s.Density, SeaLevelDensity)
	}
	if math.Abs(s.Pressure-SeaLevelPressure) > 1 {
		t.Errorf("pressure = %v, want %v", s.Pressure, SeaLevelPressure)
	}
}

func TestDensityDecreasesMonotonicallyInTroposphere(t *testing.T) {
	prev := At(0).Density
	for alt := 1000.0; alt <= 11000; alt += 1000 {
		d := At(alt).Density
		if d >= prev {
			t.Errorf("density did not decrease at alt=%v: %v >= %v", alt, d, prev)
		}
		prev = d
	}
}

func TestNegativeAltitudeClampedToSeaLevel(t *testing.T) {
	if At(-500) != At(0) {
		t.Errorf("negative altitude not clamped to sea level")
	}
}

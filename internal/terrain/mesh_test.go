package terrain

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestGenerateVertexCountMatchesGrid(t *testing.T) {
	m := Generate(LOD4)
	if len(m.Vertices) == 0 {
		t.Fatal("expected non-empty vertex list")
	}
	// LOD4 spacing is 15 degrees: 13 latitude rows by 25 longitude columns.
	if len(m.Vertices) != 13*25 {
		t.Errorf("vertex count = %v, want %v", len(m.Vertices), 13*25)
	}
	if len(m.Indices)%6 != 0 {
		t.Errorf("index count = %v, want a multiple of 6 (two triangles per quad)", len(m.Indices))
	}
}

func TestGenerateNormalsAreUnitLength(t *testing.T) {
	m := Generate(LOD3)
	for i, v := range m.Vertices {
		n := r3.Norm(v.Normal)
		if math.Abs(n-1) > 1e-9 {
			t.Fatalf("vertex %d normal magnitude = %v, want 1", i, n)
			break
		}
	}
}

func TestSelectLODMonotonicWithAltitude(t *testing.T) {
	altitudes := []float64{0, 5000, 20000, 100000, 500000}
	var prev LOD = -1
	for _, alt := range altitudes {
		lod := SelectLOD(alt)
		if lod < prev {
			t.Errorf("LOD decreased with increasing altitude at %v m", alt)
		}
		prev = lod
	}
}

func TestNeedsRebuildOnLODChange(t *testing.T) {
	if !NeedsRebuild(LOD0, LOD1, 0) {
		t.Error("expected rebuild on LOD change even with zero camera movement")
	}
}

func TestNeedsRebuildThresholdAtFineLOD(t *testing.T) {
	if NeedsRebuild(LOD0, LOD0, 50) {
		t.Error("50m movement at LOD0 should not trigger a rebuild (threshold 100m)")
	}
	if !NeedsRebuild(LOD0, LOD0, 150) {
		t.Error("150m movement at LOD0 should trigger a rebuild (threshold 100m)")
	}
}

func TestCameraRelativePreservesDelta(t *testing.T) {
	m := Mesh{Vertices: []Vertex{{PositionECEF: r3.Vec{X: 6378137, Y: 10, Z: 20}}}}
	camera := r3.Vec{X: 6378137, Y: 0, Z: 0}
	rel := CameraRelative(m, camera)
	want := r3.Vec{X: 0, Y: 10, Z: 20}
	if r3.Norm(r3.Sub(rel[0], want)) > 1e-9 {
		t.Errorf("camera-relative position = %v, want %v", rel[0], want)
	}
}

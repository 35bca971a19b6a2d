// Package terrain generates a procedural LOD ellipsoid mesh in ECEF,
// rebuilt camera-relative at render time to preserve sub-metre precision
// near the camera.
package terrain

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/windrose/skyforge/internal/coords"
)

// LOD selects an angular grid spacing for the surface mesh.
type LOD int

const (
	LOD0 LOD = iota
	LOD1
	LOD2
	LOD3
	LOD4
)

// gridSpacingDeg gives the angular grid spacing in degrees per LOD.
var gridSpacingDeg = map[LOD]float64{
	LOD0: 2,
	LOD1: 4,
	LOD2: 6,
	LOD3: 10,
	LOD4: 15,
}

// rebuildThresholdM is the camera-movement distance, per LOD, past which
// the vertex buffer must be rebuilt even without an LOD change.
var rebuildThresholdM = map[LOD]float64{
	LOD0: 100,
	LOD1: 100,
	LOD2: 10000,
	LOD3: 10000,
	LOD4: 10000,
}

// Vertex is one mesh vertex: absolute ECEF position and the geodetic
// surface normal at that point.
type Vertex struct {
	PositionECEF r3.Vec
	Normal       r3.Vec
}

// Mesh is a generated grid over the ellipsoid surface at a given LOD, with
// CCW-wound triangle indices as seen from outside the ellipsoid.
type Mesh struct {
	LOD      LOD
	Vertices []Vertex
	Indices  []uint32
}

// Generate builds the full-sphere grid at the given LOD. Latitude runs
// from -90 to 90 and longitude from -180 to 180 inclusive, at the LOD's
// angular spacing.
func Generate(lod LOD) Mesh {
	spacing := gridSpacingDeg[lod] * math.Pi / 180

	var lats []float64
	for lat := -math.Pi / 2; lat <= math.Pi/2+1e-9; lat += spacing {
		lats = append(lats, lat)
	}
	var lons []float64
	for lon := -math.Pi; lon <= math.Pi+1e-9; lon += spacing {
		lons = append(lons, lon)
	}

	rows := len(lats)
	cols := len(lons)

	vertices := make([]Vertex, 0, rows*cols)
	for _, lat := range lats {
		for _, lon := range lons {
			pos := coords.LLAToECEF(coords.LLA{Lat: lat, Lon: lon, Alt: 0})
			enu := coords.ENUFrameAt(lat, lon, pos)
			vertices = append(vertices, Vertex{PositionECEF: pos, Normal: enu.Up})
		}
	}

	indices := make([]uint32, 0, (rows-1)*(cols-1)*6)
	for r := 0; r < rows-1; r++ {
		for c := 0; c < cols-1; c++ {
			i0 := uint32(r*cols + c)
			i1 := uint32(r*cols + c + 1)
			i2 := uint32((r+1)*cols + c)
			i3 := uint32((r+1)*cols + c + 1)

			// CCW as seen from outside the ellipsoid (from +normal looking in).
			indices = append(indices, i0, i1, i2, i1, i3, i2)
		}
	}

	return Mesh{LOD: lod, Vertices: vertices, Indices: indices}
}

// SelectLOD picks the active LOD from altitude above the ellipsoid.
func SelectLOD(altitudeM float64) LOD {
	switch {
	case altitudeM < 3000:
		return LOD0
	case altitudeM < 15000:
		return LOD1
	case altitudeM < 60000:
		return LOD2
	case altitudeM < 250000:
		return LOD3
	default:
		return LOD4
	}
}

// NeedsRebuild reports whether the vertex buffer must be rebuilt: the LOD
// changed, or the camera moved past the LOD-dependent threshold.
func NeedsRebuild(prevLOD, currLOD LOD, cameraDeltaM float64) bool {
	if prevLOD != currLOD {
		return true
	}
	return cameraDeltaM > rebuildThresholdM[currLOD]
}

// CameraRelative rebuilds a vertex buffer with positions relative to the
// camera, subtracting in float64 before any precision-losing cast so
// sub-metre precision is preserved near the camera.
func CameraRelative(m Mesh, cameraECEF r3.Vec) []r3.Vec {
	out := make([]r3.Vec, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = r3.Sub(v.PositionECEF, cameraECEF)
	}
	return out
}

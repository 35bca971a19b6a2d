package assets

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/windrose/skyforge/internal/coords"
)

// MeshConvention selects how authored mesh-local axes map onto ENU.
type MeshConvention int

const (
	ConventionENU MeshConvention = iota // X=east, Y=north, Z=up (default)
	ConventionYUp                       // X=right, Y=up, Z=forward
)

// SceneMesh is a loaded static mesh: vertex/face geometry plus its
// optional geodetic placement and authoring convention.
type SceneMesh struct {
	Vertices   []r3.Vec
	Faces      [][3]int
	Origin     *coords.LLA // nil if the mesh carries no origin tag, or the tag failed to parse
	Convention MeshConvention
}

var dmsPattern = regexp.MustCompile(`^(\d+)°(\d+)'([\d.]+)"([NSEW])\s+(\d+)°(\d+)'([\d.]+)"([NSEW])$`)

// LoadMesh reads a standard textual polygon format file. The first
// fifteen lines may carry `# origin:` and `# convention:` comment tags.
// Geometry errors fail the whole load; an origin tag that fails to parse
// is logged and skipped, the rest of the mesh remains valid.
func LoadMesh(path string) (*SceneMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("assets: read mesh %q: %w", path, err)
	}
	defer f.Close()

	mesh := &SceneMesh{Convention: ConventionENU}

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if lineNum <= 15 && strings.HasPrefix(line, "# origin:") {
			raw := strings.TrimSpace(strings.TrimPrefix(line, "# origin:"))
			lla, err := parseOrigin(raw)
			if err != nil {
				logrus.WithField("mesh", path).WithError(err).Warn("assets: could not parse mesh origin tag, skipping object placement")
			} else {
				mesh.Origin = &lla
			}
			continue
		}
		if lineNum <= 15 && strings.HasPrefix(line, "# convention:") {
			raw := strings.TrimSpace(strings.TrimPrefix(line, "# convention:"))
			switch raw {
			case "yup":
				mesh.Convention = ConventionYUp
			case "enu", "":
				mesh.Convention = ConventionENU
			default:
				return nil, fmt.Errorf("assets: mesh %q line %d: unrecognised convention %q", path, lineNum, raw)
			}
			continue
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			v, err := parseVertex(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("assets: mesh %q line %d: %w", path, lineNum, err)
			}
			mesh.Vertices = append(mesh.Vertices, v)
		case "f":
			face, err := parseFace(fields[1:], len(mesh.Vertices))
			if err != nil {
				return nil, fmt.Errorf("assets: mesh %q line %d: %w", path, lineNum, err)
			}
			mesh.Faces = append(mesh.Faces, face)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("assets: read mesh %q: %w", path, err)
	}

	return mesh, nil
}

func parseVertex(fields []string) (r3.Vec, error) {
	if len(fields) < 3 {
		return r3.Vec{}, fmt.Errorf("vertex line needs 3 components, got %d", len(fields))
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return r3.Vec{}, fmt.Errorf("vertex x: %w", err)
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return r3.Vec{}, fmt.Errorf("vertex y: %w", err)
	}
	z, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return r3.Vec{}, fmt.Errorf("vertex z: %w", err)
	}
	return r3.Vec{X: x, Y: y, Z: z}, nil
}

func parseFace(fields []string, vertexCount int) ([3]int, error) {
	if len(fields) != 3 {
		return [3]int{}, fmt.Errorf("face line needs 3 indices, got %d", len(fields))
	}
	var idx [3]int
	for i, f := range fields {
		n, err := strconv.Atoi(strings.SplitN(f, "/", 2)[0])
		if err != nil {
			return [3]int{}, fmt.Errorf("face index %d: %w", i, err)
		}
		if n < 1 || n > vertexCount {
			return [3]int{}, fmt.Errorf("face index %d references vertex %d, have %d vertices so far", i, n, vertexCount)
		}
		idx[i] = n - 1
	}
	return idx, nil
}

// parseOrigin parses either decimal ("lat, lon") or DMS
// (`DD°MM'SS.S"N DDD°MM'SS.S"W`) forms.
func parseOrigin(raw string) (coords.LLA, error) {
	if m := dmsPattern.FindStringSubmatch(raw); m != nil {
		lat, err := dmsToDeg(m[1], m[2], m[3], m[4])
		if err != nil {
			return coords.LLA{}, err
		}
		lon, err := dmsToDeg(m[5], m[6], m[7], m[8])
		if err != nil {
			return coords.LLA{}, err
		}
		return coords.LLA{Lat: lat * math.Pi / 180, Lon: lon * math.Pi / 180}, nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return coords.LLA{}, fmt.Errorf("unrecognised origin format %q", raw)
	}
	latDeg, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return coords.LLA{}, fmt.Errorf("origin latitude: %w", err)
	}
	lonDeg, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return coords.LLA{}, fmt.Errorf("origin longitude: %w", err)
	}
	return coords.LLA{Lat: latDeg * math.Pi / 180, Lon: lonDeg * math.Pi / 180}, nil
}

func dmsToDeg(degStr, minStr, secStr, hemi string) (float64, error) {
	deg, err := strconv.ParseFloat(degStr, 64)
	if err != nil {
		return 0, fmt.Errorf("dms degrees: %w", err)
	}
	min, err := strconv.ParseFloat(minStr, 64)
	if err != nil {
		return 0, fmt.Errorf("dms minutes: %w", err)
	}
	sec, err := strconv.ParseFloat(secStr, 64)
	if err != nil {
		return 0, fmt.Errorf("dms seconds: %w", err)
	}
	value := deg + min/60 + sec/3600
	if hemi == "S" || hemi == "W" {
		value = -value
	}
	return value, nil
}

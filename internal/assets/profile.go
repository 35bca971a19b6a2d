// Package assets loads aircraft profiles, mesh geometry, airport
// catalogs, and star catalogs from disk, failing fast on any malformed
// file with a message naming the file and field.
package assets

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/windrose/skyforge/internal/aero"
)

// LoadProfile reads and validates an aircraft profile YAML file. It never
// returns a partially constructed profile: any parse or validation
// failure is returned as an error naming the file and field.
func LoadProfile(path string) (*aero.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("assets: read profile %q: %w", path, err)
	}

	var p aero.Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("assets: parse profile %q: %w", path, err)
	}

	if err := validateProfile(path, &p); err != nil {
		return nil, err
	}

	return &p, nil
}

func validateProfile(path string, p *aero.Profile) error {
	if p.Mass <= 0 {
		return fmt.Errorf("assets: profile %q: field mass must be positive, got %v", path, p.Mass)
	}
	for axis, v := range p.InertiaXYZ {
		if v <= 0 {
			return fmt.Errorf("assets: profile %q: field inertia[%d] must be positive, got %v", path, axis, v)
		}
	}
	if p.WingArea <= 0 {
		return fmt.Errorf("assets: profile %q: field wing_area must be positive, got %v", path, p.WingArea)
	}
	if p.StallAlpha <= 0 {
		return fmt.Errorf("assets: profile %q: field stall_alpha must be positive radians, got %v", path, p.StallAlpha)
	}
	for i, g := range p.Gear {
		if g.SpringConstant <= 0 {
			return fmt.Errorf("assets: profile %q: gear[%d].spring_k must be positive, got %v", path, i, g.SpringConstant)
		}
	}
	return nil
}

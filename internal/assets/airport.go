package assets

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Runway is one runway record at an airport.
type Runway struct {
	Identifier  string
	LengthFt    float64
	WidthFt     float64
	HeadingDeg  *float64 // nil when the source record carries no inferable heading
}

// Airport is one catalog record with at least one usable runway.
type Airport struct {
	Identifier string
	Type       string
	Lat, Lon   float64
	ElevationFt float64
	Runways    []Runway
}

type airportRecord struct {
	Identifier  string  `json:"identifier"`
	Type        string  `json:"type"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ElevationFt float64 `json:"elevation-ft"`
	Runways     []struct {
		LengthFt      float64  `json:"length-ft"`
		WidthFt       float64  `json:"width-ft"`
		HeadingDegTrue *float64 `json:"heading-degrees-true"`
		Identifier    string   `json:"identifier"`
	} `json:"runways"`
}

// LoadAirports reads an airport catalog JSON file. Records with no
// inferable runway heading are skipped entirely, with a warning.
func LoadAirports(path string) ([]Airport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("assets: read airport catalog %q: %w", path, err)
	}

	var records []airportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("assets: parse airport catalog %q: %w", path, err)
	}

	airports := make([]Airport, 0, len(records))
	for _, rec := range records {
		var runways []Runway
		for _, rw := range rec.Runways {
			if rw.HeadingDegTrue == nil {
				continue
			}
			runways = append(runways, Runway{
				Identifier: rw.Identifier,
				LengthFt:   rw.LengthFt,
				WidthFt:    rw.WidthFt,
				HeadingDeg: rw.HeadingDegTrue,
			})
		}
		if len(runways) == 0 {
			logrus.WithField("airport", rec.Identifier).Warn("assets: no runway with inferable heading, skipping record")
			continue
		}
		airports = append(airports, Airport{
			Identifier:  rec.Identifier,
			Type:        rec.Type,
			Lat:         rec.Latitude,
			Lon:         rec.Longitude,
			ElevationFt: rec.ElevationFt,
			Runways:     runways,
		})
	}

	return airports, nil
}

package assets

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/windrose/skyforge/internal/ephemeris"
)

// LoadStarCatalog reads a CSV star catalog: right-ascension-deg-J2000,
// declination-deg-J2000, magnitude, optional name. A malformed individual
// row is skipped with a warning; the rest of the catalog continues to load.
func LoadStarCatalog(path string) ([]ephemeris.Star, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("assets: read star catalog %q: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("assets: parse star catalog %q: %w", path, err)
	}

	var stars []ephemeris.Star
	for i, row := range rows {
		if i == 0 && isHeaderRow(row) {
			continue
		}
		if len(row) < 3 {
			logrus.WithField("row", i+1).Warn("assets: star catalog row has too few fields, skipping")
			continue
		}
		ra, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			logrus.WithField("row", i+1).WithError(err).Warn("assets: star catalog row has invalid right ascension, skipping")
			continue
		}
		dec, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			logrus.WithField("row", i+1).WithError(err).Warn("assets: star catalog row has invalid declination, skipping")
			continue
		}
		mag, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			logrus.WithField("row", i+1).WithError(err).Warn("assets: star catalog row has invalid magnitude, skipping")
			continue
		}
		name := ""
		if len(row) >= 4 {
			name = row[3]
		}
		stars = append(stars, ephemeris.NewStar(name, ra, dec, mag))
	}

	return stars, nil
}

func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	_, err := strconv.ParseFloat(row[0], 64)
	return err != nil
}

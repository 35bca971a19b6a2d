// Package config parses the command-line surface: flags to choose
// instant-start versus menu mode, the aircraft slug, initial epoch,
// speech-disable, and windowed/full-screen, plus the ambient ports and
// asset paths the teacher's CLI exposes. No flag affects simulation
// semantics other than initial conditions.
package config

import (
	"flag"
	"fmt"
	"time"
)

// Config holds every value parsed from the command line.
type Config struct {
	InstantStart bool
	Aircraft     string
	EpochUnix    float64
	NoSpeech     bool
	Fullscreen   bool

	ProfilePath   string
	AirportsPath  string
	StarsPath     string
	MeshPath      string

	HTTPPort    int
	MetricsPort int
	MAVLinkAddr string

	LogLevel string
}

// defaultEpoch matches the scenario epoch used throughout the testable
// properties: 2025-01-01T12:00:00Z.
var defaultEpoch = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// Parse parses args (typically os.Args[1:]) into a Config using its own
// flag set, independent of the flag package's default command line; it
// defines and parses the flags in one step so callers never touch the
// flag package directly.
func Parse(args []string) (Config, error) {
	fs := flag.NewFlagSet("skyforge", flag.ContinueOnError)

	instantStart := fs.Bool("instant-start", false, "skip the menu and begin flying immediately")
	aircraft := fs.String("aircraft", "cessna172", "aircraft profile slug to fly")
	epochStr := fs.String("epoch", defaultEpoch.Format(time.RFC3339), "initial mission epoch, ISO 8601")
	noSpeech := fs.Bool("no-speech", false, "disable speech synthesis, keep text telemetry")
	fullscreen := fs.Bool("fullscreen", false, "run the renderer full-screen instead of windowed")

	profilePath := fs.String("profile-path", "assets/aircraft", "directory of aircraft profile YAML files")
	airportsPath := fs.String("airports", "assets/airports.json", "airport catalog JSON file")
	starsPath := fs.String("stars", "assets/stars.csv", "star catalog CSV file")
	meshPath := fs.String("mesh", "assets/scenery", "directory of static scene meshes")

	httpPort := fs.Int("http-port", 8093, "HTTP telemetry/status API port")
	metricsPort := fs.Int("metrics-port", 9093, "Prometheus metrics port")
	mavlinkAddr := fs.String("mavlink-addr", "127.0.0.1:14550", "UDP address of the MAVLink ground station peer")

	logLevel := fs.String("log-level", "info", "logging verbosity: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	epoch, err := time.Parse(time.RFC3339, *epochStr)
	if err != nil {
		return Config{}, fmt.Errorf("config: --epoch %q: %w", *epochStr, err)
	}

	return Config{
		InstantStart: *instantStart,
		Aircraft:     *aircraft,
		EpochUnix:    float64(epoch.Unix()),
		NoSpeech:     *noSpeech,
		Fullscreen:   *fullscreen,
		ProfilePath:  *profilePath,
		AirportsPath: *airportsPath,
		StarsPath:    *starsPath,
		MeshPath:     *meshPath,
		HTTPPort:     *httpPort,
		MetricsPort:  *metricsPort,
		MAVLinkAddr:  *mavlinkAddr,
		LogLevel:     *logLevel,
	}, nil
}

// Command skyforge runs the real-time flight simulation core: the
// fixed-timestep rigid body and celestial engine, AI traffic, and the
// external interfaces (HTTP status, WebSocket telemetry, Prometheus
// metrics, and an optional MAVLink ground-station bridge) that let
// collaborators outside this process observe, and via MAVLink fly, the
// simulated aircraft.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/windrose/skyforge/internal/assets"
	"github.com/windrose/skyforge/internal/celestial"
	"github.com/windrose/skyforge/internal/clock"
	"github.com/windrose/skyforge/internal/config"
	"github.com/windrose/skyforge/internal/coords"
	"github.com/windrose/skyforge/internal/mavlink"
	"github.com/windrose/skyforge/internal/metrics"
	"github.com/windrose/skyforge/internal/rigidbody"
	"github.com/windrose/skyforge/internal/simloop"
	"github.com/windrose/skyforge/internal/telemetry"
	"github.com/windrose/skyforge/internal/terrain"
	"github.com/windrose/skyforge/internal/traffic"
	"github.com/windrose/skyforge/pkg/utils"
)

var (
	version = "0.1.0"
)

// sfoRunway28L is the fallback start position used whenever the airport
// catalog carries no entry for the requested start field: SFO runway
// 28L, the position named throughout the testable scenarios.
var sfoRunway28L = coords.LLA{
	Lat: degToRad(37.613931),
	Lon: degToRad(-122.358089),
	Alt: 0,
}

const (
	sfoHeadingRad   = 280.0 * math.Pi / 180
	defaultStartICAO = "KSFO"
	trafficUpdateHz = 10.0
	telemetryHz     = 10.0
	physicsDriveHz  = 240.0
)

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }

// app owns every long-lived subsystem wired together at startup.
type app struct {
	cfg config.Config

	loop       *simloop.Loop
	streamer   *telemetry.Streamer
	bridge     *mavlink.Bridge
	planes     []*traffic.Aircraft
	obstacles  []traffic.Obstacle
	terrainLOD terrain.LOD

	httpServer    *http.Server
	metricsServer *http.Server
}

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "skyforge:", err)
		os.Exit(2)
	}

	utils.Logger = utils.NewLogger(cfg.LogLevel, "stdout")
	log := utils.Logger

	a, err := newApp(cfg)
	if err != nil {
		log.WithError(err).Fatal("skyforge: initialization failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	a.start(ctx, &wg)

	log.WithFields(map[string]interface{}{
		"version":  version,
		"aircraft": cfg.Aircraft,
		"http":     cfg.HTTPPort,
	}).Info("skyforge operational")

	<-sigCh
	log.Info("shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("http server shutdown error")
		}
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("metrics server shutdown error")
		}
	}
	wg.Wait()
	log.Info("shutdown complete")
}

// newApp loads every asset the mission needs and wires the subsystems
// together. Asset load failures are fatal, per the fail-fast error
// policy; the MAVLink ground-station peer is optional and its absence
// only disables the bridge.
func newApp(cfg config.Config) (*app, error) {
	log := utils.Logger

	profilePath := filepath.Join(cfg.ProfilePath, cfg.Aircraft+".yaml")
	profile, err := assets.LoadProfile(profilePath)
	if err != nil {
		return nil, fmt.Errorf("load aircraft profile: %w", err)
	}

	stars, err := assets.LoadStarCatalog(cfg.StarsPath)
	if err != nil {
		return nil, fmt.Errorf("load star catalog: %w", err)
	}

	airports, err := assets.LoadAirports(cfg.AirportsPath)
	if err != nil {
		return nil, fmt.Errorf("load airport catalog: %w", err)
	}

	startPos, startHeading := resolveStart(airports)
	state := rigidbody.New(startPos, startHeading)
	clk := clock.New(cfg.EpochUnix, 1.0)
	engine := celestial.New(stars)
	loop := simloop.NewLoop(profile, state, clk, engine, nil)
	loop.Logger = log

	bridge, err := mavlink.Dial(cfg.MAVLinkAddr, 1, 1)
	if err != nil {
		log.WithError(err).Warn("mavlink: ground station unreachable, flying without the bridge")
		bridge = nil
	} else {
		loop.Sample = bridge.Sample
	}

	waypoints, obstacles := waypointsFromAirports(airports)
	planes := spawnTraffic(waypoints)

	a := &app{
		cfg:        cfg,
		loop:       loop,
		streamer:   telemetry.NewStreamer(),
		bridge:     bridge,
		planes:     planes,
		obstacles:  obstacles,
		terrainLOD: terrain.SelectLOD(state.Geodetic.Alt),
	}
	a.httpServer = a.buildHTTPServer()
	a.metricsServer = a.buildMetricsServer()
	return a, nil
}

// resolveStart finds the named default airport's first runway and
// returns a start position and heading; absent a match it falls back to
// SFO runway 28L.
func resolveStart(airports []assets.Airport) (coords.LLA, float64) {
	for _, ap := range airports {
		if ap.Identifier != defaultStartICAO {
			continue
		}
		for _, rw := range ap.Runways {
			if rw.HeadingDeg == nil {
				continue
			}
			pos := coords.LLA{
				Lat: degToRad(ap.Lat),
				Lon: degToRad(ap.Lon),
				Alt: ap.ElevationFt * 0.3048,
			}
			return pos, degToRad(*rw.HeadingDeg)
		}
	}
	return sfoRunway28L, sfoHeadingRad
}

// waypointsFromAirports turns the airport catalog into traffic waypoints
// and altitude-floor obstacles; absent any catalog entries it synthesizes
// two waypoints near the fallback start position so traffic still has
// somewhere to loiter and transit between.
func waypointsFromAirports(airports []assets.Airport) ([]traffic.Waypoint, []traffic.Obstacle) {
	if len(airports) == 0 {
		a := sfoRunway28L
		b := sfoRunway28L
		b.Lat += degToRad(0.5)
		b.Lon += degToRad(0.5)
		wps := []traffic.Waypoint{{Name: "SFO", LLA: a}, {Name: "NORTHEAST", LLA: b}}
		return wps, []traffic.Obstacle{{Name: "SFO", LLA: a}}
	}

	wps := make([]traffic.Waypoint, 0, len(airports))
	obstacles := make([]traffic.Obstacle, 0, len(airports))
	for _, ap := range airports {
		lla := coords.LLA{Lat: degToRad(ap.Lat), Lon: degToRad(ap.Lon), Alt: ap.ElevationFt * 0.3048}
		wps = append(wps, traffic.Waypoint{Name: ap.Identifier, LLA: lla})
		obstacles = append(obstacles, traffic.Obstacle{Name: ap.Identifier, LLA: lla})
	}
	return wps, obstacles
}

func spawnTraffic(waypoints []traffic.Waypoint) []*traffic.Aircraft {
	const count = 3
	planes := make([]*traffic.Aircraft, count)
	for i := 0; i < count; i++ {
		name := fmt.Sprintf("AI%02d", i+1)
		planes[i] = traffic.NewAircraft(name, int64(i+1), waypoints, [2]float64{900, 2500}, [2]float64{55, 90})
	}
	return planes
}

// start launches every background goroutine: the simulation drive loop,
// AI traffic update, telemetry broadcast, the MAVLink bridge (if
// connected), and the HTTP server.
func (a *app) start(ctx context.Context, wg *sync.WaitGroup) {
	log := utils.Logger

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.driveSimulation(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.driveTraffic(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.driveTelemetry(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.streamer.Run(ctx); err != nil && err != context.Canceled {
			log.WithError(err).Warn("telemetry streamer stopped")
		}
	}()

	if a.bridge != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.bridge.Run(ctx); err != nil && err != context.Canceled {
				log.WithError(err).Warn("mavlink bridge stopped")
			}
		}()
	}

	go func() {
		log.WithField("port", a.cfg.HTTPPort).Info("http server listening")
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("http server error")
		}
	}()

	go func() {
		log.WithField("port", a.cfg.MetricsPort).Info("metrics server listening")
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server error")
		}
	}()
}

// driveSimulation is the single goroutine that owns the authoritative
// rigid-body state: it measures real wall-clock time and feeds it to the
// loop's fixed-timestep accumulator every tick.
func (a *app) driveSimulation(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(float64(time.Second) / physicsDriveHz))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			wallDt := now.Sub(last).Seconds()
			last = now

			before := a.loop.TelemetrySnapshotNow().Tick
			start := time.Now()
			a.loop.Advance(wallDt)
			metrics.AdvanceDuration.Observe(time.Since(start).Seconds())
			after := a.loop.TelemetrySnapshotNow().Tick
			if after > before {
				metrics.PhysicsTicks.Add(float64(after - before))
			}

			lod := terrain.SelectLOD(a.loop.State.Geodetic.Alt)
			if lod != a.terrainLOD {
				a.terrainLOD = lod
			}
		}
	}
}

// driveTraffic steps every AI aircraft at a fixed rate independent of
// the physics loop; traffic is a simplified kinematic model, not an
// integrated rigid body.
func (a *app) driveTraffic(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(float64(time.Second) / trafficUpdateHz))
	defer ticker.Stop()

	dt := 1.0 / trafficUpdateHz
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, p := range a.planes {
				p.Update(dt, a.obstacles)
			}
			metrics.TrafficAircraft.Set(float64(len(a.planes)))
		}
	}
}

// driveTelemetry broadcasts a telemetry frame at a fixed rate,
// independent of the physics rate, for clients that need a human-legible
// cadence rather than every integration step.
func (a *app) driveTelemetry(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(float64(time.Second) / telemetryHz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			msg := telemetry.BuildMessage(a.loop.RenderSnapshot(), a.loop.TelemetrySnapshotNow(), a.loop.CelestialSnapshotNow())
			a.streamer.Broadcast(msg)
			metrics.TelemetryBroadcasts.Inc()

			clients, _, _ := a.streamer.Stats()
			metrics.TelemetryClients.Set(float64(clients))

			if a.bridge != nil {
				tickMs := uint32(a.loop.Clock.ElapsedSeconds() * 1000)
				if err := a.bridge.PublishState(tickMs, a.loop.State, a.loop.TelemetrySnapshotNow(), true); err != nil {
					utils.Logger.WithError(err).Debug("mavlink: publish state failed")
				}
			}
		}
	}
}

func (a *app) buildHTTPServer() *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/api/v1/status", a.statusHandler)
	mux.HandleFunc("/api/v1/state", a.stateHandler)
	mux.HandleFunc("/api/v1/celestial", a.celestialHandler)
	mux.HandleFunc("/api/v1/traffic", a.trafficHandler)
	mux.HandleFunc("/api/v1/terrain", a.terrainHandler)
	mux.HandleFunc("/ws/telemetry", a.streamer.HandleWebSocket)

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.HTTPPort),
		Handler: mux,
	}
}

// buildMetricsServer serves Prometheus metrics on their own port, kept
// separate from the telemetry/status API so a scraper never shares a
// listener with pilot- and operator-facing traffic.
func (a *app) buildMetricsServer() *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.MetricsPort),
		Handler: mux,
	}
}

func (a *app) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok", "service": "skyforge", "version": version})
}

func (a *app) statusHandler(w http.ResponseWriter, r *http.Request) {
	clients, sent, served := a.streamer.Stats()
	writeJSON(w, map[string]interface{}{
		"aircraft":          a.cfg.Aircraft,
		"tick":              a.loop.TelemetrySnapshotNow().Tick,
		"telemetry_clients": clients,
		"telemetry_sent":    sent,
		"telemetry_served":  served,
		"traffic_aircraft":  len(a.planes),
		"mavlink_connected": a.bridge != nil,
	})
}

func (a *app) stateHandler(w http.ResponseWriter, r *http.Request) {
	render := a.loop.RenderSnapshot()
	writeJSON(w, map[string]interface{}{
		"position_ecef": [3]float64{render.Position.X, render.Position.Y, render.Position.Z},
		"orientation":   [4]float64{render.Orientation.Real, render.Orientation.Imag, render.Orientation.Jmag, render.Orientation.Kmag},
		"tick":          render.Tick,
		"telemetry":     a.loop.TelemetrySnapshotNow(),
	})
}

func (a *app) celestialHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.loop.CelestialSnapshotNow())
}

func (a *app) trafficHandler(w http.ResponseWriter, r *http.Request) {
	type planeView struct {
		Name       string  `json:"name"`
		LatDeg     float64 `json:"lat_deg"`
		LonDeg     float64 `json:"lon_deg"`
		AltitudeM  float64 `json:"altitude_m"`
		HeadingDeg float64 `json:"heading_deg"`
		BankDeg    float64 `json:"bank_deg"`
	}
	views := make([]planeView, len(a.planes))
	for i, p := range a.planes {
		views[i] = planeView{
			Name:       p.Name,
			LatDeg:     p.Position.Lat * 180 / math.Pi,
			LonDeg:     p.Position.Lon * 180 / math.Pi,
			AltitudeM:  p.Position.Alt,
			HeadingDeg: p.HeadingRad * 180 / math.Pi,
			BankDeg:    p.BankRad * 180 / math.Pi,
		}
	}
	writeJSON(w, views)
}

func (a *app) terrainHandler(w http.ResponseWriter, r *http.Request) {
	mesh := terrain.Generate(a.terrainLOD)
	writeJSON(w, map[string]interface{}{
		"lod":           a.terrainLOD,
		"vertex_count":  len(mesh.Vertices),
		"triangle_count": len(mesh.Indices) / 3,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

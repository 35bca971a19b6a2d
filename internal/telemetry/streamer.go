// Package telemetry broadcasts the simulation's published snapshots to
// external consumers over WebSocket, clearance-filtered so a public
// dashboard and a diagnostic console see different amounts of detail
// from the same stream.
package telemetry

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/windrose/skyforge/internal/celestial"
	"github.com/windrose/skyforge/internal/simloop"
)

// Clearance gates which fields of a Message a client receives.
type Clearance int

const (
	ClearancePublic    Clearance = 0 // pilot-facing flight instruments only
	ClearanceBasic     Clearance = 1
	ClearanceOperator  Clearance = 2 // adds celestial/sky state
	ClearanceCommander Clearance = 3 // adds raw ECEF diagnostic state
	ClearanceAdmin     Clearance = 4 // everything
)

// Message is one broadcast frame. Fields above a client's clearance are
// zeroed by filterMessage before marshaling.
type Message struct {
	Timestamp time.Time `json:"timestamp"`
	Tick      uint64    `json:"tick"`

	HeadingDeg         float64 `json:"heading_deg"`
	PitchDeg           float64 `json:"pitch_deg"`
	BankDeg            float64 `json:"bank_deg"`
	AirspeedKt         float64 `json:"airspeed_kt"`
	GroundspeedKt      float64 `json:"groundspeed_kt"`
	VerticalSpeedFtMin float64 `json:"vertical_speed_ft_min"`
	AltitudeMSLFt      float64 `json:"altitude_msl_ft"`
	AltitudeAGLFt      float64 `json:"altitude_agl_ft"`
	LatitudeDeg        float64 `json:"latitude_deg"`
	LongitudeDeg       float64 `json:"longitude_deg"`
	AngleOfAttackDeg   float64 `json:"angle_of_attack_deg"`
	OnGround           bool    `json:"on_ground"`

	SunAltitudeDeg float64 `json:"sun_altitude_deg,omitempty"`
	LunarPhase     float64 `json:"lunar_phase,omitempty"`
	StarsVisible   bool    `json:"stars_visible,omitempty"`

	PositionECEF    [3]float64 `json:"position_ecef,omitempty"`
	OrientationQuat [4]float64 `json:"orientation,omitempty"`

	Clearance Clearance `json:"clearance"`
}

// BuildMessage assembles a broadcast frame from the loop's published
// snapshots. Clearance-gated fields are always populated here; filtering
// happens per-client at send time.
func BuildMessage(render simloop.RenderState, snap simloop.TelemetrySnapshot, sky celestial.Snapshot) *Message {
	return &Message{
		Timestamp:          time.Now(),
		Tick:               snap.Tick,
		HeadingDeg:         snap.HeadingDeg,
		PitchDeg:           snap.PitchDeg,
		BankDeg:            snap.BankDeg,
		AirspeedKt:         snap.AirspeedKt,
		GroundspeedKt:      snap.GroundspeedKt,
		VerticalSpeedFtMin: snap.VerticalSpeedFtMin,
		AltitudeMSLFt:      snap.AltitudeMSLFt,
		AltitudeAGLFt:      snap.AltitudeAGLFt,
		LatitudeDeg:        snap.LatitudeDeg,
		LongitudeDeg:       snap.LongitudeDeg,
		AngleOfAttackDeg:   snap.AngleOfAttackDeg,
		OnGround:           snap.OnGround,
		SunAltitudeDeg:     sky.SunAltitude * 180 / math.Pi,
		LunarPhase:         sky.LunarPhase,
		StarsVisible:       sky.StarsVisible,
		PositionECEF:       [3]float64{render.Position.X, render.Position.Y, render.Position.Z},
		OrientationQuat:    [4]float64{render.Orientation.Real, render.Orientation.Imag, render.Orientation.Jmag, render.Orientation.Kmag},
	}
}

// Streamer broadcasts Messages to connected WebSocket clients.
type Streamer struct {
	mu        sync.RWMutex
	clients   map[*client]bool
	broadcast chan *Message
	upgrader  websocket.Upgrader
	logger    *logrus.Logger

	messagesSent  uint64
	clientsServed uint64
}

type client struct {
	conn      *websocket.Conn
	clearance Clearance
	send      chan *Message
	id        string
}

// NewStreamer builds a Streamer ready to accept WebSocket connections.
func NewStreamer() *Streamer {
	return &Streamer{
		clients:   make(map[*client]bool),
		broadcast: make(chan *Message, 100),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logrus.New(),
	}
}

// HandleWebSocket upgrades an HTTP request to a WebSocket connection and
// registers it as a broadcast client.
func (s *Streamer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Error("telemetry: failed to upgrade websocket")
		return
	}

	clearance := clearanceFromToken(r.URL.Query().Get("clearance"))

	c := &client{
		conn:      conn,
		clearance: clearance,
		send:      make(chan *Message, 50),
		id:        r.RemoteAddr,
	}

	s.mu.Lock()
	s.clients[c] = true
	s.clientsServed++
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{"client": c.id, "clearance": clearance}).Info("telemetry: client connected")

	ctx, cancel := context.WithCancel(context.Background())
	go s.writePump(ctx, c)
	go s.readPump(ctx, cancel, c)
}

func clearanceFromToken(token string) Clearance {
	switch token {
	case "admin":
		return ClearanceAdmin
	case "commander":
		return ClearanceCommander
	case "operator":
		return ClearanceOperator
	case "basic":
		return ClearanceBasic
	default:
		return ClearancePublic
	}
}

// Broadcast queues a message for delivery, dropping the oldest queued
// message if the broadcast buffer is full — telemetry is a live stream,
// not a reliable log.
func (s *Streamer) Broadcast(msg *Message) {
	select {
	case s.broadcast <- msg:
	default:
		select {
		case <-s.broadcast:
		default:
		}
		s.broadcast <- msg
	}
}

// Run drains the broadcast queue and fans each message out to clients
// until ctx is cancelled.
func (s *Streamer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.closeAllClients()
			return ctx.Err()
		case msg := <-s.broadcast:
			s.sendToClients(msg)
		}
	}
}

func (s *Streamer) sendToClients(msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for c := range s.clients {
		filtered := filterMessage(msg, c.clearance)
		select {
		case c.send <- filtered:
			s.messagesSent++
		default:
		}
	}
}

// filterMessage zeroes fields a client's clearance does not admit.
func filterMessage(msg *Message, clearance Clearance) *Message {
	filtered := *msg
	filtered.Clearance = clearance

	if clearance < ClearanceOperator {
		filtered.SunAltitudeDeg = 0
		filtered.LunarPhase = 0
		filtered.StarsVisible = false
	}
	if clearance < ClearanceCommander {
		filtered.PositionECEF = [3]float64{}
		filtered.OrientationQuat = [4]float64{}
	}
	return &filtered
}

func (s *Streamer) closeAllClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.conn.Close()
		close(c.send)
		delete(s.clients, c)
	}
}

func (s *Streamer) writePump(ctx context.Context, c *client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Streamer) readPump(ctx context.Context, cancel context.CancelFunc, c *client) {
	defer func() {
		cancel()
		s.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.WithError(err).Debug("telemetry: websocket read error")
			}
			return
		}
		// Clients publish no commands in this direction; frames are drained
		// only to keep the ping/pong deadline alive.
	}
}

func (s *Streamer) unregister(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
		s.logger.WithField("client", c.id).Info("telemetry: client disconnected")
	}
}

// Stats reports current client count and lifetime message/connection
// counters.
func (s *Streamer) Stats() (clients int, sent, served uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients), s.messagesSent, s.clientsServed
}

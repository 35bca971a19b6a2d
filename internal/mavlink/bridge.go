package mavlink

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/windrose/skyforge/internal/aero"
	"github.com/windrose/skyforge/internal/rigidbody"
	"github.com/windrose/skyforge/internal/simloop"
)

const (
	mavAutopilotGeneric = 8 // MAV_AUTOPILOT_GENERIC
	mavTypeFixedWing    = 1 // MAV_TYPE_FIXED_WING
	mavStateActive      = 4 // MAV_STATE_ACTIVE
	mavModeFlagArmed    = 0x80
)

// Bridge exposes the simulation over MAVLink v2 on a connected UDP
// socket: it sends HEARTBEAT, ATTITUDE, and GLOBAL_POSITION_INT frames
// describing the aircraft's current state, and decodes inbound
// MANUAL_CONTROL frames into Controls for the simulation loop to sample.
type Bridge struct {
	proto *protocol

	systemID, componentID uint8
	logger                *logrus.Logger

	controls atomic.Pointer[aero.Controls]
}

// Dial opens a connected UDP socket to a ground station or
// autopilot-in-the-loop peer at addr ("host:port") and returns a Bridge
// ready to publish state and receive manual control input.
func Dial(addr string, systemID, componentID uint8) (*Bridge, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("mavlink: dial %q: %w", addr, err)
	}
	b := &Bridge{
		proto:       newProtocol(conn, systemID, componentID),
		systemID:    systemID,
		componentID: componentID,
		logger:      logrus.New(),
	}
	zero := aero.Controls{}
	b.controls.Store(&zero)
	return b, nil
}

// Run reads inbound frames until ctx is cancelled. Decode failures are
// logged and skipped; the connection otherwise stays open.
func (b *Bridge) Run(ctx context.Context) error {
	buf := make([]byte, 512)
	errCh := make(chan error, 1)
	frameCh := make(chan []byte, 8)

	go func() {
		for {
			n, err := b.proto.conn.Read(buf)
			if err != nil {
				errCh <- err
				return
			}
			raw := append([]byte(nil), buf[:n]...)
			select {
			case frameCh <- raw:
			default:
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return b.proto.conn.Close()
		case err := <-errCh:
			return err
		case raw := <-frameCh:
			b.handleIncoming(raw)
		}
	}
}

func (b *Bridge) handleIncoming(raw []byte) {
	f, err := parse(raw)
	if err != nil {
		b.logger.WithError(err).Debug("mavlink: dropping unparsable frame")
		return
	}
	if f.messageID != msgIDManualControl {
		return
	}
	controls, err := decodeManualControl(f.payload)
	if err != nil {
		b.logger.WithError(err).Warn("mavlink: malformed MANUAL_CONTROL frame, ignoring")
		return
	}
	b.controls.Store(&controls)
}

// Sample implements simloop.InputSampler, returning the most recently
// decoded MANUAL_CONTROL frame, clamped to its defined ranges.
func (b *Bridge) Sample() aero.Controls {
	return (*b.controls.Load()).Clamp()
}

// PublishState encodes the aircraft's current state as HEARTBEAT,
// ATTITUDE, and GLOBAL_POSITION_INT frames and writes them to the peer.
func (b *Bridge) PublishState(tickMs uint32, s *rigidbody.State, t simloop.TelemetrySnapshot, armed bool) error {
	if err := b.sendHeartbeat(armed); err != nil {
		return err
	}
	if err := b.sendAttitude(tickMs, t, s); err != nil {
		return err
	}
	return b.sendGlobalPositionInt(tickMs, s, t)
}

func (b *Bridge) sendHeartbeat(armed bool) error {
	payload := make([]byte, 9)
	// custom_mode uint32 left zero
	payload[4] = mavTypeFixedWing
	payload[5] = mavAutopilotGeneric
	baseMode := uint8(0)
	if armed {
		baseMode |= mavModeFlagArmed
	}
	payload[6] = baseMode
	payload[7] = mavStateActive
	payload[8] = 3 // mavlink_version
	return b.proto.send(msgIDHeartbeat, payload)
}

func (b *Bridge) sendAttitude(tickMs uint32, t simloop.TelemetrySnapshot, s *rigidbody.State) error {
	payload := make([]byte, 28)
	putUint32(payload, 0, tickMs)
	putFloat32(payload, 4, degToRad(t.BankDeg))
	putFloat32(payload, 8, degToRad(t.PitchDeg))
	putFloat32(payload, 12, degToRad(t.HeadingDeg))
	putFloat32(payload, 16, s.AngularVelocity.X)
	putFloat32(payload, 20, s.AngularVelocity.Y)
	putFloat32(payload, 24, s.AngularVelocity.Z)
	return b.proto.send(msgIDAttitude, payload)
}

func (b *Bridge) sendGlobalPositionInt(tickMs uint32, s *rigidbody.State, t simloop.TelemetrySnapshot) error {
	payload := make([]byte, 28)
	putUint32(payload, 0, tickMs)
	putInt32(payload, 4, int32(t.LatitudeDeg*1e7))
	putInt32(payload, 8, int32(t.LongitudeDeg*1e7))
	putInt32(payload, 12, int32(s.Geodetic.Alt*1000))
	putInt32(payload, 16, int32(s.AltitudeAGL*1000))
	putInt16(payload, 20, int16(s.VelocityENU.Y*100))
	putInt16(payload, 22, int16(s.VelocityENU.X*100))
	putInt16(payload, 24, int16(-s.VelocityENU.Z*100))
	heading := t.HeadingDeg
	if heading < 0 {
		heading += 360
	}
	putUint16(payload, 26, uint16(heading*100))
	return b.proto.send(msgIDGlobalPositionInt, payload)
}

// decodeManualControl reads an 11-byte MANUAL_CONTROL payload: x, y, z, r
// (int16, [-1000,1000]) mapping to elevator, aileron, throttle, rudder,
// followed by a buttons bitmask and target system.
func decodeManualControl(payload []byte) (aero.Controls, error) {
	if len(payload) < 11 {
		return aero.Controls{}, fmt.Errorf("mavlink: MANUAL_CONTROL payload too short: %d bytes", len(payload))
	}
	x := getInt16(payload, 0)
	y := getInt16(payload, 2)
	z := getInt16(payload, 4)
	r := getInt16(payload, 6)

	return aero.Controls{
		Elevator: float64(x) / 1000,
		Aileron:  float64(y) / 1000,
		Throttle: (float64(z) + 1000) / 2000,
		Rudder:   float64(r) / 1000,
	}.Clamp(), nil
}


// Package mavlink encodes the simulated aircraft's state as MAVLink v2
// frames for an external ground station or autopilot-in-the-loop
// consumer, and decodes manual control input back into the simulation's
// Controls struct. There is no physical flight controller to talk to, so
// frames travel over a connected UDP socket instead of a serial port.
package mavlink

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"net"
	"sync"
)

// Message IDs used by this bridge. MAVLink defines many more; only the
// ones this simulator encodes or decodes are listed.
const (
	msgIDHeartbeat         = 0
	msgIDAttitude          = 30
	msgIDGlobalPositionInt = 33
	msgIDManualControl     = 69
)

const mavlinkV2Magic = 0xFD

// frame is one parsed or about-to-be-serialized MAVLink v2 message.
type frame struct {
	sequence    uint8
	systemID    uint8
	componentID uint8
	messageID   uint32
	payload     []byte
}

// protocol serializes outgoing frames and parses incoming ones over a
// single net.Conn. Safe for concurrent use by one writer and one reader.
type protocol struct {
	conn     net.Conn
	mu       sync.Mutex
	sequence uint8
	systemID uint8
	compID   uint8
}

func newProtocol(conn net.Conn, systemID, compID uint8) *protocol {
	return &protocol{conn: conn, systemID: systemID, compID: compID}
}

func (p *protocol) send(messageID uint32, payload []byte) error {
	p.mu.Lock()
	seq := p.sequence
	p.sequence++
	p.mu.Unlock()

	f := frame{
		sequence:    seq,
		systemID:    p.systemID,
		componentID: p.compID,
		messageID:   messageID,
		payload:     payload,
	}
	_, err := p.conn.Write(serialize(f))
	return err
}

func serialize(f frame) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(mavlinkV2Magic)
	buf.WriteByte(uint8(len(f.payload)))
	buf.WriteByte(0) // incompat flags
	buf.WriteByte(0) // compat flags
	buf.WriteByte(f.sequence)
	buf.WriteByte(f.systemID)
	buf.WriteByte(f.componentID)

	idBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(idBytes, f.messageID)
	buf.Write(idBytes[:3])
	buf.Write(f.payload)

	crc := checksum(f)
	buf.WriteByte(uint8(crc))
	buf.WriteByte(uint8(crc >> 8))
	return buf.Bytes()
}

// parse reads one frame out of a raw datagram. MAVLink v2 frames never
// span multiple UDP packets in this bridge, so no reassembly is needed.
func parse(raw []byte) (frame, error) {
	if len(raw) < 10 {
		return frame{}, fmt.Errorf("mavlink: frame too short: %d bytes", len(raw))
	}
	if raw[0] != mavlinkV2Magic {
		return frame{}, fmt.Errorf("mavlink: bad magic byte 0x%02x", raw[0])
	}
	length := int(raw[1])
	if len(raw) < 10+length {
		return frame{}, fmt.Errorf("mavlink: truncated frame, want %d payload bytes, have %d", length, len(raw)-10)
	}
	f := frame{
		sequence:    raw[4],
		systemID:    raw[5],
		componentID: raw[6],
		messageID:   uint32(raw[7]) | uint32(raw[8])<<8 | uint32(raw[9])<<16,
		payload:     append([]byte(nil), raw[10:10+length]...),
	}
	return f, nil
}

func checksum(f frame) uint16 {
	crc := crcAccumulate(0xFFFF, []byte{uint8(len(f.payload)), 0, 0, f.sequence, f.systemID, f.componentID})
	idBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(idBytes, f.messageID)
	crc = crcAccumulate(crc, idBytes[:3])
	crc = crcAccumulate(crc, f.payload)
	crc = crcAccumulate(crc, []byte{crcExtra(f.messageID)})
	return crc
}

func crcAccumulate(crc uint16, data []byte) uint16 {
	for _, b := range data {
		tmp := uint8(crc) ^ b
		crc = (crc >> 8) ^ crcTable[tmp]
	}
	return crc
}

func crcExtra(messageID uint32) uint8 {
	switch messageID {
	case msgIDHeartbeat:
		return 50
	case msgIDAttitude:
		return 39
	case msgIDGlobalPositionInt:
		return 104
	case msgIDManualControl:
		return 243
	default:
		return 0
	}
}

func putFloat32(buf []byte, offset int, v float64) {
	binary.LittleEndian.PutUint32(buf[offset:offset+4], math.Float32bits(float32(v)))
}

func putUint32(buf []byte, offset int, v uint32) {
	binary.LittleEndian.PutUint32(buf[offset:offset+4], v)
}

func putInt32(buf []byte, offset int, v int32) {
	binary.LittleEndian.PutUint32(buf[offset:offset+4], uint32(v))
}

func putUint16(buf []byte, offset int, v uint16) {
	binary.LittleEndian.PutUint16(buf[offset:offset+2], v)
}

func putInt16(buf []byte, offset int, v int16) {
	binary.LittleEndian.PutUint16(buf[offset:offset+2], uint16(v))
}

func getInt16(buf []byte, offset int) int16 {
	return int16(binary.LittleEndian.Uint16(buf[offset : offset+2]))
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180 }

var crcTable = [256]uint16{
	0x0000, 0x1021, 0x2042, 0x3063, 0x4084, 0x50a5, 0x60c6, 0x70e7,
	0x8108, 0x9129, 0xa14a, 0xb16b, 0xc18c, 0xd1ad, 0xe1ce, 0xf1ef,
	0x1231, 0x0210, 0x3273, 0x2252, 0x52b5, 0x4294, 0x72f7, 0x62d6,
	0x9339, 0x8318, 0xb37b, 0xa35a, 0xd3bd, 0xc39c, 0xf3ff, 0xe3de,
	0x2462, 0x3443, 0x0420, 0x1401, 0x64e6, 0x74c7, 0x44a4, 0x5485,
	0xa56a, 0xb54b, 0x8528, 0x9509, 0xe5ee, 0xf5cf, 0xc5ac, 0xd58d,
	0x3653, 0x2672, 0x1611, 0x0630, 0x76d7, 0x66f6, 0x5695, 0x46b4,
	0xb75b, 0xa77a, 0x9719, 0x8738, 0xf7df, 0xe7fe, 0xd79d, 0xc7bc,
	0x48c4, 0x58e5, 0x6886, 0x78a7, 0x0840, 0x1861, 0x2802, 0x3823,
	0xc9cc, 0xd9ed, 0xe98e, 0xf9af, 0x8948, 0x9969, 0xa90a, 0xb92b,
	0x5af5, 0x4ad4, 0x7ab7, 0x6a96, 0x1a71, 0x0a50, 0x3a33, 0x2a12,
	0xdbfd, 0xcbdc, 0xfbbf, 0xeb9e, 0x9b79, 0x8b58, 0xbb3b, 0xab1a,
	0x6ca6, 0x7c87, 0x4ce4, 0x5cc5, 0x2c22, 0x3c03, 0x0c60, 0x1c41,
	0xedae, 0xfd8f, 0xcdec, 0xddcd, 0xad2a, 0xbd0b, 0x8d68, 0x9d49,
	0x7e97, 0x6eb6, 0x5ed5, 0x4ef4, 0x3e13, 0x2e32, 0x1e51, 0x0e70,
	0xff9f, 0xefbe, 0xdfdd, 0xcffc, 0xbf1b, 0xaf3a, 0x9f59, 0x8f78,
	0x9188, 0x81a9, 0xb1ca, 0xa1eb, 0xd10c, 0xc12d, 0xf14e, 0xe16f,
	0x1080, 0x00a1, 0x30c2, 0x20e3, 0x5004, 0x4025, 0x7046, 0x6067,
	0x83b9, 0x9398, 0xa3fb, 0xb3da, 0xc33d, 0xd31c, 0xe37f, 0xf35e,
	0x02b1, 0x1290, 0x22f3, 0x32d2, 0x4235, 0x5214, 0x6277, 0x7256,
	0xb5ea, 0xa5cb, 0x95a8, 0x8589, 0xf56e, 0xe54f, 0xd52c, 0xc50d,
	0x34e2, 0x24c3, 0x14a0, 0x0481, 0x7466, 0x6447, 0x5424, 0x4405,
	0xa7db, 0xb7fa, 0x8799, 0x97b8, 0xe75f, 0xf77e, 0xc71d, 0xd73c,
	0x26d3, 0x36f2, 0x0691, 0x16b0, 0x6657, 0x7676, 0x4615, 0x5634,
	0xd94c, 0xc96d, 0xf90e, 0xe92f, 0x99c8, 0x89e9, 0xb98a, 0xa9ab,
	0x5844, 0x4865, 0x7806, 0x6827, 0x18c0, 0x08e1, 0x3882, 0x28a3,
	0xcb7d, 0xdb5c, 0xeb3f, 0xfb1e, 0x8bf9, 0x9bd8, 0xabbb, 0xbb9a,
	0x4a75, 0x5a54, 0x6a37, 0x7a16, 0x0af1, 0x1ad0, 0x2ab3, 0x3a92,
	0xfd2e, 0xed0f, 0xdd6c, 0xcd4d, 0xbdaa, 0xad8b, 0x9de8, 0x8dc9,
	0x7c26, 0x6c07, 0x5c64, 0x4c45, 0x3ca2, 0x2c83, 0x1ce0, 0x0cc1,
	0xef1f, 0xff3e, 0xcf5d, 0xdf7c, 0xaf9b, 0xbfba, 0x8fd9, 0x9ff8,
	0x6e17, 0x7e36, 0x4e55, 0x5e74, 0x2e93, 0x3eb2, 0x0ed1, 0x1ef0,
}

package mavlink

import "testing"

func TestSerializeParseRoundTrip(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	f := frame{sequence: 7, systemID: 1, componentID: 1, messageID: msgIDHeartbeat, payload: payload}

	raw := serialize(f)
	got, err := parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.sequence != f.sequence || got.systemID != f.systemID || got.componentID != f.componentID {
		t.Errorf("header mismatch: got %+v, want %+v", got, f)
	}
	if got.messageID != f.messageID {
		t.Errorf("messageID = %d, want %d", got.messageID, f.messageID)
	}
	if string(got.payload) != string(payload) {
		t.Errorf("payload = %v, want %v", got.payload, payload)
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	raw := serialize(frame{messageID: msgIDHeartbeat, payload: []byte{1}})
	raw[0] = 0x00
	if _, err := parse(raw); err == nil {
		t.Error("expected error for bad magic byte")
	}
}

func TestParseRejectsTruncatedFrame(t *testing.T) {
	raw := serialize(frame{messageID: msgIDHeartbeat, payload: []byte{1, 2, 3, 4, 5}})
	if _, err := parse(raw[:8]); err == nil {
		t.Error("expected error for truncated frame")
	}
}

func TestDecodeManualControlMapsRanges(t *testing.T) {
	payload := make([]byte, 11)
	putInt16(payload, 0, 500)  // x -> elevator
	putInt16(payload, 2, -250) // y -> aileron
	putInt16(payload, 4, 0)    // z -> throttle midpoint
	putInt16(payload, 6, 1000) // r -> rudder

	c, err := decodeManualControl(payload)
	if err != nil {
		t.Fatalf("decodeManualControl: %v", err)
	}
	if c.Elevator != 0.5 {
		t.Errorf("elevator = %v, want 0.5", c.Elevator)
	}
	if c.Aileron != -0.25 {
		t.Errorf("aileron = %v, want -0.25", c.Aileron)
	}
	if c.Throttle != 0.5 {
		t.Errorf("throttle = %v, want 0.5", c.Throttle)
	}
	if c.Rudder != 1 {
		t.Errorf("rudder = %v, want 1 (clamped)", c.Rudder)
	}
}

func TestDecodeManualControlRejectsShortPayload(t *testing.T) {
	if _, err := decodeManualControl([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for short payload")
	}
}

package board

import (
	"testing"
)

func TestEncodeFrameLayout(t *testing.T) {
	f, err := encodeFrame(CmdADCRead, []byte{0x03})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f) != 5 {
		t.Fatalf("frame length: got %d want 5", len(f))
	}
	if f[0] != frameSync {
		t.Fatalf("sync byte: got 0x%02x", f[0])
	}
	if f[1] != 1 {
		t.Fatalf("payload length: got %d want 1", f[1])
	}
	if f[2] != CmdADCRead || f[3] != 0x03 {
		t.Fatalf("command/payload: got % x", f[2:4])
	}
}

func TestFrameRoundTrip(t *testing.T) {
	payload := []byte{0x01, 0x02, 0xFF, 0x00}
	f, err := encodeFrame(CmdMPURangeSet, payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	code, got, err := parseFrame(f)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if code != CmdMPURangeSet {
		t.Fatalf("code: got 0x%02x want 0x%02x", code, CmdMPURangeSet)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload: got % x want % x", got, payload)
	}
}

func TestParseFrameTrailingGarbage(t *testing.T) {
	f, _ := encodeFrame(statusOK, []byte{0xAA})
	buf := append(f, 0xDE, 0xAD, 0xBE, 0xEF)
	code, payload, err := parseFrame(buf)
	if err != nil {
		t.Fatalf("parse with trailing bytes: %v", err)
	}
	if code != statusOK || len(payload) != 1 || payload[0] != 0xAA {
		t.Fatalf("got code=0x%02x payload=% x", code, payload)
	}
}

func TestParseFrameRejectsCorruption(t *testing.T) {
	f, _ := encodeFrame(CmdProbe, []byte{1, 2, 3})

	tests := []struct {
		name   string
		mangle func([]byte) []byte
	}{
		{"bad sync", func(b []byte) []byte { b[0] = 0x00; return b }},
		{"flipped payload bit", func(b []byte) []byte { b[3] ^= 0x80; return b }},
		{"bad crc", func(b []byte) []byte { b[len(b)-1] ^= 0xFF; return b }},
		{"truncated", func(b []byte) []byte { return b[:3] }},
		{"length beyond buffer", func(b []byte) []byte { b[1] = 200; return b }},
	}
	for _, tt := range tests {
		buf := make([]byte, len(f))
		copy(buf, f)
		if _, _, err := parseFrame(tt.mangle(buf)); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestEncodeFrameRejectsOversizedPayload(t *testing.T) {
	if _, err := encodeFrame(CmdLCDText, make([]byte, maxPayload+1)); err == nil {
		t.Fatal("expected error for oversized payload")
	}
}

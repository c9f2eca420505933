package board

import (
	"fmt"

	"github.com/sigurn/crc8"
)

// Wire protocol. Requests and responses share one frame layout:
//
//	[0] sync (0xA5)
//	[1] payload length
//	[2] command (request) or status (response)
//	[3..] payload
//	[last] CRC8/MAXIM over bytes 1..len(payload)+2
//
// A corrupt CRC or truncated frame is a transaction failure; the payload is
// never delivered partially.
const (
	frameSync     = 0xA5
	frameOverhead = 4
	maxPayload    = 250
	maxFrame      = maxPayload + frameOverhead
)

// Command bytes understood by the board firmware. Drivers pass these to
// Session.Transact; the payload layout per command is fixed by the firmware
// revision named in the Profile.
const (
	CmdProbe byte = 0x00

	CmdADCRead    byte = 0x01
	CmdADCReadAll byte = 0x02

	CmdIOModeGet byte = 0x10
	CmdIOModeSet byte = 0x11
	CmdIOGet     byte = 0x12
	CmdIOSet     byte = 0x13
	CmdIOSetAll  byte = 0x14
	CmdIOToggle  byte = 0x15

	CmdLCDOpen       byte = 0x20
	CmdLCDFillScreen byte = 0x21
	CmdLCDPixel      byte = 0x22
	CmdLCDLine       byte = 0x23
	CmdLCDFrame      byte = 0x24
	CmdLCDFillFrame  byte = 0x25
	CmdLCDRoundFrame byte = 0x26
	CmdLCDFillRound  byte = 0x27
	CmdLCDCircle     byte = 0x28
	CmdLCDFillCircle byte = 0x29
	CmdLCDArc        byte = 0x2A
	CmdLCDMesh       byte = 0x2B
	CmdLCDText       byte = 0x2C
	CmdLCDSetFont    byte = 0x2D
	CmdLCDForeColor  byte = 0x2E
	CmdLCDBackColor  byte = 0x2F
	CmdLCDRefresh    byte = 0x3A
	CmdLEDSet        byte = 0x3B

	CmdMPUSample   byte = 0x40
	CmdMPUAttitude byte = 0x41
	CmdMPURangeGet byte = 0x42
	CmdMPURangeSet byte = 0x43
)

// Response status bytes.
const (
	statusOK         byte = 0x00
	statusNotReady   byte = 0x01
	statusBadCommand byte = 0x02
	statusBadPayload byte = 0x03
)

var crcTable = crc8.MakeTable(crc8.CRC8_MAXIM)

// encodeFrame builds a wire frame. code is the command byte for requests or
// the status byte for responses.
func encodeFrame(code byte, payload []byte) ([]byte, error) {
	if len(payload) > maxPayload {
		return nil, fmt.Errorf("payload too large: %d bytes", len(payload))
	}
	f := make([]byte, 0, len(payload)+frameOverhead)
	f = append(f, frameSync, byte(len(payload)), code)
	f = append(f, payload...)
	f = append(f, crc8.Checksum(f[1:], crcTable))
	return f, nil
}

// parseFrame decodes a frame from the head of buf, which may carry trailing
// garbage (fixed-size bus reads). It returns the command/status byte and the
// payload.
func parseFrame(buf []byte) (byte, []byte, error) {
	if len(buf) < frameOverhead {
		return 0, nil, fmt.Errorf("frame truncated: %d bytes", len(buf))
	}
	if buf[0] != frameSync {
		return 0, nil, fmt.Errorf("bad sync byte 0x%02x", buf[0])
	}
	n := int(buf[1])
	if len(buf) < n+frameOverhead {
		return 0, nil, fmt.Errorf("frame truncated: want %d bytes, have %d", n+frameOverhead, len(buf))
	}
	sum := crc8.Checksum(buf[1:n+3], crcTable)
	if sum != buf[n+3] {
		return 0, nil, fmt.Errorf("crc mismatch: computed 0x%02x, frame carries 0x%02x", sum, buf[n+3])
	}
	payload := make([]byte, n)
	copy(payload, buf[3:n+3])
	return buf[2], payload, nil
}

package board

import (
	"encoding/binary"
	"fmt"
	"sync"
)

// SimBoard is an in-process board that speaks the same wire frames as the
// real hardware. It backs every device identifier starting with "sim" and
// is what the tests and the daemon's simulation mode run against. Test
// code reaches the board behind an open session with Sim and pokes sensor
// values through the setters.
type SimBoard struct {
	mu        sync.Mutex
	profile   Profile
	claims    int
	exclusive bool

	adc []uint16

	ioModes byte // bit set = output
	ioOut   byte // levels driven on output lines
	ioIn    byte // levels applied externally to input lines

	leds    []uint32
	drawOps int
	flushes int

	accelG      int
	gyroDPS     int
	accelRaw    [3]int16
	gyroRaw     [3]int16
	attitude    [3]int16 // centidegrees
	motionReady bool
}

var (
	simMu     sync.Mutex
	simBoards = map[string]*SimBoard{}
)

// Sim returns the simulated board behind the given device identifier,
// creating it with the default profile if it does not exist yet. Boards
// persist across sessions so state can be staged before Open and inspected
// after Close.
func Sim(device string) *SimBoard {
	return simFor(device, DefaultProfile())
}

func simFor(device string, p Profile) *SimBoard {
	simMu.Lock()
	defer simMu.Unlock()
	b, ok := simBoards[device]
	if !ok {
		b = newSimBoard(p)
		simBoards[device] = b
	}
	return b
}

func newSimBoard(p Profile) *SimBoard {
	b := &SimBoard{
		profile:     p,
		adc:         make([]uint16, p.ADCChannels),
		leds:        make([]uint32, p.LEDs),
		accelG:      8,
		gyroDPS:     2000,
		motionReady: true,
	}
	for i := range b.adc {
		b.adc[i] = uint16(p.ADCMax()+1) / 2
	}
	// 1g on Z at the default +/-8g range
	b.accelRaw = [3]int16{0, 0, 4096}
	return b
}

type simTransport struct {
	board *SimBoard
}

// openSim claims the simulated board, creating it with the session's
// profile on first use. An exclusive claim fails when any session holds the
// board; a shared claim fails only against an exclusive holder.
func openSim(cfg Config) (transport, error) {
	p := DefaultProfile()
	if cfg.Profile != nil {
		p = *cfg.Profile
	}
	b := simFor(cfg.Device, p)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.claims > 0 && (cfg.Exclusive || b.exclusive) {
		return nil, fmt.Errorf("device %q already claimed", cfg.Device)
	}
	b.claims++
	b.exclusive = b.exclusive || cfg.Exclusive
	return &simTransport{board: b}, nil
}

func (t *simTransport) transact(cmd byte, payload []byte) (byte, []byte, error) {
	req, err := encodeFrame(cmd, payload)
	if err != nil {
		return 0, nil, err
	}
	return parseFrame(t.board.handleFrame(req))
}

func (t *simTransport) Close() error {
	t.board.mu.Lock()
	defer t.board.mu.Unlock()
	if t.board.claims > 0 {
		t.board.claims--
	}
	if t.board.claims == 0 {
		t.board.exclusive = false
	}
	return nil
}

// handleFrame decodes one request frame, executes it and returns the
// encoded response frame, exactly as the firmware would.
func (b *SimBoard) handleFrame(req []byte) []byte {
	cmd, payload, err := parseFrame(req)
	if err != nil {
		resp, _ := encodeFrame(statusBadPayload, nil)
		return resp
	}
	b.mu.Lock()
	status, out := b.exec(cmd, payload)
	b.mu.Unlock()
	resp, err := encodeFrame(status, out)
	if err != nil {
		resp, _ = encodeFrame(statusBadPayload, nil)
	}
	return resp
}

func (b *SimBoard) exec(cmd byte, payload []byte) (byte, []byte) {
	switch cmd {
	case CmdProbe:
		return statusOK, []byte{'U', 'P', 2}

	case CmdADCRead:
		if len(payload) != 1 || int(payload[0]) >= len(b.adc) {
			return statusBadPayload, nil
		}
		out := make([]byte, 2)
		binary.BigEndian.PutUint16(out, b.adc[payload[0]])
		return statusOK, out

	case CmdADCReadAll:
		out := make([]byte, 2*len(b.adc))
		for i, v := range b.adc {
			binary.BigEndian.PutUint16(out[2*i:], v)
		}
		return statusOK, out

	case CmdIOModeGet:
		return statusOK, []byte{b.ioModes}

	case CmdIOModeSet:
		if len(payload) != 2 || int(payload[0]) >= b.profile.IOLines {
			return statusBadPayload, nil
		}
		bit := byte(1) << payload[0]
		if payload[1] != 0 {
			b.ioModes |= bit
		} else {
			b.ioModes &^= bit
		}
		return statusOK, nil

	case CmdIOGet:
		levels := (b.ioOut & b.ioModes) | (b.ioIn &^ b.ioModes)
		return statusOK, []byte{levels}

	case CmdIOSet:
		if len(payload) != 2 || int(payload[0]) >= b.profile.IOLines {
			return statusBadPayload, nil
		}
		bit := byte(1) << payload[0]
		if b.ioModes&bit == 0 {
			return statusBadPayload, nil
		}
		if payload[1] != 0 {
			b.ioOut |= bit
		} else {
			b.ioOut &^= bit
		}
		return statusOK, nil

	case CmdIOSetAll:
		if len(payload) != 1 {
			return statusBadPayload, nil
		}
		b.ioOut = payload[0] & b.ioModes
		return statusOK, nil

	case CmdIOToggle:
		if len(payload) != 1 || int(payload[0]) >= b.profile.IOLines {
			return statusBadPayload, nil
		}
		bit := byte(1) << payload[0]
		if b.ioModes&bit == 0 {
			return statusBadPayload, nil
		}
		b.ioOut ^= bit
		return statusOK, nil

	case CmdLCDOpen, CmdLCDFillScreen, CmdLCDPixel, CmdLCDLine, CmdLCDFrame,
		CmdLCDFillFrame, CmdLCDRoundFrame, CmdLCDFillRound, CmdLCDCircle,
		CmdLCDFillCircle, CmdLCDArc, CmdLCDMesh, CmdLCDText, CmdLCDSetFont,
		CmdLCDForeColor, CmdLCDBackColor:
		b.drawOps++
		return statusOK, nil

	case CmdLCDRefresh:
		b.flushes++
		return statusOK, nil

	case CmdLEDSet:
		if len(payload) != 4 || int(payload[0]) >= len(b.leds) {
			return statusBadPayload, nil
		}
		b.leds[payload[0]] = uint32(payload[1])<<16 | uint32(payload[2])<<8 | uint32(payload[3])
		return statusOK, nil

	case CmdMPUSample:
		if !b.motionReady {
			return statusNotReady, nil
		}
		out := make([]byte, 12)
		for i := 0; i < 3; i++ {
			binary.BigEndian.PutUint16(out[2*i:], uint16(b.accelRaw[i]))
			binary.BigEndian.PutUint16(out[6+2*i:], uint16(b.gyroRaw[i]))
		}
		return statusOK, out

	case CmdMPUAttitude:
		if !b.motionReady {
			return statusNotReady, nil
		}
		out := make([]byte, 6)
		for i := 0; i < 3; i++ {
			binary.BigEndian.PutUint16(out[2*i:], uint16(b.attitude[i]))
		}
		return statusOK, out

	case CmdMPURangeGet:
		out := make([]byte, 3)
		out[0] = byte(b.accelG)
		binary.BigEndian.PutUint16(out[1:], uint16(b.gyroDPS))
		return statusOK, out

	case CmdMPURangeSet:
		if len(payload) != 3 {
			return statusBadPayload, nil
		}
		accel := int(payload[0])
		gyro := int(binary.BigEndian.Uint16(payload[1:]))
		if !b.profile.ValidAccelRange(accel) || !b.profile.ValidGyroRange(gyro) {
			return statusBadPayload, nil
		}
		b.accelG, b.gyroDPS = accel, gyro
		return statusOK, nil
	}
	return statusBadCommand, nil
}

// SetADC stages a raw sample on an ADC channel.
func (b *SimBoard) SetADC(channel int, raw uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if channel >= 0 && channel < len(b.adc) {
		b.adc[channel] = raw
	}
}

// SetInput applies an external level to a digital line. The level is only
// visible on lines configured as inputs.
func (b *SimBoard) SetInput(line int, level bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bit := byte(1) << line
	if level {
		b.ioIn |= bit
	} else {
		b.ioIn &^= bit
	}
}

// OutputLevels returns the levels currently driven on output lines.
func (b *SimBoard) OutputLevels() byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ioOut
}

// SetMotion stages raw accelerometer and gyroscope registers.
func (b *SimBoard) SetMotion(accel, gyro [3]int16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accelRaw, b.gyroRaw = accel, gyro
}

// SetAttitude stages DMP attitude angles in degrees.
func (b *SimBoard) SetAttitude(pitch, roll, yaw float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attitude = [3]int16{int16(pitch * 100), int16(roll * 100), int16(yaw * 100)}
}

// SetMotionReady controls whether the MPU reports fresh data.
func (b *SimBoard) SetMotionReady(ready bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.motionReady = ready
}

// LED returns the last color written to an LED.
func (b *SimBoard) LED(index int) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.leds) {
		return 0
	}
	return b.leds[index]
}

// DrawOps returns the number of drawing commands accepted so far.
func (b *SimBoard) DrawOps() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drawOps
}

// Flushes returns the number of refresh commands accepted so far.
func (b *SimBoard) Flushes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flushes
}

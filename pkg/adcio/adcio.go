// Package adcio samples the board's analog channels and drives its digital
// IO lines. Every operation is a single synchronous transaction; there are
// no implicit retries, a failed exchange surfaces immediately.
package adcio

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/uptechstar/uptech-go/pkg/board"
)

// Direction of a digital IO line.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// Reading is one sampled ADC value.
type Reading struct {
	Channel   int       `json:"channel"`
	Raw       int       `json:"raw"`
	Volts     float64   `json:"volts"`
	Timestamp time.Time `json:"timestamp"`
}

// Driver provides ADC sampling and digital IO against one session. It
// tracks line directions locally so misdirected writes are rejected
// without a bus transaction.
type Driver struct {
	s       *board.Session
	outMask byte
}

// New returns a driver for the session, primed with the line directions the
// board currently reports. Lines configured as outputs by an earlier
// session stay writable without reconfiguring them.
func New(s *board.Session) (*Driver, error) {
	d := &Driver{s: s}
	dirs, err := d.LineDirections()
	if err != nil {
		return nil, fmt.Errorf("read line directions: %w", err)
	}
	d.outMask = dirs
	return d, nil
}

func (d *Driver) scale(raw uint16) float64 {
	p := d.s.Profile()
	return float64(raw) / float64(p.ADCMax()+1) * p.ADCVRef
}

// ReadChannel samples one ADC channel. The returned reading always carries
// the requested channel index.
func (d *Driver) ReadChannel(channel int) (Reading, error) {
	if channel < 0 || channel >= d.s.Profile().ADCChannels {
		return Reading{}, fmt.Errorf("%w: channel %d of %d", board.ErrInvalidChannel, channel, d.s.Profile().ADCChannels)
	}
	resp, err := d.s.Transact(board.CmdADCRead, []byte{byte(channel)}, 2)
	if err != nil {
		return Reading{}, err
	}
	raw := binary.BigEndian.Uint16(resp)
	return Reading{
		Channel:   channel,
		Raw:       int(raw),
		Volts:     d.scale(raw),
		Timestamp: time.Now(),
	}, nil
}

// ReadAll samples every channel in one burst command, so the set is atomic
// on the wire. Readings are ordered by channel index.
func (d *Driver) ReadAll() ([]Reading, error) {
	n := d.s.Profile().ADCChannels
	resp, err := d.s.Transact(board.CmdADCReadAll, nil, 2*n)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]Reading, n)
	for i := 0; i < n; i++ {
		raw := binary.BigEndian.Uint16(resp[2*i:])
		out[i] = Reading{Channel: i, Raw: int(raw), Volts: d.scale(raw), Timestamp: now}
	}
	return out, nil
}

func (d *Driver) checkLine(line int) error {
	if line < 0 || line >= d.s.Profile().IOLines {
		return fmt.Errorf("%w: line %d of %d", board.ErrInvalidLine, line, d.s.Profile().IOLines)
	}
	return nil
}

// ConfigureLine sets a line's direction.
func (d *Driver) ConfigureLine(line int, dir Direction) error {
	if err := d.checkLine(line); err != nil {
		return err
	}
	mode := byte(0)
	if dir == Output {
		mode = 1
	}
	if _, err := d.s.Transact(board.CmdIOModeSet, []byte{byte(line), mode}, 0); err != nil {
		return err
	}
	bit := byte(1) << line
	if dir == Output {
		d.outMask |= bit
	} else {
		d.outMask &^= bit
	}
	return nil
}

// WriteLine drives an output line. Writing a line configured as input is
// rejected before any transaction and leaves its level unchanged.
func (d *Driver) WriteLine(line int, level bool) error {
	if err := d.checkLine(line); err != nil {
		return err
	}
	if d.outMask&(byte(1)<<line) == 0 {
		return fmt.Errorf("%w: line %d", board.ErrWrongDirection, line)
	}
	lv := byte(0)
	if level {
		lv = 1
	}
	_, err := d.s.Transact(board.CmdIOSet, []byte{byte(line), lv}, 0)
	return err
}

// ReadLine returns a line's current level: the driven level for outputs,
// the externally applied level for inputs.
func (d *Driver) ReadLine(line int) (bool, error) {
	if err := d.checkLine(line); err != nil {
		return false, err
	}
	levels, err := d.ReadLines()
	if err != nil {
		return false, err
	}
	return levels&(byte(1)<<line) != 0, nil
}

// ReadLines returns all line levels as a bitmask, bit N for line N.
func (d *Driver) ReadLines() (byte, error) {
	resp, err := d.s.Transact(board.CmdIOGet, nil, 1)
	if err != nil {
		return 0, err
	}
	return resp[0], nil
}

// WriteLines drives all output lines at once from a bitmask. Bits for
// lines configured as inputs are ignored by the board.
func (d *Driver) WriteLines(levels byte) error {
	_, err := d.s.Transact(board.CmdIOSetAll, []byte{levels}, 0)
	return err
}

// ToggleLine flips the level of an output line.
func (d *Driver) ToggleLine(line int) error {
	if err := d.checkLine(line); err != nil {
		return err
	}
	if d.outMask&(byte(1)<<line) == 0 {
		return fmt.Errorf("%w: line %d", board.ErrWrongDirection, line)
	}
	_, err := d.s.Transact(board.CmdIOToggle, []byte{byte(line)}, 0)
	return err
}

// LineDirections asks the board for the configured direction of every
// line, bit N set meaning line N is an output.
func (d *Driver) LineDirections() (byte, error) {
	resp, err := d.s.Transact(board.CmdIOModeGet, nil, 1)
	if err != nil {
		return 0, err
	}
	return resp[0], nil
}

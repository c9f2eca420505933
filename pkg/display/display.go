// Package display encodes drawing primitives and LED state into board
// commands. The driver does not rasterize anything host-side: geometry and
// colors are validated against the panel profile, encoded and forwarded in
// submission order. The panel double-buffers, so drawings become visible
// at the next Flush.
package display

import (
	"fmt"

	"github.com/uptechstar/uptech-go/pkg/board"
)

// Orientation of the panel.
type Orientation byte

const (
	Vertical   Orientation = 1
	Horizontal Orientation = 2
)

// Color is a 24-bit RGB value, 8 bits per component.
type Color uint32

// RGB packs components into a Color.
func RGB(r, g, b uint8) Color {
	return Color(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// Named colors matching the board firmware palette.
const (
	White   Color = 0xFFFFFF
	Gray    Color = 0x808080
	Black   Color = 0x000000
	Red     Color = 0xFF0000
	Green   Color = 0x00FF00
	Blue    Color = 0x0000FF
	Yellow  Color = 0xFFFF00
	Magenta Color = 0xFF00FF
	Cyan    Color = 0x00FFFF
	Orange  Color = 0x808000
	Purple  Color = 0x800080
	DarkRed Color = 0x8B0000
)

// Font selects one of the firmware's fixed fonts.
type Font byte

const (
	Font4x6 Font = iota
	Font5x8
	Font5x12
	Font6x8
	Font6x10
	Font7x12
	Font8x8
	Font8x12
	Font8x14
	Font10x16
	Font12x16
	Font12x20
	Font16x26
	Font22x36
	Font24x40
)

var fontMetrics = [...][2]int{
	{4, 6}, {5, 8}, {5, 12}, {6, 8}, {6, 10}, {7, 12}, {8, 8}, {8, 12},
	{8, 14}, {10, 16}, {12, 16}, {12, 20}, {16, 26}, {22, 36}, {24, 40},
}

// Width returns the column width of the font in pixels.
func (f Font) Width() int { return fontMetrics[f][0] }

// Height returns the row height of the font in pixels.
func (f Font) Height() int { return fontMetrics[f][1] }

// Shape kinds for Command.
type Kind int

const (
	FillScreen Kind = iota
	Pixel
	Line
	Frame
	FilledFrame
	RoundFrame
	FilledRoundFrame
	Circle
	FilledCircle
	Arc
	Mesh
	Text
)

// Command is one discriminated display operation: a shape, a text
// placement or an LED write. Zero-value fields that a kind does not use
// are ignored.
type Command struct {
	Kind Kind

	// Geometry. Shapes use X1,Y1 as origin or center; frame-like shapes
	// also use X2,Y2; circles and arcs use R, arcs additionally Start.
	X1, Y1, X2, Y2 int
	R, Start       int

	// Text payload for Kind == Text.
	Text string

	Color Color
}

// Driver encodes display commands for one session.
type Driver struct {
	s    *board.Session
	font Font
}

// New opens the panel in the given orientation and returns the driver.
func New(s *board.Session, o Orientation) (*Driver, error) {
	d := &Driver{s: s, font: Font12x20}
	if o != Vertical && o != Horizontal {
		return nil, fmt.Errorf("%w: orientation %d", board.ErrOutOfBounds, o)
	}
	if _, err := s.Transact(board.CmdLCDOpen, []byte{byte(o)}, 0); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Driver) checkColor(c Color) error {
	max := Color(1)<<d.s.Profile().ColorBits - 1
	if c > max {
		return fmt.Errorf("%w: 0x%06X exceeds %d-bit depth", board.ErrInvalidColor, uint32(c), d.s.Profile().ColorBits)
	}
	return nil
}

func (d *Driver) checkPoint(x, y int) error {
	p := d.s.Profile()
	if x < 0 || y < 0 || x >= p.PanelWidth || y >= p.PanelHeight {
		return fmt.Errorf("%w: point (%d,%d) on %dx%d panel", board.ErrOutOfBounds, x, y, p.PanelWidth, p.PanelHeight)
	}
	return nil
}

func colorBytes(c Color) []byte {
	return []byte{byte(c >> 16), byte(c >> 8), byte(c)}
}

// Submit validates a command locally and forwards it to the board. Commands
// are applied in submission order.
func (d *Driver) Submit(cmd Command) error {
	if err := d.checkColor(cmd.Color); err != nil {
		return err
	}
	enc, err := d.encode(cmd)
	if err != nil {
		return err
	}
	_, err = d.s.Transact(enc.cmd, enc.payload, 0)
	return err
}

type encoded struct {
	cmd     byte
	payload []byte
}

func (d *Driver) encode(cmd Command) (encoded, error) {
	cb := colorBytes(cmd.Color)
	p1 := []byte{byte(cmd.X1), byte(cmd.Y1)}
	p2 := []byte{byte(cmd.X2), byte(cmd.Y2)}

	switch cmd.Kind {
	case FillScreen:
		return encoded{board.CmdLCDFillScreen, cb}, nil

	case Pixel:
		if err := d.checkPoint(cmd.X1, cmd.Y1); err != nil {
			return encoded{}, err
		}
		return encoded{board.CmdLCDPixel, append(p1, cb...)}, nil

	case Line:
		if err := d.checkRect(cmd); err != nil {
			return encoded{}, err
		}
		return encoded{board.CmdLCDLine, append(append(p1, p2...), cb...)}, nil

	case Frame, FilledFrame, Mesh:
		if err := d.checkRect(cmd); err != nil {
			return encoded{}, err
		}
		op := board.CmdLCDFrame
		switch cmd.Kind {
		case FilledFrame:
			op = board.CmdLCDFillFrame
		case Mesh:
			op = board.CmdLCDMesh
		}
		return encoded{op, append(append(p1, p2...), cb...)}, nil

	case RoundFrame, FilledRoundFrame:
		if err := d.checkRect(cmd); err != nil {
			return encoded{}, err
		}
		if err := checkCornerRadius(cmd); err != nil {
			return encoded{}, err
		}
		op := board.CmdLCDRoundFrame
		if cmd.Kind == FilledRoundFrame {
			op = board.CmdLCDFillRound
		}
		pl := append(append(p1, p2...), byte(cmd.R))
		return encoded{op, append(pl, cb...)}, nil

	case Circle, FilledCircle:
		if err := d.checkCircle(cmd); err != nil {
			return encoded{}, err
		}
		op := board.CmdLCDCircle
		if cmd.Kind == FilledCircle {
			op = board.CmdLCDFillCircle
		}
		return encoded{op, append(append(p1, byte(cmd.R)), cb...)}, nil

	case Arc:
		if err := d.checkCircle(cmd); err != nil {
			return encoded{}, err
		}
		if cmd.Start < 0 || cmd.Start >= 360 {
			return encoded{}, fmt.Errorf("%w: arc start angle %d", board.ErrOutOfBounds, cmd.Start)
		}
		// start angle needs two bytes on the wire
		pl := append(p1, byte(cmd.R), byte(cmd.Start>>8), byte(cmd.Start))
		return encoded{board.CmdLCDArc, append(pl, cb...)}, nil

	case Text:
		if err := d.checkPoint(cmd.X1, cmd.Y1); err != nil {
			return encoded{}, err
		}
		if len(cmd.Text) > 200 {
			return encoded{}, fmt.Errorf("%w: text %d bytes", board.ErrOutOfBounds, len(cmd.Text))
		}
		pl := append(p1, byte(len(cmd.Text)))
		pl = append(pl, cmd.Text...)
		return encoded{board.CmdLCDText, append(pl, cb...)}, nil
	}
	return encoded{}, fmt.Errorf("%w: unknown command kind %d", board.ErrOutOfBounds, cmd.Kind)
}

func (d *Driver) checkRect(cmd Command) error {
	if err := d.checkPoint(cmd.X1, cmd.Y1); err != nil {
		return err
	}
	return d.checkPoint(cmd.X2, cmd.Y2)
}

// checkCornerRadius bounds a round frame's corner radius to the frame
// extent, so the byte encoding cannot truncate it.
func checkCornerRadius(cmd Command) error {
	w := cmd.X2 - cmd.X1
	if w < 0 {
		w = -w
	}
	h := cmd.Y2 - cmd.Y1
	if h < 0 {
		h = -h
	}
	if cmd.R < 0 || 2*cmd.R > w || 2*cmd.R > h {
		return fmt.Errorf("%w: corner radius %d on %dx%d frame", board.ErrOutOfBounds, cmd.R, w, h)
	}
	return nil
}

func (d *Driver) checkCircle(cmd Command) error {
	p := d.s.Profile()
	if err := d.checkPoint(cmd.X1, cmd.Y1); err != nil {
		return err
	}
	if cmd.R < 0 ||
		cmd.X1-cmd.R < 0 || cmd.X1+cmd.R >= p.PanelWidth ||
		cmd.Y1-cmd.R < 0 || cmd.Y1+cmd.R >= p.PanelHeight {
		return fmt.Errorf("%w: radius %d at (%d,%d)", board.ErrOutOfBounds, cmd.R, cmd.X1, cmd.Y1)
	}
	return nil
}

// SetFont selects the font used by subsequent Text commands.
func (d *Driver) SetFont(f Font) error {
	if int(f) >= len(fontMetrics) {
		return fmt.Errorf("%w: font %d", board.ErrOutOfBounds, f)
	}
	if _, err := d.s.Transact(board.CmdLCDSetFont, []byte{byte(f)}, 0); err != nil {
		return err
	}
	d.font = f
	return nil
}

// Font returns the currently selected font.
func (d *Driver) Font() Font {
	return d.font
}

// SetForeColor sets the foreground color used by shape and text commands
// that pass a zero color.
func (d *Driver) SetForeColor(c Color) error {
	if err := d.checkColor(c); err != nil {
		return err
	}
	_, err := d.s.Transact(board.CmdLCDForeColor, colorBytes(c), 0)
	return err
}

// SetBackColor sets the panel background color.
func (d *Driver) SetBackColor(c Color) error {
	if err := d.checkColor(c); err != nil {
		return err
	}
	_, err := d.s.Transact(board.CmdLCDBackColor, colorBytes(c), 0)
	return err
}

// Flush pushes the draw buffer to the panel. Commands submitted since the
// previous Flush become visible together.
func (d *Driver) Flush() error {
	_, err := d.s.Transact(board.CmdLCDRefresh, nil, 0)
	return err
}

// SetLED writes a color to one of the status LEDs.
func (d *Driver) SetLED(index int, c Color) error {
	if index < 0 || index >= d.s.Profile().LEDs {
		return fmt.Errorf("%w: led %d of %d", board.ErrOutOfBounds, index, d.s.Profile().LEDs)
	}
	if err := d.checkColor(c); err != nil {
		return err
	}
	pl := append([]byte{byte(index)}, colorBytes(c)...)
	_, err := d.s.Transact(board.CmdLEDSet, pl, 0)
	return err
}

// SetAllLEDs writes the same color to every status LED.
func (d *Driver) SetAllLEDs(c Color) error {
	for i := 0; i < d.s.Profile().LEDs; i++ {
		if err := d.SetLED(i, c); err != nil {
			return err
		}
	}
	return nil
}

// LEDsOff turns every status LED off.
func (d *Driver) LEDsOff() error {
	return d.SetAllLEDs(Black)
}

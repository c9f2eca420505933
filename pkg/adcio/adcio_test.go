package adcio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptechstar/uptech-go/pkg/board"
)

func openDriver(t *testing.T, device string) (*Driver, *board.SimBoard) {
	t.Helper()
	s, err := board.Open(board.Config{Device: device, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	d, err := New(s)
	require.NoError(t, err)
	return d, board.Sim(device)
}

func TestReadChannel(t *testing.T) {
	d, sim := openDriver(t, "sim-adc-read")
	sim.SetADC(0, 512)

	r, err := d.ReadChannel(0)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Channel)
	assert.Equal(t, 512, r.Raw)
	// 512 at 10 bits is half scale
	assert.InDelta(t, 3.3/2, r.Volts, 1e-9)
	assert.False(t, r.Timestamp.IsZero())
}

func TestReadChannelEchoesIndex(t *testing.T) {
	d, _ := openDriver(t, "sim-adc-echo")
	for ch := 0; ch < 10; ch++ {
		r, err := d.ReadChannel(ch)
		require.NoError(t, err)
		assert.Equal(t, ch, r.Channel)
	}
}

func TestReadChannelInvalid(t *testing.T) {
	d, _ := openDriver(t, "sim-adc-invalid")
	for _, ch := range []int{-1, 10, 255} {
		_, err := d.ReadChannel(ch)
		require.ErrorIs(t, err, board.ErrInvalidChannel, "channel %d", ch)
	}
}

func TestReadAllOrdered(t *testing.T) {
	d, sim := openDriver(t, "sim-adc-all")
	for ch := 0; ch < 10; ch++ {
		sim.SetADC(ch, uint16(100*ch))
	}

	rs, err := d.ReadAll()
	require.NoError(t, err)
	require.Len(t, rs, 10)
	for i, r := range rs {
		assert.Equal(t, i, r.Channel)
		assert.Equal(t, 100*i, r.Raw)
	}
}

func TestConfigureAndWriteLine(t *testing.T) {
	d, sim := openDriver(t, "sim-io-write")

	require.NoError(t, d.ConfigureLine(2, Output))
	require.NoError(t, d.WriteLine(2, true))
	assert.Equal(t, byte(1<<2), sim.OutputLevels())

	level, err := d.ReadLine(2)
	require.NoError(t, err)
	assert.True(t, level)

	require.NoError(t, d.WriteLine(2, false))
	assert.Equal(t, byte(0), sim.OutputLevels())
}

func TestWriteLineWrongDirection(t *testing.T) {
	d, sim := openDriver(t, "sim-io-dir")

	require.NoError(t, d.ConfigureLine(3, Input))
	err := d.WriteLine(3, true)
	require.ErrorIs(t, err, board.ErrWrongDirection)
	// rejected write leaves the line untouched
	assert.Equal(t, byte(0), sim.OutputLevels())
}

func TestReadInputLine(t *testing.T) {
	d, sim := openDriver(t, "sim-io-input")

	require.NoError(t, d.ConfigureLine(5, Input))
	sim.SetInput(5, true)

	level, err := d.ReadLine(5)
	require.NoError(t, err)
	assert.True(t, level)
}

func TestLineBounds(t *testing.T) {
	d, _ := openDriver(t, "sim-io-bounds")
	require.ErrorIs(t, d.ConfigureLine(8, Output), board.ErrInvalidLine)
	require.ErrorIs(t, d.WriteLine(-1, true), board.ErrInvalidLine)
	_, err := d.ReadLine(8)
	require.ErrorIs(t, err, board.ErrInvalidLine)
	require.ErrorIs(t, d.ToggleLine(12), board.ErrInvalidLine)
}

func TestToggleLine(t *testing.T) {
	d, sim := openDriver(t, "sim-io-toggle")

	require.NoError(t, d.ConfigureLine(0, Output))
	require.NoError(t, d.ToggleLine(0))
	assert.Equal(t, byte(1), sim.OutputLevels())
	require.NoError(t, d.ToggleLine(0))
	assert.Equal(t, byte(0), sim.OutputLevels())

	require.NoError(t, d.ConfigureLine(1, Input))
	require.ErrorIs(t, d.ToggleLine(1), board.ErrWrongDirection)
}

func TestWriteLinesMask(t *testing.T) {
	d, sim := openDriver(t, "sim-io-mask")

	require.NoError(t, d.ConfigureLine(0, Output))
	require.NoError(t, d.ConfigureLine(4, Output))
	require.NoError(t, d.WriteLines(0xFF))
	// only output lines take the written levels
	assert.Equal(t, byte(1<<0|1<<4), sim.OutputLevels())
}

func TestNewPrimesLineDirections(t *testing.T) {
	d1, sim := openDriver(t, "sim-io-prime")
	require.NoError(t, d1.ConfigureLine(2, Output))

	// a fresh session's driver picks up the directions already configured
	// on the board and accepts writes without reconfiguring
	s, err := board.Open(board.Config{Device: "sim-io-prime", Timeout: 50 * time.Millisecond})
	require.NoError(t, err)
	defer s.Close()

	d2, err := New(s)
	require.NoError(t, err)
	require.NoError(t, d2.WriteLine(2, true))
	assert.Equal(t, byte(1<<2), sim.OutputLevels())
}

func TestLineDirections(t *testing.T) {
	d, _ := openDriver(t, "sim-io-modes")

	require.NoError(t, d.ConfigureLine(1, Output))
	require.NoError(t, d.ConfigureLine(6, Output))

	dirs, err := d.LineDirections()
	require.NoError(t, err)
	assert.Equal(t, byte(1<<1|1<<6), dirs)
}

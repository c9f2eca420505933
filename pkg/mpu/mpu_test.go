package mpu

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

func TestNewPrimesRangesFromDevice(t *testing.T) {
	d, _ := openDriver(t, "sim-mpu-ranges")
	accel, gyro := d.Ranges()
	assert.Equal(t, 8, accel)
	assert.Equal(t, 2000, gyro)
}

func TestReadSampleScaling(t *testing.T) {
	d, sim := openDriver(t, "sim-mpu-scale")
	sim.SetMotion([3]int16{0, 0, 4096}, [3]int16{16384, 0, -16384})

	s, err := d.ReadSample()
	require.NoError(t, err)

	// 4096/32768 of +/-8g is exactly 1g
	assert.InDelta(t, 1.0, s.Accel[2], 1e-9)
	assert.InDelta(t, 0.0, s.Accel[0], 1e-9)
	// 16384/32768 of +/-2000dps is 1000dps
	assert.InDelta(t, 1000.0, s.Gyro[0], 1e-9)
	assert.InDelta(t, -1000.0, s.Gyro[2], 1e-9)
	assert.Equal(t, 8, s.AccelG)
	assert.Equal(t, 2000, s.GyroDPS)
	assert.False(t, s.Timestamp.IsZero())
}

func TestConfigureRangeChangesSensitivity(t *testing.T) {
	d, sim := openDriver(t, "sim-mpu-sens")
	sim.SetMotion([3]int16{0, 0, 4096}, [3]int16{16384, 0, 0})

	require.NoError(t, d.ConfigureRange(8, 1000))
	s8, err := d.ReadSample()
	require.NoError(t, err)

	require.NoError(t, d.ConfigureRange(16, 2000))
	s16, err := d.ReadSample()
	require.NoError(t, err)

	// identical raw registers, doubled range, doubled physical value
	assert.InDelta(t, 2*s8.Accel[2], s16.Accel[2], 1e-9)
	assert.InDelta(t, 2*s8.Gyro[0], s16.Gyro[0], 1e-9)
}

func TestConfigureRangeInvalid(t *testing.T) {
	d, _ := openDriver(t, "sim-mpu-badrange")
	require.ErrorIs(t, d.ConfigureRange(3, 2000), board.ErrInvalidRange)
	require.ErrorIs(t, d.ConfigureRange(8, 123), board.ErrInvalidRange)

	// rejected locally, device state untouched
	accel, gyro := d.Ranges()
	assert.Equal(t, 8, accel)
	assert.Equal(t, 2000, gyro)
}

func TestReadSampleNotReady(t *testing.T) {
	d, sim := openDriver(t, "sim-mpu-notready")
	sim.SetMotionReady(false)

	_, err := d.ReadSample()
	require.ErrorIs(t, err, board.ErrSensorNotReady)

	sim.SetMotionReady(true)
	_, err = d.ReadSample()
	require.NoError(t, err)
}

func TestReadSampleCarriesRawBurst(t *testing.T) {
	d, sim := openDriver(t, "sim-mpu-raw")
	sim.SetMotion([3]int16{0x0102, 0x0304, 0x0506}, [3]int16{0x0708, 0x090A, 0x0B0C})

	s, err := d.ReadSample()
	require.NoError(t, err)
	assert.Equal(t, [12]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, s.Raw)
}

func TestReadAttitude(t *testing.T) {
	d, sim := openDriver(t, "sim-mpu-attitude")
	sim.SetAttitude(12.5, -45.25, 90.0)

	a, err := d.ReadAttitude()
	require.NoError(t, err)
	assert.InDelta(t, 12.5, a.Pitch, 1e-9)
	assert.InDelta(t, -45.25, a.Roll, 1e-9)
	assert.InDelta(t, 90.0, a.Yaw, 1e-9)
}

func TestReadSampleAfterClose(t *testing.T) {
	s, err := board.Open(board.Config{Device: "sim-mpu-closed"})
	require.NoError(t, err)
	d, err := New(s)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	_, err = d.ReadSample()
	require.ErrorIs(t, err, board.ErrSessionClosed)
}

// Package mpu reads the board's MPU6500 6-axis motion sensor. The driver
// returns raw calibrated samples only: scaling uses the active full-scale
// range, and no filtering or fusion happens host-side. Attitude angles come
// from the sensor's own DMP and are forwarded as-is.
package mpu

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/uptechstar/uptech-go/pkg/board"
)

// rawFullScale is the magnitude of a full-scale int16 register reading.
const rawFullScale = 32768.0

// Sample is one complete accelerometer+gyroscope register burst. Accel is
// in g, Gyro in degrees/second, scaled with the ranges recorded alongside.
// Raw holds the 12 register bytes the values were decoded from.
type Sample struct {
	Accel     [3]float64 `json:"accel_g"`
	Gyro      [3]float64 `json:"gyro_dps"`
	Raw       [12]byte   `json:"-"`
	AccelG    int        `json:"accel_range_g"`
	GyroDPS   int        `json:"gyro_range_dps"`
	Timestamp time.Time  `json:"timestamp"`
}

// Attitude carries DMP-computed orientation angles in degrees.
type Attitude struct {
	Pitch     float64   `json:"pitch"`
	Roll      float64   `json:"roll"`
	Yaw       float64   `json:"yaw"`
	Timestamp time.Time `json:"timestamp"`
}

// Driver reads the motion sensor over one session. It caches the active
// full-scale ranges because the conversion factors depend on them.
type Driver struct {
	s       *board.Session
	accelG  int
	gyroDPS int
}

// New returns a driver primed with the ranges currently active on the
// device, so scaling is correct even when the board kept state from an
// earlier session.
func New(s *board.Session) (*Driver, error) {
	d := &Driver{s: s}
	accel, gyro, err := d.readRanges()
	if err != nil {
		return nil, err
	}
	d.accelG, d.gyroDPS = accel, gyro
	return d, nil
}

func (d *Driver) readRanges() (int, int, error) {
	resp, err := d.s.Transact(board.CmdMPURangeGet, nil, 3)
	if err != nil {
		return 0, 0, err
	}
	return int(resp[0]), int(binary.BigEndian.Uint16(resp[1:])), nil
}

// Ranges returns the active accelerometer (g) and gyroscope (dps)
// full-scale ranges.
func (d *Driver) Ranges() (accelG, gyroDPS int) {
	return d.accelG, d.gyroDPS
}

// ConfigureRange sets the full-scale ranges. Valid values come from the
// board profile FSR tables: {2,4,8,16}g and {250,500,1000,2000}dps on the
// MPU6500.
func (d *Driver) ConfigureRange(accelG, gyroDPS int) error {
	p := d.s.Profile()
	if !p.ValidAccelRange(accelG) {
		return fmt.Errorf("%w: accel %dg, supported %v", board.ErrInvalidRange, accelG, p.AccelRangesG)
	}
	if !p.ValidGyroRange(gyroDPS) {
		return fmt.Errorf("%w: gyro %ddps, supported %v", board.ErrInvalidRange, gyroDPS, p.GyroRangesDPS)
	}
	payload := make([]byte, 3)
	payload[0] = byte(accelG)
	binary.BigEndian.PutUint16(payload[1:], uint16(gyroDPS))
	if _, err := d.s.Transact(board.CmdMPURangeSet, payload, 0); err != nil {
		return err
	}
	d.accelG, d.gyroDPS = accelG, gyroDPS
	return nil
}

// ReadSample reads one full register burst and scales it with the active
// ranges. The exchange's CRC covers the whole burst, so a sample is either
// complete or rejected; ErrSensorNotReady means the device holds no fresh
// data yet.
func (d *Driver) ReadSample() (Sample, error) {
	resp, err := d.s.Transact(board.CmdMPUSample, nil, 12)
	if err != nil {
		return Sample{}, err
	}
	s := Sample{
		AccelG:    d.accelG,
		GyroDPS:   d.gyroDPS,
		Timestamp: time.Now(),
	}
	copy(s.Raw[:], resp)
	for i := 0; i < 3; i++ {
		a := int16(binary.BigEndian.Uint16(resp[2*i:]))
		g := int16(binary.BigEndian.Uint16(resp[6+2*i:]))
		s.Accel[i] = float64(a) * float64(d.accelG) / rawFullScale
		s.Gyro[i] = float64(g) * float64(d.gyroDPS) / rawFullScale
	}
	return s, nil
}

// ReadAttitude returns the DMP's pitch/roll/yaw estimate. The device
// reports angles in centidegrees.
func (d *Driver) ReadAttitude() (Attitude, error) {
	resp, err := d.s.Transact(board.CmdMPUAttitude, nil, 6)
	if err != nil {
		return Attitude{}, err
	}
	return Attitude{
		Pitch:     float64(int16(binary.BigEndian.Uint16(resp[0:]))) / 100,
		Roll:      float64(int16(binary.BigEndian.Uint16(resp[2:]))) / 100,
		Yaw:       float64(int16(binary.BigEndian.Uint16(resp[4:]))) / 100,
		Timestamp: time.Now(),
	}, nil
}

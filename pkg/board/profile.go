package board

// Profile describes the capabilities of a board revision. It is supplied at
// open time so channel, line and panel bounds are statically known to
// callers instead of probed from the device.
type Profile struct {
	Name string

	// ADC
	ADCChannels int
	ADCBits     int
	ADCVRef     float64

	// Digital IO
	IOLines int

	// Display
	PanelWidth  int
	PanelHeight int
	ColorBits   int
	LEDs        int

	// MPU full-scale range tables. Values are the physical full scales the
	// sensor accepts: g for the accelerometer, degrees/second for the gyro.
	AccelRangesG  []int
	GyroRangesDPS []int
}

// DefaultProfile describes the UpTech v2 controller board: 10 ADC channels
// at 10 bits, 8 digital lines, a 128x64 panel with two RGB status LEDs and
// an MPU6500 defaulting to +/-8g and +/-2000dps.
func DefaultProfile() Profile {
	return Profile{
		Name:          "uptech-v2",
		ADCChannels:   10,
		ADCBits:       10,
		ADCVRef:       3.3,
		IOLines:       8,
		PanelWidth:    128,
		PanelHeight:   64,
		ColorBits:     24,
		LEDs:          2,
		AccelRangesG:  []int{2, 4, 8, 16},
		GyroRangesDPS: []int{250, 500, 1000, 2000},
	}
}

// ADCMax returns the highest raw sample the ADC can produce.
func (p Profile) ADCMax() int {
	return (1 << p.ADCBits) - 1
}

// ValidAccelRange reports whether g is in the accelerometer FSR table.
func (p Profile) ValidAccelRange(g int) bool {
	for _, v := range p.AccelRangesG {
		if v == g {
			return true
		}
	}
	return false
}

// ValidGyroRange reports whether dps is in the gyroscope FSR table.
func (p Profile) ValidGyroRange(dps int) bool {
	for _, v := range p.GyroRangesDPS {
		if v == dps {
			return true
		}
	}
	return false
}

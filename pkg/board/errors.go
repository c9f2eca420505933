package board

import "errors"

// Driver layer errors. Expected device conditions are ordinary results and
// are matched with errors.Is; operations never panic for an absent device.
var (
	// ErrDeviceUnavailable is returned by Open when the device is missing,
	// already claimed or fails the probe handshake.
	ErrDeviceUnavailable = errors.New("device unavailable")

	// ErrSessionClosed is returned by any operation on a closed session.
	ErrSessionClosed = errors.New("session closed")

	// ErrInvalidChannel is returned for an ADC channel index out of bounds.
	ErrInvalidChannel = errors.New("invalid adc channel")

	// ErrInvalidLine is returned for a digital IO line index out of bounds.
	ErrInvalidLine = errors.New("invalid io line")

	// ErrWrongDirection is returned when writing a line configured as input.
	ErrWrongDirection = errors.New("line configured as input")

	// ErrOutOfBounds is returned when display geometry exceeds the panel.
	ErrOutOfBounds = errors.New("geometry out of bounds")

	// ErrInvalidColor is returned for a color beyond the panel color depth.
	ErrInvalidColor = errors.New("invalid color")

	// ErrInvalidRange is returned for an unsupported full-scale range.
	ErrInvalidRange = errors.New("invalid full-scale range")

	// ErrSensorNotReady is returned when the device reports no fresh data.
	ErrSensorNotReady = errors.New("sensor not ready")

	// ErrIOFailure is returned on a bus error, timeout or corrupt response.
	ErrIOFailure = errors.New("bus transaction failed")
)

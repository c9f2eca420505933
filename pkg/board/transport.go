package board

import (
	"fmt"
	"strings"
)

// transport carries one framed request/response exchange with the board.
// Implementations are not safe for concurrent use; the Session serializes
// access with its transaction lock.
type transport interface {
	transact(cmd byte, payload []byte) (status byte, resp []byte, err error)
	Close() error
}

// openTransport selects a transport from the device identifier:
//
//	sim…            in-process simulated board
//	serial:PATH     framed UART, PATH may carry @baud (serial:/dev/ttyS1@57600)
//	/dev/PATH       shorthand for serial:/dev/PATH
//	i2c:BUS[:ADDR]  framed I²C, ADDR decimal or 0x hex (default 0x2C)
func openTransport(cfg Config) (transport, error) {
	dev := cfg.Device
	switch {
	case strings.HasPrefix(dev, "sim"):
		return openSim(cfg)
	case strings.HasPrefix(dev, "serial:"):
		cfg.Device = strings.TrimPrefix(dev, "serial:")
		return openSerial(cfg)
	case strings.HasPrefix(dev, "/dev/"):
		return openSerial(cfg)
	case strings.HasPrefix(dev, "i2c:"):
		return openI2C(cfg)
	}
	return nil, fmt.Errorf("unrecognized device %q", dev)
}

package board

import (
	"fmt"
	"strconv"
	"strings"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const defaultI2CAddr = 0x2C

type i2cTransport struct {
	dev *i2c.Dev
	bus i2c.BusCloser
}

// openI2C opens "i2c:BUS[:ADDR]". Responses are collected with a fixed-size
// read and trimmed by the frame parser, since the payload length is not
// known before the header arrives.
func openI2C(cfg Config) (transport, error) {
	parts := strings.Split(strings.TrimPrefix(cfg.Device, "i2c:"), ":")
	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("bad i2c device %q", cfg.Device)
	}
	addr := defaultI2CAddr
	if len(parts) > 1 {
		v, err := parseIntOrHex(parts[1])
		if err != nil {
			return nil, fmt.Errorf("bad i2c address in %q: %w", cfg.Device, err)
		}
		addr = v
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	bus, err := i2creg.Open(parts[0])
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %s: %w", parts[0], err)
	}
	return &i2cTransport{dev: &i2c.Dev{Addr: uint16(addr), Bus: bus}, bus: bus}, nil
}

func (t *i2cTransport) transact(cmd byte, payload []byte) (byte, []byte, error) {
	req, err := encodeFrame(cmd, payload)
	if err != nil {
		return 0, nil, err
	}
	resp := make([]byte, maxFrame)
	if err := t.dev.Tx(req, resp); err != nil {
		return 0, nil, fmt.Errorf("i2c tx: %w", err)
	}
	return parseFrame(resp)
}

func (t *i2cTransport) Close() error {
	return t.bus.Close()
}

func parseIntOrHex(s string) (int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 0)
		return int(v), err
	}
	return strconv.Atoi(s)
}

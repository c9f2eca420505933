package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tarm/serial"
)

const defaultBaud = 115200

type serialTransport struct {
	port *serial.Port
}

func openSerial(cfg Config) (transport, error) {
	name := cfg.Device
	baud := defaultBaud
	if i := strings.LastIndex(name, "@"); i >= 0 {
		v, err := strconv.Atoi(name[i+1:])
		if err != nil {
			return nil, fmt.Errorf("bad baud rate in %q: %w", cfg.Device, err)
		}
		name, baud = name[:i], v
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        baud,
		ReadTimeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	return &serialTransport{port: port}, nil
}

func (t *serialTransport) transact(cmd byte, payload []byte) (byte, []byte, error) {
	req, err := encodeFrame(cmd, payload)
	if err != nil {
		return 0, nil, err
	}
	if _, err := t.port.Write(req); err != nil {
		return 0, nil, fmt.Errorf("write frame: %w", err)
	}
	resp, err := t.readFrame()
	if err != nil {
		return 0, nil, err
	}
	return parseFrame(resp)
}

// readFrame accumulates one response frame. The port read timeout bounds
// each chunk; a zero-byte read means the device went silent.
func (t *serialTransport) readFrame() ([]byte, error) {
	buf := make([]byte, 0, maxFrame)
	chunk := make([]byte, maxFrame)
	want := frameOverhead
	for len(buf) < want {
		n, err := t.port.Read(chunk)
		if err != nil {
			return nil, fmt.Errorf("read frame: %w", err)
		}
		if n == 0 {
			return nil, fmt.Errorf("read frame: timeout after %d bytes", len(buf))
		}
		buf = append(buf, chunk[:n]...)
		if len(buf) >= 2 {
			want = int(buf[1]) + frameOverhead
		}
	}
	return buf, nil
}

func (t *serialTransport) Close() error {
	return t.port.Close()
}

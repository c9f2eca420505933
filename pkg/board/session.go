// Package board owns the connection to an UpTech controller board: the
// session lifecycle, the capability profile and the framed wire protocol
// spoken over the simulated, serial and I²C transports. The subsystem
// drivers (adcio, display, mpu) all operate against a Session and never
// talk to each other.
package board

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a single bus transaction when the Config does not
// set one.
const DefaultTimeout = 250 * time.Millisecond

// Config selects and parameterizes the physical device.
type Config struct {
	// Device identifies the board: "sim…" for a simulated board,
	// "serial:/dev/…[@baud]" or "/dev/…" for UART, "i2c:BUS[:ADDR]".
	Device string

	// Timeout bounds each bus transaction. Transactions are not abortable
	// mid-burst; expiry surfaces as ErrIOFailure.
	Timeout time.Duration

	// Exclusive fails Open when the device is already claimed. Simulated
	// boards always enforce a single claim; for real buses the claim is
	// whatever the OS driver provides.
	Exclusive bool

	// Profile overrides the board capability descriptor. Nil selects
	// DefaultProfile.
	Profile *Profile

	// Logger overrides the package logger.
	Logger *logrus.Entry
}

// Session is the live connection to one board. All driver operations borrow
// it; the caller that opened it owns it and must Close it. A Session is safe
// for concurrent use: transactions serialize on an internal lock so at most
// one exchange is in flight per device.
type Session struct {
	mu      sync.Mutex
	tr      transport
	profile Profile
	closed  bool
	log     *logrus.Entry
}

// Open claims the device named in cfg, probes it and returns a live
// session. It fails with ErrDeviceUnavailable when the device is missing,
// already claimed or does not answer the probe; no Session is returned on
// error and nothing is left claimed.
func Open(cfg Config) (*Session, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.WithField("component", "board")
	}
	profile := DefaultProfile()
	if cfg.Profile != nil {
		profile = *cfg.Profile
	}

	tr, err := openTransport(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	s := &Session{tr: tr, profile: profile, log: log}

	if _, err := s.Transact(CmdProbe, nil, -1); err != nil {
		if cerr := tr.Close(); cerr != nil {
			log.WithError(cerr).Warn("transport close after failed probe")
		}
		s.closed = true
		return nil, fmt.Errorf("%w: probe: %v", ErrDeviceUnavailable, err)
	}

	log.WithFields(logrus.Fields{
		"device":  cfg.Device,
		"profile": profile.Name,
		"timeout": cfg.Timeout,
	}).Info("session opened")
	return s, nil
}

// Close releases the device. It is idempotent and never fails outwardly:
// there is no meaningful recovery for the caller, so cleanup errors are
// logged and swallowed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.tr.Close(); err != nil {
		s.log.WithError(err).Warn("transport close")
	}
	s.log.Info("session closed")
	return nil
}

// Profile returns the capability descriptor the session was opened with.
func (s *Session) Profile() Profile {
	return s.profile
}

// Transact performs one framed exchange with the board. wantLen pins the
// expected response payload length; pass -1 to accept any. Device-reported
// "no fresh data" maps to ErrSensorNotReady, every other failure mode to
// ErrIOFailure. There are no retries at this layer.
func (s *Session) Transact(cmd byte, payload []byte, wantLen int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	status, resp, err := s.tr.transact(cmd, payload)
	if err != nil {
		s.log.WithError(err).WithField("cmd", fmt.Sprintf("0x%02x", cmd)).Debug("transaction failed")
		return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	switch status {
	case statusOK:
	case statusNotReady:
		return nil, ErrSensorNotReady
	default:
		return nil, fmt.Errorf("%w: device status 0x%02x for command 0x%02x", ErrIOFailure, status, cmd)
	}
	if wantLen >= 0 && len(resp) != wantLen {
		return nil, fmt.Errorf("%w: response payload %d bytes, want %d", ErrIOFailure, len(resp), wantLen)
	}
	return resp, nil
}

package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/uptechstar/uptech-go/pkg/adcio"
	"github.com/uptechstar/uptech-go/pkg/board"
	"github.com/uptechstar/uptech-go/pkg/config"
	"github.com/uptechstar/uptech-go/pkg/mpu"
	"github.com/uptechstar/uptech-go/pkg/output"
	"github.com/uptechstar/uptech-go/pkg/output/console"
	mqttout "github.com/uptechstar/uptech-go/pkg/output/mqtt"
)

type outputEntry struct {
	Output     output.Output
	IntervalMs int
	last       time.Time
}

func main() {
	log := logrus.WithField("component", "uptechd")
	if err := run(log); err != nil {
		log.WithError(err).Fatal("uptechd")
	}
}

func run(log *logrus.Entry) error {
	cfg, err := config.LoadFromFlags()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sess, err := board.Open(board.Config{
		Device:    cfg.Device,
		Timeout:   cfg.Timeout(),
		Exclusive: cfg.Exclusive,
	})
	if err != nil {
		return fmt.Errorf("open board: %w", err)
	}
	defer sess.Close()

	smp, err := newSampler(sess, cfg)
	if err != nil {
		return fmt.Errorf("init drivers: %w", err)
	}

	entries, err := initOutputs(&cfg, cfg.IntervalMs)
	if err != nil {
		return fmt.Errorf("init outputs: %w", err)
	}
	defer func() {
		for _, e := range entries {
			if err := e.Output.Close(); err != nil {
				log.WithError(err).Warn("close output")
			}
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(cfg.IntervalMs) * time.Millisecond)
	defer ticker.Stop()

	log.WithField("device", cfg.Device).Info("sampling started")
	for {
		select {
		case <-stop:
			log.Info("shutting down")
			return nil
		case now := <-ticker.C:
			snap, err := smp.snapshot()
			if err != nil {
				log.WithError(err).Error("sample")
				continue
			}
			for i := range entries {
				e := &entries[i]
				if now.Sub(e.last) < time.Duration(e.IntervalMs)*time.Millisecond {
					continue
				}
				if err := e.Output.Publish(snap); err != nil {
					log.WithError(err).Error("publish")
					continue
				}
				e.last = now
			}
		}
	}
}

// initOutputs builds the configured outputs, defaulting missing intervals
// to fallbackIntervalMs.
func initOutputs(cfg *config.Config, fallbackIntervalMs int) ([]outputEntry, error) {
	entries := make([]outputEntry, 0, len(cfg.Outputs))
	for i := range cfg.Outputs {
		oc := &cfg.Outputs[i]
		if oc.IntervalMs == 0 {
			oc.IntervalMs = fallbackIntervalMs
		}
		var (
			out output.Output
			err error
		)
		switch oc.Type {
		case "console":
			out = console.NewConsole()
		case "mqtt":
			mc := config.MQTTConfig{}
			if oc.MQTT != nil {
				mc = *oc.MQTT
			}
			out, err = mqttout.NewMQTT(mc)
		default:
			err = fmt.Errorf("unknown output type %q", oc.Type)
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, outputEntry{Output: out, IntervalMs: oc.IntervalMs})
	}
	return entries, nil
}

type sampler struct {
	adc          *adcio.Driver
	motion       *mpu.Driver
	channels     []int
	readMotion   bool
	readAttitude bool
}

func newSampler(sess *board.Session, cfg config.Config) (*sampler, error) {
	adc, err := adcio.New(sess)
	if err != nil {
		return nil, fmt.Errorf("adcio init: %w", err)
	}
	s := &sampler{
		adc:          adc,
		channels:     cfg.Channels,
		readMotion:   cfg.ReadMotion,
		readAttitude: cfg.ReadAttitude,
	}
	if cfg.ReadMotion || cfg.ReadAttitude {
		m, err := mpu.New(sess)
		if err != nil {
			return nil, fmt.Errorf("mpu init: %w", err)
		}
		if err := m.ConfigureRange(cfg.AccelRangeG, cfg.GyroRangeDPS); err != nil {
			return nil, fmt.Errorf("mpu range: %w", err)
		}
		s.motion = m
	}
	return s, nil
}

// snapshot performs one sampling pass. A motion sensor with no fresh data
// is not an error; the snapshot just omits the sample.
func (s *sampler) snapshot() (output.Snapshot, error) {
	snap := output.Snapshot{Timestamp: time.Now()}

	all, err := s.adc.ReadAll()
	if err != nil {
		return snap, err
	}
	for _, ch := range s.channels {
		if ch >= 0 && ch < len(all) {
			snap.Readings = append(snap.Readings, all[ch])
		}
	}

	lines, err := s.adc.ReadLines()
	if err != nil {
		return snap, err
	}
	snap.Lines = &lines

	if s.readMotion {
		m, err := s.motion.ReadSample()
		switch {
		case err == nil:
			snap.Motion = &m
		case errors.Is(err, board.ErrSensorNotReady):
		default:
			return snap, err
		}
	}
	if s.readAttitude {
		a, err := s.motion.ReadAttitude()
		switch {
		case err == nil:
			snap.Attitude = &a
		case errors.Is(err, board.ErrSensorNotReady):
		default:
			return snap, err
		}
	}
	return snap, nil
}

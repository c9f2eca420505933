package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type MQTTConfig struct {
	Server   string `json:"server"`
	Username string `json:"username"`
	Password string `json:"password"`
	ClientID string `json:"client_id"`
	Topic    string `json:"topic"`
}

type OutputConfig struct {
	Type       string      `json:"type"`
	IntervalMs int         `json:"interval_ms,omitempty"`
	MQTT       *MQTTConfig `json:"mqtt,omitempty"`
}

type Config struct {
	Device       string         `json:"device"`
	TimeoutMs    int            `json:"timeout_ms"`
	Exclusive    bool           `json:"exclusive"`
	Channels     []int          `json:"channels"`
	ReadMotion   bool           `json:"read_motion"`
	ReadAttitude bool           `json:"read_attitude"`
	AccelRangeG  int            `json:"accel_range_g"`
	GyroRangeDPS int            `json:"gyro_range_dps"`
	IntervalMs   int            `json:"interval_ms"`
	Outputs      []OutputConfig `json:"outputs"`
}

func DefaultConfig() Config {
	return Config{
		Device:       "sim0",
		TimeoutMs:    250,
		Exclusive:    true,
		Channels:     []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		ReadMotion:   true,
		ReadAttitude: false,
		AccelRangeG:  8,
		GyroRangeDPS: 2000,
		IntervalMs:   1000,
		Outputs:      []OutputConfig{{Type: "console", IntervalMs: 1000}},
	}
}

// Timeout returns the per-transaction bus timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// LoadFromFlags loads configuration from a JSON file (optional) and flags.
// Flags override values present in the JSON file.
func LoadFromFlags() (Config, error) {
	cfgPath := flag.String("config", "", "Path to JSON config file")
	flagDevice := flag.String("device", "", "Board device (sim0, serial:/dev/ttyS1, i2c:1:0x2C)")
	flagTimeout := flag.Int("timeout-ms", -1, "Per-transaction bus timeout in ms")
	flagChannels := flag.String("channels", "", "Comma-separated ADC channels e.g. 0,1,2")
	flagMotion := flag.String("motion", "", "Read motion samples: true|false")
	flagAttitude := flag.String("attitude", "", "Read DMP attitude: true|false")
	flagAccelRange := flag.Int("accel-range", -1, "Accelerometer full-scale range in g (2,4,8,16)")
	flagGyroRange := flag.Int("gyro-range", -1, "Gyroscope full-scale range in dps (250,500,1000,2000)")
	flagInterval := flag.Int("interval-ms", -1, "Publish interval in ms")
	flagOutputs := flag.String("outputs", "", "Comma-separated outputs (console,mqtt)")
	flagMQTTServer := flag.String("mqtt-server", "", "MQTT server (tcp://host:port)")
	flagMQTTUser := flag.String("mqtt-user", "", "MQTT username")
	flagMQTTPass := flag.String("mqtt-pass", "", "MQTT password")
	flagClientID := flag.String("mqtt-client-id", "", "MQTT client id")
	flagTopic := flag.String("mqtt-topic", "", "MQTT topic base")

	flag.Parse()

	cfg := DefaultConfig()

	if *cfgPath != "" {
		b, err := os.ReadFile(*cfgPath)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if *flagDevice != "" {
		cfg.Device = *flagDevice
	}
	if *flagTimeout != -1 {
		cfg.TimeoutMs = *flagTimeout
	}
	if *flagChannels != "" {
		chs, err := parseChannels(*flagChannels)
		if err != nil {
			return cfg, err
		}
		cfg.Channels = chs
	}
	if *flagMotion != "" {
		v, err := strconv.ParseBool(*flagMotion)
		if err != nil {
			return cfg, fmt.Errorf("motion: %w", err)
		}
		cfg.ReadMotion = v
	}
	if *flagAttitude != "" {
		v, err := strconv.ParseBool(*flagAttitude)
		if err != nil {
			return cfg, fmt.Errorf("attitude: %w", err)
		}
		cfg.ReadAttitude = v
	}
	if *flagAccelRange != -1 {
		cfg.AccelRangeG = *flagAccelRange
	}
	if *flagGyroRange != -1 {
		cfg.GyroRangeDPS = *flagGyroRange
	}
	if *flagInterval != -1 {
		cfg.IntervalMs = *flagInterval
	}
	if *flagOutputs != "" {
		parts := parseCSV(*flagOutputs)
		outs := make([]OutputConfig, 0, len(parts))
		for _, p := range parts {
			outs = append(outs, OutputConfig{Type: p, IntervalMs: cfg.IntervalMs})
		}
		cfg.Outputs = outs
	}
	// map mqtt flags into the first mqtt output (create if missing)
	if *flagMQTTServer != "" || *flagMQTTUser != "" || *flagMQTTPass != "" || *flagClientID != "" || *flagTopic != "" {
		applied := false
		for i := range cfg.Outputs {
			if strings.EqualFold(cfg.Outputs[i].Type, "mqtt") {
				applyMQTTFlags(&cfg.Outputs[i], *flagMQTTServer, *flagMQTTUser, *flagMQTTPass, *flagClientID, *flagTopic)
				applied = true
			}
		}
		if !applied {
			out := OutputConfig{Type: "mqtt", IntervalMs: cfg.IntervalMs}
			applyMQTTFlags(&out, *flagMQTTServer, *flagMQTTUser, *flagMQTTPass, *flagClientID, *flagTopic)
			cfg.Outputs = append(cfg.Outputs, out)
		}
	}
	// ensure outputs have interval default
	for i := range cfg.Outputs {
		if cfg.Outputs[i].IntervalMs == 0 {
			cfg.Outputs[i].IntervalMs = cfg.IntervalMs
		}
	}

	if cfg.IntervalMs <= 0 {
		return cfg, errors.New("interval-ms must be > 0")
	}
	if cfg.TimeoutMs <= 0 {
		return cfg, errors.New("timeout-ms must be > 0")
	}

	return cfg, nil
}

func applyMQTTFlags(out *OutputConfig, server, user, pass, clientID, topic string) {
	if out.MQTT == nil {
		out.MQTT = &MQTTConfig{}
	}
	if server != "" {
		out.MQTT.Server = server
	}
	if user != "" {
		out.MQTT.Username = user
	}
	if pass != "" {
		out.MQTT.Password = pass
	}
	if clientID != "" {
		out.MQTT.ClientID = clientID
	}
	if topic != "" {
		out.MQTT.Topic = topic
	}
}

func parseCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func parseChannels(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t == "" {
			continue
		}
		v, err := strconv.Atoi(t)
		if err != nil {
			return nil, fmt.Errorf("invalid channel '%s': %w", t, err)
		}
		out = append(out, v)
	}
	return out, nil
}

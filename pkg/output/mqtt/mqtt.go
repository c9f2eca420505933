package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/uptechstar/uptech-go/pkg/config"
	"github.com/uptechstar/uptech-go/pkg/output"
)

const (
	DefaultServer = "tcp://localhost:1883"
	DefaultTopic  = "uptech"

	channelTopicFmt = "%s/adc/%d"
	linesTopicFmt   = "%s/io"
	motionTopicFmt  = "%s/motion"
	attitudeTopic   = "%s/attitude"
)

type MQTTOutput struct {
	client mqtt.Client
	topic  string
}

func NewMQTT(cfg config.MQTTConfig) (output.Output, error) {
	server := cfg.Server
	if server == "" {
		server = DefaultServer
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "uptech-" + uuid.NewString()[:8]
	}
	opts := mqtt.NewClientOptions().AddBroker(server).SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	topic := strings.TrimSuffix(cfg.Topic, "/")
	if topic == "" {
		topic = DefaultTopic
	}
	return &MQTTOutput{client: client, topic: topic}, nil
}

func (m *MQTTOutput) Publish(snap output.Snapshot) error {
	for _, r := range snap.Readings {
		topic := fmt.Sprintf(channelTopicFmt, m.topic, r.Channel)
		if err := m.publishJSON(topic, map[string]interface{}{"raw": r.Raw, "volts": r.Volts}); err != nil {
			return err
		}
	}
	if snap.Lines != nil {
		topic := fmt.Sprintf(linesTopicFmt, m.topic)
		if err := m.publishJSON(topic, map[string]interface{}{"lines": *snap.Lines}); err != nil {
			return err
		}
	}
	if snap.Motion != nil {
		topic := fmt.Sprintf(motionTopicFmt, m.topic)
		if err := m.publishJSON(topic, snap.Motion); err != nil {
			return err
		}
	}
	if snap.Attitude != nil {
		topic := fmt.Sprintf(attitudeTopic, m.topic)
		if err := m.publishJSON(topic, snap.Attitude); err != nil {
			return err
		}
	}
	return nil
}

func (m *MQTTOutput) publishJSON(topic string, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	token := m.client.Publish(topic, 0, false, b)
	token.Wait()
	return token.Error()
}

func (m *MQTTOutput) Close() error {
	if m.client != nil {
		m.client.Disconnect(250)
	}
	return nil
}

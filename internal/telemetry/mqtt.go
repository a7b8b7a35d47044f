package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nerrad567/tellhub/internal/infrastructure/mqtt"
	"github.com/nerrad567/tellhub/internal/protocol"
)

// Publisher publishes retained MQTT messages. *mqtt.Client satisfies it.
type Publisher interface {
	PublishRetained(topic string, payload []byte) error
}

// MQTTMirror republishes hub notifications to MQTT.
type MQTTMirror struct {
	pub    Publisher
	topics mqtt.Topics
}

// NewMQTTMirror creates a mirror publishing through pub.
func NewMQTTMirror(pub Publisher) *MQTTMirror {
	return &MQTTMirror{pub: pub}
}

// ID identifies the mirror as a hub subscriber.
func (m *MQTTMirror) ID() string { return "telemetry.mqtt" }

// deviceState is the per-device retained payload.
type deviceState struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	State    string `json:"state"`
	On       bool   `json:"on"`
	Model    string `json:"model,omitempty"`
	Protocol string `json:"protocol,omitempty"`
}

// Push publishes msg. Kinds other than device_list and schedule are ignored.
func (m *MQTTMirror) Push(msg protocol.Message) error {
	switch msg.Kind {
	case protocol.KindDeviceList:
		return m.publishDevices(msg)
	case protocol.KindSchedule:
		if err := m.pub.PublishRetained(m.topics.StateSchedule(), msg.Payload); err != nil {
			return fmt.Errorf("publishing schedule: %w", err)
		}
	}
	return nil
}

func (m *MQTTMirror) publishDevices(msg protocol.Message) error {
	if err := m.pub.PublishRetained(m.topics.StateDevices(), msg.Payload); err != nil {
		return fmt.Errorf("publishing device list: %w", err)
	}

	var list protocol.DeviceListPayload
	if err := json.Unmarshal(msg.Payload, &list); err != nil {
		return fmt.Errorf("decoding device list: %w", err)
	}

	var errs []error
	for _, d := range list.Devices {
		payload, err := json.Marshal(deviceState{
			ID:       d.ID,
			Name:     d.Name,
			State:    d.StatusString(),
			On:       d.Status,
			Model:    d.Model,
			Protocol: d.Protocol,
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := m.pub.PublishRetained(m.topics.StateDevice(d.ID), payload); err != nil {
			errs = append(errs, fmt.Errorf("publishing device %d: %w", d.ID, err))
		}
	}
	return errors.Join(errs...)
}

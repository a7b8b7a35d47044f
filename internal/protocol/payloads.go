package protocol

import (
	"time"

	"github.com/nerrad567/tellhub/internal/device"
	"github.com/nerrad567/tellhub/internal/schedule"
)

// SetDeviceStatusPayload toggles one device. Range checking is left to the
// registry so an unknown id is reported as not_found.
type SetDeviceStatusPayload struct {
	DeviceID *int `json:"device_id" validate:"required"`
}

// AddDevicePayload registers a new device with telldusd.
type AddDevicePayload struct {
	Name     string `json:"name" validate:"required,max=64"`
	Model    string `json:"model" validate:"required,max=64"`
	Protocol string `json:"protocol" validate:"required,max=32"`
}

// Candidate converts the payload for device.Registry.RegisterDevice.
func (p AddDevicePayload) Candidate() device.Candidate {
	return device.Candidate{Name: p.Name, Model: p.Model, Protocol: p.Protocol}
}

// AddScheduledEventPayload adds an event to the schedule.
type AddScheduledEventPayload struct {
	DeviceID int       `json:"device_id" validate:"required,min=1"`
	Action   string    `json:"action" validate:"required,oneof=on off"`
	At       time.Time `json:"at" validate:"required"`
	Repeat   string    `json:"repeat" validate:"omitempty,oneof=none daily weekly"`
}

// Event converts the payload for schedule.Service.InsertEvent.
func (p AddScheduledEventPayload) Event() schedule.Event {
	return schedule.Event{
		DeviceID: p.DeviceID,
		Action:   schedule.Action(p.Action),
		At:       p.At,
		Repeat:   schedule.Repeat(p.Repeat),
	}
}

// DeviceListPayload carries the full device snapshot.
type DeviceListPayload struct {
	Devices []device.Device `json:"devices"`
}

// SchedulePayload carries the full schedule.
type SchedulePayload struct {
	Events []schedule.Event `json:"events"`
}

// ErrorPayload reports a failed request to the requester only.
type ErrorPayload struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	RequestKind Kind   `json:"request_kind,omitempty"`
}

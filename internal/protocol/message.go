package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nerrad567/tellhub/internal/device"
	"github.com/nerrad567/tellhub/internal/schedule"
)

// Message is the envelope of every frame.
type Message struct {
	Kind      Kind            `json:"kind"`
	ID        string          `json:"id,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// New builds a message with a marshalled payload. A nil payload is omitted.
func New(kind Kind, id string, payload any) (Message, error) {
	msg := Message{
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Message{}, fmt.Errorf("marshalling %s payload: %w", kind, err)
		}
		msg.Payload = raw
	}
	return msg, nil
}

// NewError builds an error message. It cannot fail.
func NewError(id string, requestKind Kind, code, message string) Message {
	raw, _ := json.Marshal(ErrorPayload{ //nolint:errcheck // Plain strings always marshal
		Code:        code,
		Message:     message,
		RequestKind: requestKind,
	})
	return Message{
		Kind:      KindError,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   raw,
	}
}

// DeviceList builds a device_list message.
func DeviceList(id string, devices []device.Device) (Message, error) {
	if devices == nil {
		devices = []device.Device{}
	}
	return New(KindDeviceList, id, DeviceListPayload{Devices: devices})
}

// Schedule builds a schedule message.
func Schedule(id string, events []schedule.Event) (Message, error) {
	if events == nil {
		events = []schedule.Event{}
	}
	return New(KindSchedule, id, SchedulePayload{Events: events})
}

// Encode serializes msg as one JSON text frame.
func Encode(msg Message) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encoding %s message: %w", msg.Kind, err)
	}
	return data, nil
}

// Decode parses one frame. Malformed JSON, a missing kind or an unknown kind
// return ErrDecode. The payload is left raw; see DecodePayload.
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if msg.Kind == "" {
		return Message{}, fmt.Errorf("%w: missing kind", ErrDecode)
	}
	if !IsKnown(msg.Kind) {
		return msg, fmt.Errorf("%w: unknown kind %q", ErrDecode, msg.Kind)
	}
	return msg, nil
}

// DecodePayload unmarshals msg.Payload into dst and validates it.
// Unknown fields are rejected. An absent payload decodes as {}.
func DecodePayload(msg Message, dst any) error {
	raw := msg.Payload
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		raw = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidPayload, msg.Kind, err)
	}

	if err := validate.Struct(dst); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return fmt.Errorf("%w: %s: %s", ErrInvalidPayload, msg.Kind, describe(verrs))
		}
		return fmt.Errorf("%w: %s: %w", ErrInvalidPayload, msg.Kind, err)
	}
	return nil
}

// describe renders validation errors as "field tag" pairs using JSON names.
func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", jsonName(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}

// jsonName converts a Go field name such as DeviceID to device_id.
func jsonName(field string) string {
	var b strings.Builder
	runes := []rune(field)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

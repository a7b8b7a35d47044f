package protocol

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/tellhub/internal/device"
	"github.com/nerrad567/tellhub/internal/schedule"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind Kind
		wantID   string
		wantErr  bool
	}{
		{name: "fetch devices", input: `{"kind":"fetch_devices"}`, wantKind: KindFetchDevices},
		{name: "with id", input: `{"kind":"fetch_schedule","id":"42"}`, wantKind: KindFetchSchedule, wantID: "42"},
		{name: "response kind is known", input: `{"kind":"device_list","payload":{"devices":[]}}`, wantKind: KindDeviceList},
		{name: "malformed json", input: `{"kind":`, wantErr: true},
		{name: "not an object", input: `[1,2,3]`, wantErr: true},
		{name: "missing kind", input: `{"id":"1"}`, wantErr: true},
		{name: "unknown kind", input: `{"kind":"reboot"}`, wantErr: true},
		{name: "empty input", input: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrDecode), "want ErrDecode, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, msg.Kind)
			assert.Equal(t, tt.wantID, msg.ID)
		})
	}
}

func TestDecodePayload_SetDeviceStatus(t *testing.T) {
	msg, err := Decode([]byte(`{"kind":"set_device_status","payload":{"device_id":3}}`))
	require.NoError(t, err)

	var p SetDeviceStatusPayload
	require.NoError(t, DecodePayload(msg, &p))
	require.NotNil(t, p.DeviceID)
	assert.Equal(t, 3, *p.DeviceID)
}

func TestDecodePayload_SetDeviceStatusZeroIsAccepted(t *testing.T) {
	// Range is checked by the registry, which reports not_found.
	msg := Message{Kind: KindSetDeviceStatus, Payload: json.RawMessage(`{"device_id":0}`)}

	var p SetDeviceStatusPayload
	require.NoError(t, DecodePayload(msg, &p))
	assert.Equal(t, 0, *p.DeviceID)
}

func TestDecodePayload_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		payload string
		dst     any
		wantMsg string
	}{
		{
			name:    "missing device id",
			kind:    KindSetDeviceStatus,
			payload: `{}`,
			dst:     &SetDeviceStatusPayload{},
			wantMsg: "device_id failed required",
		},
		{
			name:    "no payload at all",
			kind:    KindSetDeviceStatus,
			payload: ``,
			dst:     &SetDeviceStatusPayload{},
			wantMsg: "device_id failed required",
		},
		{
			name:    "wrong type",
			kind:    KindSetDeviceStatus,
			payload: `{"device_id":"two"}`,
			dst:     &SetDeviceStatusPayload{},
		},
		{
			name:    "unknown field",
			kind:    KindAddDevice,
			payload: `{"name":"lamp","model":"selflearning-switch","protocol":"arctech","colour":"red"}`,
			dst:     &AddDevicePayload{},
		},
		{
			name:    "add device missing model",
			kind:    KindAddDevice,
			payload: `{"name":"lamp","protocol":"arctech"}`,
			dst:     &AddDevicePayload{},
			wantMsg: "model failed required",
		},
		{
			name:    "bad action",
			kind:    KindAddScheduledEvent,
			payload: `{"device_id":1,"action":"dim","at":"2026-10-17T18:00:00Z"}`,
			dst:     &AddScheduledEventPayload{},
			wantMsg: "action failed oneof",
		},
		{
			name:    "bad repeat",
			kind:    KindAddScheduledEvent,
			payload: `{"device_id":1,"action":"on","at":"2026-10-17T18:00:00Z","repeat":"hourly"}`,
			dst:     &AddScheduledEventPayload{},
			wantMsg: "repeat failed oneof",
		},
		{
			name:    "missing time",
			kind:    KindAddScheduledEvent,
			payload: `{"device_id":1,"action":"on"}`,
			dst:     &AddScheduledEventPayload{},
			wantMsg: "at failed required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := Message{Kind: tt.kind, Payload: json.RawMessage(tt.payload)}
			err := DecodePayload(msg, tt.dst)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPayload)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestDecodePayload_AddScheduledEvent(t *testing.T) {
	msg := Message{
		Kind:    KindAddScheduledEvent,
		Payload: json.RawMessage(`{"device_id":2,"action":"off","at":"2026-10-17T22:30:00Z","repeat":"daily"}`),
	}

	var p AddScheduledEventPayload
	require.NoError(t, DecodePayload(msg, &p))

	ev := p.Event()
	assert.Equal(t, 2, ev.DeviceID)
	assert.Equal(t, schedule.ActionOff, ev.Action)
	assert.Equal(t, schedule.RepeatDaily, ev.Repeat)
	assert.True(t, ev.At.Equal(time.Date(2026, 10, 17, 22, 30, 0, 0, time.UTC)))
}

func TestAddDevicePayload_Candidate(t *testing.T) {
	p := AddDevicePayload{Name: "porch", Model: "selflearning-switch", Protocol: "arctech"}
	assert.Equal(t, device.Candidate{Name: "porch", Model: "selflearning-switch", Protocol: "arctech"}, p.Candidate())
}

func TestNew_EncodeDecode(t *testing.T) {
	msg, err := DeviceList("9", []device.Device{{ID: 1, Name: "lamp", Status: true}})
	require.NoError(t, err)
	assert.Equal(t, KindDeviceList, msg.Kind)
	assert.NotEmpty(t, msg.Timestamp)

	data, err := Encode(msg)
	require.NoError(t, err)

	back, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "9", back.ID)

	var p DeviceListPayload
	require.NoError(t, json.Unmarshal(back.Payload, &p))
	require.Len(t, p.Devices, 1)
	assert.Equal(t, "lamp", p.Devices[0].Name)
	assert.True(t, p.Devices[0].Status)
}

func TestDeviceList_NilEncodesEmptyArray(t *testing.T) {
	msg, err := DeviceList("", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"devices":[]}`, string(msg.Payload))
}

func TestSchedule_NilEncodesEmptyArray(t *testing.T) {
	msg, err := Schedule("", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"events":[]}`, string(msg.Payload))
}

func TestNew_NilPayloadOmitted(t *testing.T) {
	msg, err := New(KindFetchDevices, "", nil)
	require.NoError(t, err)

	data, err := Encode(msg)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "payload")
	assert.NotContains(t, string(data), `"id"`)
}

func TestNewError(t *testing.T) {
	msg := NewError("5", KindSetDeviceStatus, CodeNotFound, "device: not found")
	assert.Equal(t, KindError, msg.Kind)
	assert.Equal(t, "5", msg.ID)

	var p ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &p))
	assert.Equal(t, CodeNotFound, p.Code)
	assert.Equal(t, KindSetDeviceStatus, p.RequestKind)
	assert.Equal(t, "device: not found", p.Message)
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, IsRequest(KindFetchDevices))
	assert.True(t, IsRequest(KindAddScheduledEvent))
	assert.False(t, IsRequest(KindDeviceList))
	assert.False(t, IsRequest(KindError))

	assert.True(t, IsKnown(KindSchedule))
	assert.False(t, IsKnown(Kind("bogus")))

	assert.True(t, IsMutation(KindAddDevice))
	assert.False(t, IsMutation(KindFetchSchedule))
}

func TestJSONName(t *testing.T) {
	tests := map[string]string{
		"DeviceID": "device_id",
		"Name":     "name",
		"At":       "at",
		"Repeat":   "repeat",
	}
	for in, want := range tests {
		assert.Equal(t, want, jsonName(in), in)
	}
}

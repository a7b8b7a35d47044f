package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/tellhub/internal/protocol"
)

// PointWriter records device status points. *influxdb.Client satisfies it.
type PointWriter interface {
	WriteDeviceStatus(deviceID int, name string, on bool, at time.Time)
}

// InfluxRecorder writes every device list notification to InfluxDB.
type InfluxRecorder struct {
	w   PointWriter
	now func() time.Time
}

// NewInfluxRecorder creates a recorder writing through w.
func NewInfluxRecorder(w PointWriter) *InfluxRecorder {
	return &InfluxRecorder{w: w, now: time.Now}
}

// ID identifies the recorder as a hub subscriber.
func (r *InfluxRecorder) ID() string { return "telemetry.influxdb" }

// Push records one point per device. The point time is the message
// timestamp, or now when the message has none.
func (r *InfluxRecorder) Push(msg protocol.Message) error {
	if msg.Kind != protocol.KindDeviceList {
		return nil
	}

	var list protocol.DeviceListPayload
	if err := json.Unmarshal(msg.Payload, &list); err != nil {
		return fmt.Errorf("decoding device list: %w", err)
	}

	at := r.now()
	if ts, err := time.Parse(time.RFC3339, msg.Timestamp); err == nil {
		at = ts
	}
	for _, d := range list.Devices {
		r.w.WriteDeviceStatus(d.ID, d.Name, d.Status, at)
	}
	return nil
}

package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementDeviceStatus is the measurement name for device on/off history.
const MeasurementDeviceStatus = "device_status"

// WriteDeviceStatus records one device's on/off state at the given time.
// The write is batched; it is dropped silently when the client is closed.
func (c *Client) WriteDeviceStatus(deviceID int, name string, on bool, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(deviceStatusPoint(deviceID, name, on, at))
}

// deviceStatusPoint builds the point for WriteDeviceStatus. The on field is
// 0 or 1 so it can be aggregated.
func deviceStatusPoint(deviceID int, name string, on bool, at time.Time) *write.Point {
	value := 0
	if on {
		value = 1
	}
	return write.NewPoint(
		MeasurementDeviceStatus,
		map[string]string{
			"device_id": strconv.Itoa(deviceID),
			"name":      name,
		},
		map[string]interface{}{
			"on": value,
		},
		at,
	)
}

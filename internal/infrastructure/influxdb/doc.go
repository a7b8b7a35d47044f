// Package influxdb records device status history in InfluxDB.
//
// It wraps influxdb-client-go v2 with a non-blocking, batched write API.
// Every device-list change produces one device_status point per device,
// which gives a switching history that dashboards can chart.
//
// Usage:
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteDeviceStatus(1, "Lamp", true, time.Now())
//
// Write errors are delivered asynchronously through SetOnError.
package influxdb

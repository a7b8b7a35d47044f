// Package telemetry mirrors state changes to optional outside systems.
//
// Both mirrors are hub subscribers like client sessions, so they see exactly
// what clients see, when clients see it:
//
//   - MQTTMirror republishes the device list and schedule as retained
//     messages under tellhub/state/, plus one retained topic per device.
//   - InfluxRecorder writes a device_status point per device on every
//     device list notification.
//
// Errors are returned to the hub, which logs them and carries on.
package telemetry

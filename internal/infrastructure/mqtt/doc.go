// Package mqtt provides the MQTT publisher tellhub uses to mirror state.
//
// tellhub only publishes. Device and schedule snapshots are written as
// retained messages under tellhub/state/... so a dashboard or another home
// automation system sees the current state as soon as it subscribes.
//
// The client connects with auto-reconnect, registers a Last Will on
// tellhub/system/status so an unexpected exit is visible, and publishes a
// graceful offline status on Close.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishRetained(mqtt.Topics{}.StateDevices(), payload)
package mqtt

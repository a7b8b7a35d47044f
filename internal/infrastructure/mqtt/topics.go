package mqtt

import "fmt"

// TopicPrefix is the root of every topic tellhub publishes.
const TopicPrefix = "tellhub"

// Topics provides builders for tellhub MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.StateDevice(3) // "tellhub/state/device/3"
type Topics struct{}

// StateDevices carries the full device list.
func (Topics) StateDevices() string {
	return TopicPrefix + "/state/devices"
}

// StateSchedule carries the full schedule.
func (Topics) StateSchedule() string {
	return TopicPrefix + "/state/schedule"
}

// StateDevice carries a single device's state.
//
// Example: tellhub/state/device/3
func (Topics) StateDevice(id int) string {
	return fmt.Sprintf("%s/state/device/%d", TopicPrefix, id)
}

// SystemStatus carries online/offline status and the Last Will.
func (Topics) SystemStatus() string {
	return TopicPrefix + "/system/status"
}

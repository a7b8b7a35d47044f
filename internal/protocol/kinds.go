package protocol

// Kind tags a message.
type Kind string

// Request kinds.
const (
	KindFetchDevices      Kind = "fetch_devices"
	KindFetchSchedule     Kind = "fetch_schedule"
	KindSetDeviceStatus   Kind = "set_device_status"
	KindAddDevice         Kind = "add_device"
	KindAddScheduledEvent Kind = "add_scheduled_event"
)

// Response and notification kinds.
const (
	KindDeviceList Kind = "device_list"
	KindSchedule   Kind = "schedule"
	KindError      Kind = "error"
)

var requestKinds = map[Kind]struct{}{
	KindFetchDevices:      {},
	KindFetchSchedule:     {},
	KindSetDeviceStatus:   {},
	KindAddDevice:         {},
	KindAddScheduledEvent: {},
}

var responseKinds = map[Kind]struct{}{
	KindDeviceList: {},
	KindSchedule:   {},
	KindError:      {},
}

// IsRequest reports whether k is sent by clients.
func IsRequest(k Kind) bool {
	_, ok := requestKinds[k]
	return ok
}

// IsKnown reports whether k is any kind this protocol defines.
func IsKnown(k Kind) bool {
	if IsRequest(k) {
		return true
	}
	_, ok := responseKinds[k]
	return ok
}

// IsMutation reports whether a request kind changes server state. Mutations
// get no direct success reply; the resulting broadcast is the answer.
func IsMutation(k Kind) bool {
	switch k {
	case KindSetDeviceStatus, KindAddDevice, KindAddScheduledEvent:
		return true
	default:
		return false
	}
}

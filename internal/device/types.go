package device

// Device is one entry of the telldusd device listing.
type Device struct {
	// ID is the telldusd id, 1-based and contiguous.
	ID int `json:"id"`

	Name string `json:"name"`

	// Status is true when the last command sent to the device was ON.
	Status bool `json:"status"`

	// Model and Protocol are only known for devices whose listing line
	// includes them; they are required when registering.
	Model    string `json:"model,omitempty"`
	Protocol string `json:"protocol,omitempty"`
}

// StatusString returns "ON" or "OFF".
func (d Device) StatusString() string {
	if d.Status {
		return statusOn
	}
	return "OFF"
}

// Candidate describes a device to be registered with telldusd.
type Candidate struct {
	Name     string `json:"name" validate:"required,max=64,tellstring"`
	Model    string `json:"model" validate:"required,max=64,tellstring"`
	Protocol string `json:"protocol" validate:"required,max=32,tellstring"`
}

// copyDevices returns a copy of devices that shares no backing array.
func copyDevices(devices []Device) []Device {
	if devices == nil {
		return []Device{}
	}
	out := make([]Device, len(devices))
	copy(out, devices)
	return out
}

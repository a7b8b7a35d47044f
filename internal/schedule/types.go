package schedule

import "time"

// Action is what an event does to its device.
type Action string

const (
	ActionOn  Action = "on"
	ActionOff Action = "off"
)

// Repeat is how often an event recurs.
type Repeat string

const (
	RepeatNone   Repeat = "none"
	RepeatDaily  Repeat = "daily"
	RepeatWeekly Repeat = "weekly"
)

// Event switches one device at a point in time.
type Event struct {
	ID        string    `json:"id"`
	DeviceID  int       `json:"device_id" validate:"min=1"`
	Action    Action    `json:"action" validate:"oneof=on off"`
	At        time.Time `json:"at" validate:"required"`
	Repeat    Repeat    `json:"repeat" validate:"oneof=none daily weekly"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot is the whole schedule ordered by At.
type Snapshot struct {
	Events []Event `json:"events"`
}

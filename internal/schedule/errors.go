package schedule

import "errors"

var (
	// ErrInvalidEvent is returned when an event fails validation.
	ErrInvalidEvent = errors.New("schedule: invalid event")

	// ErrEventExists is returned when an event ID is already stored.
	ErrEventExists = errors.New("schedule: event already exists")
)

package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device id is outside the current listing.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrParse is returned when the listing output is malformed.
	// The previous snapshot is kept.
	ErrParse = errors.New("device: malformed listing")

	// ErrCommand is returned when an external command fails.
	ErrCommand = errors.New("device: external command failed")

	// ErrPartialRegistration is returned when a device block was appended to
	// the configuration file but a later step failed. The file is not rolled
	// back; manual recovery is required.
	ErrPartialRegistration = errors.New("device: registration partially applied")

	// ErrInvalidCandidate is returned when a registration candidate fails validation.
	ErrInvalidCandidate = errors.New("device: invalid candidate")
)

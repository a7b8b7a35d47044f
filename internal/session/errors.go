package session

import (
	"errors"

	"github.com/nerrad567/tellhub/internal/device"
	"github.com/nerrad567/tellhub/internal/process"
	"github.com/nerrad567/tellhub/internal/protocol"
	"github.com/nerrad567/tellhub/internal/schedule"
)

var (
	// ErrClosed is returned by Push after the session has started closing.
	ErrClosed = errors.New("session: closed")

	// ErrAlreadyServed is returned when Serve is called twice.
	ErrAlreadyServed = errors.New("session: already served")

	// ErrWriteFailed wraps transport write errors.
	ErrWriteFailed = errors.New("session: write failed")
)

// errorCode maps a handler error to the code sent to the client.
func errorCode(err error) string {
	switch {
	case errors.Is(err, protocol.ErrDecode):
		return protocol.CodeDecode
	case errors.Is(err, protocol.ErrInvalidPayload),
		errors.Is(err, device.ErrInvalidCandidate),
		errors.Is(err, schedule.ErrInvalidEvent):
		return protocol.CodeInvalidPayload
	case errors.Is(err, device.ErrDeviceNotFound):
		return protocol.CodeNotFound
	case errors.Is(err, device.ErrParse):
		return protocol.CodeParse
	case errors.Is(err, device.ErrPartialRegistration):
		return protocol.CodePartialRegistration
	case errors.Is(err, device.ErrCommand), errors.Is(err, process.ErrCommandFailed):
		return protocol.CodeCommandFailed
	default:
		return protocol.CodeInternal
	}
}

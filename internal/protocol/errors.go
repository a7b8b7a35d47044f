package protocol

import "errors"

var (
	// ErrDecode is returned for frames that are not valid JSON, have no kind,
	// or carry a kind this server does not know.
	ErrDecode = errors.New("protocol: undecodable message")

	// ErrInvalidPayload is returned when a payload does not match its kind.
	ErrInvalidPayload = errors.New("protocol: invalid payload")
)

// Error codes carried in error payloads.
const (
	CodeDecode              = "decode_error"
	CodeInvalidPayload      = "invalid_payload"
	CodeNotFound            = "not_found"
	CodeParse               = "parse_error"
	CodeCommandFailed       = "command_failed"
	CodePartialRegistration = "partial_registration"
	CodeInternal            = "internal_error"
)

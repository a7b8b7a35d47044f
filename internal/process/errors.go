package process

import "errors"

// Use errors.Is() to check for these errors in calling code.
var (
	// ErrCommandFailed is returned when a command cannot be started, exits
	// non-zero, or exceeds its timeout. Any captured output is discarded.
	ErrCommandFailed = errors.New("process: command failed")

	// ErrEmptyCommand is returned when Run is called with a blank command.
	ErrEmptyCommand = errors.New("process: empty command")

	// ErrAppendFailed is returned when a file cannot be opened or written.
	ErrAppendFailed = errors.New("process: append to file failed")
)

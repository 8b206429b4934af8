package eufy

import "errors"

// Bridge errors. Command failures are also reported to MQTT as AckError codes.
var (
	// ErrUnknownCommand is returned for a command name the bridge does not handle.
	ErrUnknownCommand = errors.New("eufy: unknown command")

	// ErrInvalidParameters is returned when command parameters are missing or
	// have the wrong type.
	ErrInvalidParameters = errors.New("eufy: invalid command parameters")

	// ErrCameraNotFound is returned when no discovered camera has the serial.
	ErrCameraNotFound = errors.New("eufy: camera not found")
)

package camera

import "errors"

// Domain errors for the camera facade.
var (
	// ErrDeviceNotFound is returned by Update when the device list no longer
	// contains this camera.
	ErrDeviceNotFound = errors.New("camera: device not found")

	// ErrUnexpectedResponse is returned when a cloud response lacks the
	// fields an operation needs.
	ErrUnexpectedResponse = errors.New("camera: unexpected response")

	// ErrUnsupported is returned when the camera's family does not bind the
	// attribute a convenience operation writes.
	ErrUnsupported = errors.New("camera: operation not supported by device family")
)

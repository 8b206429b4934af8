package camera

import (
	"context"
	"fmt"

	"github.com/nerrad567/gray-logic-eufy/internal/bridges/eufy/params"
)

// set writes a single attribute. Attributes the family does not bind are
// reported as ErrUnsupported.
func (c *Camera) set(ctx context.Context, name string, value any) error {
	if _, err := c.schema.Lookup(name); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	return c.SetParams(ctx, params.Set(name, value))
}

// StatusLEDOn turns the status LED on.
func (c *Camera) StatusLEDOn(ctx context.Context) error {
	return c.set(ctx, params.AttrStatusLED, true)
}

// StatusLEDOff turns the status LED off.
func (c *Camera) StatusLEDOff(ctx context.Context) error {
	return c.set(ctx, params.AttrStatusLED, false)
}

// TurnOn powers the camera on.
func (c *Camera) TurnOn(ctx context.Context) error {
	return c.set(ctx, params.AttrOpenDevice, true)
}

// TurnOff powers the camera off.
func (c *Camera) TurnOff(ctx context.Context) error {
	return c.set(ctx, params.AttrOpenDevice, false)
}

// StartMotionDetection enables motion detection.
func (c *Camera) StartMotionDetection(ctx context.Context) error {
	return c.set(ctx, params.AttrMotionDetectionSwitch, true)
}

// StopMotionDetection disables motion detection.
func (c *Camera) StopMotionDetection(ctx context.Context) error {
	return c.set(ctx, params.AttrMotionDetectionSwitch, false)
}

// SetMotionDetectionMode selects what motion detection reacts to.
// The member must belong to the family's motion detection enumeration.
func (c *Camera) SetMotionDetectionMode(ctx context.Context, mode params.EnumValue) error {
	return c.set(ctx, params.AttrMotionDetectionType, mode)
}

// SetMotionDetectionSensitivity sets the motion detection sensitivity.
// Indoor cameras take a params.DetectionSensitivities member; doorbells
// take a plain level.
func (c *Camera) SetMotionDetectionSensitivity(ctx context.Context, level any) error {
	return c.set(ctx, params.AttrMotionDetectionSensitivity, level)
}

// StartSoundDetection enables sound detection.
func (c *Camera) StartSoundDetection(ctx context.Context) error {
	return c.set(ctx, params.AttrSoundDetectionSwitch, true)
}

// StopSoundDetection disables sound detection.
func (c *Camera) StopSoundDetection(ctx context.Context) error {
	return c.set(ctx, params.AttrSoundDetectionSwitch, false)
}

// SetSoundDetectionMode selects what sound detection reacts to.
func (c *Camera) SetSoundDetectionMode(ctx context.Context, mode params.EnumValue) error {
	return c.set(ctx, params.AttrSoundDetectionType, mode)
}

// SetSoundDetectionSensitivity sets the sound detection sensitivity.
func (c *Camera) SetSoundDetectionSensitivity(ctx context.Context, level params.EnumValue) error {
	return c.set(ctx, params.AttrSoundDetectionSensitivity, level)
}

// SnoozeOff clears the notification snooze.
func (c *Camera) SnoozeOff(ctx context.Context) error {
	return c.set(ctx, params.AttrSnoozeMode, nil)
}

// SnoozeFor snoozes notifications for the given number of seconds.
//
// This issues two separate writes, each followed by a refresh: first the
// snooze start timestamp, then the snooze descriptor naming the current
// account. If the first write fails the second is not attempted.
func (c *Camera) SnoozeFor(ctx context.Context, seconds int) error {
	if seconds < 0 {
		return fmt.Errorf("%w: snooze duration %d is negative", params.ErrInvalidValue, seconds)
	}
	if err := c.set(ctx, params.AttrSnoozedAt, int(c.now().Unix())); err != nil {
		return err
	}
	return c.set(ctx, params.AttrSnoozeMode, params.Object{
		params.SnoozeAccountID: c.api.UserID(),
		params.SnoozeTime:      seconds,
	})
}

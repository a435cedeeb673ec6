package d2d

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the core.
var (
	// ErrDeviceRemoved is the distinguished status a [Driver] reports
	// when the hardware device behind it has been invalidated (driver
	// reset, display mode change, adapter removal). Drivers wrap their
	// platform-native codes so that errors.Is(err, ErrDeviceRemoved)
	// holds; every other driver error is treated as a hard creation
	// failure, never as staleness.
	ErrDeviceRemoved = errors.New("d2d: device removed")

	// ErrDeviceLost is returned by [Session.End] when the driver
	// reported ErrDeviceRemoved while flushing. It is a signal, not a
	// fault: the device generation has already been advanced, and every
	// outstanding resource rebuilds itself on next use. Callers are
	// expected to skip the frame and keep rendering.
	ErrDeviceLost = errors.New("d2d: device lost")

	// ErrSessionActive is returned by [RenderTarget.BeginDraw] when a
	// draw session is already open on the target. This is caller
	// misuse; no device state is touched.
	ErrSessionActive = errors.New("d2d: draw session already active")

	// ErrDeviceClosed is returned when operations are attempted on a
	// closed Device.
	ErrDeviceClosed = errors.New("d2d: device closed")

	// ErrNoDriver is returned by [NewDevice] when no driver has been
	// registered and none was injected via [WithDriver].
	ErrNoDriver = errors.New("d2d: no driver registered")
)

// CreationError reports that the driver rejected resource construction
// for a reason unrelated to device loss: bad parameters, out of memory,
// an unsupported format. The core never retries these; the caller
// decides whether to adjust the descriptor and try again.
type CreationError struct {
	// Kind names the resource that failed to build ("brush", "bitmap",
	// "stroke style", "render target").
	Kind string

	// Label is the optional debug label of the resource, if any.
	Label string

	// Err is the underlying driver error.
	Err error
}

// Error implements the error interface.
func (e *CreationError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("d2d: creating %s %q: %v", e.Kind, e.Label, e.Err)
	}
	return fmt.Sprintf("d2d: creating %s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying driver error.
func (e *CreationError) Unwrap() error {
	return e.Err
}

// wrapCreate classifies a driver creation error. Device-removed status
// surfaces as ErrDeviceLost (the resource will be rebuilt once the
// device is back; the generation bump happens at End, not here).
// Anything else becomes a *CreationError.
func wrapCreate(kind, label string, err error) error {
	if errors.Is(err, ErrDeviceRemoved) {
		return fmt.Errorf("d2d: creating %s: %w", kind, ErrDeviceLost)
	}
	return &CreationError{Kind: kind, Label: label, Err: err}
}

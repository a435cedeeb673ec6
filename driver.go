package d2d

import (
	"sync"
)

// Driver is the boundary between the resilience core and a concrete
// hardware (or software) rendering implementation.
//
// The core calls a Driver for exactly two things: constructing
// device-dependent handles from descriptors, and flushing a batched
// command list to a surface. Everything generation-related — staleness
// detection, rebuild, loss bookkeeping — lives above this interface.
//
// A Driver signals device loss by returning an error for which
// errors.Is(err, [ErrDeviceRemoved]) holds, either from a creation call
// or from [DriverSurface.Flush]. All other errors are surfaced to the
// application verbatim inside a [*CreationError].
//
// Drivers follow the same single-threaded discipline as the Device that
// owns them: one driver instance per Device, used from one goroutine.
type Driver interface {
	// Name returns the driver identifier (e.g. "soft", "wgpu").
	Name() string

	// Init acquires the underlying device. Called once by NewDevice.
	Init() error

	// Close releases the underlying device. The driver must not be
	// used after Close.
	Close()

	// CreateSurface builds a drawable surface. The returned handle is
	// valid for the current device incarnation only.
	CreateSurface(desc TargetDesc) (DriverSurface, error)

	// CreateBrush builds a paint brush handle.
	CreateBrush(desc BrushDesc) (DriverBrush, error)

	// CreateBitmap builds a device bitmap from CPU pixels.
	CreateBitmap(desc BitmapDesc) (DriverBitmap, error)

	// CreateStrokeStyle builds a stroke style handle.
	CreateStrokeStyle(desc StrokeDesc) (DriverStroke, error)
}

// DriverSurface is a driver-owned drawable surface handle.
type DriverSurface interface {
	// Size returns the surface dimensions in pixels.
	Size() Size

	// Flush executes a batched command list against the surface.
	// Returns an error wrapping ErrDeviceRemoved if the device was
	// lost; an empty command list is a clean no-op.
	Flush(cmds []Command) error

	// Destroy releases the surface handle.
	Destroy()
}

// DriverBrush is a driver-owned brush handle.
type DriverBrush interface {
	Destroy()
}

// DriverBitmap is a driver-owned bitmap handle.
type DriverBitmap interface {
	// Size returns the bitmap dimensions in pixels.
	Size() Size

	Destroy()
}

// DriverStroke is a driver-owned stroke style handle.
type DriverStroke interface {
	Destroy()
}

// DriverFactory creates a new driver instance for one Device.
type DriverFactory func() Driver

var (
	driverMu sync.RWMutex
	drivers  = make(map[string]DriverFactory)

	// Priority order for default driver selection (first registered
	// name in this list wins). GPU beats software when both are linked.
	driverPriority = []string{"wgpu", "soft"}
)

// RegisterDriver registers a driver factory under a name. Driver
// packages call this from init(), so enabling a driver is a blank
// import:
//
//	import _ "github.com/gogpu/d2d/driver/soft"
//
// Registering an existing name replaces the previous factory.
func RegisterDriver(name string, factory DriverFactory) {
	driverMu.Lock()
	defer driverMu.Unlock()
	drivers[name] = factory
}

// UnregisterDriver removes a driver from the registry. Useful in tests.
func UnregisterDriver(name string) {
	driverMu.Lock()
	defer driverMu.Unlock()
	delete(drivers, name)
}

// Drivers returns the names of all registered drivers.
func Drivers() []string {
	driverMu.RLock()
	defer driverMu.RUnlock()

	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	return names
}

// defaultDriver picks the best registered driver by priority, falling
// back to any registered driver. Returns ErrNoDriver when the registry
// is empty.
func defaultDriver() (Driver, error) {
	driverMu.RLock()
	defer driverMu.RUnlock()

	for _, name := range driverPriority {
		if factory, ok := drivers[name]; ok {
			if d := factory(); d != nil {
				return d, nil
			}
		}
	}
	for _, factory := range drivers {
		if d := factory(); d != nil {
			return d, nil
		}
	}
	return nil, ErrNoDriver
}

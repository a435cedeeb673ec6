package d2d

import "fmt"

// Device owns one incarnation chain of a hardware device: it holds the
// driver, the current [Generation], and the sole authority to construct
// device-dependent resources and to declare a new generation.
//
// A Device retains no reference to the resources it creates — each
// resource is exclusively owned by its caller and carries everything
// needed to rebuild itself. The only state shared between resources of
// one Device is the generation counter, which resources read and only
// [Session.End] may advance.
//
// Create one Device per goroutine; Devices share nothing and need no
// synchronization. See the package documentation for the threading
// contract.
type Device struct {
	driver Driver
	gen    Generation
	label  string
	closed bool
}

// NewDevice acquires a device from the best registered driver (or the
// one injected with [WithDriver]) and starts its generation counter at
// zero.
func NewDevice(opts ...DeviceOption) (*Device, error) {
	var o deviceOptions
	for _, opt := range opts {
		opt(&o)
	}

	drv := o.driver
	if drv == nil && o.driverName != "" {
		driverMu.RLock()
		factory, ok := drivers[o.driverName]
		driverMu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoDriver, o.driverName)
		}
		drv = factory()
	}
	if drv == nil {
		var err error
		drv, err = defaultDriver()
		if err != nil {
			return nil, err
		}
	}

	if err := drv.Init(); err != nil {
		return nil, fmt.Errorf("d2d: driver %q init: %w", drv.Name(), err)
	}

	Logger().Info("d2d: device acquired", "driver", drv.Name(), "label", o.label)
	return &Device{driver: drv, label: o.label}, nil
}

// Generation returns the current device generation. Resources compare
// their built generation against this value to detect staleness.
func (d *Device) Generation() Generation {
	return d.gen
}

// DriverName returns the name of the driver backing this device.
func (d *Device) DriverName() string {
	return d.driver.Name()
}

// Label returns the debug label given at creation, if any.
func (d *Device) Label() string {
	return d.label
}

// invalidate advances the generation counter by one, lazily staling
// every outstanding resource. No live handle is touched here; stale
// handles are dropped and rebuilt on their next resolve. Called only
// from Session.End on a detected device loss, never by applications.
func (d *Device) invalidate() {
	d.gen++
	Logger().Warn("d2d: device lost, resources staled", "driver", d.driver.Name(), "generation", d.gen)
}

// Close releases the underlying driver device. Resources created from
// the device keep their descriptors but can no longer resolve. Close is
// idempotent.
func (d *Device) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.driver.Close()
	Logger().Info("d2d: device closed", "driver", d.driver.Name(), "label", d.label)
	return nil
}

// checkOpen guards creation calls against a closed device.
func (d *Device) checkOpen() error {
	if d.closed {
		return ErrDeviceClosed
	}
	return nil
}

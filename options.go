package d2d

// DeviceOption configures a Device during creation.
//
//	// Best registered driver (wgpu when linked, else soft):
//	dev, err := d2d.NewDevice()
//
//	// Explicit driver instance (dependency injection):
//	dev, err := d2d.NewDevice(d2d.WithDriver(myDriver))
type DeviceOption func(*deviceOptions)

// deviceOptions holds optional configuration for NewDevice.
type deviceOptions struct {
	driver     Driver
	driverName string
	label      string
}

// WithDriver injects a specific driver instance, bypassing the
// registry. The Device takes ownership and closes the driver on Close.
func WithDriver(drv Driver) DeviceOption {
	return func(o *deviceOptions) {
		o.driver = drv
	}
}

// WithDriverName selects a registered driver by name instead of using
// priority-based default selection.
func WithDriverName(name string) DeviceOption {
	return func(o *deviceOptions) {
		o.driverName = name
	}
}

// WithLabel attaches a debug label to the Device. The label shows up in
// log output and creation errors.
func WithLabel(label string) DeviceOption {
	return func(o *deviceOptions) {
		o.label = label
	}
}

package d2d

// Brush represents what to paint with. This is a sealed interface —
// only resource types in this package implement it, because drawing
// primitives must be able to resolve the brush against the device
// generation before dispatch.
type Brush interface {
	// resolveBrush returns a driver handle valid for the device's
	// current generation, rebuilding if stale. Seals the interface.
	resolveBrush(d *Device) (DriverBrush, error)
}

// BrushDesc is the driver-facing creation descriptor for brushes.
type BrushDesc struct {
	// Color is the paint color for solid brushes.
	Color Color

	// Label is an optional debug label.
	Label string
}

// SolidBrush paints an area with a single solid color.
//
// The brush keeps the Color it was created from; after a device loss it
// rebuilds its device handle from that color on next use, so a cached
// SolidBrush stays valid for the life of the application. Cache and
// reuse brushes across frames for best performance.
type SolidBrush struct {
	color Color
	label string
	state handleState[DriverBrush]
}

// CreateSolidBrush builds a solid color brush against the current
// device generation. The device handle is allocated immediately; a
// driver rejection surfaces as a [*CreationError].
func (d *Device) CreateSolidBrush(c Color) (*SolidBrush, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	b := &SolidBrush{color: c}
	if _, err := b.resolveBrush(d); err != nil {
		return nil, err
	}
	return b, nil
}

// Color returns the color the brush was created from.
func (b *SolidBrush) Color() Color {
	return b.color
}

// Generation returns the device generation the current handle was
// built under.
func (b *SolidBrush) Generation() Generation {
	return b.state.generation()
}

// Release drops the device handle. The brush can still be used
// afterwards — the next resolve rebuilds it — so Release is an
// optimization for brushes known to be done with, not a destructor.
func (b *SolidBrush) Release() {
	b.state.release()
}

// resolveBrush implements Brush.
func (b *SolidBrush) resolveBrush(d *Device) (DriverBrush, error) {
	return b.state.resolve(d, "brush", b.label, func(drv Driver) (DriverBrush, error) {
		return drv.CreateBrush(BrushDesc{Color: b.color, Label: b.label})
	})
}

package d2d

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// TargetDesc is the creation descriptor for render targets.
type TargetDesc struct {
	Width, Height int
	Format        gputypes.TextureFormat
	Label         string
}

// RenderTarget is the managed resource representing the drawable
// surface, plus the draw-session state machine: Idle → Drawing → Idle.
// At most one [Session] may be open on a target at a time.
//
// Like every managed resource, the target survives device loss — the
// surface handle is rebuilt from the descriptor by the next BeginDraw.
type RenderTarget struct {
	desc    TargetDesc
	state   handleState[DriverSurface]
	drawing bool
}

// CreateRenderTarget builds a drawable surface against the current
// device generation. A zero Format defaults to RGBA8.
func (d *Device) CreateRenderTarget(desc TargetDesc) (*RenderTarget, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, &CreationError{
			Kind:  "render target",
			Label: desc.Label,
			Err:   fmt.Errorf("invalid size %dx%d", desc.Width, desc.Height),
		}
	}
	if desc.Format == gputypes.TextureFormatUndefined {
		desc.Format = gputypes.TextureFormatRGBA8Unorm
	}
	t := &RenderTarget{desc: desc}
	if _, err := t.resolve(d); err != nil {
		return nil, err
	}
	return t, nil
}

// Size returns the target dimensions from the descriptor.
func (t *RenderTarget) Size() Size {
	return Size{Width: t.desc.Width, Height: t.desc.Height}
}

// Generation returns the device generation the current surface handle
// was built under.
func (t *RenderTarget) Generation() Generation {
	return t.state.generation()
}

// Drawing reports whether a draw session is currently open.
func (t *RenderTarget) Drawing() bool {
	return t.drawing
}

// BeginDraw opens a draw session for the next frame. It resolves the
// target's own surface first — after a device loss this is where the
// surface is rebuilt — and transitions the target to Drawing.
//
// Opening a second session while one is active is caller misuse:
// BeginDraw returns [ErrSessionActive] without touching any device
// state. The device is passed explicitly rather than stored so that
// resources never hold a reference to their Device.
func (t *RenderTarget) BeginDraw(d *Device) (*Session, error) {
	if t.drawing {
		return nil, ErrSessionActive
	}
	surface, err := t.resolve(d)
	if err != nil {
		return nil, err
	}
	t.drawing = true
	return &Session{dev: d, target: t, surface: surface}, nil
}

// Resize changes the surface dimensions. This is the window-resize
// path, not a device loss: only this target's own handle is dropped,
// the generation does not move, and sibling resources stay valid. The
// next BeginDraw rebuilds the surface at the new size.
//
// Resizing during an open session returns ErrSessionActive.
func (t *RenderTarget) Resize(size Size) error {
	if t.drawing {
		return ErrSessionActive
	}
	if size.IsZero() {
		return &CreationError{
			Kind:  "render target",
			Label: t.desc.Label,
			Err:   fmt.Errorf("invalid size %dx%d", size.Width, size.Height),
		}
	}
	if size.Width == t.desc.Width && size.Height == t.desc.Height {
		return nil
	}
	t.desc.Width = size.Width
	t.desc.Height = size.Height
	t.state.release()
	return nil
}

// Release drops the surface handle for explicit teardown (e.g. window
// destruction). Not modeled as device loss; the descriptor survives
// and the target could be resolved again.
func (t *RenderTarget) Release() {
	t.state.release()
}

// resolve returns a surface handle valid for the current generation.
func (t *RenderTarget) resolve(d *Device) (DriverSurface, error) {
	return t.state.resolve(d, "render target", t.desc.Label, func(drv Driver) (DriverSurface, error) {
		return drv.CreateSurface(t.desc)
	})
}

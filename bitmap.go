package d2d

import (
	"image"
	"image/draw"

	"github.com/gogpu/gputypes"
)

// BitmapDesc is the creation descriptor for device bitmaps: the CPU
// pixel source a device bitmap is built from, and rebuilt from after a
// device loss. Pix is straight-alpha RGBA, 4 bytes per pixel, rows of
// Width*4 bytes with no padding.
type BitmapDesc struct {
	Width, Height int
	Format        gputypes.TextureFormat
	Pix           []uint8
	Label         string
}

// clone deep-copies the descriptor so the stored recipe stays immutable
// even if the caller keeps mutating its pixel slice.
func (desc BitmapDesc) clone() BitmapDesc {
	out := desc
	out.Pix = make([]uint8, len(desc.Pix))
	copy(out.Pix, desc.Pix)
	return out
}

// BitmapDescFromImage builds a BitmapDesc from any image.Image,
// converting to RGBA as needed.
func BitmapDescFromImage(img image.Image) BitmapDesc {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	return BitmapDesc{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: gputypes.TextureFormatRGBA8Unorm,
		Pix:    rgba.Pix,
	}
}

// Bitmap is a device bitmap wrapped with its CPU pixel source. Like
// every managed resource it survives device loss: the pixels live in
// the descriptor, and the device copy is rebuilt on next use.
type Bitmap struct {
	desc  BitmapDesc
	state handleState[DriverBitmap]
}

// CreateBitmap builds a device bitmap from a descriptor. The
// descriptor is deep-copied; the device handle is allocated
// immediately.
func (d *Device) CreateBitmap(desc BitmapDesc) (*Bitmap, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	if desc.Format == gputypes.TextureFormatUndefined {
		desc.Format = gputypes.TextureFormatRGBA8Unorm
	}
	bm := &Bitmap{desc: desc.clone()}
	if _, err := bm.resolve(d); err != nil {
		return nil, err
	}
	return bm, nil
}

// CreateBitmapFromImage is a convenience wrapper around
// [BitmapDescFromImage] and [Device.CreateBitmap].
func (d *Device) CreateBitmapFromImage(img image.Image) (*Bitmap, error) {
	return d.CreateBitmap(BitmapDescFromImage(img))
}

// Size returns the bitmap dimensions in pixels.
func (bm *Bitmap) Size() Size {
	return Size{Width: bm.desc.Width, Height: bm.desc.Height}
}

// Generation returns the device generation the current handle was
// built under.
func (bm *Bitmap) Generation() Generation {
	return bm.state.generation()
}

// Release drops the device handle, keeping the pixel source.
func (bm *Bitmap) Release() {
	bm.state.release()
}

// resolve returns a driver handle valid for the current generation.
func (bm *Bitmap) resolve(d *Device) (DriverBitmap, error) {
	return bm.state.resolve(d, "bitmap", bm.desc.Label, func(drv Driver) (DriverBitmap, error) {
		return drv.CreateBitmap(bm.desc)
	})
}

// Package d2d provides a device-loss-resilient 2D drawing layer.
//
// # Overview
//
// Hardware-accelerated 2D rendering APIs hand out device-dependent
// objects (render targets, brushes, bitmaps) that silently die whenever
// the underlying device is invalidated: a driver reset, a display mode
// change, an adapter removal. d2d lets applications hold long-lived
// handles to those objects without ever detecting loss or recreating
// anything by hand.
//
// Every device-dependent object is wrapped with the immutable recipe it
// was created from and stamped with the device generation it was built
// against. When the device is lost, the generation advances and stale
// objects are rebuilt transparently the next time they are used.
//
// # Quick Start
//
//	dev, err := d2d.NewDevice()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Close()
//
//	target, _ := dev.CreateRenderTarget(d2d.TargetDesc{Width: 640, Height: 480})
//	brush, _ := dev.CreateSolidBrush(d2d.Red)
//
//	for running {
//		s, err := target.BeginDraw(dev)
//		if err != nil {
//			log.Fatal(err)
//		}
//		s.Clear(d2d.White)
//		s.FillRect(d2d.RectWH(10, 10, 100, 50), brush)
//		if err := s.End(); errors.Is(err, d2d.ErrDeviceLost) {
//			continue // resources self-heal on the next frame
//		}
//	}
//
// A frame that observes [ErrDeviceLost] is simply skipped; the brush and
// the target rebuild themselves from their stored descriptors on the
// next BeginDraw/draw call. No recovery call exists, because none is
// needed.
//
// # Drivers
//
// Drawing is executed by a pluggable [Driver]. The soft driver
// (driver/soft) is a pure-CPU implementation that is always available;
// the wgpu driver (driver/wgpu) renders through a GPU device shared
// with a host application. Drivers self-register on import:
//
//	import _ "github.com/gogpu/d2d/driver/soft"
//
// # Threading
//
// A Device and everything created from it belong to one goroutine.
// Parallel rendering uses independent Devices, which share no state.
// This is a documented contract, not enforced by locks, matching the
// single-threaded discipline of the platform APIs underneath.
package d2d

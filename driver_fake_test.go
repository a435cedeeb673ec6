package d2d

import "fmt"

// fakeDriver is a scriptable in-memory driver for exercising the
// resilience core without real hardware. Failures are injected per
// call site: failCreate makes the next creation call fail, loseFlush
// makes the next Flush report the device-removed status (consumed
// once, like a real transient loss).
type fakeDriver struct {
	initErr   error
	failCreate error
	loseFlush bool

	inited bool
	closed bool

	surfaceBuilds int
	brushBuilds   int
	bitmapBuilds  int
	strokeBuilds  int
	flushes       int

	lastFlushed []Command
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{}
}

func (f *fakeDriver) Name() string { return "fake" }

func (f *fakeDriver) Init() error {
	if f.initErr != nil {
		return f.initErr
	}
	f.inited = true
	return nil
}

func (f *fakeDriver) Close() { f.closed = true }

func (f *fakeDriver) takeCreateErr() error {
	err := f.failCreate
	f.failCreate = nil
	return err
}

func (f *fakeDriver) CreateSurface(desc TargetDesc) (DriverSurface, error) {
	if err := f.takeCreateErr(); err != nil {
		return nil, err
	}
	f.surfaceBuilds++
	return &fakeSurface{driver: f, size: Size{Width: desc.Width, Height: desc.Height}}, nil
}

func (f *fakeDriver) CreateBrush(desc BrushDesc) (DriverBrush, error) {
	if err := f.takeCreateErr(); err != nil {
		return nil, err
	}
	f.brushBuilds++
	return &fakeHandle{}, nil
}

func (f *fakeDriver) CreateBitmap(desc BitmapDesc) (DriverBitmap, error) {
	if err := f.takeCreateErr(); err != nil {
		return nil, err
	}
	f.bitmapBuilds++
	return &fakeBitmap{size: Size{Width: desc.Width, Height: desc.Height}}, nil
}

func (f *fakeDriver) CreateStrokeStyle(desc StrokeDesc) (DriverStroke, error) {
	if err := f.takeCreateErr(); err != nil {
		return nil, err
	}
	f.strokeBuilds++
	return &fakeHandle{}, nil
}

type fakeHandle struct {
	destroyed bool
}

func (h *fakeHandle) Destroy() { h.destroyed = true }

type fakeBitmap struct {
	fakeHandle
	size Size
}

func (b *fakeBitmap) Size() Size { return b.size }

type fakeSurface struct {
	fakeHandle
	driver *fakeDriver
	size   Size
}

func (s *fakeSurface) Size() Size { return s.size }

func (s *fakeSurface) Flush(cmds []Command) error {
	s.driver.flushes++
	s.driver.lastFlushed = cmds
	if s.driver.loseFlush {
		s.driver.loseFlush = false
		return fmt.Errorf("fake: present failed: %w", ErrDeviceRemoved)
	}
	return nil
}

// newFakeDevice builds a Device over a fresh fakeDriver.
func newFakeDevice(t interface{ Fatalf(string, ...any) }) (*Device, *fakeDriver) {
	drv := newFakeDriver()
	dev, err := NewDevice(WithDriver(drv))
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}
	return dev, drv
}

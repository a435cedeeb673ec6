package d2d

import (
	"errors"
	"testing"
)

func TestNewDeviceStartsAtGenerationZero(t *testing.T) {
	dev, _ := newFakeDevice(t)
	defer func() { _ = dev.Close() }()

	if got := dev.Generation(); got != 0 {
		t.Errorf("Generation() = %v, want 0", got)
	}
}

func TestNewDeviceInitFailure(t *testing.T) {
	drv := newFakeDriver()
	drv.initErr = errors.New("no adapter")

	if _, err := NewDevice(WithDriver(drv)); err == nil {
		t.Fatal("NewDevice() error = nil, want init failure")
	}
}

func TestNewDeviceNoDriver(t *testing.T) {
	// The registry is empty in this package's tests; without an
	// injected driver NewDevice must fail cleanly.
	if _, err := NewDevice(); !errors.Is(err, ErrNoDriver) {
		t.Errorf("NewDevice() error = %v, want ErrNoDriver", err)
	}
}

func TestNewDeviceUnknownDriverName(t *testing.T) {
	if _, err := NewDevice(WithDriverName("nope")); !errors.Is(err, ErrNoDriver) {
		t.Errorf("NewDevice() error = %v, want ErrNoDriver", err)
	}
}

func TestNewDeviceByRegisteredName(t *testing.T) {
	RegisterDriver("fake", func() Driver { return newFakeDriver() })
	defer UnregisterDriver("fake")

	dev, err := NewDevice(WithDriverName("fake"), WithLabel("ui"))
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}
	defer func() { _ = dev.Close() }()

	if dev.DriverName() != "fake" {
		t.Errorf("DriverName() = %q, want %q", dev.DriverName(), "fake")
	}
	if dev.Label() != "ui" {
		t.Errorf("Label() = %q, want %q", dev.Label(), "ui")
	}
}

// Generations only ever increase: N invalidations from G yield G+N.
func TestGenerationMonotonicity(t *testing.T) {
	tests := []struct {
		name  string
		bumps int
	}{
		{"single bump", 1},
		{"repeated without intervening use", 3},
		{"many", 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, _ := newFakeDevice(t)
			defer func() { _ = dev.Close() }()

			start := dev.Generation()
			for i := 0; i < tt.bumps; i++ {
				dev.invalidate()
			}
			want := start + Generation(tt.bumps)
			if got := dev.Generation(); got != want {
				t.Errorf("Generation() after %d bumps = %v, want %v", tt.bumps, got, want)
			}
		})
	}
}

func TestCreateOnClosedDevice(t *testing.T) {
	dev, _ := newFakeDevice(t)
	if err := dev.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, err := dev.CreateSolidBrush(Red); !errors.Is(err, ErrDeviceClosed) {
		t.Errorf("CreateSolidBrush() error = %v, want ErrDeviceClosed", err)
	}
	if _, err := dev.CreateRenderTarget(TargetDesc{Width: 8, Height: 8}); !errors.Is(err, ErrDeviceClosed) {
		t.Errorf("CreateRenderTarget() error = %v, want ErrDeviceClosed", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	dev, drv := newFakeDevice(t)

	if err := dev.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := dev.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if !drv.closed {
		t.Error("driver not closed")
	}
}

// Creation failure is not staleness: a rejected descriptor surfaces as
// *CreationError and the generation counter does not move.
func TestCreationFailureIsNotStaleness(t *testing.T) {
	dev, drv := newFakeDevice(t)
	defer func() { _ = dev.Close() }()

	drv.failCreate = errors.New("unsupported format")
	_, err := dev.CreateSolidBrush(Red)

	var ce *CreationError
	if !errors.As(err, &ce) {
		t.Fatalf("CreateSolidBrush() error = %v, want *CreationError", err)
	}
	if ce.Kind != "brush" {
		t.Errorf("CreationError.Kind = %q, want %q", ce.Kind, "brush")
	}
	if got := dev.Generation(); got != 0 {
		t.Errorf("Generation() after creation failure = %v, want 0", got)
	}
}

// Device-removed during creation is loss, not a creation failure: it
// surfaces as ErrDeviceLost and, like all loss detection outside End,
// does not bump the generation.
func TestCreationDeviceRemovedSurfacesAsLost(t *testing.T) {
	dev, drv := newFakeDevice(t)
	defer func() { _ = dev.Close() }()

	drv.failCreate = ErrDeviceRemoved
	_, err := dev.CreateSolidBrush(Red)

	if !errors.Is(err, ErrDeviceLost) {
		t.Errorf("CreateSolidBrush() error = %v, want ErrDeviceLost", err)
	}
	var ce *CreationError
	if errors.As(err, &ce) {
		t.Errorf("device-removed wrongly classified as *CreationError: %v", err)
	}
	if got := dev.Generation(); got != 0 {
		t.Errorf("Generation() = %v, want 0 (bump happens only in End)", got)
	}
}

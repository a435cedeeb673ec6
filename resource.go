package d2d

// destroyer is the capability shared by all driver handles.
type destroyer interface {
	Destroy()
}

// handleState is the present/absent variant at the center of every
// managed resource: either no handle, or a handle plus the generation
// it was built under. resolve is the only operation permitted to
// transition between the two variants, which is what keeps the
// invariant "present implies built == device generation at last use"
// maintainable in one place.
type handleState[H destroyer] struct {
	handle  H
	present bool
	built   Generation
}

// resolve returns a handle valid for the device's current generation,
// rebuilding from the descriptor (via build) when the stored handle is
// absent or stale. The fast path is a generation compare and costs
// nothing else.
//
// After a generation bump, the first resolve of a resource performs
// exactly one rebuild attempt and later resolves are no-ops until the
// next bump. A failed rebuild leaves the resource absent, so the next
// resolve retries — rebuild is always safe to retry because staleness
// detection is monotonic.
func (s *handleState[H]) resolve(d *Device, kind, label string, build func(Driver) (H, error)) (H, error) {
	if s.present && s.built == d.gen {
		return s.handle, nil
	}
	if d.closed {
		var zero H
		return zero, ErrDeviceClosed
	}

	// Stale or absent: drop the dead handle and rebuild from the
	// descriptor against the current generation.
	if s.present {
		s.handle.Destroy()
		s.present = false
	}

	h, err := build(d.driver)
	if err != nil {
		var zero H
		return zero, wrapCreate(kind, label, err)
	}

	s.handle = h
	s.built = d.gen
	s.present = true
	Logger().Debug("d2d: resource built", "kind", kind, "label", label, "generation", s.built)
	return h, nil
}

// release drops the handle, if any, without touching the generation
// stamp. Used for explicit teardown, which is not modeled as loss.
func (s *handleState[H]) release() {
	if s.present {
		s.handle.Destroy()
		s.present = false
	}
}

// generation returns the generation the current handle was built under.
// Meaningful to callers mostly for diagnostics and tests; the value is
// retained even while the handle is absent.
func (s *handleState[H]) generation() Generation {
	return s.built
}

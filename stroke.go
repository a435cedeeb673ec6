package d2d

// Cap describes the shape at the ends of a stroked segment or dash.
type Cap uint8

const (
	// CapFlat ends the stroke exactly at the endpoint.
	CapFlat Cap = iota

	// CapSquare extends the stroke past the endpoint by half its width.
	CapSquare

	// CapRound ends the stroke with a half circle.
	CapRound
)

// Join describes how two stroked segments are connected.
type Join uint8

const (
	// JoinMiter connects segments with a sharp corner.
	JoinMiter Join = iota

	// JoinBevel connects segments with a flattened corner.
	JoinBevel

	// JoinRound connects segments with a circular arc.
	JoinRound
)

// StrokeDesc is the creation descriptor for stroke styles. Dash lengths
// are in multiples of the stroke width, matching the convention of the
// platform 2D APIs this layer fronts.
type StrokeDesc struct {
	StartCap, EndCap, DashCap Cap
	LineJoin                  Join
	MiterLimit                float64
	Dashes                    []float64
	DashOffset                float64
	Label                     string
}

// clone deep-copies the descriptor, including the dash pattern.
func (desc StrokeDesc) clone() StrokeDesc {
	out := desc
	if len(desc.Dashes) > 0 {
		out.Dashes = make([]float64, len(desc.Dashes))
		copy(out.Dashes, desc.Dashes)
	}
	return out
}

// StrokeStyle is a managed stroke style resource. Stroked primitives
// without a style use a plain solid stroke; a StrokeStyle adds caps,
// joins and dashing, and rebuilds itself after device loss like any
// other resource.
type StrokeStyle struct {
	desc  StrokeDesc
	state handleState[DriverStroke]
}

// CreateStrokeStyle builds a stroke style against the current device
// generation. The descriptor is deep-copied.
func (d *Device) CreateStrokeStyle(desc StrokeDesc) (*StrokeStyle, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}
	st := &StrokeStyle{desc: desc.clone()}
	if _, err := st.resolve(d); err != nil {
		return nil, err
	}
	return st, nil
}

// Generation returns the device generation the current handle was
// built under.
func (st *StrokeStyle) Generation() Generation {
	return st.state.generation()
}

// Release drops the device handle, keeping the descriptor.
func (st *StrokeStyle) Release() {
	st.state.release()
}

// resolve returns a driver handle valid for the current generation.
func (st *StrokeStyle) resolve(d *Device) (DriverStroke, error) {
	return st.state.resolve(d, "stroke style", st.desc.Label, func(drv Driver) (DriverStroke, error) {
		return drv.CreateStrokeStyle(st.desc)
	})
}

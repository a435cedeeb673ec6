package d2d

// Geometry value types passed through to the driver layer. These are
// plain descriptors: cheap to copy and independent of any device
// object, so they can appear inside creation descriptors and batched
// draw commands alike.

// Point is a position in target pixel space.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the vector sum of two points.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector difference of two points.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size is a width and height in pixels.
type Size struct {
	Width, Height int
}

// IsZero reports whether either dimension is non-positive.
func (s Size) IsZero() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect is an axis-aligned rectangle. Min is the top-left corner,
// Max the bottom-right; a rect with Max <= Min is empty.
type Rect struct {
	Min, Max Point
}

// RectWH builds a Rect from an origin and a width/height pair.
func RectWH(x, y, w, h float64) Rect {
	return Rect{Min: Point{X: x, Y: y}, Max: Point{X: x + w, Y: y + h}}
}

// Width returns the horizontal extent of the rect.
func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

// Height returns the vertical extent of the rect.
func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}

// Empty reports whether the rect encloses no area.
func (r Rect) Empty() bool {
	return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y
}

// RoundedRect is a rectangle with elliptical corner radii.
//
// Even with both radii zero a RoundedRect is not a Rect: when stroked,
// its corners are roundly joined rather than mitered.
type RoundedRect struct {
	Rect             Rect
	RadiusX, RadiusY float64
}

// Ellipse is an axis-aligned ellipse described by center and radii.
type Ellipse struct {
	Center           Point
	RadiusX, RadiusY float64
}

// Circle builds an Ellipse with equal radii.
func Circle(center Point, radius float64) Ellipse {
	return Ellipse{Center: center, RadiusX: radius, RadiusY: radius}
}

// Bounds returns the tight axis-aligned bounding rect of the ellipse.
func (e Ellipse) Bounds() Rect {
	return Rect{
		Min: Point{X: e.Center.X - e.RadiusX, Y: e.Center.Y - e.RadiusY},
		Max: Point{X: e.Center.X + e.RadiusX, Y: e.Center.Y + e.RadiusY},
	}
}

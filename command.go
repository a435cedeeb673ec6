package d2d

// CmdKind discriminates batched draw commands.
type CmdKind uint8

// Draw command kinds recorded by a Session and executed by a driver
// surface on flush.
const (
	// CmdClear fills the whole surface with Command.Color.
	CmdClear CmdKind = iota

	// CmdLine draws a line from P0 to P1 with Brush and StrokeWidth.
	CmdLine

	// CmdFillRect fills Rect with Brush.
	CmdFillRect

	// CmdStrokeRect outlines Rect with Brush and StrokeWidth.
	CmdStrokeRect

	// CmdFillRoundedRect fills Round with Brush.
	CmdFillRoundedRect

	// CmdStrokeRoundedRect outlines Round with Brush and StrokeWidth.
	CmdStrokeRoundedRect

	// CmdFillEllipse fills Ellipse with Brush.
	CmdFillEllipse

	// CmdStrokeEllipse outlines Ellipse with Brush and StrokeWidth.
	CmdStrokeEllipse

	// CmdDrawBitmap blits Bitmap into Dst with Opacity, scaling as
	// needed.
	CmdDrawBitmap
)

// Command is one batched draw operation. A Session records Commands
// with already-resolved driver handles — resolution happens at record
// time, against the device generation current at that moment, so a
// flush never touches the resilience layer.
//
// Only the fields relevant to Kind are meaningful; the rest stay zero.
type Command struct {
	Kind CmdKind

	// Clear color.
	Color Color

	// Line endpoints.
	P0, P1 Point

	// Rect geometry (fill/stroke rect, bitmap destination via Dst).
	Rect Rect

	// Rounded rect geometry.
	Round RoundedRect

	// Ellipse geometry.
	Ellipse Ellipse

	// Stroke parameters.
	StrokeWidth float64
	Stroke      DriverStroke // nil means a plain solid stroke

	// Paint source for geometry commands.
	Brush DriverBrush

	// Bitmap source and destination.
	Bitmap  DriverBitmap
	Dst     Rect
	Opacity float64
}

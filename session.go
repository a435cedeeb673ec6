package d2d

import "errors"

// Session is the scoped, exclusive handle for drawing one frame on a
// [RenderTarget]. Drawing may only be performed through a Session.
//
// Commands are batched: each primitive resolves the resources it
// references against the device's current generation at record time,
// then appends a command carrying the resolved handles. [Session.End]
// flushes the batch to the driver in one call and surfaces device loss.
//
// A Session is for one frame; obtain a fresh one from BeginDraw every
// frame. Using a Session after End panics — that is a programming
// error, not a runtime condition.
type Session struct {
	dev     *Device
	target  *RenderTarget
	surface DriverSurface
	cmds    []Command
	style   *StrokeStyle
	ended   bool
}

// Clear fills the entire surface with color.
func (s *Session) Clear(c Color) {
	s.checkActive()
	s.cmds = append(s.cmds, Command{Kind: CmdClear, Color: c})
}

// SetStrokeStyle selects the stroke style used by subsequent stroked
// primitives. Pass nil to return to a plain solid stroke. The style is
// resolved per primitive, so a style staled mid-session heals like any
// other resource.
func (s *Session) SetStrokeStyle(style *StrokeStyle) {
	s.style = style
}

// PutPixel paints a single pixel at p with brush.
func (s *Session) PutPixel(p Point, brush Brush) error {
	return s.FillRect(RectWH(p.X, p.Y, 1, 1), brush)
}

// DrawLine draws a line between p0 and p1 with the given stroke width.
func (s *Session) DrawLine(p0, p1 Point, brush Brush, width float64) error {
	s.checkActive()
	cmd := Command{Kind: CmdLine, P0: p0, P1: p1, StrokeWidth: width}
	if err := s.resolvePaint(&cmd, brush, true); err != nil {
		return err
	}
	s.cmds = append(s.cmds, cmd)
	return nil
}

// FillRect paints the interior of rect.
func (s *Session) FillRect(rect Rect, brush Brush) error {
	s.checkActive()
	cmd := Command{Kind: CmdFillRect, Rect: rect}
	if err := s.resolvePaint(&cmd, brush, false); err != nil {
		return err
	}
	s.cmds = append(s.cmds, cmd)
	return nil
}

// StrokeRect draws the outline of rect with the given stroke width.
func (s *Session) StrokeRect(rect Rect, brush Brush, width float64) error {
	s.checkActive()
	cmd := Command{Kind: CmdStrokeRect, Rect: rect, StrokeWidth: width}
	if err := s.resolvePaint(&cmd, brush, true); err != nil {
		return err
	}
	s.cmds = append(s.cmds, cmd)
	return nil
}

// FillRoundedRect paints the interior of a rounded rectangle.
func (s *Session) FillRoundedRect(rect RoundedRect, brush Brush) error {
	s.checkActive()
	cmd := Command{Kind: CmdFillRoundedRect, Round: rect}
	if err := s.resolvePaint(&cmd, brush, false); err != nil {
		return err
	}
	s.cmds = append(s.cmds, cmd)
	return nil
}

// StrokeRoundedRect draws the outline of a rounded rectangle. The
// corners are roundly joined even when both radii are zero.
func (s *Session) StrokeRoundedRect(rect RoundedRect, brush Brush, width float64) error {
	s.checkActive()
	cmd := Command{Kind: CmdStrokeRoundedRect, Round: rect, StrokeWidth: width}
	if err := s.resolvePaint(&cmd, brush, true); err != nil {
		return err
	}
	s.cmds = append(s.cmds, cmd)
	return nil
}

// FillEllipse paints the interior of an ellipse.
func (s *Session) FillEllipse(e Ellipse, brush Brush) error {
	s.checkActive()
	cmd := Command{Kind: CmdFillEllipse, Ellipse: e}
	if err := s.resolvePaint(&cmd, brush, false); err != nil {
		return err
	}
	s.cmds = append(s.cmds, cmd)
	return nil
}

// StrokeEllipse draws the outline of an ellipse with the given stroke
// width.
func (s *Session) StrokeEllipse(e Ellipse, brush Brush, width float64) error {
	s.checkActive()
	cmd := Command{Kind: CmdStrokeEllipse, Ellipse: e, StrokeWidth: width}
	if err := s.resolvePaint(&cmd, brush, true); err != nil {
		return err
	}
	s.cmds = append(s.cmds, cmd)
	return nil
}

// DrawBitmap blits a bitmap into dst, scaling as needed. opacity is in
// [0, 1]; values outside the range are clamped by the driver.
func (s *Session) DrawBitmap(bm *Bitmap, dst Rect, opacity float64) error {
	s.checkActive()
	handle, err := bm.resolve(s.dev)
	if err != nil {
		return err
	}
	s.cmds = append(s.cmds, Command{Kind: CmdDrawBitmap, Bitmap: handle, Dst: dst, Opacity: opacity})
	return nil
}

// End flushes the batched commands to the driver and closes the
// session. The target returns to Idle unconditionally — even on loss —
// so it is never left stuck in Drawing.
//
// If the driver reports the device-removed status, End advances the
// device generation exactly once and returns [ErrDeviceLost]. The
// caller's expected response is to keep rendering: every stale resource
// rebuilds itself on the next frame. A session with zero commands
// flushes cleanly and returns nil. End on an already-ended session is
// a no-op.
func (s *Session) End() error {
	if s.ended {
		return nil
	}
	s.ended = true
	s.target.drawing = false

	cmds := s.cmds
	s.cmds = nil
	err := s.surface.Flush(cmds)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDeviceRemoved) {
		s.dev.invalidate()
		return ErrDeviceLost
	}
	return err
}

// resolvePaint resolves the brush (and, for stroked primitives, the
// session stroke style) into the command. Resolution happens here, at
// record time, so a resource staled mid-session — by a loss detected on
// a sibling target of the same device — is rebuilt before its handle
// is captured.
func (s *Session) resolvePaint(cmd *Command, brush Brush, stroked bool) error {
	handle, err := brush.resolveBrush(s.dev)
	if err != nil {
		return err
	}
	cmd.Brush = handle
	if stroked && s.style != nil {
		st, err := s.style.resolve(s.dev)
		if err != nil {
			return err
		}
		cmd.Stroke = st
	}
	return nil
}

// checkActive panics if the session has already ended.
func (s *Session) checkActive() {
	if s.ended {
		panic("d2d: drawing on an ended session")
	}
}

package wm

import "strings"

// SessionKind distinguishes the two pointer session types.
type SessionKind int

const (
	SessionDrag SessionKind = iota
	SessionResize
)

func (k SessionKind) String() string {
	switch k {
	case SessionDrag:
		return "drag"
	case SessionResize:
		return "resize"
	default:
		return "unknown"
	}
}

// Direction names a resize handle. Compound directions combine two axes;
// the axis letters drive the resize math directly.
type Direction string

const (
	DirN  Direction = "n"
	DirS  Direction = "s"
	DirE  Direction = "e"
	DirW  Direction = "w"
	DirNE Direction = "ne"
	DirNW Direction = "nw"
	DirSE Direction = "se"
	DirSW Direction = "sw"
)

// Valid reports whether d is one of the eight handles.
func (d Direction) Valid() bool {
	switch d {
	case DirN, DirS, DirE, DirW, DirNE, DirNW, DirSE, DirSW:
		return true
	}
	return false
}

func (d Direction) hasNorth() bool { return strings.Contains(string(d), "n") }
func (d Direction) hasSouth() bool { return strings.Contains(string(d), "s") }
func (d Direction) hasEast() bool  { return strings.Contains(string(d), "e") }
func (d Direction) hasWest() bool  { return strings.Contains(string(d), "w") }

// Session is one live drag or resize. At most one exists process-wide; it is
// created on pointer-down over a title bar or handle and dies on pointer-up.
type Session struct {
	ID        Kind
	Kind      SessionKind
	Dir       Direction
	Start     Point // pointer position at pointer-down
	StartRect Rect  // window geometry at pointer-down
	Offset    Point // drag only: pointer-down minus window origin
}

// Controller owns the single interaction session and turns pointer events
// into registry geometry. Idle pointer motion is a nil check and nothing
// more.
type Controller struct {
	reg     *Registry
	store   SizePreferences
	session *Session
}

// NewController wires a controller to the registry it mutates and the size
// store resize results persist into. store may be nil.
func NewController(reg *Registry, store SizePreferences) *Controller {
	return &Controller{reg: reg, store: store}
}

// Session returns a copy of the live session, if any.
func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Active reports whether a drag or resize is in progress.
func (c *Controller) Active() bool {
	return c.session != nil
}

// StartDrag begins a drag from a title-bar pointer-down. Minimized and
// maximized windows ignore drags. The window is marked user-positioned and
// focused immediately, so the grabbed window is also the frontmost one. Any
// prior session is superseded.
func (c *Controller) StartDrag(id Kind, pointer Point) {
	w, ok := c.reg.Get(id)
	if !ok || !w.IsOpen || w.IsMinimized || w.IsMaximized {
		return
	}
	c.reg.MarkUserPositioned(id)
	c.reg.Focus(id)
	c.session = &Session{
		ID:        id,
		Kind:      SessionDrag,
		Start:     pointer,
		StartRect: RectAt(w.Position, w.Size),
		Offset:    pointer.Sub(w.Position),
	}
}

// StartResize begins a resize from a handle pointer-down. The window is
// marked user-sized and user-positioned and focused immediately. Any prior
// session is superseded.
func (c *Controller) StartResize(id Kind, dir Direction, pointer Point) {
	if !dir.Valid() {
		return
	}
	w, ok := c.reg.Get(id)
	if !ok || !w.IsOpen || w.IsMinimized || w.IsMaximized {
		return
	}
	c.reg.MarkUserSized(id)
	c.reg.MarkUserPositioned(id)
	c.reg.Focus(id)
	c.session = &Session{
		ID:        id,
		Kind:      SessionResize,
		Dir:       dir,
		Start:     pointer,
		StartRect: RectAt(w.Position, w.Size),
	}
}

// PointerMove applies live geometry for the active session. A session whose
// window has been closed underneath it is dropped silently.
func (c *Controller) PointerMove(pointer Point) {
	s := c.session
	if s == nil {
		return
	}
	w, ok := c.reg.Get(s.ID)
	if !ok || !w.IsOpen {
		c.session = nil
		return
	}
	bounds := c.reg.Bounds()
	if bounds.IsEmpty() {
		return
	}

	switch s.Kind {
	case SessionDrag:
		pos := ClampPosition(pointer.Sub(s.Offset), w.Size, bounds, c.reg.Metrics().Margin)
		c.reg.ApplyGeometry(s.ID, &pos, nil)
	case SessionResize:
		pos, size := resizeGeometry(s, pointer, bounds, c.reg.Metrics())
		c.reg.ApplyGeometry(s.ID, &pos, &size)
	}
}

// PointerUp ends the session. A resize on a still-open, non-maximized window
// persists the final size as that kind's preference; drags persist nothing.
func (c *Controller) PointerUp(pointer Point) {
	s := c.session
	if s == nil {
		return
	}
	c.session = nil

	if s.Kind != SessionResize || c.store == nil {
		return
	}
	w, ok := c.reg.Get(s.ID)
	if !ok || !w.IsOpen || w.IsMaximized {
		return
	}
	c.store.Set(s.ID, w.Size)
}

// Cancel drops any active session without persisting.
func (c *Controller) Cancel() {
	c.session = nil
}

// CancelFor drops the active session if it targets id. Close paths call this
// so a vanished window cannot keep receiving geometry.
func (c *Controller) CancelFor(id Kind) {
	if c.session != nil && c.session.ID == id {
		c.session = nil
	}
}

// resizeGeometry computes the rect for a resize session at the given pointer.
// Each axis in the direction grows from its edge with the opposite edge
// anchored: dimensions clamp to [min, max] first, then the anchored edge
// decides the position, then the position clamps into bounds.
func resizeGeometry(s *Session, pointer Point, bounds Rect, m Metrics) (Point, Size) {
	dx := pointer.X - s.Start.X
	dy := pointer.Y - s.Start.Y

	max := m.MaxSize(bounds)
	width := s.StartRect.Width
	height := s.StartRect.Height
	left := s.StartRect.Left
	top := s.StartRect.Top

	if s.Dir.hasEast() {
		width = clamp(s.StartRect.Width+dx, m.MinWidth, max.Width)
	}
	if s.Dir.hasWest() {
		width = clamp(s.StartRect.Width-dx, m.MinWidth, max.Width)
		left = s.StartRect.Left + (s.StartRect.Width - width)
	}
	if s.Dir.hasSouth() {
		height = clamp(s.StartRect.Height+dy, m.MinHeight, max.Height)
	}
	if s.Dir.hasNorth() {
		height = clamp(s.StartRect.Height-dy, m.MinHeight, max.Height)
		top = s.StartRect.Top + (s.StartRect.Height - height)
	}

	size := Size{Width: width, Height: height}
	pos := ClampPosition(Point{X: left, Y: top}, size, bounds, m.Margin)
	return pos, size
}

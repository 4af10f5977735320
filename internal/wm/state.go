// Package wm holds the window-management core of hivedesk: the per-window
// state registry, focus derivation, automatic layout, and the pointer-driven
// drag/resize session. It is presentation-agnostic: the shell feeds it
// viewport bounds, content measurements, and pointer events, and renders
// whatever the registry says.
//
// Everything in this package is owned by the shell's event loop. Nothing
// here is safe for concurrent use; callers on other goroutines must go
// through the program's message queue.
package wm

// Kind identifies one entry in the fixed catalog of window kinds the shell
// can open (for example "wallet" or "settings").
type Kind string

// WindowState is the canonical state of one window. One entry exists per
// known kind for the lifetime of the registry; windows are toggled, never
// destroyed.
type WindowState struct {
	Kind Kind

	// IsMaximized implies IsOpen and !IsMinimized.
	IsOpen      bool
	IsMinimized bool
	IsMaximized bool

	// ZIndex is monotonically non-decreasing across the process lifetime.
	ZIndex int

	Position Point
	Size     Size

	// UserSized and UserPositioned are sticky: once geometry has been set by
	// a manual resize, drag, or maximize, automatic layout must not silently
	// override it.
	UserSized      bool
	UserPositioned bool

	// NeedsLayout requests that the layout engine resolve geometry before
	// the window is presented as fully active.
	NeedsLayout bool

	// NormalRect snapshots geometry while maximized, for restore. Nil
	// otherwise.
	NormalRect *Rect
}

// Metrics carries the presentation constants layout and interaction math
// depend on. The shell fills it from configuration.
type Metrics struct {
	// Margin keeps non-maximized windows this far from every viewport edge.
	Margin float64

	// TitleBarHeight is added on top of measured content height.
	TitleBarHeight float64

	// PaddingX and PaddingY are the chrome cells around measured content.
	PaddingX float64
	PaddingY float64

	MinWidth  float64
	MinHeight float64
}

// maxSizeFraction bounds window dimensions relative to the viewport.
const maxSizeFraction = 0.8

// MaxSize returns the largest window size the viewport allows.
func (m Metrics) MaxSize(bounds Rect) Size {
	return Size{
		Width:  bounds.Width * maxSizeFraction,
		Height: bounds.Height * maxSizeFraction,
	}
}

// BoundsProvider reports the current layout container rectangle. Implementers
// fall back to the full terminal size when no container has been measured
// yet; a zero rect means "unknown" and suspends geometry work that needs it.
type BoundsProvider func() Rect

// SizePreferences persists a preferred window size per kind across sessions.
// A missing or unreadable preference is reported as absent, never as an
// error.
type SizePreferences interface {
	Get(kind Kind) (Size, bool)
	Set(kind Kind, size Size)
}

// ContentMeasurer reports the natural content size of a window's panel,
// excluding chrome. ok is false while the panel cannot be measured yet, in
// which case layout for that window is retried on a later pass.
type ContentMeasurer interface {
	Measure(kind Kind) (size Size, ok bool)
}

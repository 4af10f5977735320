package wm

import "math"

// goldenAngle is π·(3−√5) ≈ 2.399963 rad. Successive cascade placements fan
// out by this angle so no two windows ever open in exactly the same
// direction from center.
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// Cascade placement constants: the first window sits at dead center, later
// ones orbit it at a radius that grows with their index up to a cap.
const (
	cascadeBaseRadius = 24
	cascadeRadiusStep = 18
	cascadeMaxRadius  = 140
)

// Engine resolves geometry for windows flagged NeedsLayout. It prefers a
// stored size, falls back to content measurement with a golden-ratio floor
// on height, and cascades positions the user has not chosen.
type Engine struct {
	store   SizePreferences
	measure ContentMeasurer
}

// NewEngine builds a layout engine. Either dependency may be nil: a nil
// store means no remembered sizes, a nil measurer skips content-driven
// sizing until one is supplied.
func NewEngine(store SizePreferences, measure ContentMeasurer) *Engine {
	return &Engine{store: store, measure: measure}
}

// Relayout runs one batched layout pass: every open window with NeedsLayout
// set is resolved against a single bounds snapshot taken at entry, so
// windows laid out in the same pass agree about the viewport. Windows whose
// content cannot be measured yet stay pending for the next pass. Returns the
// number of windows resolved.
func (e *Engine) Relayout(r *Registry) int {
	bounds := r.Bounds()
	if bounds.IsEmpty() {
		return 0
	}

	pending := r.PendingLayout()
	if len(pending) == 0 {
		return 0
	}
	open := r.OpenKinds()

	resolved := 0
	for _, id := range pending {
		w, ok := r.Get(id)
		if !ok {
			continue
		}

		size, ok := e.resolveSize(r, id, bounds)
		if !ok {
			continue
		}

		var pos Point
		if w.UserPositioned {
			pos = w.Position
		} else {
			pos = cascadePosition(indexOf(open, id), size, bounds)
		}
		pos = ClampPosition(pos, size, bounds, r.Metrics().Margin)

		r.ResolveLayout(id, pos, size)
		resolved++
	}
	return resolved
}

// resolveSize picks the window's size: a stored preference wins and is
// honored as if the user had chosen it; otherwise content measurement with
// chrome added and a golden-ratio minimum height. ok is false when the
// content cannot be measured yet.
func (e *Engine) resolveSize(r *Registry, id Kind, bounds Rect) (Size, bool) {
	m := r.Metrics()
	max := m.MaxSize(bounds)

	if e.store != nil {
		if pref, ok := e.store.Get(id); ok && !pref.IsZero() {
			r.MarkUserSized(id)
			return Size{
				Width:  clamp(pref.Width, m.MinWidth, max.Width),
				Height: clamp(pref.Height, m.MinHeight, max.Height),
			}, true
		}
	}

	if e.measure == nil {
		return Size{}, false
	}
	content, ok := e.measure.Measure(id)
	if !ok {
		return Size{}, false
	}

	width := clamp(content.Width+m.PaddingX, m.MinWidth, max.Width)
	height := maxF(content.Height+m.TitleBarHeight+m.PaddingY, m.MinHeight)
	if height < width/math.Phi {
		height = width / math.Phi
	}
	height = clamp(height, m.MinHeight, max.Height)
	return Size{Width: width, Height: height}, true
}

// cascadePosition centers the window, then offsets it along the golden-angle
// spiral by its index among the open windows.
func cascadePosition(index int, size Size, bounds Rect) Point {
	pos := Point{
		X: (bounds.Width - size.Width) / 2,
		Y: (bounds.Height - size.Height) / 2,
	}
	if index > 0 {
		radius := math.Min(cascadeMaxRadius, cascadeBaseRadius+cascadeRadiusStep*float64(index))
		angle := float64(index) * goldenAngle
		pos.X += radius * math.Cos(angle)
		pos.Y += radius * math.Sin(angle)
	}
	return pos
}

// ClampPosition pins a window into the margin-inset viewport.
func ClampPosition(pos Point, size Size, bounds Rect, margin float64) Point {
	return Point{
		X: clamp(pos.X, margin, bounds.Width-size.Width-margin),
		Y: clamp(pos.Y, margin, bounds.Height-size.Height-margin),
	}
}

// indexOf returns id's position in kinds, or 0 when absent so a stray id
// degrades to center placement instead of failing.
func indexOf(kinds []Kind, id Kind) int {
	for i, k := range kinds {
		if k == id {
			return i
		}
	}
	return 0
}

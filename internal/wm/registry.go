package wm

// Registry is the canonical per-window state table. It holds exactly one
// WindowState per known kind from construction onward, so callers never deal
// with missing entries: operations on unknown kinds are no-ops.
//
// Focus is not stored. The focused window is derived on read as the open,
// non-minimized window with the highest z-index, which keeps it impossible
// for stored focus and stacking order to disagree.
type Registry struct {
	catalog  []Kind
	windows  map[Kind]*WindowState
	zCounter int
	metrics  Metrics
	bounds   BoundsProvider
}

// NewRegistry seeds one WindowState per kind, in catalog order. Seeded
// windows get default z-indices below everything the z-counter will ever
// hand out, so the first opened window already sits on top of the defaults.
func NewRegistry(kinds []Kind, metrics Metrics, bounds BoundsProvider) *Registry {
	r := &Registry{
		catalog: make([]Kind, 0, len(kinds)),
		windows: make(map[Kind]*WindowState, len(kinds)),
		metrics: metrics,
		bounds:  bounds,
	}
	for i, k := range kinds {
		if _, dup := r.windows[k]; dup {
			continue
		}
		r.catalog = append(r.catalog, k)
		r.windows[k] = &WindowState{Kind: k, ZIndex: i}
	}
	r.zCounter = len(r.catalog) - 1
	return r
}

func (r *Registry) nextZ() int {
	r.zCounter++
	return r.zCounter
}

// Metrics returns the presentation constants the registry was built with.
func (r *Registry) Metrics() Metrics {
	return r.metrics
}

// SetMetrics replaces the presentation constants. Subsequent layout and
// clamping use the new values; existing geometry is left as is.
func (r *Registry) SetMetrics(m Metrics) {
	r.metrics = m
}

// Bounds returns the current viewport bounds, or a zero rect when the
// provider has nothing to report yet.
func (r *Registry) Bounds() Rect {
	if r.bounds == nil {
		return Rect{}
	}
	return r.bounds()
}

// Open makes the window visible: sets IsOpen, clears IsMinimized, raises it
// to the top of the stack, and requests layout unless a fully user-resolved
// geometry survives from an earlier open.
func (r *Registry) Open(id Kind) {
	w, ok := r.windows[id]
	if !ok {
		return
	}
	w.IsOpen = true
	w.IsMinimized = false
	w.ZIndex = r.nextZ()
	w.NeedsLayout = !w.UserSized || !w.UserPositioned || w.Size.IsZero()
}

// Close hides the window and zeroes the maximize-related fields only.
// Geometry and the sticky user-intent flags survive for the next open.
func (r *Registry) Close(id Kind) {
	w, ok := r.windows[id]
	if !ok {
		return
	}
	w.IsOpen = false
	w.IsMinimized = false
	w.IsMaximized = false
	w.NormalRect = nil
	w.NeedsLayout = false
}

// Minimize hides an open window into the dock. A maximized window is first
// restored to its normal rect so a minimized window is never also maximized.
func (r *Registry) Minimize(id Kind) {
	w, ok := r.windows[id]
	if !ok || !w.IsOpen {
		return
	}
	if w.IsMaximized {
		r.restoreNormal(w)
	}
	w.IsMinimized = true
}

// ToggleMaximize flips between maximized and normal geometry. Maximizing
// snapshots the current rect, pins the window at (margin, margin), and fills
// the viewport minus margins; restoring reinstates the snapshot as
// user-chosen geometry, or requests layout when no snapshot exists. Either
// way the window ends up focused.
func (r *Registry) ToggleMaximize(id Kind) {
	w, ok := r.windows[id]
	if !ok || !w.IsOpen {
		return
	}
	if w.IsMaximized {
		r.restoreNormal(w)
		w.ZIndex = r.nextZ()
		return
	}

	b := r.Bounds()
	if b.IsEmpty() {
		return
	}
	w.IsMinimized = false
	snap := RectAt(w.Position, w.Size)
	w.NormalRect = &snap
	m := r.metrics.Margin
	w.Position = Point{X: m, Y: m}
	w.Size = Size{
		Width:  maxF(b.Width-2*m, r.metrics.MinWidth),
		Height: maxF(b.Height-2*m, r.metrics.MinHeight),
	}
	w.IsMaximized = true
	w.UserSized = true
	w.UserPositioned = true
	w.ZIndex = r.nextZ()
}

// restoreNormal leaves the maximized state, reinstating the snapshot as
// user-chosen geometry when one exists and falling back to a fresh layout
// pass when it does not.
func (r *Registry) restoreNormal(w *WindowState) {
	w.IsMaximized = false
	if w.NormalRect != nil {
		w.Position = w.NormalRect.Origin()
		w.Size = w.NormalRect.Size()
		w.UserSized = true
		w.UserPositioned = true
		w.NormalRect = nil
		return
	}
	w.NeedsLayout = true
}

// Focus raises the window to the top of the stack.
func (r *Registry) Focus(id Kind) {
	w, ok := r.windows[id]
	if !ok {
		return
	}
	w.ZIndex = r.nextZ()
}

// ApplyGeometry writes the provided position and/or size. Callers clamp;
// the registry records.
func (r *Registry) ApplyGeometry(id Kind, pos *Point, size *Size) {
	w, ok := r.windows[id]
	if !ok {
		return
	}
	if pos != nil {
		w.Position = *pos
	}
	if size != nil {
		w.Size = *size
	}
}

// MarkNeedsLayout requests a layout pass for the window.
func (r *Registry) MarkNeedsLayout(id Kind) {
	w, ok := r.windows[id]
	if !ok {
		return
	}
	w.NeedsLayout = true
}

// MarkUserSized records that the window's size was chosen by the user.
func (r *Registry) MarkUserSized(id Kind) {
	w, ok := r.windows[id]
	if !ok {
		return
	}
	w.UserSized = true
}

// MarkUserPositioned records that the window's position was chosen by the
// user.
func (r *Registry) MarkUserPositioned(id Kind) {
	w, ok := r.windows[id]
	if !ok {
		return
	}
	w.UserPositioned = true
}

// ContentResized tells the registry a window's content box changed. Windows
// the user has sized, maximized windows, and closed windows keep their
// geometry; everything else gets queued for relayout.
func (r *Registry) ContentResized(id Kind) {
	w, ok := r.windows[id]
	if !ok || !w.IsOpen || w.IsMaximized || w.UserSized {
		return
	}
	w.NeedsLayout = true
}

// ResolveLayout commits engine-computed geometry and clears the layout
// request.
func (r *Registry) ResolveLayout(id Kind, pos Point, size Size) {
	w, ok := r.windows[id]
	if !ok {
		return
	}
	w.Position = pos
	w.Size = size
	w.NeedsLayout = false
}

// Get returns a copy of the window's state.
func (r *Registry) Get(id Kind) (WindowState, bool) {
	w, ok := r.windows[id]
	if !ok {
		return WindowState{}, false
	}
	return cloneState(w), true
}

// FocusedKind derives the focused window: the open, non-minimized window
// with the maximum z-index, or ok=false when nothing is visible.
func (r *Registry) FocusedKind() (Kind, bool) {
	var (
		found bool
		best  Kind
		bestZ int
	)
	for _, k := range r.catalog {
		w := r.windows[k]
		if !w.IsOpen || w.IsMinimized {
			continue
		}
		if !found || w.ZIndex > bestZ {
			found = true
			best = k
			bestZ = w.ZIndex
		}
	}
	return best, found
}

// Kinds returns the catalog in order.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, len(r.catalog))
	copy(out, r.catalog)
	return out
}

// OpenKinds returns the currently open windows in catalog order. This is the
// ordering cascade placement indexes into.
func (r *Registry) OpenKinds() []Kind {
	var out []Kind
	for _, k := range r.catalog {
		if r.windows[k].IsOpen {
			out = append(out, k)
		}
	}
	return out
}

// PendingLayout returns the open windows waiting on a layout pass, in
// catalog order.
func (r *Registry) PendingLayout() []Kind {
	var out []Kind
	for _, k := range r.catalog {
		w := r.windows[k]
		if w.IsOpen && w.NeedsLayout {
			out = append(out, k)
		}
	}
	return out
}

// Stacking returns copies of all open windows sorted bottom to top. The
// shell paints them in this order; minimized windows are included and left
// to the shell's dock.
func (r *Registry) Stacking() []WindowState {
	var out []WindowState
	for _, k := range r.catalog {
		if r.windows[k].IsOpen {
			out = append(out, cloneState(r.windows[k]))
		}
	}
	// Insertion sort by z; catalogs are small.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].ZIndex > out[j].ZIndex; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func cloneState(w *WindowState) WindowState {
	out := *w
	if w.NormalRect != nil {
		nr := *w.NormalRect
		out.NormalRect = &nr
	}
	return out
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

package wm

import "testing"

func testMetrics() Metrics {
	return Metrics{
		Margin:         20,
		TitleBarHeight: 0,
		PaddingX:       0,
		PaddingY:       0,
		MinWidth:       400,
		MinHeight:      300,
	}
}

func fixedBounds(w, h float64) BoundsProvider {
	return func() Rect { return Rect{Width: w, Height: h} }
}

func newTestRegistry(kinds ...Kind) *Registry {
	return NewRegistry(kinds, testMetrics(), fixedBounds(800, 600))
}

func TestNewRegistry_OneEntryPerKind(t *testing.T) {
	r := newTestRegistry("a", "b", "c")

	if got := len(r.Kinds()); got != 3 {
		t.Fatalf("expected 3 kinds, got %d", got)
	}
	for _, k := range []Kind{"a", "b", "c"} {
		w, ok := r.Get(k)
		if !ok {
			t.Fatalf("expected entry for %q", k)
		}
		if w.IsOpen || w.IsMinimized || w.IsMaximized || w.NeedsLayout {
			t.Fatalf("expected %q to start fully inactive, got %+v", k, w)
		}
	}
	if _, ok := r.Get("missing"); ok {
		t.Fatalf("expected no entry for unknown kind")
	}
}

func TestOpen_AssignsStrictlyIncreasingZ(t *testing.T) {
	r := newTestRegistry("a", "b", "c")

	r.Open("a")
	a, _ := r.Get("a")
	for _, k := range []Kind{"b", "c"} {
		w, _ := r.Get(k)
		if a.ZIndex <= w.ZIndex {
			t.Fatalf("first open z=%d not above default z=%d of %q", a.ZIndex, w.ZIndex, k)
		}
	}

	r.Open("b")
	b0, _ := r.Get("b")
	prev := b0.ZIndex
	for i := 0; i < 5; i++ {
		r.Focus("b")
		b, _ := r.Get("b")
		if b.ZIndex <= prev {
			t.Fatalf("focus assigned z=%d, want > %d", b.ZIndex, prev)
		}
		prev = b.ZIndex
	}
}

func TestOpen_RequestsLayoutUntilGeometryResolved(t *testing.T) {
	r := newTestRegistry("a")

	r.Open("a")
	a, _ := r.Get("a")
	if !a.NeedsLayout {
		t.Fatalf("fresh open should request layout")
	}

	// Resolve geometry and mark both sticky flags: a later reopen has
	// nothing left to compute.
	r.ResolveLayout("a", Point{X: 100, Y: 100}, Size{Width: 400, Height: 300})
	r.MarkUserSized("a")
	r.MarkUserPositioned("a")
	r.Close("a")
	r.Open("a")
	a, _ = r.Get("a")
	if a.NeedsLayout {
		t.Fatalf("reopen with resolved user geometry should not request layout")
	}

	// Without userPositioned the reopen must relayout again.
	r2 := newTestRegistry("a")
	r2.Open("a")
	r2.ResolveLayout("a", Point{X: 100, Y: 100}, Size{Width: 400, Height: 300})
	r2.MarkUserSized("a")
	r2.Close("a")
	r2.Open("a")
	a2, _ := r2.Get("a")
	if !a2.NeedsLayout {
		t.Fatalf("reopen without userPositioned should request layout")
	}
}

func TestOpen_ClearsMinimized(t *testing.T) {
	r := newTestRegistry("a")
	r.Open("a")
	r.Minimize("a")

	r.Open("a")
	a, _ := r.Get("a")
	if a.IsMinimized {
		t.Fatalf("open should clear minimized")
	}
}

func TestClose_PreservesGeometryAndStickyFlags(t *testing.T) {
	r := newTestRegistry("a")
	r.Open("a")
	r.ResolveLayout("a", Point{X: 123, Y: 45}, Size{Width: 410, Height: 320})
	r.MarkUserSized("a")
	r.MarkUserPositioned("a")
	r.ToggleMaximize("a")

	r.Close("a")
	a, _ := r.Get("a")
	if a.IsOpen || a.IsMinimized || a.IsMaximized {
		t.Fatalf("close should clear visibility flags, got %+v", a)
	}
	if a.NormalRect != nil {
		t.Fatalf("close should drop the maximize snapshot")
	}
	if !a.UserSized || !a.UserPositioned {
		t.Fatalf("close should preserve sticky flags")
	}
	if a.Size.IsZero() {
		t.Fatalf("close should preserve size, got %+v", a.Size)
	}
}

func TestMinimize_OnlyAffectsOpenWindows(t *testing.T) {
	r := newTestRegistry("a")

	r.Minimize("a")
	a, _ := r.Get("a")
	if a.IsMinimized {
		t.Fatalf("minimize on a closed window should be a no-op")
	}

	r.Open("a")
	r.Minimize("a")
	a, _ = r.Get("a")
	if !a.IsMinimized || !a.IsOpen {
		t.Fatalf("expected open+minimized, got %+v", a)
	}
}

func TestMinimize_RestoresMaximizedWindowFirst(t *testing.T) {
	r := newTestRegistry("a")
	r.Open("a")
	r.ResolveLayout("a", Point{X: 200, Y: 150}, Size{Width: 400, Height: 300})
	r.ToggleMaximize("a")

	r.Minimize("a")
	a, _ := r.Get("a")
	if a.IsMaximized {
		t.Fatalf("a minimized window must not stay maximized")
	}
	if a.Position.X != 200 || a.Position.Y != 150 {
		t.Fatalf("expected restored position (200,150), got %+v", a.Position)
	}
	if a.Size.Width != 400 || a.Size.Height != 300 {
		t.Fatalf("expected restored size 400x300, got %+v", a.Size)
	}
}

func TestToggleMaximize_RoundTrip(t *testing.T) {
	r := newTestRegistry("a")
	r.Open("a")
	r.ResolveLayout("a", Point{X: 120, Y: 80}, Size{Width: 420, Height: 310})

	r.ToggleMaximize("a")
	a, _ := r.Get("a")
	if !a.IsMaximized {
		t.Fatalf("expected maximized")
	}
	// bounds 800x600, margin 20: maximized rect is (20,20) 760x560.
	if a.Position.X != 20 || a.Position.Y != 20 {
		t.Fatalf("expected maximized position (20,20), got %+v", a.Position)
	}
	if a.Size.Width != 760 || a.Size.Height != 560 {
		t.Fatalf("expected maximized size 760x560, got %+v", a.Size)
	}
	if a.NormalRect == nil {
		t.Fatalf("expected a normal-rect snapshot while maximized")
	}
	if !a.UserSized || !a.UserPositioned {
		t.Fatalf("maximize should mark geometry user-chosen")
	}

	r.ToggleMaximize("a")
	a, _ = r.Get("a")
	if a.IsMaximized {
		t.Fatalf("expected restore")
	}
	if a.Position.X != 120 || a.Position.Y != 80 || a.Size.Width != 420 || a.Size.Height != 310 {
		t.Fatalf("round trip should restore exact geometry, got pos=%+v size=%+v", a.Position, a.Size)
	}
	if a.NormalRect != nil {
		t.Fatalf("snapshot should be cleared after restore")
	}
	if !a.UserSized || !a.UserPositioned {
		t.Fatalf("restore should reinstate sticky flags")
	}
}

func TestToggleMaximize_FocusesBothWays(t *testing.T) {
	r := newTestRegistry("a", "b")
	r.Open("a")
	r.Open("b")

	r.ToggleMaximize("a")
	if k, _ := r.FocusedKind(); k != "a" {
		t.Fatalf("maximize should focus, focused=%q", k)
	}
	r.Focus("b")
	r.ToggleMaximize("a")
	if k, _ := r.FocusedKind(); k != "a" {
		t.Fatalf("restore should focus, focused=%q", k)
	}
}

func TestToggleMaximize_UnminimizesFirst(t *testing.T) {
	r := newTestRegistry("a")
	r.Open("a")
	r.Minimize("a")

	r.ToggleMaximize("a")
	a, _ := r.Get("a")
	if a.IsMinimized || !a.IsMaximized {
		t.Fatalf("expected maximized and not minimized, got %+v", a)
	}
}

func TestFocusedKind_IsDerived(t *testing.T) {
	r := newTestRegistry("a", "b", "c")

	if _, ok := r.FocusedKind(); ok {
		t.Fatalf("no window visible, expected no focus")
	}

	r.Open("a")
	r.Open("b")
	if k, _ := r.FocusedKind(); k != "b" {
		t.Fatalf("expected b focused, got %q", k)
	}

	r.Focus("a")
	if k, _ := r.FocusedKind(); k != "a" {
		t.Fatalf("expected a focused after focus call, got %q", k)
	}

	r.Minimize("a")
	if k, _ := r.FocusedKind(); k != "b" {
		t.Fatalf("minimized window cannot hold focus, got %q", k)
	}

	r.Close("b")
	if _, ok := r.FocusedKind(); ok {
		t.Fatalf("expected no focus with everything hidden")
	}
}

func TestContentResized_IgnoresUserSizedMaximizedAndClosed(t *testing.T) {
	r := newTestRegistry("a", "b", "c")

	// Closed window: nothing queued.
	r.ContentResized("a")
	if n := len(r.PendingLayout()); n != 0 {
		t.Fatalf("closed window queued for layout: %d pending", n)
	}

	// Open, untouched window: queued.
	r.Open("a")
	r.ResolveLayout("a", Point{X: 20, Y: 20}, Size{Width: 400, Height: 300})
	r.ContentResized("a")
	a, _ := r.Get("a")
	if !a.NeedsLayout {
		t.Fatalf("content change on auto-sized window should queue layout")
	}

	// User-sized window: never.
	r.Open("b")
	r.ResolveLayout("b", Point{X: 20, Y: 20}, Size{Width: 400, Height: 300})
	r.MarkUserSized("b")
	r.ContentResized("b")
	b, _ := r.Get("b")
	if b.NeedsLayout {
		t.Fatalf("content change must not override a user-chosen size")
	}

	// Maximized window: never.
	r.Open("c")
	r.ResolveLayout("c", Point{X: 20, Y: 20}, Size{Width: 400, Height: 300})
	r.ToggleMaximize("c")
	r.ContentResized("c")
	c, _ := r.Get("c")
	if c.NeedsLayout {
		t.Fatalf("content change must not touch a maximized window")
	}
}

func TestRegistry_UnknownKindsAreNoOps(t *testing.T) {
	r := newTestRegistry("a")
	before, _ := r.Get("a")

	r.Open("nope")
	r.Close("nope")
	r.Minimize("nope")
	r.ToggleMaximize("nope")
	r.Focus("nope")
	r.ApplyGeometry("nope", &Point{X: 1}, nil)
	r.MarkNeedsLayout("nope")
	r.MarkUserSized("nope")
	r.MarkUserPositioned("nope")
	r.ContentResized("nope")
	r.ResolveLayout("nope", Point{}, Size{})

	after, _ := r.Get("a")
	if before != after {
		t.Fatalf("operations on unknown kinds disturbed other state: %+v vs %+v", before, after)
	}
	if _, ok := r.Get("nope"); ok {
		t.Fatalf("unknown kind must not be created")
	}
}

func TestStacking_SortsBottomToTop(t *testing.T) {
	r := newTestRegistry("a", "b", "c")
	r.Open("c")
	r.Open("a")
	r.Open("b")
	r.Focus("c")

	got := r.Stacking()
	if len(got) != 3 {
		t.Fatalf("expected 3 open windows, got %d", len(got))
	}
	want := []Kind{"a", "b", "c"}
	for i, k := range want {
		if got[i].Kind != k {
			t.Fatalf("stacking[%d] = %q, want %q", i, got[i].Kind, k)
		}
	}
}

func TestGet_ReturnsIsolatedCopy(t *testing.T) {
	r := newTestRegistry("a")
	r.Open("a")
	r.ResolveLayout("a", Point{X: 50, Y: 50}, Size{Width: 400, Height: 300})
	r.ToggleMaximize("a")

	w, _ := r.Get("a")
	w.NormalRect.Left = 999
	w.Position.X = 999

	again, _ := r.Get("a")
	if again.NormalRect.Left == 999 || again.Position.X == 999 {
		t.Fatalf("Get must not expose registry internals")
	}
}

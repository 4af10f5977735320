package wm

import (
	"math"
	"testing"
)

type memStore struct {
	prefs map[Kind]Size
	sets  int
}

func newMemStore() *memStore {
	return &memStore{prefs: make(map[Kind]Size)}
}

func (m *memStore) Get(id Kind) (Size, bool) {
	s, ok := m.prefs[id]
	return s, ok
}

func (m *memStore) Set(id Kind, s Size) {
	m.prefs[id] = s
	m.sets++
}

type contentMap map[Kind]Size

func (c contentMap) Measure(id Kind) (Size, bool) {
	s, ok := c[id]
	return s, ok
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRelayout_FirstWindowCentersExactly(t *testing.T) {
	r := newTestRegistry("a", "b")
	e := NewEngine(newMemStore(), contentMap{"a": {Width: 100, Height: 40}})

	r.Open("a")
	if n := e.Relayout(r); n != 1 {
		t.Fatalf("expected 1 window resolved, got %d", n)
	}

	a, _ := r.Get("a")
	// content 100x40 clamps up to the 400x300 minimum; 400/phi ~= 247 is
	// below 300 so the golden-ratio floor does not kick in.
	if a.Size.Width != 400 || a.Size.Height != 300 {
		t.Fatalf("expected size 400x300, got %+v", a.Size)
	}
	// center of 800x600 for a 400x300 window: ((800-400)/2, (600-300)/2).
	if a.Position.X != 200 || a.Position.Y != 150 {
		t.Fatalf("expected position (200,150), got %+v", a.Position)
	}
	if a.NeedsLayout {
		t.Fatalf("layout should be resolved")
	}
	if a.UserSized || a.UserPositioned {
		t.Fatalf("auto layout must not set sticky flags")
	}
}

func TestRelayout_SecondWindowOffsetByGoldenAngle(t *testing.T) {
	content := contentMap{
		"a": {Width: 100, Height: 40},
		"b": {Width: 100, Height: 40},
	}
	r := newTestRegistry("a", "b")
	e := NewEngine(newMemStore(), content)

	r.Open("a")
	e.Relayout(r)
	r.Open("b")
	e.Relayout(r)

	b, _ := r.Get("b")
	// index 1: radius = min(140, 24 + 18*1) = 42, angle = goldenAngle.
	wantX := 200 + 42*math.Cos(goldenAngle)
	wantY := 150 + 42*math.Sin(goldenAngle)
	if !almostEqual(b.Position.X, wantX) || !almostEqual(b.Position.Y, wantY) {
		t.Fatalf("expected position (%v,%v), got %+v", wantX, wantY, b.Position)
	}
	// sanity: the offset lands up-right of nothing exotic, roughly (169,178).
	if b.Position.X < 168 || b.Position.X > 170 || b.Position.Y < 177 || b.Position.Y > 180 {
		t.Fatalf("cascade offset out of expected range: %+v", b.Position)
	}

	a, _ := r.Get("a")
	if a.Position.X != 200 || a.Position.Y != 150 {
		t.Fatalf("first window should keep its spot, got %+v", a.Position)
	}
}

func TestRelayout_CascadeRadiusCaps(t *testing.T) {
	// index 7 would give 24 + 18*7 = 150; the cap holds it at 140.
	p := cascadePosition(7, Size{Width: 400, Height: 300}, Rect{Width: 800, Height: 600})
	wantX := 200 + 140*math.Cos(7*goldenAngle)
	wantY := 150 + 140*math.Sin(7*goldenAngle)
	if !almostEqual(p.X, wantX) || !almostEqual(p.Y, wantY) {
		t.Fatalf("expected (%v,%v), got %+v", wantX, wantY, p)
	}
}

func TestRelayout_StoredPreferenceWinsAndSticks(t *testing.T) {
	store := newMemStore()
	store.prefs["a"] = Size{Width: 500, Height: 320}
	r := newTestRegistry("a")
	e := NewEngine(store, contentMap{"a": {Width: 100, Height: 40}})

	r.Open("a")
	e.Relayout(r)

	a, _ := r.Get("a")
	if a.Size.Width != 500 || a.Size.Height != 320 {
		t.Fatalf("expected stored size 500x320, got %+v", a.Size)
	}
	if !a.UserSized {
		t.Fatalf("a stored preference counts as a user-chosen size")
	}

	// A later content change must not shake a user-chosen size loose.
	r.ContentResized("a")
	if n := len(r.PendingLayout()); n != 0 {
		t.Fatalf("expected no pending layout, got %d", n)
	}
}

func TestRelayout_StoredPreferenceClampedToMaxSize(t *testing.T) {
	store := newMemStore()
	store.prefs["a"] = Size{Width: 10000, Height: 10000}
	r := newTestRegistry("a")
	e := NewEngine(store, contentMap{})

	r.Open("a")
	e.Relayout(r)

	a, _ := r.Get("a")
	// max size is 80% of 800x600.
	if a.Size.Width != 640 || a.Size.Height != 480 {
		t.Fatalf("expected clamp to 640x480, got %+v", a.Size)
	}
}

func TestRelayout_GoldenRatioHeightFloor(t *testing.T) {
	m := Metrics{Margin: 10, MinWidth: 100, MinHeight: 50}
	r := NewRegistry([]Kind{"a"}, m, fixedBounds(1000, 1000))
	e := NewEngine(newMemStore(), contentMap{"a": {Width: 600, Height: 10}})

	r.Open("a")
	e.Relayout(r)

	a, _ := r.Get("a")
	if a.Size.Width != 600 {
		t.Fatalf("expected width 600, got %v", a.Size.Width)
	}
	// content height 10 lifts to the 50 minimum, then the ratio floor
	// lifts it again to 600/phi.
	if !almostEqual(a.Size.Height, 600/math.Phi) {
		t.Fatalf("expected height %v, got %v", 600/math.Phi, a.Size.Height)
	}
}

func TestRelayout_PaddingAndTitleBarCountTowardSize(t *testing.T) {
	m := Metrics{Margin: 10, TitleBarHeight: 3, PaddingX: 4, PaddingY: 2, MinWidth: 10, MinHeight: 10}
	r := NewRegistry([]Kind{"a"}, m, fixedBounds(1000, 1000))
	e := NewEngine(newMemStore(), contentMap{"a": {Width: 60, Height: 40}})

	r.Open("a")
	e.Relayout(r)

	a, _ := r.Get("a")
	// width = 60 + 4 = 64, height = 40 + 3 + 2 = 45; 64/phi ~= 39.6 < 45.
	if a.Size.Width != 64 || a.Size.Height != 45 {
		t.Fatalf("expected 64x45, got %+v", a.Size)
	}
}

func TestRelayout_KeepsUserPosition(t *testing.T) {
	r := newTestRegistry("a")
	e := NewEngine(newMemStore(), contentMap{"a": {Width: 100, Height: 40}})

	r.Open("a")
	r.ApplyGeometry("a", &Point{X: 333, Y: 222}, nil)
	r.MarkUserPositioned("a")
	e.Relayout(r)

	a, _ := r.Get("a")
	if a.Position.X != 333 || a.Position.Y != 222 {
		t.Fatalf("expected user position kept, got %+v", a.Position)
	}
	if a.Size.Width != 400 || a.Size.Height != 300 {
		t.Fatalf("size should still resolve from content, got %+v", a.Size)
	}
}

func TestRelayout_ClampsCascadeIntoMargins(t *testing.T) {
	r := NewRegistry([]Kind{"a", "b"}, testMetrics(), fixedBounds(500, 400))
	content := contentMap{
		"a": {Width: 10, Height: 10},
		"b": {Width: 10, Height: 10},
	}
	e := NewEngine(newMemStore(), content)

	r.Open("a")
	e.Relayout(r)
	r.Open("b")
	e.Relayout(r)

	b, _ := r.Get("b")
	// raw cascade x: (500-400)/2 + 42*cos(goldenAngle) ~= 19.0, below the
	// 20 margin, so it clamps.
	if b.Position.X != 20 {
		t.Fatalf("expected x clamped to margin 20, got %v", b.Position.X)
	}
	if b.Position.Y < 20 || b.Position.Y > 400-300-20 {
		t.Fatalf("y outside margin band: %v", b.Position.Y)
	}
}

func TestRelayout_SkipsUnmeasurableWindows(t *testing.T) {
	r := newTestRegistry("a")
	e := NewEngine(newMemStore(), contentMap{})

	r.Open("a")
	if n := e.Relayout(r); n != 0 {
		t.Fatalf("expected nothing resolved, got %d", n)
	}
	a, _ := r.Get("a")
	if !a.NeedsLayout {
		t.Fatalf("unmeasurable window should stay pending")
	}
}

func TestRelayout_DefersOnEmptyBounds(t *testing.T) {
	r := NewRegistry([]Kind{"a"}, testMetrics(), fixedBounds(0, 0))
	e := NewEngine(newMemStore(), contentMap{"a": {Width: 100, Height: 40}})

	r.Open("a")
	if n := e.Relayout(r); n != 0 {
		t.Fatalf("expected deferral on empty bounds, got %d resolved", n)
	}
	a, _ := r.Get("a")
	if !a.NeedsLayout {
		t.Fatalf("window should stay pending until bounds exist")
	}
}

func TestNewEngine_ToleratesNilCollaborators(t *testing.T) {
	r := newTestRegistry("a")
	e := NewEngine(nil, nil)

	r.Open("a")
	if n := e.Relayout(r); n != 0 {
		t.Fatalf("nothing should resolve without a measurer, got %d", n)
	}
}

package shell

import (
	"strings"
	"testing"

	"github.com/beenode/hivedesk/internal/wm"
)

func TestNewChrome_ButtonColumns(t *testing.T) {
	c := newChrome(40, 10, "Wallet")

	if !c.buttons {
		t.Fatalf("expected buttons at width 40")
	}
	if c.minCol != 32 || c.maxCol != 34 || c.closeCol != 36 {
		t.Fatalf("expected button columns 32/34/36, got %d/%d/%d", c.minCol, c.maxCol, c.closeCol)
	}
	if c.titleText != "Wallet" {
		t.Fatalf("expected untruncated title, got %q", c.titleText)
	}
}

func TestNewChrome_TruncatesLongTitles(t *testing.T) {
	c := newChrome(24, 8, "A Very Long Window Title")

	if w := len([]rune(c.titleText)); w == 0 {
		t.Fatalf("expected non-empty truncated title")
	}
	if !strings.HasSuffix(c.titleText, "…") {
		t.Fatalf("expected ellipsis suffix, got %q", c.titleText)
	}
}

func TestChrome_HitButtons(t *testing.T) {
	c := newChrome(40, 10, "Wallet")

	cases := []struct {
		px   int
		want chromeButton
	}{
		{32, buttonMinimize},
		{34, buttonMaximize},
		{36, buttonClose},
	}
	for _, tc := range cases {
		hit := c.hit(tc.px, 0)
		if hit.zone != zoneButton {
			t.Fatalf("expected button zone at col %d, got zone %d", tc.px, hit.zone)
		}
		if hit.button != tc.want {
			t.Fatalf("expected button %d at col %d, got %d", tc.want, tc.px, hit.button)
		}
	}
}

func TestChrome_HitCornersAndEdges(t *testing.T) {
	c := newChrome(40, 10, "Wallet")

	cases := []struct {
		px, py int
		want   wm.Direction
	}{
		{0, 0, wm.DirNW},
		{39, 0, wm.DirNE},
		{0, 9, wm.DirSW},
		{39, 9, wm.DirSE},
		{0, 5, wm.DirW},
		{39, 5, wm.DirE},
		{20, 9, wm.DirS},
		{15, 0, wm.DirN},
	}
	for _, tc := range cases {
		hit := c.hit(tc.px, tc.py)
		if hit.zone != zoneBorder {
			t.Fatalf("expected border zone at (%d,%d), got zone %d", tc.px, tc.py, hit.zone)
		}
		if hit.dir != tc.want {
			t.Fatalf("expected direction %q at (%d,%d), got %q", tc.want, tc.px, tc.py, hit.dir)
		}
	}
}

func TestChrome_HitTitleBarRegions(t *testing.T) {
	c := newChrome(40, 10, "Wallet")

	// "╭─ Wallet " spans columns 1..9, and the gaps between buttons drag too.
	for _, px := range []int{1, 5, 9, 31, 33, 35, 37, 38} {
		if hit := c.hit(px, 0); hit.zone != zoneTitleBar {
			t.Fatalf("expected title bar at col %d, got zone %d dir %q", px, hit.zone, hit.dir)
		}
	}
}

func TestChrome_HitContentIsBodyRelative(t *testing.T) {
	c := newChrome(40, 10, "Wallet")

	hit := c.hit(5, 3)
	if hit.zone != zoneContent {
		t.Fatalf("expected content zone, got %d", hit.zone)
	}
	if hit.contentX != 4 || hit.contentY != 2 {
		t.Fatalf("expected content coords (4,2), got (%d,%d)", hit.contentX, hit.contentY)
	}
}

func TestChrome_HitOutsideIsNone(t *testing.T) {
	c := newChrome(40, 10, "Wallet")

	for _, p := range [][2]int{{-1, 0}, {0, -1}, {40, 0}, {0, 10}} {
		if hit := c.hit(p[0], p[1]); hit.zone != zoneNone {
			t.Fatalf("expected no hit at (%d,%d), got zone %d", p[0], p[1], hit.zone)
		}
	}
}

func TestChrome_NarrowBoxDropsButtons(t *testing.T) {
	c := newChrome(16, 6, "Wallet")

	if c.buttons {
		t.Fatalf("expected no buttons at width 16")
	}
	if hit := c.hit(12, 0); hit.zone != zoneBorder || hit.dir != wm.DirN {
		t.Fatalf("expected north handle where buttons would be, got zone %d dir %q", hit.zone, hit.dir)
	}
}

func TestChrome_RenderShape(t *testing.T) {
	th := NewTheme("mocha")
	c := newChrome(30, 6, "Wallet")
	out := c.render(th, true, false, "hello\nworld")

	rows := strings.Split(out, "\n")
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if w := visibleWidth(row); w != 30 {
			t.Fatalf("expected row %d width 30, got %d (%q)", i, w, row)
		}
	}
	if !strings.Contains(rows[0], "Wallet") {
		t.Fatalf("expected title in top row, got %q", rows[0])
	}
	if !strings.Contains(rows[0], "✕") {
		t.Fatalf("expected close button in top row, got %q", rows[0])
	}
	if !strings.Contains(rows[1], "hello") {
		t.Fatalf("expected first content line, got %q", rows[1])
	}
}

func TestChrome_RenderMaximizedGlyph(t *testing.T) {
	th := NewTheme("mocha")
	c := newChrome(30, 6, "Wallet")

	if out := c.render(th, true, true, ""); !strings.Contains(out, "▣") {
		t.Fatalf("expected restore glyph when maximized")
	}
	if out := c.render(th, true, false, ""); !strings.Contains(out, "□") {
		t.Fatalf("expected maximize glyph when normal")
	}
}

func TestCellRect_RoundsGeometry(t *testing.T) {
	st := wm.WindowState{
		Position: wm.Point{X: 10.4, Y: 5.6},
		Size:     wm.Size{Width: 40.5, Height: 12.2},
	}
	x, y, w, h := cellRect(st)
	if x != 10 || y != 6 {
		t.Fatalf("expected origin (10,6), got (%d,%d)", x, y)
	}
	if w != 41 || h != 12 {
		t.Fatalf("expected size 41x12, got %dx%d", w, h)
	}
}

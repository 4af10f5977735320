package shell

import (
	"strings"

	"github.com/beenode/hivedesk/internal/wm"
)

// dockChip is one minimized window's restore chip on the status bar.
type dockChip struct {
	kind  wm.Kind
	label string
}

// dockSpan records the bar cells a chip occupies so a click resolves back
// to its window.
type dockSpan struct {
	kind wm.Kind
	x0   int
	x1   int
}

// renderBar lays out the bottom status bar: app chip on the left, one
// restore chip per minimized window, then right-aligned status text. The
// status text is dropped before chips are when space runs out.
func renderBar(th Theme, width int, chips []dockChip, right string) (string, []dockSpan) {
	if width <= 0 {
		return "", nil
	}

	var b strings.Builder
	var spans []dockSpan

	app := th.BarAccent.Render(" hivedesk ")
	b.WriteString(app)
	x := visibleWidth(app)

	for _, c := range chips {
		b.WriteString(th.Bar.Render(" "))
		x++
		chip := th.DockEntry.Render(" ▾ " + c.label + " ")
		w := visibleWidth(chip)
		spans = append(spans, dockSpan{kind: c.kind, x0: x, x1: x + w})
		b.WriteString(chip)
		x += w
	}

	rightW := visibleWidth(right)
	gap := width - x - rightW
	if gap < 1 {
		right = ""
		gap = width - x
	}
	if gap > 0 {
		b.WriteString(th.Bar.Render(strings.Repeat(" ", gap)))
	}
	b.WriteString(right)

	return fitLine(b.String(), width), spans
}

// hitDock resolves a bar click to the chip under it.
func hitDock(spans []dockSpan, x int) (wm.Kind, bool) {
	for _, s := range spans {
		if x >= s.x0 && x < s.x1 {
			return s.kind, true
		}
	}
	return "", false
}

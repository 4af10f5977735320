package shell

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/beenode/hivedesk/internal/wm"
)

const (
	// minButtonWidth is the box width below which the control buttons are
	// dropped to leave room for the title.
	minButtonWidth = 20
	// buttonZone is the cell count the control buttons and closing corner
	// occupy at the right end of the title row.
	buttonZone = 9
)

// chrome fixes the decoration layout of one window at a concrete cell size:
// where the truncated title sits, which columns drag, and where the three
// control buttons are. Rendering and hit testing both read it, so a click on
// a drawn glyph always resolves to that glyph's action.
type chrome struct {
	w, h       int
	titleText  string
	titleStart int
	titleEnd   int
	buttons    bool
	minCol     int
	maxCol     int
	closeCol   int
}

func newChrome(w, h int, title string) chrome {
	c := chrome{w: w, h: h}
	c.buttons = w >= minButtonWidth && h >= 2
	right := 1
	if c.buttons {
		right = buttonZone
	}
	avail := w - 3 - 1 - right
	if avail < 0 {
		avail = 0
	}
	c.titleText = runewidth.Truncate(title, avail, "…")
	tw := runewidth.StringWidth(c.titleText)
	c.titleStart = 1
	c.titleEnd = 3 + tw + 1
	if c.buttons {
		c.minCol = w - 8
		c.maxCol = w - 6
		c.closeCol = w - 4
	}
	return c
}

// render draws the full window box. content is the panel view for a
// (w-2)x(h-2) body; lines are clipped and padded to fit exactly.
func (c chrome) render(th Theme, focused, maximized bool, content string) string {
	if c.w < 2 || c.h < 2 {
		return ""
	}
	border := th.BorderInactive
	titleStyle := th.TitleInactive
	if focused {
		border = th.BorderActive
		titleStyle = th.TitleActive
	}

	rows := make([]string, 0, c.h)
	rows = append(rows, c.renderTop(th, border, titleStyle, maximized))

	side := border.Render("│")
	lines := strings.Split(content, "\n")
	for i := 0; i < c.h-2; i++ {
		line := ""
		if i < len(lines) {
			line = lines[i]
		}
		rows = append(rows, side+fitLine(line, c.w-2)+side)
	}

	rows = append(rows, border.Render("╰"+strings.Repeat("─", c.w-2)+"╯"))
	return strings.Join(rows, "\n")
}

func (c chrome) renderTop(th Theme, border, titleStyle lipgloss.Style, maximized bool) string {
	tw := runewidth.StringWidth(c.titleText)
	var b strings.Builder
	b.WriteString(border.Render("╭─ "))
	b.WriteString(titleStyle.Render(c.titleText))

	if !c.buttons {
		b.WriteString(border.Render(" " + strings.Repeat("─", c.w-5-tw) + "╮"))
		return b.String()
	}

	maxGlyph := "□"
	if maximized {
		maxGlyph = "▣"
	}
	b.WriteString(border.Render(" " + strings.Repeat("─", c.w-13-tw)))
	b.WriteString(border.Render(" "))
	b.WriteString(th.Button.Render("▁"))
	b.WriteString(border.Render(" "))
	b.WriteString(th.Button.Render(maxGlyph))
	b.WriteString(border.Render(" "))
	b.WriteString(th.ButtonClose.Render("✕"))
	b.WriteString(border.Render(" ─╮"))
	return b.String()
}

// hitZone classifies where inside a window box a pointer landed.
type hitZone int

const (
	zoneNone hitZone = iota
	zoneTitleBar
	zoneButton
	zoneBorder
	zoneContent
)

// chromeButton identifies one of the three window controls.
type chromeButton int

const (
	buttonNone chromeButton = iota
	buttonMinimize
	buttonMaximize
	buttonClose
)

// windowHit is the result of classifying a window-relative cell position.
// contentX/contentY are body coordinates, valid only for zoneContent.
type windowHit struct {
	zone     hitZone
	button   chromeButton
	dir      wm.Direction
	contentX int
	contentY int
}

// hit classifies window-relative coordinates. The title row hosts the drag
// region, the control buttons, and the north handle on its plain border
// cells; the other border cells map to the remaining seven handles.
func (c chrome) hit(px, py int) windowHit {
	if px < 0 || py < 0 || px >= c.w || py >= c.h {
		return windowHit{zone: zoneNone}
	}
	switch {
	case py == 0:
		switch {
		case px == 0:
			return windowHit{zone: zoneBorder, dir: wm.DirNW}
		case px == c.w-1:
			return windowHit{zone: zoneBorder, dir: wm.DirNE}
		case c.buttons && px == c.minCol:
			return windowHit{zone: zoneButton, button: buttonMinimize}
		case c.buttons && px == c.maxCol:
			return windowHit{zone: zoneButton, button: buttonMaximize}
		case c.buttons && px == c.closeCol:
			return windowHit{zone: zoneButton, button: buttonClose}
		case c.buttons && px >= c.w-buttonZone:
			return windowHit{zone: zoneTitleBar}
		case px >= c.titleStart && px < c.titleEnd:
			return windowHit{zone: zoneTitleBar}
		default:
			return windowHit{zone: zoneBorder, dir: wm.DirN}
		}
	case py == c.h-1:
		switch {
		case px == 0:
			return windowHit{zone: zoneBorder, dir: wm.DirSW}
		case px == c.w-1:
			return windowHit{zone: zoneBorder, dir: wm.DirSE}
		default:
			return windowHit{zone: zoneBorder, dir: wm.DirS}
		}
	case px == 0:
		return windowHit{zone: zoneBorder, dir: wm.DirW}
	case px == c.w-1:
		return windowHit{zone: zoneBorder, dir: wm.DirE}
	default:
		return windowHit{zone: zoneContent, contentX: px - 1, contentY: py - 1}
	}
}

// cellRect rounds a window's float geometry to whole cells. Rendering and
// hit testing share the rounding so clicks land on what was drawn.
func cellRect(st wm.WindowState) (x, y, w, h int) {
	x = int(math.Round(st.Position.X))
	y = int(math.Round(st.Position.Y))
	w = int(math.Round(st.Size.Width))
	h = int(math.Round(st.Size.Height))
	if w < 2 {
		w = 2
	}
	if h < 2 {
		h = 2
	}
	return x, y, w, h
}

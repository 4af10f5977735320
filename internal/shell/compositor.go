package shell

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

const escReset = "\x1b[0m"

// cell is one terminal cell: a printable rune plus the SGR sequence styling
// it. The continuation cell of a double-width rune has empty content.
type cell struct {
	content string
	style   string
}

// canvas is a fixed-size cell grid the shell composites window boxes onto.
// Stamping is clipping and z-order is the caller's stamp order, so painting
// windows bottom to top yields correct occlusion without any damage tracking.
type canvas struct {
	width  int
	height int
	cells  [][]cell
}

func newCanvas(width, height int) *canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	c := &canvas{width: width, height: height}
	c.cells = make([][]cell, height)
	for row := range c.cells {
		line := make([]cell, width)
		for col := range line {
			line[col] = cell{content: " "}
		}
		c.cells[row] = line
	}
	return c
}

// stamp draws a multi-line block with its top-left corner at (x, y),
// clipping whatever falls outside the canvas. SGR sequences inside the
// block are tracked so every covered cell keeps its own styling.
func (c *canvas) stamp(x, y int, block string) {
	if c.width == 0 || c.height == 0 {
		return
	}
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		row := y + i
		if row < 0 {
			continue
		}
		if row >= c.height {
			break
		}
		c.stampLine(row, x, line)
	}
}

func (c *canvas) stampLine(row, x int, line string) {
	style := ""
	col := x
	for i := 0; i < len(line); {
		if line[i] == 0x1b {
			seq, n := readEscape(line[i:])
			i += n
			if strings.HasSuffix(seq, "m") {
				if seq == escReset || seq == "\x1b[m" {
					style = ""
				} else {
					style += seq
				}
			}
			continue
		}
		r, size := utf8.DecodeRuneInString(line[i:])
		i += size
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col >= c.width {
			break
		}
		switch {
		case col+w > c.width:
			// Wide rune straddling the right edge: blank its visible half.
			c.put(row, col, " ", style)
		case col >= 0:
			if w == 2 {
				c.putWide(row, col, string(r), style)
			} else {
				c.put(row, col, string(r), style)
			}
		case col == -1 && w == 2:
			// Left half clipped away.
			c.put(row, 0, " ", style)
		}
		col += w
	}
}

func (c *canvas) put(row, col int, content, style string) {
	c.clearWide(row, col)
	c.cells[row][col] = cell{content: content, style: style}
}

func (c *canvas) putWide(row, col int, content, style string) {
	c.clearWide(row, col)
	c.clearWide(row, col+1)
	c.cells[row][col] = cell{content: content, style: style}
	c.cells[row][col+1] = cell{content: "", style: style}
}

// clearWide keeps wide runes atomic: overwriting either half of one blanks
// the other half instead of leaving an orphaned fragment.
func (c *canvas) clearWide(row, col int) {
	cl := c.cells[row][col]
	if cl.content == "" {
		if col > 0 {
			head := c.cells[row][col-1]
			c.cells[row][col-1] = cell{content: " ", style: head.style}
		}
		return
	}
	if runewidth.StringWidth(cl.content) == 2 && col+1 < c.width {
		tail := c.cells[row][col+1]
		c.cells[row][col+1] = cell{content: " ", style: tail.style}
	}
}

// String renders the grid, emitting style changes only at cell boundaries
// where the SGR state actually changes and resetting at each line end.
func (c *canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.height; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		cur := ""
		for col := 0; col < c.width; col++ {
			cl := c.cells[row][col]
			if cl.content == "" {
				continue
			}
			if cl.style != cur {
				if cur != "" {
					b.WriteString(escReset)
				}
				b.WriteString(cl.style)
				cur = cl.style
			}
			b.WriteString(cl.content)
		}
		if cur != "" {
			b.WriteString(escReset)
		}
	}
	return b.String()
}

// readEscape returns the escape sequence starting at s[0] (which must be
// ESC) and its byte length. CSI sequences run to their final byte; any
// other escape is consumed as a two-byte sequence.
func readEscape(s string) (string, int) {
	if len(s) < 2 {
		return s, len(s)
	}
	if s[1] != '[' {
		return s[:2], 2
	}
	for i := 2; i < len(s); i++ {
		if s[i] >= 0x40 && s[i] <= 0x7e {
			return s[:i+1], i + 1
		}
	}
	return s, len(s)
}

// fitLine clips or pads a single line to exactly width cells, preserving
// embedded styling.
func fitLine(s string, width int) string {
	c := newCanvas(width, 1)
	c.stamp(0, 0, s)
	return c.String()
}

// visibleWidth is the display width of s with escape sequences skipped.
func visibleWidth(s string) int {
	w := 0
	for i := 0; i < len(s); {
		if s[i] == 0x1b {
			_, n := readEscape(s[i:])
			i += n
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		w += runewidth.RuneWidth(r)
	}
	return w
}

package shell

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/beenode/hivedesk/internal/scroll"
	"github.com/beenode/hivedesk/internal/wm"
)

// Panel is one application surface hosted in a shell window. Panels receive
// a tea.WindowSizeMsg carrying their content box whenever their window
// geometry settles, and their View is always called with that same box.
type Panel interface {
	Title() string
	Init() tea.Cmd
	Update(msg tea.Msg) (Panel, tea.Cmd)
	View(width, height int) string

	// NaturalSize is the content box the panel would like, in cells.
	// ok is false while the panel cannot be measured yet.
	NaturalSize() (wm.Size, bool)

	// Capturing reports whether the panel is in a text-entry state that
	// must win over the shell's global key bindings.
	Capturing() bool
}

// nodeLink shares the node client between the shell and its panels, so a
// settings change swaps the connection for everyone at once.
type nodeLink struct {
	client *scroll.Client
}

// panelMeasurer adapts the panel set to the layout engine's measurement
// contract.
type panelMeasurer struct {
	panels map[wm.Kind]Panel
}

func (p panelMeasurer) Measure(kind wm.Kind) (wm.Size, bool) {
	panel, ok := p.panels[kind]
	if !ok {
		return wm.Size{}, false
	}
	return panel.NaturalSize()
}

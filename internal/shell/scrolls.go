package shell

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/beenode/hivedesk/internal/scroll"
	"github.com/beenode/hivedesk/internal/wm"
)

// demoScrollPaths is the offline stand-in listing.
var demoScrollPaths = []string{
	"/notes/welcome",
	"/sys/mind/patterns/block_cadence",
	"/sys/mind/patterns/mempool_depth",
	"/sys/mind/patterns/peer_churn",
	"/wallet/address",
	"/wallet/balance",
	"/wallet/network",
	"/wallet/status",
}

type scrollListMsg struct {
	prefix  string
	paths   []string
	count   int
	offline bool
	err     error
}

func fetchScrolls(c *scroll.Client, prefix string) tea.Cmd {
	return func() tea.Msg {
		l, err := c.List(prefix)
		if err != nil {
			if _, herr := c.Health(); herr != nil {
				return scrollListMsg{prefix: prefix, offline: true}
			}
			return scrollListMsg{prefix: prefix, err: err}
		}
		return scrollListMsg{prefix: prefix, paths: l.Paths, count: l.Count}
	}
}

// scrollsPanel browses the node's scroll store: a prefix filter on top, the
// matching paths in a scrollable body below.
type scrollsPanel struct {
	node *nodeLink
	th   *Theme

	filter textinput.Model
	vp     viewport.Model

	prefix    string
	paths     []string
	count     int
	loading   bool
	offline   bool
	note      string
	filtering bool
}

func newScrollsPanel(node *nodeLink, th *Theme) *scrollsPanel {
	ti := textinput.New()
	ti.Placeholder = "/wallet"
	ti.Prompt = ""
	ti.CharLimit = 64
	ti.Width = 24

	return &scrollsPanel{
		node:    node,
		th:      th,
		filter:  ti,
		vp:      viewport.New(0, 0),
		prefix:  "/",
		loading: true,
	}
}

func (p *scrollsPanel) Title() string { return "Scrolls" }

func (p *scrollsPanel) Capturing() bool { return p.filtering }

func (p *scrollsPanel) Init() tea.Cmd {
	return fetchScrolls(p.node.client, p.prefix)
}

func (p *scrollsPanel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.vp.Width = msg.Width
		p.vp.Height = maxInt(msg.Height-2, 1)

	case scrollListMsg:
		p.loading = false
		p.offline = msg.offline
		p.note = ""
		switch {
		case msg.offline:
			p.paths = demoScrollPaths
			p.count = len(demoScrollPaths)
		case msg.err != nil:
			p.note = fmt.Sprintf("listing failed: %v", msg.err)
		default:
			p.paths = msg.paths
			p.count = msg.count
		}
		p.vp.SetContent(p.body())
		p.vp.GotoTop()

	case tea.KeyMsg:
		return p.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		p.vp, cmd = p.vp.Update(msg)
		return p, cmd
	}
	return p, nil
}

func (p *scrollsPanel) handleKey(msg tea.KeyMsg) (Panel, tea.Cmd) {
	if p.filtering {
		switch msg.String() {
		case "enter":
			p.filtering = false
			p.filter.Blur()
			prefix := strings.TrimSpace(p.filter.Value())
			if prefix == "" {
				prefix = "/"
			}
			p.prefix = prefix
			p.loading = true
			return p, fetchScrolls(p.node.client, prefix)
		case "esc":
			p.filtering = false
			p.filter.Blur()
			return p, nil
		default:
			var cmd tea.Cmd
			p.filter, cmd = p.filter.Update(msg)
			return p, cmd
		}
	}

	switch msg.String() {
	case "/":
		p.filtering = true
		p.filter.SetValue(p.prefix)
		p.filter.Focus()
		return p, textinput.Blink
	case "r":
		p.loading = true
		return p, fetchScrolls(p.node.client, p.prefix)
	}

	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(msg)
	return p, cmd
}

func (p *scrollsPanel) NaturalSize() (wm.Size, bool) {
	w := 32
	for _, path := range p.paths {
		if pw := visibleWidth(path) + 4; pw > w {
			w = pw
		}
	}
	if w > 64 {
		w = 64
	}
	h := clampInt(len(p.paths)+4, 8, 18)
	return wm.Size{Width: float64(w), Height: float64(h)}, true
}

func (p *scrollsPanel) View(width, height int) string {
	vp := p.vp
	vp.Width = width
	vp.Height = maxInt(height-2, 1)
	vp.SetContent(p.body())

	return p.header() + "\n" + vp.View() + "\n" + p.footer()
}

func (p *scrollsPanel) header() string {
	th := p.th
	if p.filtering {
		return " " + th.Text.Render("prefix: ") + p.filter.View()
	}
	head := " " + th.Muted.Render("prefix ") + th.Accent.Render(p.prefix)
	if p.loading {
		return head + th.Muted.Render(" · fetching")
	}
	return head + th.Muted.Render(fmt.Sprintf(" · %d scrolls", p.count))
}

func (p *scrollsPanel) body() string {
	th := p.th
	if len(p.paths) == 0 {
		return " " + th.Muted.Render("(no scrolls under prefix)")
	}
	lines := make([]string, 0, len(p.paths))
	for _, path := range p.paths {
		lines = append(lines, " "+th.Text.Render(path))
	}
	return strings.Join(lines, "\n")
}

func (p *scrollsPanel) footer() string {
	th := p.th
	switch {
	case p.offline:
		return " " + th.Warn.Render("◌ node offline") + th.Muted.Render(" · demo listing")
	case p.note != "":
		return " " + th.Bad.Render(p.note)
	case p.filtering:
		return " " + th.Muted.Render("enter apply · esc cancel")
	default:
		return " " + th.Muted.Render("/ filter · r refresh · ↑/↓ scroll")
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package shell

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/beenode/hivedesk/internal/scroll"
	"github.com/beenode/hivedesk/internal/wm"
)

const (
	patternPrefix       = "/sys/mind/patterns"
	patternRefreshEvery = 60 * time.Second
	// patternFetchCap bounds the per-refresh scroll reads.
	patternFetchCap = 16
)

type patternEntry struct {
	name    string
	typ     string
	version uint64
	size    int
}

var demoPatterns = []patternEntry{
	{name: "block_cadence", typ: "observation", version: 12, size: 418},
	{name: "mempool_depth", typ: "observation", version: 9, size: 222},
	{name: "peer_churn", typ: "observation", version: 4, size: 131},
	{name: "fee_drift", typ: "hypothesis", version: 2, size: 96},
}

type patternDigestMsg struct {
	entries []patternEntry
	offline bool
	err     error
}

type patternTickMsg struct{}

func patternTick() tea.Cmd {
	return tea.Tick(patternRefreshEvery, func(time.Time) tea.Msg {
		return patternTickMsg{}
	})
}

// fetchPatterns lists the pattern namespace and reads each scroll's header
// fields. Entries whose body read fails still appear, typed "?".
func fetchPatterns(c *scroll.Client) tea.Cmd {
	return func() tea.Msg {
		l, err := c.List(patternPrefix)
		if err != nil {
			if _, herr := c.Health(); herr != nil {
				return patternDigestMsg{offline: true}
			}
			return patternDigestMsg{err: err}
		}
		entries := make([]patternEntry, 0, len(l.Paths))
		for i, path := range l.Paths {
			if i >= patternFetchCap {
				break
			}
			e := patternEntry{name: strings.TrimPrefix(strings.TrimPrefix(path, patternPrefix), "/")}
			if s, err := c.Get(path); err == nil {
				e.typ = s.Type
				e.version = s.Metadata.Version
				e.size = len(s.Data)
			} else {
				e.typ = "?"
			}
			entries = append(entries, e)
		}
		return patternDigestMsg{entries: entries}
	}
}

// patternsPanel is a read-only digest of what the node's pattern engine has
// written: one row per pattern scroll with type, version, and body size.
type patternsPanel struct {
	node *nodeLink
	th   *Theme

	vp viewport.Model

	entries []patternEntry
	loading bool
	offline bool
	note    string
}

func newPatternsPanel(node *nodeLink, th *Theme) *patternsPanel {
	return &patternsPanel{
		node:    node,
		th:      th,
		vp:      viewport.New(0, 0),
		loading: true,
	}
}

func (p *patternsPanel) Title() string { return "Patterns" }

func (p *patternsPanel) Capturing() bool { return false }

func (p *patternsPanel) Init() tea.Cmd {
	return tea.Batch(fetchPatterns(p.node.client), patternTick())
}

func (p *patternsPanel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.vp.Width = msg.Width
		p.vp.Height = maxInt(msg.Height-2, 1)

	case patternTickMsg:
		return p, tea.Batch(fetchPatterns(p.node.client), patternTick())

	case patternDigestMsg:
		p.loading = false
		p.offline = msg.offline
		p.note = ""
		switch {
		case msg.offline:
			p.entries = demoPatterns
		case msg.err != nil:
			p.note = fmt.Sprintf("digest failed: %v", msg.err)
		default:
			p.entries = msg.entries
		}
		p.vp.SetContent(p.body())

	case tea.KeyMsg:
		if msg.String() == "r" {
			p.loading = true
			return p, fetchPatterns(p.node.client)
		}
		var cmd tea.Cmd
		p.vp, cmd = p.vp.Update(msg)
		return p, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		p.vp, cmd = p.vp.Update(msg)
		return p, cmd
	}
	return p, nil
}

func (p *patternsPanel) NaturalSize() (wm.Size, bool) {
	lines := strings.Split(p.body(), "\n")
	w := 36
	for _, l := range lines {
		if lw := visibleWidth(l) + 2; lw > w {
			w = lw
		}
	}
	if w > 64 {
		w = 64
	}
	h := clampInt(len(lines)+4, 8, 16)
	return wm.Size{Width: float64(w), Height: float64(h)}, true
}

func (p *patternsPanel) View(width, height int) string {
	vp := p.vp
	vp.Width = width
	vp.Height = maxInt(height-2, 1)
	vp.SetContent(p.body())

	return p.header() + "\n" + vp.View() + "\n" + p.footer()
}

func (p *patternsPanel) header() string {
	th := p.th
	head := " " + th.Muted.Render("mind ") + th.Accent.Render(patternPrefix)
	if p.loading {
		return head + th.Muted.Render(" · fetching")
	}
	return head + th.Muted.Render(fmt.Sprintf(" · %d patterns", len(p.entries)))
}

func (p *patternsPanel) body() string {
	th := p.th
	if len(p.entries) == 0 {
		return " " + th.Muted.Render("(the pattern engine has written nothing yet)")
	}
	nameW := 0
	for _, e := range p.entries {
		if len(e.name) > nameW {
			nameW = len(e.name)
		}
	}
	lines := make([]string, 0, len(p.entries))
	for _, e := range p.entries {
		lines = append(lines, fmt.Sprintf(
			" %s %s %s %s",
			th.Text.Render(fmt.Sprintf("%-*s", nameW, e.name)),
			th.Accent.Render(fmt.Sprintf("%-12s", e.typ)),
			th.Muted.Render(fmt.Sprintf("v%-3d", e.version)),
			th.Muted.Render(fmt.Sprintf("%5dB", e.size)),
		))
	}
	return strings.Join(lines, "\n")
}

func (p *patternsPanel) footer() string {
	th := p.th
	switch {
	case p.offline:
		return " " + th.Warn.Render("◌ node offline") + th.Muted.Render(" · demo digest")
	case p.note != "":
		return " " + th.Bad.Render(p.note)
	default:
		return " " + th.Muted.Render("r refresh · ↑/↓ scroll")
	}
}

package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/beenode/hivedesk/internal/scroll"
	"github.com/beenode/hivedesk/internal/wm"
)

const walletRefreshEvery = 45 * time.Second

// demoBalance stands in when the node is unreachable so the panel still
// shows its shape.
var demoBalance = scroll.Balance{
	Confirmed: 1284550,
	Pending:   15000,
	Immature:  0,
	Spendable: 1284550,
	Total:     1299550,
}

const demoAddress = "bc1qep6tqfrhw4dhvqma5wkyqp03nqjmdgyn0hv0dq"

type walletDataMsg struct {
	balance  *scroll.Balance
	address  string
	locked   bool
	haveAuth bool
	offline  bool
	err      error
}

type walletAuthMsg struct {
	locked bool
	err    error
}

type walletTickMsg struct{}

func walletTick() tea.Cmd {
	return tea.Tick(walletRefreshEvery, func(time.Time) tea.Msg {
		return walletTickMsg{}
	})
}

// fetchWallet reads auth state, balance, and receive address in one pass.
// An unreachable node is reported as offline so the panel can fall back to
// demo figures; a reachable node with an unreadable wallet keeps the error.
func fetchWallet(c *scroll.Client) tea.Cmd {
	return func() tea.Msg {
		var msg walletDataMsg
		auth, err := c.Auth()
		if err != nil {
			if _, herr := c.Health(); herr != nil {
				msg.offline = true
				return msg
			}
		} else {
			msg.locked = auth.Locked
			msg.haveAuth = true
		}
		bal, err := c.Balance()
		if err != nil {
			msg.err = err
			return msg
		}
		msg.balance = bal
		if addr, err := c.Address(); err == nil {
			msg.address = addr
		}
		return msg
	}
}

func unlockNode(c *scroll.Client, pin string) tea.Cmd {
	return func() tea.Msg {
		ok, err := c.Unlock(pin)
		if err != nil {
			return walletAuthMsg{locked: true, err: err}
		}
		if !ok {
			return walletAuthMsg{locked: true, err: errors.New("node rejected the pin")}
		}
		return walletAuthMsg{locked: false}
	}
}

func lockNode(c *scroll.Client) tea.Cmd {
	return func() tea.Msg {
		if _, err := c.Lock(); err != nil {
			return walletAuthMsg{locked: false, err: err}
		}
		return walletAuthMsg{locked: true}
	}
}

// walletPanel summarizes the node wallet: balance breakdown, receive
// address, and the auth state with an inline pin prompt for unlocking.
type walletPanel struct {
	node *nodeLink
	th   *Theme

	spin spinner.Model
	pin  textinput.Model

	loading  bool
	offline  bool
	locked   bool
	haveAuth bool
	entering bool
	note     string

	balance scroll.Balance
	address string
}

func newWalletPanel(node *nodeLink, th *Theme) *walletPanel {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	pin := textinput.New()
	pin.Placeholder = "PIN"
	pin.EchoMode = textinput.EchoPassword
	pin.CharLimit = 12
	pin.Width = 16

	return &walletPanel{
		node:    node,
		th:      th,
		spin:    sp,
		pin:     pin,
		loading: true,
	}
}

func (p *walletPanel) Title() string { return "Wallet" }

func (p *walletPanel) Capturing() bool { return p.entering }

func (p *walletPanel) Init() tea.Cmd {
	return tea.Batch(p.spin.Tick, fetchWallet(p.node.client), walletTick())
}

func (p *walletPanel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if p.loading {
			var cmd tea.Cmd
			p.spin, cmd = p.spin.Update(msg)
			return p, cmd
		}

	case walletTickMsg:
		return p, tea.Batch(fetchWallet(p.node.client), walletTick())

	case walletDataMsg:
		p.loading = false
		p.offline = msg.offline
		p.haveAuth = msg.haveAuth
		p.locked = msg.locked
		p.note = ""
		switch {
		case msg.offline:
			p.balance = demoBalance
			p.address = demoAddress
		case msg.err != nil:
			p.note = fmt.Sprintf("wallet unavailable: %v", msg.err)
		default:
			if msg.balance != nil {
				p.balance = *msg.balance
			}
			if msg.address != "" {
				p.address = msg.address
			}
		}

	case walletAuthMsg:
		p.locked = msg.locked
		p.haveAuth = true
		if msg.err != nil {
			p.note = fmt.Sprintf("auth failed: %v", msg.err)
			return p, nil
		}
		p.note = ""
		p.loading = true
		return p, tea.Batch(p.spin.Tick, fetchWallet(p.node.client))

	case tea.KeyMsg:
		return p.handleKey(msg)
	}
	return p, nil
}

func (p *walletPanel) handleKey(msg tea.KeyMsg) (Panel, tea.Cmd) {
	if p.entering {
		switch msg.String() {
		case "enter":
			pin := p.pin.Value()
			p.entering = false
			p.pin.Blur()
			p.pin.Reset()
			if pin == "" {
				return p, nil
			}
			return p, unlockNode(p.node.client, pin)
		case "esc":
			p.entering = false
			p.pin.Blur()
			p.pin.Reset()
			return p, nil
		default:
			var cmd tea.Cmd
			p.pin, cmd = p.pin.Update(msg)
			return p, cmd
		}
	}

	switch msg.String() {
	case "r":
		p.loading = true
		return p, tea.Batch(p.spin.Tick, fetchWallet(p.node.client))
	case "u":
		if p.offline || !p.haveAuth {
			return p, nil
		}
		if p.locked {
			p.entering = true
			p.pin.Focus()
			return p, textinput.Blink
		}
		return p, lockNode(p.node.client)
	}
	return p, nil
}

func (p *walletPanel) NaturalSize() (wm.Size, bool) {
	lines := p.contentLines()
	w := 0
	for _, l := range lines {
		if lw := visibleWidth(l); lw > w {
			w = lw
		}
	}
	if w < 34 {
		w = 34
	}
	return wm.Size{Width: float64(w + 1), Height: float64(len(lines))}, true
}

func (p *walletPanel) View(width, height int) string {
	return strings.Join(p.contentLines(), "\n")
}

func (p *walletPanel) contentLines() []string {
	th := p.th
	if p.loading {
		spin := p.spin
		spin.Style = th.Accent
		return []string{
			"",
			" " + spin.View() + " " + th.Muted.Render("fetching wallet state"),
		}
	}

	rows := [][2]string{
		{"spendable", formatSats(p.balance.Spendable)},
		{"confirmed", formatSats(p.balance.Confirmed)},
		{"pending", formatSats(p.balance.Pending)},
		{"immature", formatSats(p.balance.Immature)},
		{"total", formatSats(p.balance.Total)},
	}
	amountW := 0
	for _, r := range rows {
		if len(r[1]) > amountW {
			amountW = len(r[1])
		}
	}

	lines := []string{""}
	lines = append(lines, " "+th.Muted.Render("balance"))
	for i, r := range rows {
		num := fmt.Sprintf("%*s", amountW, r[1])
		style := th.Text
		if i == 0 {
			style = th.Good
		}
		lines = append(lines, fmt.Sprintf("   %-10s %s %s", r[0], style.Render(num), th.Muted.Render("sat")))
	}

	lines = append(lines, "")
	lines = append(lines, " "+th.Muted.Render("address"))
	lines = append(lines, "   "+th.Accent.Render(shortAddress(p.address)))
	lines = append(lines, "")

	if p.entering {
		lines = append(lines, " "+th.Text.Render("pin: ")+p.pin.View())
	} else {
		lines = append(lines, " "+p.authLine())
	}
	lines = append(lines, " "+th.Muted.Render(p.hintLine()))
	return lines
}

func (p *walletPanel) authLine() string {
	th := p.th
	switch {
	case p.offline:
		return th.Warn.Render("◌ node offline") + th.Muted.Render(" · demo figures")
	case p.note != "":
		return th.Bad.Render(p.note)
	case !p.haveAuth:
		return th.Muted.Render("auth state unknown")
	case p.locked:
		return th.Warn.Render("● wallet locked")
	default:
		return th.Good.Render("● wallet unlocked")
	}
}

func (p *walletPanel) hintLine() string {
	if p.entering {
		return "enter submit · esc cancel"
	}
	if p.haveAuth && !p.offline {
		if p.locked {
			return "r refresh · u unlock"
		}
		return "r refresh · u lock"
	}
	return "r refresh"
}

func shortAddress(addr string) string {
	if addr == "" {
		return "(no address)"
	}
	if len(addr) <= 24 {
		return addr
	}
	return addr[:12] + "…" + addr[len(addr)-6:]
}

// formatSats groups digits in threes, the way block explorers print sats.
func formatSats(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// Package shell implements the hivedesk terminal desktop: floating panel
// windows composited over the terminal viewport, driven by a single
// bubbletea event loop that also answers the unix-socket control plane.
//
// All window-management state lives in internal/wm and is mutated only from
// Update. Goroutines at the edges (IPC connections, the config watcher,
// panel fetches) hand their events to the loop through the program's
// message queue.
package shell

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/beenode/hivedesk/internal/config"
	"github.com/beenode/hivedesk/internal/ipc"
	"github.com/beenode/hivedesk/internal/scroll"
	"github.com/beenode/hivedesk/internal/store"
	"github.com/beenode/hivedesk/internal/wm"
)

const (
	barHeight        = 1
	nodePollEvery    = 15 * time.Second
	ipcReplyDeadline = 5 * time.Second
)

// ConfigReloadedMsg announces an on-disk configuration change picked up by
// the watcher. The cmd layer sends it via Program.Send.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// ipcRequestMsg carries one control-plane request into the update loop,
// with a buffered reply channel its connection handler waits on.
type ipcRequestMsg struct {
	req   *ipc.Request
	reply chan *ipc.Response
}

type nodeHealthMsg struct {
	online bool
}

type healthTickMsg struct{}

func healthTick() tea.Cmd {
	return tea.Tick(nodePollEvery, func(time.Time) tea.Msg {
		return healthTickMsg{}
	})
}

// boundsRef is the layout container shared with the registry's bounds
// provider. The model updates it on every terminal resize.
type boundsRef struct {
	rect wm.Rect
}

func (b *boundsRef) get() wm.Rect { return b.rect }

// Model is the root bubbletea model of the shell.
type Model struct {
	cfg     *config.Config
	cfgPath string

	theme  *Theme
	reg    *wm.Registry
	eng    *wm.Engine
	ctrl   *wm.Controller
	sizes  *store.Sizes
	node   *nodeLink
	bounds *boundsRef

	panels map[wm.Kind]Panel

	width  int
	height int
	ready  bool

	nodeOnline bool
	nodeSeen   bool
	flash      string

	startedAt time.Time

	// lastMeasured feeds the content observer; lastBox tracks the content
	// box each panel was last told about.
	lastMeasured map[wm.Kind]wm.Size
	lastBox      map[wm.Kind]wm.Size
}

// New assembles the shell from configuration. Window kinds without a panel
// implementation are dropped from the catalog with a warning.
func New(cfg *config.Config, cfgPath string, sizes *store.Sizes) Model {
	th := NewTheme(cfg.Theme)
	theme := &th
	node := &nodeLink{client: newNodeClient(cfg)}

	known := map[string]func() Panel{
		"wallet":   func() Panel { return newWalletPanel(node, theme) },
		"scrolls":  func() Panel { return newScrollsPanel(node, theme) },
		"patterns": func() Panel { return newPatternsPanel(node, theme) },
		"settings": func() Panel { return newSettingsPanel(cfg, cfgPath, theme) },
	}

	panels := make(map[wm.Kind]Panel)
	var kinds []wm.Kind
	for _, k := range cfg.Kinds() {
		mk, ok := known[k]
		if !ok {
			slog.Warn("no panel for configured window kind, skipping", "kind", k)
			continue
		}
		kind := wm.Kind(k)
		kinds = append(kinds, kind)
		panels[kind] = mk()
	}

	bounds := &boundsRef{}
	reg := wm.NewRegistry(kinds, metricsFromConfig(cfg), bounds.get)

	return Model{
		cfg:          cfg,
		cfgPath:      cfgPath,
		theme:        theme,
		reg:          reg,
		eng:          wm.NewEngine(sizes, panelMeasurer{panels: panels}),
		ctrl:         wm.NewController(reg, sizes),
		sizes:        sizes,
		node:         node,
		bounds:       bounds,
		panels:       panels,
		startedAt:    time.Now(),
		lastMeasured: make(map[wm.Kind]wm.Size),
		lastBox:      make(map[wm.Kind]wm.Size),
	}
}

func newNodeClient(cfg *config.Config) *scroll.Client {
	return scroll.NewClient(cfg.Node.URL, time.Duration(cfg.Node.TimeoutSeconds)*time.Second)
}

func metricsFromConfig(cfg *config.Config) wm.Metrics {
	return wm.Metrics{
		Margin:         float64(cfg.Layout.Margin),
		TitleBarHeight: float64(cfg.Layout.TitleBarHeight),
		PaddingX:       float64(cfg.Layout.PaddingX),
		PaddingY:       float64(cfg.Layout.PaddingY),
		MinWidth:       float64(cfg.Layout.MinWidth),
		MinHeight:      float64(cfg.Layout.MinHeight),
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.checkNode(), healthTick()}
	for _, k := range m.reg.Kinds() {
		if cmd := m.panels[k].Init(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	for _, w := range m.cfg.Windows {
		if w.StartOpen {
			m.reg.Open(wm.Kind(w.Kind))
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) checkNode() tea.Cmd {
	c := m.node.client
	return func() tea.Msg {
		_, err := c.Health()
		return nodeHealthMsg{online: err == nil}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.bounds.rect = wm.Rect{Width: float64(msg.Width), Height: float64(msg.Height - barHeight)}
		m.relayoutAutoPlaced()
		m.remaximize()

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		cmds = append(cmds, cmd)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m, cmd = m.handleMouse(msg)
		cmds = append(cmds, cmd)

	case ipcRequestMsg:
		msg.reply <- m.handleIPC(msg.req)

	case nodeHealthMsg:
		if m.nodeSeen && m.nodeOnline != msg.online {
			slog.Info("node reachability changed", "online", msg.online)
		}
		m.nodeOnline = msg.online
		m.nodeSeen = true

	case healthTickMsg:
		cmds = append(cmds, m.checkNode(), healthTick())

	case ConfigReloadedMsg:
		m.applyConfig(msg.Config, "config reloaded")
		cmds = append(cmds, m.broadcast(msg)...)

	case settingsAppliedMsg:
		m.applyConfig(msg.cfg, "settings saved")
		cmds = append(cmds, m.broadcast(msg)...)

	default:
		cmds = append(cmds, m.broadcast(msg)...)
	}

	m.observeContent()
	if m.ready {
		m.eng.Relayout(m.reg)
		cmds = append(cmds, m.syncPanelBoxes()...)
	}
	return m, tea.Batch(cmds...)
}

// broadcast forwards a message to every panel. Data and tick messages find
// their owner this way; panels ignore what is not theirs.
func (m Model) broadcast(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	for k, p := range m.panels {
		np, cmd := p.Update(msg)
		m.panels[k] = np
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

func (m Model) updatePanel(kind wm.Kind, msg tea.Msg) (Model, tea.Cmd) {
	p, ok := m.panels[kind]
	if !ok {
		return m, nil
	}
	np, cmd := p.Update(msg)
	m.panels[kind] = np
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	focused, hasFocus := m.reg.FocusedKind()
	capturing := hasFocus && m.panels[focused].Capturing()

	if !capturing {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "tab":
			m.cycleFocus(1)
			return m, nil
		case "shift+tab":
			m.cycleFocus(-1)
			return m, nil
		}
	}

	if hasFocus {
		return m.updatePanel(focused, msg)
	}
	return m, nil
}

// cycleFocus moves focus through the visible windows in catalog order.
func (m Model) cycleFocus(step int) {
	var visible []wm.Kind
	for _, k := range m.reg.Kinds() {
		if st, ok := m.reg.Get(k); ok && st.IsOpen && !st.IsMinimized {
			visible = append(visible, k)
		}
	}
	if len(visible) == 0 {
		return
	}
	focused, ok := m.reg.FocusedKind()
	if !ok {
		m.reg.Focus(visible[0])
		return
	}
	cur := 0
	for i, k := range visible {
		if k == focused {
			cur = i
			break
		}
	}
	next := (cur + step + len(visible)) % len(visible)
	m.reg.Focus(visible[next])
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	pt := wm.Point{X: float64(msg.X), Y: float64(msg.Y)}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			return m.handlePress(msg)
		case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
			return m.forwardToWindowAt(msg)
		}
	case tea.MouseActionMotion:
		m.ctrl.PointerMove(pt)
	case tea.MouseActionRelease:
		m.ctrl.PointerUp(pt)
	}
	return m, nil
}

func (m Model) handlePress(msg tea.MouseMsg) (Model, tea.Cmd) {
	if msg.Y >= m.height-barHeight {
		_, spans := m.bar()
		if kind, ok := hitDock(spans, msg.X); ok {
			m.reg.Open(kind)
		}
		return m, nil
	}

	st, px, py, ok := m.windowAt(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	pt := wm.Point{X: float64(msg.X), Y: float64(msg.Y)}
	_, _, w, h := cellRect(st)
	hit := newChrome(w, h, m.title(st.Kind)).hit(px, py)

	switch hit.zone {
	case zoneButton:
		switch hit.button {
		case buttonClose:
			m.reg.Close(st.Kind)
			m.ctrl.CancelFor(st.Kind)
		case buttonMaximize:
			m.reg.ToggleMaximize(st.Kind)
		case buttonMinimize:
			m.reg.Minimize(st.Kind)
		}
	case zoneTitleBar:
		if st.IsMaximized {
			m.reg.Focus(st.Kind)
		} else {
			m.ctrl.StartDrag(st.Kind, pt)
		}
	case zoneBorder:
		if st.IsMaximized {
			m.reg.Focus(st.Kind)
		} else {
			m.ctrl.StartResize(st.Kind, hit.dir, pt)
		}
	case zoneContent:
		m.reg.Focus(st.Kind)
		fwd := msg
		fwd.X = hit.contentX
		fwd.Y = hit.contentY
		return m.updatePanel(st.Kind, fwd)
	}
	return m, nil
}

// forwardToWindowAt rewrites a mouse event into content coordinates for the
// window under the pointer. Wheel scrolling works on hover this way.
func (m Model) forwardToWindowAt(msg tea.MouseMsg) (Model, tea.Cmd) {
	st, px, py, ok := m.windowAt(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	_, _, w, h := cellRect(st)
	hit := newChrome(w, h, m.title(st.Kind)).hit(px, py)
	if hit.zone != zoneContent {
		return m, nil
	}
	fwd := msg
	fwd.X = hit.contentX
	fwd.Y = hit.contentY
	return m.updatePanel(st.Kind, fwd)
}

// windowAt returns the topmost presentable window containing the given
// screen cell, plus window-relative coordinates.
func (m Model) windowAt(x, y int) (wm.WindowState, int, int, bool) {
	stack := m.reg.Stacking()
	for i := len(stack) - 1; i >= 0; i-- {
		st := stack[i]
		if st.IsMinimized || st.NeedsLayout {
			continue
		}
		wx, wy, w, h := cellRect(st)
		px, py := x-wx, y-wy
		if px < 0 || py < 0 || px >= w || py >= h {
			continue
		}
		return st, px, py, true
	}
	return wm.WindowState{}, 0, 0, false
}

// observeContent reports changed panel measurements to the registry, which
// decides whether a relayout is warranted.
func (m Model) observeContent() {
	for _, k := range m.reg.Kinds() {
		size, ok := m.panels[k].NaturalSize()
		if !ok {
			continue
		}
		if last, seen := m.lastMeasured[k]; seen && last == size {
			continue
		}
		m.lastMeasured[k] = size
		m.reg.ContentResized(k)
	}
}

// syncPanelBoxes tells panels about their settled content boxes so inner
// components (viewports, forms) can track their window.
func (m Model) syncPanelBoxes() []tea.Cmd {
	var cmds []tea.Cmd
	for _, st := range m.reg.Stacking() {
		if st.IsMinimized || st.NeedsLayout {
			continue
		}
		_, _, w, h := cellRect(st)
		box := wm.Size{Width: float64(w - 2), Height: float64(h - 2)}
		if m.lastBox[st.Kind] == box {
			continue
		}
		m.lastBox[st.Kind] = box
		np, cmd := m.panels[st.Kind].Update(tea.WindowSizeMsg{Width: w - 2, Height: h - 2})
		m.panels[st.Kind] = np
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// relayoutAutoPlaced re-flags windows the user never placed, so the layout
// pass at the end of this update re-centers them against the new viewport.
// User-placed geometry is never touched here.
func (m Model) relayoutAutoPlaced() {
	for _, st := range m.reg.Stacking() {
		if !st.IsMaximized && !st.UserPositioned {
			m.reg.MarkNeedsLayout(st.Kind)
		}
	}
}

// remaximize re-derives maximized geometry after a viewport change. The
// toggle round-trip reuses the registry's own math and keeps the restore
// snapshot intact.
func (m Model) remaximize() {
	for _, st := range m.reg.Stacking() {
		if st.IsMaximized {
			m.reg.ToggleMaximize(st.Kind)
			m.reg.ToggleMaximize(st.Kind)
		}
	}
}

// applyConfig swaps in a new validated configuration at runtime.
func (m *Model) applyConfig(cfg *config.Config, note string) {
	m.cfg = cfg
	*m.theme = NewTheme(cfg.Theme)
	ApplyColorProfile(cfg.ColorProfile)
	m.node.client = newNodeClient(cfg)
	m.reg.SetMetrics(metricsFromConfig(cfg))
	m.flash = note
	slog.Info("configuration applied", "theme", cfg.Theme, "node_url", cfg.Node.URL)
}

func (m Model) title(kind wm.Kind) string {
	return m.cfg.Title(string(kind))
}

func (m Model) View() string {
	if !m.ready {
		return "starting hivedesk"
	}

	c := newCanvas(m.width, m.height-barHeight)
	focused, _ := m.reg.FocusedKind()
	for _, st := range m.reg.Stacking() {
		if st.IsMinimized || st.NeedsLayout {
			continue
		}
		x, y, w, h := cellRect(st)
		content := ""
		if p := m.panels[st.Kind]; p != nil {
			content = p.View(w-2, h-2)
		}
		ch := newChrome(w, h, m.title(st.Kind))
		c.stamp(x, y, ch.render(*m.theme, st.Kind == focused, st.IsMaximized, content))
	}

	bar, _ := m.bar()
	return c.String() + "\n" + bar
}

// bar renders the bottom status bar and its clickable dock spans.
func (m Model) bar() (string, []dockSpan) {
	th := *m.theme

	var chips []dockChip
	for _, k := range m.reg.Kinds() {
		if st, ok := m.reg.Get(k); ok && st.IsOpen && st.IsMinimized {
			chips = append(chips, dockChip{kind: k, label: m.title(k)})
		}
	}

	node := th.Bar.Render("○ node")
	switch {
	case !m.nodeSeen:
	case m.nodeOnline:
		node = th.Good.Inherit(th.Bar).Render("● node")
	default:
		node = th.Bad.Inherit(th.Bar).Render("● node")
	}

	right := ""
	if m.flash != "" {
		right += th.BarAccent.Render(" "+m.flash) + th.Bar.Render(" · ")
	}
	right += node
	right += th.Bar.Render(" · tab focus · q quit ")

	return renderBar(th, m.width, chips, right)
}

// handleIPC answers one control-plane request against the registry. It runs
// on the update loop, so every mutation is ordered with the UI's own.
func (m Model) handleIPC(req *ipc.Request) *ipc.Response {
	if req == nil {
		return ipc.NewErrorResponse("empty request")
	}
	switch req.Command {
	case ipc.CommandPing:
		return mustOK(map[string]string{"message": "pong"})

	case ipc.CommandGetStatus:
		focused, _ := m.reg.FocusedKind()
		return mustOK(ipc.StatusData{
			ShellRunning:  true,
			UptimeSeconds: int64(time.Since(m.startedAt).Seconds()),
			OpenWindows:   len(m.reg.OpenKinds()),
			FocusedWindow: string(focused),
			ViewportCols:  m.width,
			ViewportRows:  m.height,
			NodeURL:       m.cfg.Node.URL,
			NodeOnline:    m.nodeOnline,
		})

	case ipc.CommandListWindows:
		focused, _ := m.reg.FocusedKind()
		data := ipc.WindowsData{}
		for _, k := range m.reg.Kinds() {
			st, _ := m.reg.Get(k)
			data.Windows = append(data.Windows, ipc.WindowInfo{
				Kind:      string(k),
				Title:     m.title(k),
				Open:      st.IsOpen,
				Minimized: st.IsMinimized,
				Maximized: st.IsMaximized,
				Focused:   st.IsOpen && !st.IsMinimized && k == focused,
				ZIndex:    st.ZIndex,
				X:         st.Position.X,
				Y:         st.Position.Y,
				Width:     st.Size.Width,
				Height:    st.Size.Height,
			})
		}
		return mustOK(data)

	case ipc.CommandOpenWindow, ipc.CommandCloseWindow, ipc.CommandFocusWindow,
		ipc.CommandMinimizeWindow, ipc.CommandToggleMaximize:
		var payload ipc.WindowPayload
		if err := unmarshalPayload(req.Payload, &payload); err != nil {
			return ipc.NewErrorResponse(err.Error())
		}
		kind := wm.Kind(payload.Kind)
		if _, ok := m.reg.Get(kind); !ok {
			return ipc.NewErrorResponse(fmt.Sprintf("unknown window kind %q", payload.Kind))
		}
		switch req.Command {
		case ipc.CommandOpenWindow:
			m.reg.Open(kind)
		case ipc.CommandCloseWindow:
			m.reg.Close(kind)
			m.ctrl.CancelFor(kind)
		case ipc.CommandFocusWindow:
			if st, _ := m.reg.Get(kind); !st.IsOpen {
				return ipc.NewErrorResponse(fmt.Sprintf("window %q is not open", payload.Kind))
			}
			// Open on an open window restores from the dock and raises.
			m.reg.Open(kind)
		case ipc.CommandMinimizeWindow:
			m.reg.Minimize(kind)
		case ipc.CommandToggleMaximize:
			m.reg.ToggleMaximize(kind)
		}
		return mustOK(nil)

	case ipc.CommandMoveWindow:
		var payload ipc.MovePayload
		if err := unmarshalPayload(req.Payload, &payload); err != nil {
			return ipc.NewErrorResponse(err.Error())
		}
		kind := wm.Kind(payload.Kind)
		st, ok := m.reg.Get(kind)
		if !ok {
			return ipc.NewErrorResponse(fmt.Sprintf("unknown window kind %q", payload.Kind))
		}
		pos := wm.ClampPosition(
			wm.Point{X: payload.X, Y: payload.Y},
			st.Size, m.reg.Bounds(), m.reg.Metrics().Margin,
		)
		m.reg.ApplyGeometry(kind, &pos, nil)
		m.reg.MarkUserPositioned(kind)
		return mustOK(nil)

	case ipc.CommandResizeWindow:
		var payload ipc.ResizePayload
		if err := unmarshalPayload(req.Payload, &payload); err != nil {
			return ipc.NewErrorResponse(err.Error())
		}
		kind := wm.Kind(payload.Kind)
		st, ok := m.reg.Get(kind)
		if !ok {
			return ipc.NewErrorResponse(fmt.Sprintf("unknown window kind %q", payload.Kind))
		}
		met := m.reg.Metrics()
		bounds := m.reg.Bounds()
		maxS := met.MaxSize(bounds)
		size := wm.Size{
			Width:  clampF(payload.Width, met.MinWidth, maxS.Width),
			Height: clampF(payload.Height, met.MinHeight, maxS.Height),
		}
		pos := wm.ClampPosition(st.Position, size, bounds, met.Margin)
		m.reg.ApplyGeometry(kind, &pos, &size)
		m.reg.MarkUserSized(kind)
		m.reg.MarkUserPositioned(kind)
		return mustOK(nil)
	}
	return ipc.NewErrorResponse(fmt.Sprintf("unknown command %q", req.Command))
}

func unmarshalPayload(raw []byte, out any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing payload")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func mustOK(data any) *ipc.Response {
	resp, err := ipc.NewOKResponse(data)
	if err != nil {
		return ipc.NewErrorResponse(err.Error())
	}
	return resp
}

// clampF pins v into [lo, hi], lower bound winning on inverted intervals so
// a not-yet-measured viewport yields minimum sizes rather than zero ones.
func clampF(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// programHandler bridges IPC connections into the update loop.
type programHandler struct {
	prog *tea.Program
}

// NewHandler returns an ipc.Handler that forwards each request to the
// running program and waits for the loop's answer.
func NewHandler(prog *tea.Program) ipc.Handler {
	return &programHandler{prog: prog}
}

func (h *programHandler) HandleCommand(req *ipc.Request) *ipc.Response {
	reply := make(chan *ipc.Response, 1)
	h.prog.Send(ipcRequestMsg{req: req, reply: reply})
	select {
	case resp := <-reply:
		return resp
	case <-time.After(ipcReplyDeadline):
		return ipc.NewErrorResponse("shell did not answer in time")
	}
}

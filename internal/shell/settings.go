package shell

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/beenode/hivedesk/internal/config"
	"github.com/beenode/hivedesk/internal/wm"
)

// settingsAppliedMsg announces a validated and saved configuration coming
// out of the settings form. The shell applies it live.
type settingsAppliedMsg struct {
	cfg *config.Config
}

// settingsPanel shows the effective shell options and edits them through a
// form. Submitting validates, persists, and applies without a restart.
type settingsPanel struct {
	th      *Theme
	cfg     *config.Config
	cfgPath string

	form      *huh.Form
	width     int
	status    string
	statusBad bool

	fTheme   string
	fProfile string
	fURL     string
	fMargin  string
	fTimeout string
}

func newSettingsPanel(cfg *config.Config, cfgPath string, th *Theme) *settingsPanel {
	return &settingsPanel{th: th, cfg: cfg, cfgPath: cfgPath}
}

func (p *settingsPanel) Title() string { return "Settings" }

func (p *settingsPanel) Capturing() bool { return p.form != nil }

func (p *settingsPanel) Init() tea.Cmd { return nil }

func (p *settingsPanel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		return p, nil

	case ConfigReloadedMsg:
		p.cfg = msg.Config
		return p, nil

	case settingsAppliedMsg:
		p.cfg = msg.cfg
		return p, nil

	case tea.KeyMsg:
		if p.form != nil {
			return p.updateForm(msg)
		}
		switch msg.String() {
		case "e", "enter":
			return p.startEditing()
		}
		return p, nil
	}

	if p.form != nil {
		return p.updateForm(msg)
	}
	return p, nil
}

func (p *settingsPanel) startEditing() (Panel, tea.Cmd) {
	p.fTheme = p.cfg.Theme
	p.fProfile = p.cfg.ColorProfile
	p.fURL = p.cfg.Node.URL
	p.fMargin = strconv.Itoa(p.cfg.Layout.Margin)
	p.fTimeout = strconv.Itoa(p.cfg.Node.TimeoutSeconds)

	width := p.width
	if width <= 0 {
		width = 40
	}

	themeOpts := make([]huh.Option[string], 0, 4)
	for _, name := range ThemeNames() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("theme").
				Title("Theme").
				Description("Catppuccin flavour").
				Options(themeOpts...).
				Value(&p.fTheme),
			huh.NewSelect[string]().
				Key("profile").
				Title("Colors").
				Description("Terminal color profile").
				Options(
					huh.NewOption("auto", "auto"),
					huh.NewOption("ascii", "ascii"),
					huh.NewOption("ansi", "ansi"),
					huh.NewOption("ansi256", "ansi256"),
					huh.NewOption("truecolor", "truecolor"),
				).
				Value(&p.fProfile),
			huh.NewInput().
				Key("url").
				Title("Node URL").
				Description("HTTP address of the hive node").
				Value(&p.fURL),
			huh.NewInput().
				Key("margin").
				Title("Margin").
				Description("Cells kept free around windows").
				Value(&p.fMargin),
			huh.NewInput().
				Key("timeout").
				Title("Node timeout").
				Description("Request timeout in seconds").
				Value(&p.fTimeout),
		),
	).WithWidth(width).WithShowHelp(true).WithShowErrors(true)

	p.status = ""
	p.statusBad = false
	return p, p.form.Init()
}

func (p *settingsPanel) updateForm(msg tea.Msg) (Panel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		p.form = nil
		return p, nil
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		applyCmd := p.applyForm()
		p.form = nil
		return p, tea.Batch(cmd, applyCmd)
	}
	if p.form.State == huh.StateAborted {
		p.form = nil
		return p, cmd
	}
	return p, cmd
}

func (p *settingsPanel) applyForm() tea.Cmd {
	margin, err := strconv.Atoi(strings.TrimSpace(p.fMargin))
	if err != nil || margin < 0 {
		p.status = "margin must be a non-negative integer"
		p.statusBad = true
		return nil
	}
	timeout, err := strconv.Atoi(strings.TrimSpace(p.fTimeout))
	if err != nil || timeout <= 0 {
		p.status = "timeout must be a positive integer"
		p.statusBad = true
		return nil
	}

	next := *p.cfg
	next.Theme = p.fTheme
	next.ColorProfile = p.fProfile
	next.Node.URL = strings.TrimSpace(p.fURL)
	next.Node.TimeoutSeconds = timeout
	next.Layout.Margin = margin

	if err := next.Validate(); err != nil {
		p.status = err.Error()
		p.statusBad = true
		return nil
	}
	if err := p.save(&next); err != nil {
		p.status = fmt.Sprintf("save failed: %v", err)
		p.statusBad = true
		return nil
	}

	p.status = "saved"
	p.statusBad = false
	cfg := &next
	return func() tea.Msg { return settingsAppliedMsg{cfg: cfg} }
}

// save writes the configuration back to the file it was loaded from, or to
// the standard location when the shell started without one.
func (p *settingsPanel) save(cfg *config.Config) error {
	if p.cfgPath != "" {
		return cfg.SaveTo(p.cfgPath)
	}
	return cfg.Save()
}

func (p *settingsPanel) NaturalSize() (wm.Size, bool) {
	if p.form != nil {
		return wm.Size{Width: 48, Height: 20}, true
	}
	lines := p.summaryLines()
	w := 40
	for _, l := range lines {
		if lw := visibleWidth(l) + 2; lw > w {
			w = lw
		}
	}
	return wm.Size{Width: float64(w), Height: float64(len(lines))}, true
}

func (p *settingsPanel) View(width, height int) string {
	if p.form != nil {
		return p.form.View()
	}
	return strings.Join(p.summaryLines(), "\n")
}

func (p *settingsPanel) summaryLines() []string {
	th := p.th
	row := func(k, v string) string {
		return fmt.Sprintf(" %s %s", th.Muted.Render(fmt.Sprintf("%-10s", k)), th.Text.Render(v))
	}
	lines := []string{
		"",
		row("theme", p.cfg.Theme),
		row("colors", p.cfg.ColorProfile),
		row("node url", p.cfg.Node.URL),
		row("timeout", fmt.Sprintf("%ds", p.cfg.Node.TimeoutSeconds)),
		row("margin", strconv.Itoa(p.cfg.Layout.Margin)),
		row("config", shortPath(p.cfgPath)),
		"",
	}
	if p.status != "" {
		style := th.Good
		if p.statusBad {
			style = th.Bad
		}
		lines = append(lines, " "+style.Render(p.status), "")
	}
	lines = append(lines, " "+th.Muted.Render("e edit"))
	return lines
}

func shortPath(path string) string {
	if len(path) <= 36 {
		return path
	}
	return "…" + path[len(path)-35:]
}

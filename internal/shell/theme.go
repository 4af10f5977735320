package shell

import (
	"strings"

	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme is the resolved style set for one catppuccin flavour. Everything the
// shell draws goes through one of these styles so a flavour change in the
// settings panel restyles the whole desktop at once.
type Theme struct {
	Name string

	BorderActive   lipgloss.Style
	BorderInactive lipgloss.Style
	TitleActive    lipgloss.Style
	TitleInactive  lipgloss.Style
	Button         lipgloss.Style
	ButtonClose    lipgloss.Style

	Text   lipgloss.Style
	Muted  lipgloss.Style
	Accent lipgloss.Style
	Good   lipgloss.Style
	Warn   lipgloss.Style
	Bad    lipgloss.Style

	Bar       lipgloss.Style
	BarAccent lipgloss.Style
	DockEntry lipgloss.Style
}

// NewTheme resolves a flavour name from configuration into concrete styles.
// Unknown names fall back to mocha, matching the configuration default.
func NewTheme(flavour string) Theme {
	f := catppuccin.Mocha
	name := strings.ToLower(strings.TrimSpace(flavour))
	switch name {
	case "latte":
		f = catppuccin.Latte
	case "frappe":
		f = catppuccin.Frappe
	case "macchiato":
		f = catppuccin.Macchiato
	case "mocha":
	default:
		name = "mocha"
	}

	var (
		text     = lipgloss.Color(f.Text().Hex)
		subtext  = lipgloss.Color(f.Subtext0().Hex)
		overlay  = lipgloss.Color(f.Overlay0().Hex)
		surface  = lipgloss.Color(f.Surface0().Hex)
		surface2 = lipgloss.Color(f.Surface2().Hex)
		mauve    = lipgloss.Color(f.Mauve().Hex)
		green    = lipgloss.Color(f.Green().Hex)
		yellow   = lipgloss.Color(f.Yellow().Hex)
		red      = lipgloss.Color(f.Red().Hex)
		lavender = lipgloss.Color(f.Lavender().Hex)
	)

	return Theme{
		Name: name,

		BorderActive:   lipgloss.NewStyle().Foreground(mauve),
		BorderInactive: lipgloss.NewStyle().Foreground(surface2),
		TitleActive:    lipgloss.NewStyle().Foreground(text).Bold(true),
		TitleInactive:  lipgloss.NewStyle().Foreground(overlay),
		Button:         lipgloss.NewStyle().Foreground(overlay),
		ButtonClose:    lipgloss.NewStyle().Foreground(red),

		Text:   lipgloss.NewStyle().Foreground(text),
		Muted:  lipgloss.NewStyle().Foreground(overlay),
		Accent: lipgloss.NewStyle().Foreground(lavender),
		Good:   lipgloss.NewStyle().Foreground(green),
		Warn:   lipgloss.NewStyle().Foreground(yellow),
		Bad:    lipgloss.NewStyle().Foreground(red),

		Bar:       lipgloss.NewStyle().Foreground(subtext).Background(surface),
		BarAccent: lipgloss.NewStyle().Foreground(mauve).Background(surface).Bold(true),
		DockEntry: lipgloss.NewStyle().Foreground(text).Background(surface),
	}
}

// ThemeNames lists the selectable flavours in settings order.
func ThemeNames() []string {
	return []string{"latte", "frappe", "macchiato", "mocha"}
}

// ApplyColorProfile pins lipgloss to a fixed color profile. "auto" keeps
// termenv's own detection, which is what most terminals want.
func ApplyColorProfile(profile string) {
	switch strings.ToLower(strings.TrimSpace(profile)) {
	case "ascii":
		lipgloss.SetColorProfile(termenv.Ascii)
	case "ansi":
		lipgloss.SetColorProfile(termenv.ANSI)
	case "ansi256":
		lipgloss.SetColorProfile(termenv.ANSI256)
	case "truecolor":
		lipgloss.SetColorProfile(termenv.TrueColor)
	}
}

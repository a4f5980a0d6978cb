package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/DoyleJ11/team-builder/internal/engine"
)

var (
	DarkBackground = lipgloss.Color("#1e1f26")
	DarkForeground = lipgloss.Color("#eeeef2")
	DarkMuted      = lipgloss.Color("#6b6e7d")
	DarkAccent     = lipgloss.Color("#8bc34a")

	LightBackground = lipgloss.Color("#fafafc")
	LightForeground = lipgloss.Color("#1a1b22")
	LightMuted      = lipgloss.Color("#999ba8")
	LightAccent     = lipgloss.Color("#3f6fd8")

	Destructive = lipgloss.Color("#e53935")
)

var tierColors = map[engine.Theme]map[engine.Tier]lipgloss.Color{
	engine.ThemeDark: {
		engine.TierHigh: lipgloss.Color("#8c2f39"),
		engine.TierMid:  lipgloss.Color("#8a6d1f"),
		engine.TierLow:  lipgloss.Color("#2f6d45"),
	},
	engine.ThemeLight: {
		engine.TierHigh: lipgloss.Color("#f4b6bc"),
		engine.TierMid:  lipgloss.Color("#f5dc9a"),
		engine.TierLow:  lipgloss.Color("#b5e3c4"),
	},
}

type Styles struct {
	App     lipgloss.Style
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Chip    map[engine.Tier]lipgloss.Style
	Empty   lipgloss.Style
	Focus   lipgloss.Style
	Over    lipgloss.Style
	Op      lipgloss.Style
	Menu    lipgloss.Style
	Status  lipgloss.Style
	Error   lipgloss.Style
	Carried lipgloss.Style
}

func NewStyles(theme engine.Theme) Styles {
	fg, bg, muted, accent := DarkForeground, DarkBackground, DarkMuted, DarkAccent
	if theme == engine.ThemeLight {
		fg, bg, muted, accent = LightForeground, LightBackground, LightMuted, LightAccent
	}
	colors, ok := tierColors[theme]
	if !ok {
		colors = tierColors[engine.ThemeDark]
	}

	chip := make(map[engine.Tier]lipgloss.Style, len(colors))
	for tier, c := range colors {
		chip[tier] = lipgloss.NewStyle().Foreground(fg).Background(c).Padding(0, 1)
	}

	return Styles{
		App:     lipgloss.NewStyle().Foreground(fg).Background(bg).Padding(1, 2),
		Title:   lipgloss.NewStyle().Foreground(accent).Bold(true),
		Label:   lipgloss.NewStyle().Foreground(fg).Bold(true).Width(9),
		Muted:   lipgloss.NewStyle().Foreground(muted),
		Chip:    chip,
		Empty:   lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		Focus:   lipgloss.NewStyle().Underline(true).Bold(true),
		Over:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		Op:      lipgloss.NewStyle().Foreground(accent).Bold(true).Width(4).Align(lipgloss.Center),
		Menu:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
		Status:  lipgloss.NewStyle().Foreground(accent),
		Error:   lipgloss.NewStyle().Foreground(Destructive),
		Carried: lipgloss.NewStyle().Foreground(accent).Italic(true),
	}
}

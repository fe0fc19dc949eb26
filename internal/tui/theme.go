// Package tui is the terminal selector and renderer for agentdesk sessions.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/soyeahso/agentdesk/internal/catalog"
)

var variantColors = map[catalog.Variant]lipgloss.Color{
	catalog.VariantProductOwner: lipgloss.Color("#3b82f6"),
	catalog.VariantDeveloper:    lipgloss.Color("#22c55e"),
	catalog.VariantScrumMaster:  lipgloss.Color("#a855f7"),
	catalog.VariantTester:       lipgloss.Color("#f97316"),
	catalog.VariantDefault:      lipgloss.Color("#94a3b8"),
}

var toneColors = map[catalog.Tone]lipgloss.Color{
	catalog.ToneAccent:      lipgloss.Color("#22c55e"),
	catalog.ToneDestructive: lipgloss.Color("#ef4444"),
	catalog.ToneSecondary:   lipgloss.Color("#eab308"),
	catalog.ToneMuted:       lipgloss.Color("#6b7280"),
}

type theme struct {
	title    lipgloss.Style
	header   lipgloss.Style
	panel    lipgloss.Style
	selected lipgloss.Style
	muted    lipgloss.Style
	user     lipgloss.Style
	errorMsg lipgloss.Style
	chip     lipgloss.Style
	status   lipgloss.Style
	help     lipgloss.Style
}

func newTheme() theme {
	text := lipgloss.Color("#e5e7eb")
	muted := lipgloss.Color("#6b7280")
	border := lipgloss.Color("#374151")

	return theme{
		title: lipgloss.NewStyle().Bold(true).Foreground(text),
		header: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(border).
			Padding(0, 1),
		panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
		selected: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			Padding(0, 1),
		muted:    lipgloss.NewStyle().Foreground(muted),
		user:     lipgloss.NewStyle().Bold(true).Foreground(text),
		errorMsg: lipgloss.NewStyle().Foreground(toneColors[catalog.ToneDestructive]),
		chip: lipgloss.NewStyle().
			Foreground(text).
			Background(border).
			Padding(0, 1),
		status: lipgloss.NewStyle().Foreground(muted).Italic(true),
		help:   lipgloss.NewStyle().Foreground(muted),
	}
}

// accent is the colour of an agent's variant.
func accent(v catalog.Variant) lipgloss.Color {
	if c, ok := variantColors[v]; ok {
		return c
	}
	return variantColors[catalog.VariantDefault]
}

func (t theme) agentName(v catalog.Variant) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(accent(v))
}

func (t theme) card(v catalog.Variant, active bool) lipgloss.Style {
	if active {
		return t.selected.BorderForeground(accent(v))
	}
	return t.panel
}

func (t theme) tone(tone catalog.Tone) lipgloss.Style {
	c, ok := toneColors[tone]
	if !ok {
		c = toneColors[catalog.ToneMuted]
	}
	return lipgloss.NewStyle().Foreground(c)
}

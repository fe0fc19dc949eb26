package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/soyeahso/agentdesk/internal/catalog"
	"github.com/soyeahso/agentdesk/internal/domain"
)

const capabilityPreviewSize = 3

// agentChosenMsg is sent when the user picks an agent.
type agentChosenMsg struct {
	agent domain.Agent
}

// picker lists the catalog agents and lets the user choose one.
type picker struct {
	agents []domain.Agent
	cursor int
	width  int
	theme  theme
}

func newPicker(agents []domain.Agent, th theme) picker {
	return picker{agents: agents, theme: th}
}

func (p picker) Update(msg tea.Msg) (picker, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "up", "k", "shift+tab":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j", "tab":
		if p.cursor < len(p.agents)-1 {
			p.cursor++
		}
	case "enter":
		if len(p.agents) == 0 {
			return p, nil
		}
		agent := p.agents[p.cursor]
		return p, func() tea.Msg { return agentChosenMsg{agent: agent} }
	}
	return p, nil
}

func (p picker) View() string {
	var b strings.Builder
	b.WriteString(p.theme.title.Render("Choose an assistant"))
	b.WriteString("\n\n")
	if len(p.agents) == 0 {
		b.WriteString(p.theme.muted.Render("No agents configured."))
		return b.String()
	}
	for i, a := range p.agents {
		b.WriteString(p.renderCard(a, i == p.cursor))
		b.WriteString("\n")
	}
	b.WriteString(p.theme.help.Render("↑/↓ move · enter start chat · q quit"))
	return b.String()
}

func (p picker) renderCard(a domain.Agent, active bool) string {
	variant := catalog.VariantOf(a.Role)

	name := p.theme.agentName(variant).Render(strings.TrimSpace(a.Icon + " " + a.Name))
	status := p.theme.tone(catalog.StatusTone(a.Status)).Render("● " + string(a.Status))
	lines := []string{
		name + "  " + p.theme.muted.Render(a.Role) + "  " + status,
	}
	if a.Description != "" {
		lines = append(lines, a.Description)
	}

	shown, more := catalog.CapabilityPreview(a, capabilityPreviewSize)
	if len(shown) > 0 {
		caps := strings.Join(shown, " · ")
		if more > 0 {
			caps += fmt.Sprintf(" · +%d more", more)
		}
		lines = append(lines, p.theme.muted.Render(caps))
	}

	style := p.theme.card(variant, active)
	if p.width > 4 {
		style = style.Width(p.width - 4)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

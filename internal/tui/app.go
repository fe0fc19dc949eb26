package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/soyeahso/agentdesk/internal/domain"
	"github.com/soyeahso/agentdesk/internal/logging"
	"github.com/soyeahso/agentdesk/internal/session"
)

// Model switches between the agent picker and a chat. Choosing an agent
// starts a session on the manager; /back closes it and returns here.
type Model struct {
	sessions *session.Manager
	log      *logging.Logger
	theme    theme
	picker   picker
	chat     chat
	inChat   bool
	initial  *domain.Agent
	width    int
	height   int
	err      error
}

// New creates the root model over the given agents.
func New(sessions *session.Manager, agents []domain.Agent, log *logging.Logger) Model {
	th := newTheme()
	return Model{
		sessions: sessions,
		log:      log.Sub("tui"),
		theme:    th,
		picker:   newPicker(agents, th),
	}
}

// StartWith skips the picker and opens a chat with agent on start.
func (m Model) StartWith(agent domain.Agent) Model {
	m.initial = &agent
	return m
}

func (m Model) Init() tea.Cmd {
	if m.initial == nil {
		return nil
	}
	agent := *m.initial
	return func() tea.Msg { return agentChosenMsg{agent: agent} }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.picker.width = msg.Width
		if m.inChat {
			m.chat.setSize(msg.Width, msg.Height)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.closeChat()
			return m, tea.Quit
		case "q", "esc":
			if !m.inChat {
				return m, tea.Quit
			}
		}

	case agentChosenMsg:
		c, err := m.sessions.Start(msg.agent.ID)
		if err != nil {
			m.err = err
			m.log.Warn().Err(err).Str("agentId", msg.agent.ID).Msg("could not start session")
			return m, nil
		}
		m.err = nil
		m.chat = newChat(c, m.theme, m.width, m.height)
		m.inChat = true
		return m, m.chat.Init()

	case chatClosedMsg:
		if m.inChat {
			m.chat.leave()
			m.inChat = false
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.inChat {
		m.chat, cmd = m.chat.Update(msg)
	} else {
		m.picker, cmd = m.picker.Update(msg)
	}
	return m, cmd
}

// closeChat ends the open session, if any.
func (m *Model) closeChat() {
	if !m.inChat {
		return
	}
	m.chat.ctrl.Back()
	m.chat.leave()
	m.inChat = false
}

func (m Model) View() string {
	var view string
	if m.inChat {
		view = m.chat.View()
	} else {
		view = m.picker.View()
	}
	if m.err != nil {
		view = lipgloss.JoinVertical(lipgloss.Left, view, m.theme.errorMsg.Render(m.err.Error()))
	}
	return view
}

// Run shows the terminal UI until the user quits or ctx is cancelled.
// A chat still open at exit is closed.
func Run(ctx context.Context, m Model) error {
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if fm, ok := final.(Model); ok {
		fm.closeChat()
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("running terminal UI: %w", err)
	}
	return nil
}

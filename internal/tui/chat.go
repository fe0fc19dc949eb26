package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/soyeahso/agentdesk/internal/catalog"
	"github.com/soyeahso/agentdesk/internal/domain"
	"github.com/soyeahso/agentdesk/internal/session"
	"github.com/soyeahso/agentdesk/internal/store"
)

// Rows taken by everything except the timeline viewport.
const chatChromeHeight = 8

const chatHelp = "enter send · /attach <path>… · /detach <n> · /back · pgup/pgdn scroll"

// sessionChangedMsg reports that the session published at least one event
// since the last refresh.
type sessionChangedMsg struct{}

// chatClosedMsg is sent after the session has been closed with /back.
type chatClosedMsg struct{}

// chat renders one session and forwards input to its controller. It only
// reads session state through snapshots.
type chat struct {
	ctrl    *session.Controller
	variant catalog.Variant
	snap    domain.Snapshot

	// changes holds at most one pending signal, so a burst of events
	// produces a single refresh.
	changes     chan struct{}
	done        chan struct{}
	unsubscribe func()

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	md       *glamour.TermRenderer
	theme    theme
	width    int
	status   string
}

func newChat(ctrl *session.Controller, th theme, width, height int) chat {
	input := textinput.New()
	input.Prompt = "❯ "
	input.Placeholder = "Message " + ctrl.Agent().Name
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	agent := ctrl.Agent()
	variant := catalog.VariantOf(agent.Role)
	sp.Style = lipgloss.NewStyle().Foreground(accent(variant))

	c := chat{
		ctrl:     ctrl,
		variant:  variant,
		changes:  make(chan struct{}, 1),
		done:     make(chan struct{}),
		input:    input,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		theme:    th,
	}
	changes := c.changes
	c.unsubscribe = ctrl.Subscribe(func(session.Event) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	c.setSize(width, height)
	return c
}

func (c chat) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, c.spinner.Tick, c.waitForChange())
}

// waitForChange blocks until the session changes or the chat is left.
func (c chat) waitForChange() tea.Cmd {
	changes, done := c.changes, c.done
	return func() tea.Msg {
		select {
		case <-changes:
			return sessionChangedMsg{}
		case <-done:
			return nil
		}
	}
}

// leave stops following the session. It does not close it.
func (c chat) leave() {
	c.unsubscribe()
	close(c.done)
}

func (c *chat) setSize(width, height int) {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	c.width = width
	c.viewport.Width = width
	c.viewport.Height = max(3, height-chatChromeHeight)
	c.input.Width = max(10, width-4)

	wrap := min(max(20, width-4), 100)
	// A nil renderer falls back to plain artifact panels.
	c.md, _ = glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(wrap))
	c.refresh()
}

func (c *chat) refresh() {
	c.snap = c.ctrl.Snapshot()
	c.viewport.SetContent(c.renderTimeline())
	c.viewport.GotoBottom()
}

func (c chat) Update(msg tea.Msg) (chat, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionChangedMsg:
		c.refresh()
		return c, c.waitForChange()

	case spinner.TickMsg:
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		return c, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return c.send()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			c.viewport, cmd = c.viewport.Update(msg)
			return c, cmd
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c chat) send() (chat, tea.Cmd) {
	text := c.input.Value()
	if strings.HasPrefix(strings.TrimSpace(text), "/") {
		c.input.Reset()
		return c.command(strings.TrimSpace(text))
	}

	res := c.ctrl.Submit(text)
	if !res.Accepted {
		c.status = c.rejectionText(res.Reason)
		return c, nil
	}
	c.input.Reset()
	c.status = ""
	c.refresh()
	return c, nil
}

func (c chat) rejectionText(reason session.RejectReason) string {
	switch reason {
	case session.RejectBusy:
		return c.snap.Agent.Name + " is still preparing a response"
	case session.RejectClosed:
		return "this session has ended"
	default:
		return "type a message or attach a file first"
	}
}

func (c chat) command(line string) (chat, tea.Cmd) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/attach":
		if len(fields) < 2 {
			c.status = "usage: /attach <path>…"
			return c, nil
		}
		refs, err := statAttachments(fields[1:])
		if err != nil {
			c.status = err.Error()
			return c, nil
		}
		if _, err := c.ctrl.StageAttachments(refs...); err != nil {
			c.status = err.Error()
			return c, nil
		}
		c.status = fmt.Sprintf("%d file(s) ready for context analysis", len(refs))

	case "/detach":
		n := 0
		if len(fields) == 2 {
			n, _ = strconv.Atoi(fields[1])
		}
		if n < 1 {
			c.status = "usage: /detach <n>"
			return c, nil
		}
		if !c.ctrl.RemoveStagedAttachment(n - 1) {
			c.status = fmt.Sprintf("no staged file #%d", n)
			return c, nil
		}
		c.status = ""

	case "/back":
		c.ctrl.Back()
		return c, func() tea.Msg { return chatClosedMsg{} }

	case "/help":
		c.status = chatHelp

	default:
		c.status = "unknown command " + fields[0]
	}
	c.refresh()
	return c, nil
}

// statAttachments describes local files by name and size. Their contents
// are never read.
func statAttachments(paths []string) ([]domain.AttachmentRef, error) {
	refs := make([]domain.AttachmentRef, 0, len(paths))
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if fi.IsDir() {
			return nil, errors.New(p + " is a directory")
		}
		refs = append(refs, domain.AttachmentRef{
			Name:     filepath.Base(p),
			MimeType: session.MimeTypeOf(p),
			Size:     fi.Size(),
		})
	}
	return refs, nil
}

func (c chat) View() string {
	agent := c.snap.Agent
	header := c.theme.header.Width(c.width).Render(
		c.theme.agentName(c.variant).Render(strings.TrimSpace(agent.Icon+" "+agent.Name)) +
			"  " + c.theme.muted.Render(agent.Role),
	)

	var activity string
	switch c.snap.Phase {
	case domain.PhaseAwaitingResponse:
		activity = c.spinner.View() + " " + c.theme.status.Render(agent.Name+" is preparing a response…")
	case domain.PhaseClosed:
		activity = c.theme.status.Render("session ended")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		c.viewport.View(),
		activity,
		c.renderStaged(),
		c.theme.errorMsg.Render(c.status),
		c.input.View(),
		c.theme.help.Render(chatHelp),
	)
}

func (c chat) renderStaged() string {
	if len(c.snap.Staged) == 0 {
		return ""
	}
	chips := make([]string, len(c.snap.Staged))
	for i, a := range c.snap.Staged {
		chips[i] = c.theme.chip.Render(fmt.Sprintf("%d %s (%s)", i+1, a.Name, store.FormatSize(a.Size)))
	}
	return strings.Join(chips, " ")
}

func (c chat) renderTimeline() string {
	body := lipgloss.NewStyle().Width(max(20, c.width-2))

	var b strings.Builder
	for _, m := range c.snap.Timeline {
		b.WriteString(c.speaker(m) + " " + c.theme.muted.Render(m.Timestamp.Format("15:04")))
		b.WriteString("\n")

		shape := m.Shape()
		if shape.Has(domain.ShapeError) {
			b.WriteString(c.theme.errorMsg.Render(fmt.Sprintf("%s (%s)", m.Content, m.Error.Code)))
			b.WriteString("\n")
		} else if shape.Has(domain.ShapeText) {
			b.WriteString(body.Render(m.Content))
			b.WriteString("\n")
		}
		if shape.Has(domain.ShapeAttachments) {
			chips := make([]string, len(m.Attachments))
			for i, a := range m.Attachments {
				chips[i] = c.theme.chip.Render(a.Name)
			}
			b.WriteString(strings.Join(chips, " "))
			b.WriteString("\n")
		}
		if shape.Has(domain.ShapeArtifacts) {
			for _, art := range m.Artifacts {
				b.WriteString(c.renderArtifact(art))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (c chat) speaker(m domain.Message) string {
	if m.Role == domain.RoleUser {
		return c.theme.user.Render("You")
	}
	return c.theme.agentName(c.variant).Render(c.snap.Agent.Name)
}

func (c chat) renderArtifact(a domain.Artifact) string {
	src := "### " + a.Title + "\n\n" + a.Content
	if c.md != nil {
		if out, err := c.md.Render(src); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	return c.theme.panel.Render(a.Title + "\n" + a.Content)
}

package threadview

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maxking/archive-reader/internal/keys"
	"github.com/maxking/archive-reader/internal/manager"
	"github.com/maxking/archive-reader/internal/model"
	"github.com/maxking/archive-reader/internal/theme"
)

// EmailsLoadedMsg is sent when the thread's cached emails have been
// read from the store.
type EmailsLoadedMsg struct {
	ThreadID string
	Emails   []model.Email
	Stored   int
}

// FetchedMsg is sent when a background email fetch completes.
type FetchedMsg struct {
	ThreadID string
	Created  int
}

// ErrMsg carries a recoverable error for the parent to display.
type ErrMsg struct {
	Err error
}

// Model renders a single thread's emails in a scrollable viewport.
// Cached emails render immediately; when fewer emails are stored than
// the thread's reply count says exist, the missing ones are fetched in
// the background and the view reloads when they arrive.
type Model struct {
	thread   model.Thread
	manager  *manager.ThreadManager
	keys     *keys.KeyMap
	viewport viewport.Model
	spinner  spinner.Model
	fetching bool
	emails   []model.Email
	width    int
	height   int
}

// New creates the read view for one thread.
func New(mgr *manager.ThreadManager, thread model.Thread, k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		thread:   thread,
		manager:  mgr,
		keys:     k,
		viewport: vp,
		spinner:  sp,
		width:    width,
		height:   height,
	}
}

// Init loads the cached emails; the loaded handler decides whether a
// background fetch is needed.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadEmails(), m.spinner.Tick)
}

// Thread returns the thread being read.
func (m Model) Thread() model.Thread {
	return m.thread
}

func (m Model) loadEmails() tea.Cmd {
	mgr := m.manager
	thread := m.thread
	return func() tea.Msg {
		emails, err := mgr.Emails(context.Background(), &thread)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return EmailsLoadedMsg{
			ThreadID: thread.ThreadID,
			Emails:   emails,
			Stored:   len(emails),
		}
	}
}

func (m Model) fetchEmails() tea.Cmd {
	mgr := m.manager
	thread := m.thread
	return func() tea.Msg {
		created, err := mgr.UpdateEmails(context.Background(), &thread)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return FetchedMsg{ThreadID: thread.ThreadID, Created: len(created)}
	}
}

// Update handles messages for the thread read view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EmailsLoadedMsg:
		if msg.ThreadID != m.thread.ThreadID {
			return m, nil
		}
		m.emails = msg.Emails
		m.viewport.SetContent(m.renderEmails())
		// The remote reports more emails than we hold locally, so
		// fetch the rest while the cached ones stay readable.
		if !m.fetching && msg.Stored < m.thread.EmailTotal() {
			m.fetching = true
			return m, tea.Batch(m.fetchEmails(), m.spinner.Tick)
		}
		return m, nil

	case FetchedMsg:
		if msg.ThreadID != m.thread.ThreadID {
			return m, nil
		}
		m.fetching = false
		if msg.Created > 0 {
			return m, m.loadEmails()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.fetching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Refresh) && !m.fetching {
			m.fetching = true
			return m, tea.Batch(m.fetchEmails(), m.spinner.Tick)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// Fetching reports whether an email fetch is in flight.
func (m Model) Fetching() bool {
	return m.fetching
}

// SpinnerView renders the in-flight fetch indicator.
func (m Model) SpinnerView() string {
	if !m.fetching {
		return ""
	}
	return m.spinner.View() + " fetching emails"
}

// View renders the thread's emails.
func (m Model) View() string {
	if len(m.emails) == 0 {
		msg := "No emails cached for this thread yet."
		if m.fetching {
			msg = "Fetching emails from the archive..."
		}
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render(msg)
	}
	return m.viewport.View()
}

// renderEmails formats each email as a bordered panel with a From/Date
// header and the body as served by the archive.
func (m Model) renderEmails() string {
	var b strings.Builder

	title := theme.HeaderStyle.Render(m.thread.Subject)
	count := theme.HelpStyle.Render(
		fmt.Sprintf("%d of %d emails", len(m.emails), m.thread.EmailTotal()),
	)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, title, " ", count))
	b.WriteString("\n\n")

	panelWidth := m.width - 4
	if panelWidth < 20 {
		panelWidth = 20
	}

	for _, e := range m.emails {
		from := e.SenderName
		if from == "" {
			from = "unknown sender"
		}
		header := fmt.Sprintf("%s  %s",
			theme.SenderStyle.Render(from),
			theme.HelpStyle.Render(e.Date.Format("2006-01-02 15:04")),
		)

		panel := theme.EmailPanelStyle.
			Width(panelWidth).
			Render(header + "\n\n" + strings.TrimSpace(e.Content))
		b.WriteString(panel)
		b.WriteString("\n")
	}

	return b.String()
}

// SetSize updates the viewport dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	if len(m.emails) > 0 {
		m.viewport.SetContent(m.renderEmails())
	}
}

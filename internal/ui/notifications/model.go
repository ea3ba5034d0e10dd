package notifications

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maxking/archive-reader/internal/keys"
	"github.com/maxking/archive-reader/internal/model"
	"github.com/maxking/archive-reader/internal/store"
	"github.com/maxking/archive-reader/internal/theme"
)

// LoadedMsg is sent when the unread notifications have been read from
// the store.
type LoadedMsg struct {
	Notifications []model.Notification
}

// DismissedMsg is sent after a notification was marked read.
type DismissedMsg struct {
	ID string
}

// ErrMsg carries a recoverable error for the parent to display.
type ErrMsg struct {
	Err error
}

// Model is the unread notifications overlay.
type Model struct {
	list   list.Model
	store  store.Store
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates the notifications view.
func New(s store.Store, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, itemDelegate{}, width, height)
	l.Title = "Notifications"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	return Model{
		list:   l,
		store:  s,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init loads the unread notifications.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Load returns a tea.Cmd that reads unread notifications from the
// store.
func (m Model) Load() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ns, err := s.GetUnreadNotifications(context.Background())
		if err != nil {
			return ErrMsg{Err: err}
		}
		return LoadedMsg{Notifications: ns}
	}
}

// Update handles messages for the notifications view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		items := make([]list.Item, len(msg.Notifications))
		for i, n := range msg.Notifications {
			items[i] = item{n: n}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case DismissedMsg:
		return m, m.Load()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Select) {
			it, ok := m.list.SelectedItem().(item)
			if !ok {
				return m, nil
			}
			s := m.store
			id := it.n.ID
			return m, func() tea.Msg {
				if err := s.MarkNotificationRead(context.Background(), id); err != nil {
					return ErrMsg{Err: err}
				}
				return DismissedMsg{ID: id}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the notifications list.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No unread notifications.")
	}
	return m.list.View()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}

// item wraps a model.Notification for the bubbles list.
type item struct {
	n model.Notification
}

func (i item) FilterValue() string { return i.n.Message }

type itemDelegate struct{}

func (d itemDelegate) Height() int  { return 1 }
func (d itemDelegate) Spacing() int { return 0 }

func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	it, ok := li.(item)
	if !ok {
		return
	}

	line := fmt.Sprintf("%s  %s",
		it.n.Message,
		theme.HelpStyle.Render(it.n.CreatedAt.Format("2006-01-02 15:04")),
	)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

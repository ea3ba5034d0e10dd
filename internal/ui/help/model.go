package help

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maxking/archive-reader/internal/keys"
	"github.com/maxking/archive-reader/internal/theme"
)

// Model is the keyboard reference overlay.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates the keyboard reference view.
func New(k *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	h.ShowAll = true
	return Model{
		keys:   k,
		help:   h,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the keyboard reference.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the keyboard reference overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite)

	title := titleStyle.Render("Keyboard Reference")
	subtitle := theme.HelpStyle.Render(
		"Browse archives, read threads, and trigger refreshes without leaving the keyboard.",
	)

	m.help.Width = m.width - 8
	bindings := m.help.View(m.keys)

	hint := theme.HelpStyle.Render(
		"Lists and threads refresh in the background on their own; " +
			"'r' forces a pass for what you are looking at.",
	)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		subtitle,
		"",
		bindings,
		"",
		hint,
	)

	return theme.BorderStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Padding(1, 2).
		Render(content)
}

// SetSize updates the overlay dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 8
}

package listbrowser

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maxking/archive-reader/internal/model"
	"github.com/maxking/archive-reader/internal/theme"
)

// listItem wraps a model.MailingList so it can be used in a
// bubbles/list.
type listItem struct {
	ml model.MailingList
}

// FilterValue returns the string used for fuzzy filtering.
func (i listItem) FilterValue() string { return i.ml.Name }

// listDelegate renders one mailing list per line.
type listDelegate struct{}

func (d listDelegate) Height() int  { return 1 }
func (d listDelegate) Spacing() int { return 0 }

func (d listDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d listDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	li, ok := item.(listItem)
	if !ok {
		return
	}

	name := li.ml.DisplayName
	if name == "" {
		name = li.ml.Name
	}
	policy := theme.ArchivePolicyStyle(li.ml.ArchivePolicy).Render(li.ml.ArchivePolicy)
	line := fmt.Sprintf("%s <%s> %s", name, li.ml.Name, policy)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// emptyState shows guidance text when no lists are subscribed yet.
func emptyState(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render("No subscribed mailing lists.\n\nPress 'a' to add an archive server.")
}

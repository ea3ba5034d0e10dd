package threadlist

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/maxking/archive-reader/internal/model"
	"github.com/maxking/archive-reader/internal/theme"
)

// threadItem wraps a model.Thread plus the freshness markers computed
// by the latest refresh.
type threadItem struct {
	thread     model.Thread
	annotation annotation
}

// FilterValue returns the string used for fuzzy filtering.
func (i threadItem) FilterValue() string { return i.thread.Subject }

// threadDelegate renders one thread per line: freshness marker,
// subject, reply count and last activity.
type threadDelegate struct{}

func (d threadDelegate) Height() int  { return 1 }
func (d threadDelegate) Spacing() int { return 0 }

func (d threadDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d threadDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(threadItem)
	if !ok {
		return
	}
	t := ti.thread

	marker := "  "
	switch {
	case ti.annotation.isNew:
		marker = theme.NewMarkerStyle.Render("● ")
	case ti.annotation.hasNew > 0:
		marker = theme.NewMarkerStyle.Render(fmt.Sprintf("+%d ", ti.annotation.hasNew))
	}

	subjectStyle := theme.ReadStyle
	if !t.Read {
		subjectStyle = theme.UnreadStyle
	}

	line := fmt.Sprintf("%s%s  (%d replies, %s)",
		marker,
		subjectStyle.Render(t.Subject),
		t.RepliesTotal,
		relativeTime(t.DateActive),
	)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// relativeTime formats a timestamp as a coarse "3h ago" label.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// emptyState shows guidance text when a list has no cached threads.
func emptyState(width, height int, refreshing bool) string {
	msg := "No threads yet.\n\nPress 'r' to refresh from the archive."
	if refreshing {
		msg = "Fetching threads from the archive..."
	}
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render(msg)
}

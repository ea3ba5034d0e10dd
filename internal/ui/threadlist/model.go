package threadlist

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/maxking/archive-reader/internal/keys"
	"github.com/maxking/archive-reader/internal/manager"
	"github.com/maxking/archive-reader/internal/model"
)

// ThreadsLoadedMsg is sent when the cached threads have been loaded
// from the store.
type ThreadsLoadedMsg struct {
	Threads []model.Thread
}

// RefreshRequestedMsg asks the owner to run a reconciliation pass for
// this list through the background refresher, so manual refreshes
// update refresh statuses and record notifications the same way
// periodic ones do.
type RefreshRequestedMsg struct {
	ListName string
}

// RefreshedMsg is sent when a reconciliation pass for this list
// completes. Deltas are empty when the pass failed or found nothing.
type RefreshedMsg struct {
	Deltas []manager.ThreadDelta
}

// SelectedThreadMsg is sent when the user opens a thread.
type SelectedThreadMsg struct {
	Thread model.Thread
}

// ErrMsg carries a recoverable error for the parent to display.
type ErrMsg struct {
	Err error
}

// annotation is the per-thread freshness marker computed by the last
// refresh: entirely new thread, or known thread with new replies.
type annotation struct {
	isNew  bool
	hasNew int
}

// Model is the thread list view for one mailing list.
type Model struct {
	list        list.Model
	manager     *manager.ThreadManager
	keys        *keys.KeyMap
	spinner     spinner.Model
	refreshing  bool
	annotations map[string]annotation
	width       int
	height      int
}

// New creates a thread list view backed by the given manager.
func New(mgr *manager.ThreadManager, k *keys.KeyMap, width, height int) Model {
	ml := mgr.MailingList()

	l := list.New([]list.Item{}, threadDelegate{}, width, height)
	l.Title = ml.DisplayName
	if l.Title == "" {
		l.Title = ml.Name
	}
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		list:        l,
		manager:     mgr,
		keys:        k,
		spinner:     sp,
		refreshing:  true,
		annotations: make(map[string]annotation),
		width:       width,
		height:      height,
	}
}

// Init loads the cached threads instantly and requests a refresh, so
// stale content shows up first and new content follows.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.LoadThreads(), m.requestRefresh(), m.spinner.Tick)
}

// LoadThreads returns a tea.Cmd that reads the cached threads from the
// store. No network involved.
func (m Model) LoadThreads() tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		threads, err := mgr.Threads(context.Background())
		if err != nil {
			return ErrMsg{Err: err}
		}
		return ThreadsLoadedMsg{Threads: threads}
	}
}

// requestRefresh returns a tea.Cmd that asks the owner for a
// refresher pass over this list.
func (m Model) requestRefresh() tea.Cmd {
	name := m.manager.MailingList().Name
	return func() tea.Msg {
		return RefreshRequestedMsg{ListName: name}
	}
}

// Update handles messages for the thread list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ThreadsLoadedMsg:
		items := make([]list.Item, len(msg.Threads))
		for i, t := range msg.Threads {
			items[i] = threadItem{
				thread:     t,
				annotation: m.annotations[t.ThreadID],
			}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case RefreshedMsg:
		m.refreshing = false
		for _, d := range msg.Deltas {
			if d.New || d.NewReplies > 0 {
				m.annotations[d.Thread.ThreadID] = annotation{
					isNew:  d.New,
					hasNew: d.NewReplies,
				}
			}
		}
		return m, m.LoadThreads()

	case spinner.TickMsg:
		if !m.refreshing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Select):
			item, ok := m.list.SelectedItem().(threadItem)
			if !ok {
				return m, nil
			}
			t := item.thread
			// Opening a thread clears its freshness markers.
			delete(m.annotations, t.ThreadID)
			mgr := m.manager
			return m, tea.Batch(
				func() tea.Msg {
					_ = mgr.MarkRead(context.Background(), &t)
					return nil
				},
				func() tea.Msg {
					return SelectedThreadMsg{Thread: t}
				},
			)

		case key.Matches(msg, m.keys.Refresh):
			m.refreshing = true
			return m, tea.Batch(m.requestRefresh(), m.spinner.Tick)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// MailingList returns the list this view shows threads for.
func (m Model) MailingList() model.MailingList {
	return m.manager.MailingList()
}

// MailingListName returns the posting address of the list shown.
func (m Model) MailingListName() string {
	return m.manager.MailingList().Name
}

// Refreshing reports whether a refresh pass is in flight, for the
// header spinner.
func (m Model) Refreshing() bool {
	return m.refreshing
}

// SpinnerView renders the in-flight refresh indicator.
func (m Model) SpinnerView() string {
	if !m.refreshing {
		return ""
	}
	return m.spinner.View() + " refreshing"
}

// View renders the thread list.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return emptyState(m.width, m.height, m.refreshing)
	}
	return m.list.View()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}

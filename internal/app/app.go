package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/maxking/archive-reader/internal/hyperkitty"
	"github.com/maxking/archive-reader/internal/keys"
	"github.com/maxking/archive-reader/internal/manager"
	"github.com/maxking/archive-reader/internal/model"
	"github.com/maxking/archive-reader/internal/store"
	appsync "github.com/maxking/archive-reader/internal/sync"
	"github.com/maxking/archive-reader/internal/ui"
	helpview "github.com/maxking/archive-reader/internal/ui/help"
	"github.com/maxking/archive-reader/internal/ui/listbrowser"
	notifview "github.com/maxking/archive-reader/internal/ui/notifications"
	"github.com/maxking/archive-reader/internal/ui/threadlist"
	"github.com/maxking/archive-reader/internal/ui/threadview"
)

// refresherStartMsg carries the subscribed lists the background
// refresher should watch.
type refresherStartMsg struct {
	lists []model.MailingList
}

// unreadCountMsg carries the number of unread notifications to the UI.
type unreadCountMsg struct {
	count int
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLists ViewState = iota
	ViewThreads
	ViewThread
	ViewNotifications
	ViewHelp
)

// Model is the root Bubble Tea model that manages view routing,
// layout, and the background refresher.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	store        store.Store
	listManager  *manager.ListManager
	registry     *manager.Registry
	refresher    *appsync.Refresher
	keys         *keys.KeyMap

	browser     listbrowser.Model
	threads     threadlist.Model
	reader      threadview.Model
	notifView   notifview.Model
	helpView    helpview.Model
	haveThreads bool
	haveReader  bool

	ready       bool
	notice      string
	unreadCount int
}

// New creates the root application model.
func New(
	s store.Store,
	lm *manager.ListManager,
	registry *manager.Registry,
	refresher *appsync.Refresher,
) Model {
	k := keys.DefaultKeyMap()

	return Model{
		currentView: ViewLists,
		store:       s,
		listManager: lm,
		registry:    registry,
		refresher:   refresher,
		keys:        k,
		browser:     listbrowser.New(lm, k, 80, 24),
		notifView:   notifview.New(s, k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
	}
}

// Init loads the subscribed lists and kicks off the background
// refresher once they are known.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.browser.Init(),
		m.startRefresher(),
		m.fetchUnreadCount(),
	)
}

// startRefresher reads the subscriptions and hands them to the
// refresher inside the Bubble Tea runtime.
func (m Model) startRefresher() tea.Cmd {
	lm := m.listManager
	return func() tea.Msg {
		lists, err := lm.SubscribedLists(context.Background())
		if err != nil {
			return listbrowser.ErrMsg{Err: err}
		}
		return refresherStartMsg{lists: lists}
	}
}

// fetchUnreadCount counts unread notifications for the header badge.
func (m Model) fetchUnreadCount() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ns, err := s.GetUnreadNotifications(context.Background())
		if err != nil {
			return unreadCountMsg{count: 0}
		}
		return unreadCountMsg{count: len(ns)}
	}
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w := m.layout.ContentWidth()
		h := m.layout.ContentHeight()
		m.browser.SetSize(w, h)
		m.notifView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		if m.haveThreads {
			m.threads.SetSize(w, h)
		}
		if m.haveReader {
			m.reader.SetSize(w, h)
		}
		// Forward to the active view so huh forms can lay out.
		return m.updateActiveView(msg)

	case refresherStartMsg:
		return m, m.refresher.Start(msg.lists)

	case appsync.RefreshResultMsg:
		cmds := []tea.Cmd{m.refresher.WaitForNextResult()}
		if msg.Error != nil {
			m.notice = describeError(msg.Error)
		} else {
			cmds = append(cmds, m.fetchUnreadCount())
		}
		// Push the pass's outcome into the open thread list so its
		// new/updated markers and spinner reflect background and
		// manual refreshes alike. A failed pass carries no deltas but
		// still settles the view.
		if m.haveThreads && m.threads.MailingListName() == msg.ListName {
			var cmd tea.Cmd
			m.threads, cmd = m.threads.Update(threadlist.RefreshedMsg{Deltas: msg.Deltas})
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case threadlist.RefreshRequestedMsg:
		m.refresher.RefreshList(msg.ListName)
		return m, nil

	case unreadCountMsg:
		m.unreadCount = msg.count
		return m, nil

	case listbrowser.SelectedListMsg:
		mgr := m.registry.For(msg.List)
		m.threads = threadlist.New(mgr, m.keys, m.layout.ContentWidth(), m.layout.ContentHeight())
		m.haveThreads = true
		m.previousView = m.currentView
		m.currentView = ViewThreads
		return m, m.threads.Init()

	case listbrowser.DiscoveredMsg:
		if msg.Page == nil || len(msg.Page.Results) == 0 {
			m.notice = fmt.Sprintf("no mailing lists found on %s", msg.Server)
			return m, nil
		}
		return m, m.browser.StartPicking(msg.Page)

	case listbrowser.SubscribedMsg:
		for _, ml := range msg.Lists {
			m.refresher.Watch(ml)
		}
		return m, m.browser.LoadLists()

	case threadlist.SelectedThreadMsg:
		mgr := m.registry.For(m.threads.MailingList())
		m.reader = threadview.New(mgr, msg.Thread, m.keys, m.layout.ContentWidth(), m.layout.ContentHeight())
		m.haveReader = true
		m.previousView = m.currentView
		m.currentView = ViewThread
		return m, m.reader.Init()

	case listbrowser.ErrMsg:
		m.notice = describeError(msg.Err)
		return m, nil

	case threadlist.ErrMsg:
		m.notice = describeError(msg.Err)
		return m, nil

	case threadview.ErrMsg:
		m.notice = describeError(msg.Err)
		return m, nil

	case notifview.ErrMsg:
		m.notice = describeError(msg.Err)
		return m, nil

	case notifview.DismissedMsg:
		var cmd tea.Cmd
		m.notifView, cmd = m.notifView.Update(msg)
		return m, tea.Batch(cmd, m.fetchUnreadCount())

	case tea.KeyMsg:
		if handled, next, cmd := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that work regardless of the active
// view. Plain-letter keys are not intercepted while a form has focus.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	inForm := m.currentView == ViewLists && m.browser.Editing()

	switch msg.String() {
	case "ctrl+c":
		m.refresher.Stop()
		return true, m, tea.Quit

	case "q":
		if inForm {
			return false, m, nil
		}
		m.refresher.Stop()
		return true, m, tea.Quit

	case "esc":
		if m.notice != "" {
			m.notice = ""
			return true, m, nil
		}
		if inForm {
			return false, m, nil
		}
		switch m.currentView {
		case ViewThread:
			m.currentView = ViewThreads
			// Reload so read markers and background fetches show up.
			return true, m, m.threads.LoadThreads()
		case ViewThreads:
			m.currentView = ViewLists
			return true, m, m.browser.LoadLists()
		case ViewNotifications, ViewHelp:
			m.currentView = m.previousView
			return true, m, nil
		}
		return true, m, nil

	case "?":
		if inForm {
			return false, m, nil
		}
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return true, m, nil

	case "n":
		if inForm || m.currentView == ViewNotifications {
			return false, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewNotifications
		return true, m, m.notifView.Init()
	}

	return false, m, nil
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLists:
		m.browser, cmd = m.browser.Update(msg)
	case ViewThreads:
		m.threads, cmd = m.threads.Update(msg)
	case ViewThread:
		m.reader, cmd = m.reader.Update(msg)
	case ViewNotifications:
		m.notifView, cmd = m.notifView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerTitle := "Archive Reader"
	if m.unreadCount > 0 {
		headerTitle = fmt.Sprintf("Archive Reader [%d new]", m.unreadCount)
	}
	header := m.layout.RenderHeader(headerTitle, m.refreshStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, m.notice, content, statusBar)
}

// renderContent returns the rendered string for the current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLists:
		return m.browser.View()
	case ViewThreads:
		return m.threads.View()
	case ViewThread:
		return m.reader.View()
	case ViewNotifications:
		return m.notifView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// refreshStatus summarizes the background refresher for the header.
func (m Model) refreshStatus() string {
	if m.currentView == ViewThread && m.reader.Fetching() {
		return m.reader.SpinnerView()
	}
	if m.currentView == ViewThreads && m.threads.Refreshing() {
		return m.threads.SpinnerView()
	}

	statuses := m.refresher.Statuses()
	if len(statuses) == 0 {
		return "no lists"
	}

	running := 0
	failed := 0
	for _, s := range statuses {
		switch s.State {
		case appsync.RefreshRunning:
			running++
		case appsync.RefreshError:
			failed++
		}
	}

	switch {
	case running > 0:
		return fmt.Sprintf("refreshing (%d)", running)
	case failed > 0:
		return fmt.Sprintf("%d lists stale", failed)
	default:
		return fmt.Sprintf("%d lists", len(statuses))
	}
}

// keyHints returns the context-sensitive status bar hints.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewLists:
		return "enter: open | a: add server | n: notifications | ?: help | q: quit"
	case ViewThreads:
		return "enter: read | r: refresh | esc: back | ?: help | q: quit"
	case ViewThread:
		return "j/k: scroll | r: refresh | esc: back | q: quit"
	case ViewNotifications:
		return "enter: dismiss | esc: back | q: quit"
	case ViewHelp:
		return "esc: back"
	default:
		return ""
	}
}

// describeError turns a failure into the short banner text, naming the
// failing URL for remote errors so the user can tell which archive is
// misbehaving.
func describeError(err error) string {
	switch {
	case hyperkitty.IsConnectError(err):
		return fmt.Sprintf("cannot reach archive server: %v", err)
	case hyperkitty.IsRequestError(err):
		return fmt.Sprintf("archive server error: %v", err)
	case hyperkitty.IsURLFetchError(err):
		return fmt.Sprintf("refresh incomplete: %v", err)
	default:
		return err.Error()
	}
}

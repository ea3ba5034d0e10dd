package listbrowser

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/maxking/archive-reader/internal/hyperkitty"
	"github.com/maxking/archive-reader/internal/keys"
	"github.com/maxking/archive-reader/internal/manager"
	"github.com/maxking/archive-reader/internal/model"
)

// ListsLoadedMsg is sent when the subscribed lists have been loaded
// from the store.
type ListsLoadedMsg struct {
	Lists []model.MailingList
}

// SelectedListMsg is sent when the user opens a mailing list.
type SelectedListMsg struct {
	List model.MailingList
}

// SubscribedMsg is sent when new subscriptions have been persisted.
type SubscribedMsg struct {
	Lists []model.MailingList
}

// DiscoveredMsg carries the lists found on a server during the add
// flow.
type DiscoveredMsg struct {
	Server string
	Page   *hyperkitty.MailingListPage
}

// ErrMsg carries a recoverable error for the parent to display.
type ErrMsg struct {
	Err error
}

// mode tracks which part of the browse/add flow is active.
type mode int

const (
	modeBrowse mode = iota
	modeServerForm
	modePickLists
)

// Model is the mailing-list browser: the subscribed lists, plus the
// add-server flow (enter a server URL, pick lists to subscribe).
type Model struct {
	list    list.Model
	manager *manager.ListManager
	keys    *keys.KeyMap

	mode       mode
	serverURL  string
	serverForm *huh.Form
	pickForm   *huh.Form
	discovered []hyperkitty.MailingListRecord
	picked     []string

	width  int
	height int
}

// New creates the mailing-list browser.
func New(lm *manager.ListManager, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, listDelegate{}, width, height)
	l.Title = "Mailing Lists"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	return Model{
		list:    l,
		manager: lm,
		keys:    k,
		mode:    modeBrowse,
		width:   width,
		height:  height,
	}
}

// Init returns a command that loads the subscribed lists.
func (m Model) Init() tea.Cmd {
	return m.LoadLists()
}

// LoadLists returns a tea.Cmd that reads the subscribed lists from the
// store.
func (m Model) LoadLists() tea.Cmd {
	lm := m.manager
	return func() tea.Msg {
		lists, err := lm.SubscribedLists(context.Background())
		if err != nil {
			return ErrMsg{Err: err}
		}
		return ListsLoadedMsg{Lists: lists}
	}
}

// Update handles messages for the browser.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeServerForm:
		return m.updateServerForm(msg)
	case modePickLists:
		return m.updatePickForm(msg)
	}
	return m.updateBrowse(msg)
}

func (m Model) updateBrowse(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ListsLoadedMsg:
		items := make([]list.Item, len(msg.Lists))
		for i, ml := range msg.Lists {
			items[i] = listItem{ml: ml}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Select):
			item, ok := m.list.SelectedItem().(listItem)
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg {
				return SelectedListMsg{List: item.ml}
			}

		case key.Matches(msg, m.keys.Add):
			m.startServerForm()
			return m, m.serverForm.Init()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// startServerForm opens the "enter server URL" form.
func (m *Model) startServerForm() {
	m.mode = modeServerForm
	m.serverURL = ""
	m.serverForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("server").
				Title("Hyperkitty Server URL").
				Placeholder("https://lists.mailman3.org/archives").
				Validate(manager.ValidateServerURL).
				Value(&m.serverURL),
		),
	).WithWidth(m.width - 4)
}

func (m Model) updateServerForm(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		m.mode = modeBrowse
		return m, nil
	}

	form, cmd := m.serverForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.serverForm = f
	}

	if m.serverForm.State == huh.StateCompleted {
		server := m.serverURL
		lm := m.manager
		m.mode = modeBrowse
		return m, func() tea.Msg {
			page, err := lm.DiscoverLists(context.Background(), server)
			if err != nil {
				return ErrMsg{Err: err}
			}
			return DiscoveredMsg{Server: server, Page: page}
		}
	}

	return m, cmd
}

// StartPicking opens the multi-select of discovered lists. The parent
// routes a DiscoveredMsg back into the browser through this call.
func (m *Model) StartPicking(page *hyperkitty.MailingListPage) tea.Cmd {
	m.mode = modePickLists
	m.discovered = page.Results
	m.picked = nil

	options := make([]huh.Option[string], len(page.Results))
	for i, rec := range page.Results {
		label := fmt.Sprintf("%s <%s>", rec.DisplayName, rec.Name)
		options[i] = huh.NewOption(label, rec.Name)
	}

	m.pickForm = huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Key("lists").
				Title("Select mailing lists to subscribe to").
				Options(options...).
				Value(&m.picked),
		),
	).WithWidth(m.width - 4)
	return m.pickForm.Init()
}

func (m Model) updatePickForm(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		m.mode = modeBrowse
		return m, nil
	}

	form, cmd := m.pickForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.pickForm = f
	}

	if m.pickForm.State == huh.StateCompleted {
		var chosen []hyperkitty.MailingListRecord
		for _, rec := range m.discovered {
			for _, name := range m.picked {
				if rec.Name == name {
					chosen = append(chosen, rec)
				}
			}
		}

		lm := m.manager
		m.mode = modeBrowse
		if len(chosen) == 0 {
			return m, nil
		}
		return m, func() tea.Msg {
			subscribed, err := lm.Subscribe(context.Background(), chosen)
			if err != nil {
				return ErrMsg{Err: err}
			}
			return SubscribedMsg{Lists: subscribed}
		}
	}

	return m, cmd
}

// Editing reports whether one of the add-flow forms has input focus,
// so the parent does not intercept plain-letter keys.
func (m Model) Editing() bool {
	return m.mode != modeBrowse
}

// View renders the browser or the active add-flow form.
func (m Model) View() string {
	switch m.mode {
	case modeServerForm:
		return m.serverForm.View()
	case modePickLists:
		return m.pickForm.View()
	}
	if len(m.list.Items()) == 0 {
		return emptyState(m.width, m.height)
	}
	return m.list.View()
}

// SetSize updates the browser dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}

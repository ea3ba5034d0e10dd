package threadlist

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxking/archive-reader/internal/hyperkitty"
	"github.com/maxking/archive-reader/internal/keys"
	"github.com/maxking/archive-reader/internal/manager"
	"github.com/maxking/archive-reader/internal/model"
	"github.com/maxking/archive-reader/tests/testutil"
)

// collectMsgs runs a command tree and flattens the messages it yields.
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collectMsgs(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func refreshRequests(msgs []tea.Msg) []RefreshRequestedMsg {
	var reqs []RefreshRequestedMsg
	for _, msg := range msgs {
		if req, ok := msg.(RefreshRequestedMsg); ok {
			reqs = append(reqs, req)
		}
	}
	return reqs
}

func newTestModel(t *testing.T) Model {
	t.Helper()

	s := testutil.NewTestStore(t)
	ml := model.MailingList{
		URL:  "http://example.com/api/list/dev@example.com/",
		Name: "dev@example.com",
	}
	mgr := manager.NewThreadManager(ml, hyperkitty.NewClient(), s, 25, 25)
	return New(mgr, keys.DefaultKeyMap(), 80, 24)
}

func TestInitRequestsRefresherPass(t *testing.T) {
	m := newTestModel(t)
	assert.True(t, m.Refreshing())

	reqs := refreshRequests(collectMsgs(m.Init()))
	require.Len(t, reqs, 1)
	assert.Equal(t, "dev@example.com", reqs[0].ListName)
}

func TestRefreshKeyRequestsRefresherPass(t *testing.T) {
	m := newTestModel(t)
	m.refreshing = false

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.True(t, m.Refreshing())

	reqs := refreshRequests(collectMsgs(cmd))
	require.Len(t, reqs, 1)
	assert.Equal(t, "dev@example.com", reqs[0].ListName)
}

func TestRefreshedMsgSettlesSpinnerAndKeepsMarkers(t *testing.T) {
	m := newTestModel(t)

	deltas := []manager.ThreadDelta{
		{Thread: model.Thread{ThreadID: "t1"}, New: true},
		{Thread: model.Thread{ThreadID: "t2"}, NewReplies: 3},
		{Thread: model.Thread{ThreadID: "t3"}},
	}
	m, _ = m.Update(RefreshedMsg{Deltas: deltas})

	assert.False(t, m.Refreshing())
	assert.Equal(t, annotation{isNew: true}, m.annotations["t1"])
	assert.Equal(t, annotation{hasNew: 3}, m.annotations["t2"])
	assert.NotContains(t, m.annotations, "t3")

	// A failed pass delivers no deltas but still clears the spinner.
	m.refreshing = true
	m, _ = m.Update(RefreshedMsg{})
	assert.False(t, m.Refreshing())
}

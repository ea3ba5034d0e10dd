package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/maxking/archive-reader/internal/log"
	"github.com/maxking/archive-reader/internal/manager"
	"github.com/maxking/archive-reader/internal/model"
	"github.com/maxking/archive-reader/internal/store"
)

// RefreshState represents the current state of a list refresh.
type RefreshState int

const (
	RefreshIdle RefreshState = iota
	RefreshRunning
	RefreshError
)

// RefreshStatus holds the refresh state for a single mailing list.
type RefreshStatus struct {
	ListName    string
	State       RefreshState
	LastRefresh time.Time
	Error       error
}

// RefreshResultMsg is a tea.Msg sent when a thread refresh pass for
// one mailing list completes.
type RefreshResultMsg struct {
	ListName       string
	ListURL        string
	Deltas         []manager.ThreadDelta
	NewThreads     int
	UpdatedThreads int
	Error          error
}

// fetchTimeout is the maximum time allowed for a single refresh pass.
const fetchTimeout = 30 * time.Second

// Refresher periodically reconciles every subscribed mailing list's
// threads in the background and bridges the outcomes into the Bubble
// Tea runtime as messages. Presentation code never blocks on it; a
// pass that is still running when the user navigates away simply
// delivers (or drops) its message later.
type Refresher struct {
	store    store.Store
	registry *manager.Registry
	interval time.Duration
	log      *logrus.Entry

	resultCh chan RefreshResultMsg
	stopCh   chan struct{}

	mu       gosync.Mutex
	statuses map[string]*RefreshStatus
	triggers map[string]chan struct{}
	running  bool
}

// New creates a Refresher over the given store and manager registry.
// interval is how often each subscribed list is refreshed; zero or
// negative disables periodic polling (manual triggers still work).
func New(s store.Store, registry *manager.Registry, interval time.Duration) *Refresher {
	return &Refresher{
		store:    s,
		registry: registry,
		interval: interval,
		log:      log.Component("sync"),
		resultCh: make(chan RefreshResultMsg, 16),
		statuses: make(map[string]*RefreshStatus),
		triggers: make(map[string]chan struct{}),
	}
}

// Start launches one refresh goroutine per subscribed mailing list
// and returns a command that subscribes to refresh results. A stopped
// Refresher can be started again.
func (r *Refresher) Start(lists []model.MailingList) tea.Cmd {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.stopCh = make(chan struct{})
	stop := r.stopCh
	for _, ml := range lists {
		r.statuses[ml.Name] = &RefreshStatus{
			ListName: ml.Name,
			State:    RefreshIdle,
		}
		r.triggers[ml.Name] = make(chan struct{}, 1)
	}
	r.mu.Unlock()

	for _, ml := range lists {
		go r.watchList(ml, r.trigger(ml.Name), stop)
	}

	return r.waitForResult()
}

// trigger returns the manual-refresh channel for a list.
func (r *Refresher) trigger(listName string) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.triggers[listName]
}

// Watch adds a list after Start, e.g. right after a new subscription.
func (r *Refresher) Watch(ml model.MailingList) {
	r.mu.Lock()
	if _, ok := r.statuses[ml.Name]; ok {
		r.mu.Unlock()
		return
	}
	r.statuses[ml.Name] = &RefreshStatus{
		ListName: ml.Name,
		State:    RefreshIdle,
	}
	trigger := make(chan struct{}, 1)
	r.triggers[ml.Name] = trigger
	running := r.running
	stop := r.stopCh
	r.mu.Unlock()

	if running {
		go r.watchList(ml, trigger, stop)
	}
}

// Stop halts all refresh goroutines.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}

	close(r.stopCh)
	r.running = false
}

// RefreshList triggers an immediate refresh of a single watched list.
// Each list has its own trigger channel, so a refresh for one list can
// never be swallowed by another list's goroutine. A trigger while a
// pass is already pending coalesces into it.
func (r *Refresher) RefreshList(listName string) {
	r.mu.Lock()
	trigger, ok := r.triggers[listName]
	r.mu.Unlock()
	if !ok {
		return
	}

	select {
	case trigger <- struct{}{}:
	default:
	}
}

// Statuses returns the current refresh status of all watched lists.
func (r *Refresher) Statuses() []RefreshStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	statuses := make([]RefreshStatus, 0, len(r.statuses))
	for _, s := range r.statuses {
		statuses = append(statuses, *s)
	}
	return statuses
}

// watchList runs the refresh loop for a single mailing list.
func (r *Refresher) watchList(ml model.MailingList, trigger <-chan struct{}, stop <-chan struct{}) {
	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	// An initial pass fills the cache right after startup.
	r.refresh(ml)

	for {
		select {
		case <-stop:
			return
		case <-tick:
			r.refresh(ml)
		case <-trigger:
			r.refresh(ml)
		}
	}
}

// refresh performs one UpdateThreads pass for the list, records
// notifications for newly observed threads, and delivers the result.
func (r *Refresher) refresh(ml model.MailingList) {
	r.setStatus(ml.Name, RefreshRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	deltas, err := r.registry.For(ml).UpdateThreads(ctx)
	if err != nil {
		r.setStatus(ml.Name, RefreshError, err)
		r.sendResult(RefreshResultMsg{
			ListName: ml.Name,
			ListURL:  ml.URL,
			Error:    err,
		})
		return
	}

	msg := RefreshResultMsg{
		ListName: ml.Name,
		ListURL:  ml.URL,
		Deltas:   deltas,
	}
	for _, d := range deltas {
		switch {
		case d.New:
			msg.NewThreads++
			n := model.Notification{
				MailingList: ml.URL,
				ThreadID:    d.Thread.ThreadID,
				Message:     fmt.Sprintf("New thread on %s: %s", ml.Name, d.Thread.Subject),
				CreatedAt:   time.Now(),
			}
			if err := r.store.CreateNotification(ctx, n); err != nil {
				r.log.WithError(err).Warn("recording notification failed")
			}
		case d.NewReplies > 0:
			msg.UpdatedThreads++
		}
	}

	r.setStatus(ml.Name, RefreshIdle, nil)
	r.sendResult(msg)
}

// setStatus updates the refresh status for a list.
func (r *Refresher) setStatus(listName string, state RefreshState, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status, ok := r.statuses[listName]
	if !ok {
		return
	}

	status.State = state
	status.Error = err
	if state == RefreshIdle && err == nil {
		status.LastRefresh = time.Now()
	}
}

// sendResult sends a RefreshResultMsg without blocking the refresher.
func (r *Refresher) sendResult(msg RefreshResultMsg) {
	select {
	case r.resultCh <- msg:
	default:
		// Drop if the UI is not draining fast enough.
	}
}

// waitForResult returns a tea.Cmd that waits for the next refresh
// result from the result channel.
func (r *Refresher) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-r.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next refresh
// result. Call it after processing a RefreshResultMsg to keep
// listening.
func (r *Refresher) WaitForNextResult() tea.Cmd {
	return r.waitForResult()
}

package manager

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/maxking/archive-reader/internal/hyperkitty"
	"github.com/maxking/archive-reader/internal/log"
	"github.com/maxking/archive-reader/internal/model"
	"github.com/maxking/archive-reader/internal/store"
)

// ThreadManager reconciles one mailing list's threads and emails
// between the remote archive and the local store. Reads (Threads,
// Emails) never touch the network, so screens can show cached content
// instantly; the Update variants fetch and reconcile on demand.
type ThreadManager struct {
	ml     model.MailingList
	client *hyperkitty.Client
	store  store.Store
	log    *logrus.Entry

	threadPageSize int
	emailPageSize  int
}

// NewThreadManager creates the reconciliation manager for one mailing
// list. Page sizes at or below zero fall back to the server default.
func NewThreadManager(
	ml model.MailingList,
	client *hyperkitty.Client,
	s store.Store,
	threadPageSize, emailPageSize int,
) *ThreadManager {
	if threadPageSize <= 0 {
		threadPageSize = hyperkitty.DefaultPageSize
	}
	if emailPageSize <= 0 {
		emailPageSize = hyperkitty.DefaultPageSize
	}
	return &ThreadManager{
		ml:             ml,
		client:         client,
		store:          s,
		log:            log.Component("manager").WithField("list", ml.Name),
		threadPageSize: threadPageSize,
		emailPageSize:  emailPageSize,
	}
}

// MailingList returns the list this manager reconciles.
func (m *ThreadManager) MailingList() model.MailingList {
	return m.ml
}

// Threads returns the locally cached threads of this list, most
// recently active first. It never touches the network.
func (m *ThreadManager) Threads(ctx context.Context) ([]model.Thread, error) {
	return m.store.ListThreads(ctx, m.ml.URL)
}

// ThreadDelta describes the reconciliation outcome for one thread in
// an UpdateThreads pass.
type ThreadDelta struct {
	Thread model.Thread

	// New is set when the thread was first observed in this pass.
	New bool

	// NewReplies is how many replies the remote reported beyond what
	// was stored. Zero for new or unchanged threads.
	NewReplies int
}

// UpdateThreads fetches the first page of the list's thread collection
// and reconciles it into the store: unknown threads are created, and
// threads whose reply count or active date grew have their activity
// fields updated in place. Only the first page is consumed per call.
func (m *ThreadManager) UpdateThreads(ctx context.Context) ([]ThreadDelta, error) {
	page, err := m.client.Threads(ctx, m.ml.ThreadsURL, m.threadPageSize, 0)
	if err != nil {
		return nil, err
	}

	deltas := make([]ThreadDelta, 0, len(page.Results))
	for _, rec := range page.Results {
		t, created, err := m.store.GetOrCreateThread(
			ctx, m.ml.URL, rec.ThreadID, threadFromRecord(rec),
		)
		if err != nil {
			return nil, fmt.Errorf("reconciling thread %s: %w", rec.ThreadID, err)
		}

		delta := ThreadDelta{Thread: *t, New: created}
		if !created && m.threadIsStale(t, rec) {
			delta.NewReplies = rec.RepliesCount - t.RepliesTotal
			if delta.NewReplies < 0 {
				delta.NewReplies = 0
			}
			m.applyActivity(t, rec)
			if err := m.store.UpdateThreadActivity(ctx, t); err != nil {
				return nil, err
			}
			delta.Thread = *t
		}
		deltas = append(deltas, delta)
	}

	m.log.WithFields(logrus.Fields{
		"fetched": len(page.Results),
		"total":   page.Count,
	}).Debug("thread reconciliation pass complete")
	return deltas, nil
}

// threadIsStale reports whether the remote record carries newer
// activity than the stored row.
func (m *ThreadManager) threadIsStale(t *model.Thread, rec hyperkitty.ThreadRecord) bool {
	return rec.RepliesCount > t.RepliesTotal || rec.DateActive.After(t.DateActive)
}

// applyActivity copies the remote's mutable fields onto the stored row.
func (m *ThreadManager) applyActivity(t *model.Thread, rec hyperkitty.ThreadRecord) {
	t.Subject = rec.Subject
	t.DateActive = rec.DateActive
	t.VotesTotal = rec.VotesTotal
	t.RepliesTotal = rec.RepliesCount
	t.NextThread = stringOrEmpty(rec.NextThread)
	t.PrevThread = stringOrEmpty(rec.PrevThread)
}

// Emails returns the locally cached emails of a thread in date order.
// It never touches the network.
func (m *ThreadManager) Emails(ctx context.Context, thread *model.Thread) ([]model.Email, error) {
	return m.store.ListEmails(ctx, thread.URL)
}

// MarkRead records locally that the thread was opened.
func (m *ThreadManager) MarkRead(ctx context.Context, thread *model.Thread) error {
	thread.Read = true
	return m.store.MarkThreadRead(ctx, thread.ID)
}

// UpdateEmails reconciles a thread's emails: it resolves the thread's
// email collection, fetches bodies only for item URLs not yet stored,
// persists them (resolving senders first), and returns exactly the
// newly created emails. A URL already represented by a stored email is
// never fetched again, so refresh cost follows new content, not
// archive size.
func (m *ThreadManager) UpdateEmails(ctx context.Context, thread *model.Thread) ([]model.Email, error) {
	collection, err := m.client.Emails(ctx, thread.EmailsURL, 1, m.emailPageSize)
	if err != nil {
		return nil, &hyperkitty.URLFetchError{URL: thread.EmailsURL, Err: err}
	}

	stored, err := m.store.ListEmails(ctx, thread.URL)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(stored))
	for _, e := range stored {
		known[e.URL] = true
	}

	var newURLs []string
	for _, rec := range collection.Results {
		if !known[rec.URL] {
			newURLs = append(newURLs, rec.URL)
		}
	}
	if len(newURLs) == 0 {
		return nil, nil
	}

	bodies, failed, err := m.client.FetchMany(ctx, newURLs)
	if err != nil {
		return nil, err
	}
	for _, f := range failed {
		m.log.WithFields(logrus.Fields{
			"url":    f.URL,
			"status": f.StatusCode,
		}).Warn("email fetch failed; will retry on next refresh")
	}

	var created []model.Email
	for _, body := range bodies {
		var rec hyperkitty.EmailRecord
		if err := json.Unmarshal(body, &rec); err != nil {
			return nil, fmt.Errorf("decoding email for thread %s: %w", thread.ThreadID, err)
		}

		email, isNew, err := m.persistEmail(ctx, rec)
		if err != nil {
			return nil, err
		}
		if isNew {
			created = append(created, *email)
		}
	}

	m.log.WithFields(logrus.Fields{
		"thread":  thread.ThreadID,
		"known":   len(stored),
		"fetched": len(bodies),
		"created": len(created),
	}).Info("email reconciliation pass complete")
	return created, nil
}

// persistEmail stores one fetched email, resolving its sender first.
func (m *ThreadManager) persistEmail(ctx context.Context, rec hyperkitty.EmailRecord) (*model.Email, bool, error) {
	sender, _, err := m.store.GetOrCreateSender(
		ctx, rec.Sender.MailmanID, senderFromRecord(rec),
	)
	if err != nil {
		return nil, false, fmt.Errorf("resolving sender %s: %w", rec.Sender.MailmanID, err)
	}

	email, created, err := m.store.GetOrCreateEmail(
		ctx, rec.MessageIDHash, emailFromRecord(rec, sender.ID),
	)
	if err != nil {
		return nil, false, fmt.Errorf("persisting email %s: %w", rec.MessageIDHash, err)
	}
	return email, created, nil
}

package manager_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxking/archive-reader/internal/hyperkitty"
	"github.com/maxking/archive-reader/internal/manager"
	"github.com/maxking/archive-reader/internal/model"
	"github.com/maxking/archive-reader/tests/testutil"
)

// fakeArchive simulates a Hyperkitty server with one thread whose
// reply count can grow between refreshes. Every request is counted per
// path so tests can assert what was and was not re-fetched.
type fakeArchive struct {
	mu      sync.Mutex
	srv     *httptest.Server
	replies int
	emails  []string
	hits    map[string]int
}

func newFakeArchive(t *testing.T) *fakeArchive {
	t.Helper()

	f := &fakeArchive{
		replies: 3,
		emails:  []string{"e1", "e2", "e3", "e4"},
		hits:    make(map[string]int),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

// grow adds emails and raises the reply count, as if new messages
// arrived on the remote list.
func (f *fakeArchive) grow(hashes ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails = append(f.emails, hashes...)
	f.replies += len(hashes)
}

func (f *fakeArchive) hitCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

// senderFor assigns half the emails to each of two senders.
func senderFor(hash string) string {
	if strings.HasSuffix(hash, "1") || strings.HasSuffix(hash, "3") || strings.HasSuffix(hash, "5") {
		return "mm-alice"
	}
	return "mm-bob"
}

func (f *fakeArchive) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits[r.URL.Path]++
	replies := f.replies
	emails := append([]string(nil), f.emails...)
	f.mu.Unlock()

	base := f.srv.URL

	switch {
	case r.URL.Path == "/api/list/dev@example.com/threads":
		fmt.Fprintf(w, `{
			"count": 1,
			"results": [{
				"url": %q,
				"thread_id": "t1",
				"subject": "deployment broken",
				"date_active": "2026-01-%02dT00:00:00Z",
				"starting_email": %q,
				"emails": %q,
				"votes_total": 0,
				"replies_count": %d
			}]
		}`,
			base+"/api/thread/t1/",
			10+replies,
			base+"/api/email/e1/",
			base+"/api/thread/t1/emails?format=json",
			replies,
		)

	case r.URL.Path == "/api/thread/t1/emails":
		items := make([]string, len(emails))
		for i, h := range emails {
			items[i] = fmt.Sprintf(`{"url": %q, "message_id_hash": %q}`, base+"/api/email/"+h+"/", h)
		}
		fmt.Fprintf(w, `{"count": %d, "results": [%s]}`, len(emails), strings.Join(items, ","))

	case strings.HasPrefix(r.URL.Path, "/api/email/"):
		hash := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/email/"), "/")
		rec := map[string]interface{}{
			"url":             base + "/api/email/" + hash + "/",
			"mailinglist":     base + "/api/list/dev@example.com/",
			"message_id":      "<" + hash + "@example.com>",
			"message_id_hash": hash,
			"thread":          base + "/api/thread/t1/",
			"sender": map[string]string{
				"address":    senderFor(hash) + "@example.com",
				"mailman_id": senderFor(hash),
			},
			"sender_name": senderFor(hash),
			"subject":     "deployment broken",
			"date":        "2026-01-10T00:00:00Z",
			"content":     "body of " + hash,
		}
		_ = json.NewEncoder(w).Encode(rec)

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeArchive) mailingList() model.MailingList {
	return model.MailingList{
		URL:        f.srv.URL + "/api/list/dev@example.com/",
		Name:       "dev@example.com",
		ThreadsURL: f.srv.URL + "/api/list/dev@example.com/threads?format=json",
		EmailsURL:  f.srv.URL + "/api/list/dev@example.com/emails?format=json",
	}
}

func TestUpdateThreadsCreatesThenDetectsGrowth(t *testing.T) {
	f := newFakeArchive(t)
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	ml := f.mailingList()
	_, _, err := s.GetOrCreateMailingList(ctx, ml.URL, ml)
	require.NoError(t, err)

	mgr := manager.NewThreadManager(ml, hyperkitty.NewClient(), s, 25, 25)

	deltas, err := mgr.UpdateThreads(ctx)
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.True(t, deltas[0].New)
	assert.Zero(t, deltas[0].NewReplies)
	assert.Equal(t, 3, deltas[0].Thread.RepliesTotal)

	// Nothing changed remotely, so a second pass reports nothing.
	deltas, err = mgr.UpdateThreads(ctx)
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.False(t, deltas[0].New)
	assert.Zero(t, deltas[0].NewReplies)

	f.grow("e5", "e6")

	deltas, err = mgr.UpdateThreads(ctx)
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.False(t, deltas[0].New)
	assert.Equal(t, 2, deltas[0].NewReplies)
	assert.Equal(t, 5, deltas[0].Thread.RepliesTotal)

	// The growth is persisted, not just reported.
	threads, err := mgr.Threads(ctx)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, 5, threads[0].RepliesTotal)
}

func TestUpdateEmailsFetchesEachBodyOnce(t *testing.T) {
	f := newFakeArchive(t)
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	ml := f.mailingList()
	_, _, err := s.GetOrCreateMailingList(ctx, ml.URL, ml)
	require.NoError(t, err)

	mgr := manager.NewThreadManager(ml, hyperkitty.NewClient(), s, 25, 25)

	deltas, err := mgr.UpdateThreads(ctx)
	require.NoError(t, err)
	thread := deltas[0].Thread

	// Nothing cached before the first email pass.
	cached, err := mgr.Emails(ctx, &thread)
	require.NoError(t, err)
	assert.Empty(t, cached)

	created, err := mgr.UpdateEmails(ctx, &thread)
	require.NoError(t, err)
	assert.Len(t, created, 4)
	for _, h := range []string{"e1", "e2", "e3", "e4"} {
		assert.Equal(t, 1, f.hitCount("/api/email/"+h+"/"))
	}

	cached, err = mgr.Emails(ctx, &thread)
	require.NoError(t, err)
	assert.Len(t, cached, 4)
	assert.Equal(t, "body of e1", cached[0].Content)

	// A second pass over unchanged content fetches no bodies.
	created, err = mgr.UpdateEmails(ctx, &thread)
	require.NoError(t, err)
	assert.Empty(t, created)
	for _, h := range []string{"e1", "e2", "e3", "e4"} {
		assert.Equal(t, 1, f.hitCount("/api/email/"+h+"/"))
	}

	f.grow("e5", "e6")
	deltas, err = mgr.UpdateThreads(ctx)
	require.NoError(t, err)
	thread = deltas[0].Thread

	// Only the two new bodies are fetched.
	created, err = mgr.UpdateEmails(ctx, &thread)
	require.NoError(t, err)
	assert.Len(t, created, 2)
	assert.Equal(t, 1, f.hitCount("/api/email/e1/"))
	assert.Equal(t, 1, f.hitCount("/api/email/e5/"))
	assert.Equal(t, 1, f.hitCount("/api/email/e6/"))

	count, err := s.CountEmails(ctx, thread.URL)
	require.NoError(t, err)
	assert.Equal(t, 6, count)
	assert.Equal(t, 6, thread.EmailTotal())
}

func TestUpdateEmailsSharesSenders(t *testing.T) {
	f := newFakeArchive(t)
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	ml := f.mailingList()
	_, _, err := s.GetOrCreateMailingList(ctx, ml.URL, ml)
	require.NoError(t, err)

	mgr := manager.NewThreadManager(ml, hyperkitty.NewClient(), s, 25, 25)

	deltas, err := mgr.UpdateThreads(ctx)
	require.NoError(t, err)
	thread := deltas[0].Thread

	_, err = mgr.UpdateEmails(ctx, &thread)
	require.NoError(t, err)

	// Four emails from two authors resolve to exactly two sender rows.
	alice, created, err := s.GetOrCreateSender(ctx, "mm-alice", model.Sender{})
	require.NoError(t, err)
	assert.False(t, created)
	bob, created, err := s.GetOrCreateSender(ctx, "mm-bob", model.Sender{})
	require.NoError(t, err)
	assert.False(t, created)

	emails, err := mgr.Emails(ctx, &thread)
	require.NoError(t, err)
	require.Len(t, emails, 4)
	for _, e := range emails {
		assert.Contains(t, []int64{alice.ID, bob.ID}, e.SenderID)
	}
}

func TestUpdateEmailsCollectionFailureIsURLFetchError(t *testing.T) {
	f := newFakeArchive(t)
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	ml := f.mailingList()
	mgr := manager.NewThreadManager(ml, hyperkitty.NewClient(), s, 25, 25)

	thread := model.Thread{
		URL:       f.srv.URL + "/api/thread/gone/",
		ThreadID:  "gone",
		EmailsURL: f.srv.URL + "/api/thread/gone/emails?format=json",
	}
	_, err := mgr.UpdateEmails(ctx, &thread)
	require.Error(t, err)
	assert.True(t, hyperkitty.IsURLFetchError(err))

	var fetchErr *hyperkitty.URLFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, thread.EmailsURL, fetchErr.URL)
}

package store_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxking/archive-reader/internal/model"
	"github.com/maxking/archive-reader/internal/store"
	"github.com/maxking/archive-reader/tests/testutil"
)

func listDefaults(name string) model.MailingList {
	return model.MailingList{
		URL:           fmt.Sprintf("http://example.com/api/list/%s/", name),
		Name:          name,
		DisplayName:   "Example List",
		ArchivePolicy: "public",
		ThreadsURL:    fmt.Sprintf("http://example.com/api/list/%s/threads?format=json", name),
		EmailsURL:     fmt.Sprintf("http://example.com/api/list/%s/emails?format=json", name),
	}
}

func threadDefaults(listURL, threadID string) model.Thread {
	return model.Thread{
		URL:           fmt.Sprintf("%sthread/%s/", listURL, threadID),
		MailingList:   listURL,
		ThreadID:      threadID,
		Subject:       "initial subject",
		DateActive:    time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
		StartingEmail: fmt.Sprintf("%semail/root-%s/", listURL, threadID),
		EmailsURL:     fmt.Sprintf("%sthread/%s/emails?format=json", listURL, threadID),
		RepliesTotal:  2,
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")

	first, err := store.NewSQLiteStore(path)
	require.NoError(t, err)

	d := listDefaults("dev@example.com")
	_, _, err = first.GetOrCreateMailingList(context.Background(), d.URL, d)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// Reopening runs the migration pass again over an up-to-date
	// schema and must leave the data intact.
	second, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer second.Close()

	lists, err := second.ListMailingLists(context.Background())
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, "dev@example.com", lists[0].Name)
}

func TestGetOrCreateMailingListIdempotent(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	defaults := listDefaults("dev@example.com")

	first, created, err := s.GetOrCreateMailingList(ctx, defaults.URL, defaults)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, first.ID)

	again, created, err := s.GetOrCreateMailingList(ctx, defaults.URL, model.MailingList{
		URL:  defaults.URL,
		Name: "someone-changed-this@example.com",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	// The stored row wins over the caller's defaults.
	assert.Equal(t, "dev@example.com", again.Name)
}

func TestListMailingListsOrderedByName(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"zeta@example.com", "alpha@example.com"} {
		d := listDefaults(name)
		_, _, err := s.GetOrCreateMailingList(ctx, d.URL, d)
		require.NoError(t, err)
	}

	lists, err := s.ListMailingLists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "alpha@example.com", lists[0].Name)
	assert.Equal(t, "zeta@example.com", lists[1].Name)
}

func TestGetOrCreateThreadDoesNotOverwrite(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	ml := listDefaults("dev@example.com")
	_, _, err := s.GetOrCreateMailingList(ctx, ml.URL, ml)
	require.NoError(t, err)

	defaults := threadDefaults(ml.URL, "abc123")
	first, created, err := s.GetOrCreateThread(ctx, ml.URL, "abc123", defaults)
	require.NoError(t, err)
	assert.True(t, created)

	newer := defaults
	newer.RepliesTotal = 10
	newer.Subject = "newer subject"
	again, created, err := s.GetOrCreateThread(ctx, ml.URL, "abc123", newer)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 2, again.RepliesTotal)
	assert.Equal(t, "initial subject", again.Subject)
}

func TestUpdateThreadActivity(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	ml := listDefaults("dev@example.com")
	_, _, err := s.GetOrCreateMailingList(ctx, ml.URL, ml)
	require.NoError(t, err)

	thread, _, err := s.GetOrCreateThread(ctx, ml.URL, "abc123", threadDefaults(ml.URL, "abc123"))
	require.NoError(t, err)

	thread.RepliesTotal = 7
	thread.VotesTotal = 3
	thread.DateActive = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpdateThreadActivity(ctx, thread))

	stored, _, err := s.GetOrCreateThread(ctx, ml.URL, "abc123", model.Thread{})
	require.NoError(t, err)
	assert.Equal(t, 7, stored.RepliesTotal)
	assert.Equal(t, 3, stored.VotesTotal)
	assert.True(t, stored.DateActive.Equal(thread.DateActive))
}

func TestMarkThreadRead(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	ml := listDefaults("dev@example.com")
	_, _, err := s.GetOrCreateMailingList(ctx, ml.URL, ml)
	require.NoError(t, err)

	thread, _, err := s.GetOrCreateThread(ctx, ml.URL, "abc123", threadDefaults(ml.URL, "abc123"))
	require.NoError(t, err)
	assert.False(t, thread.Read)

	require.NoError(t, s.MarkThreadRead(ctx, thread.ID))

	stored, _, err := s.GetOrCreateThread(ctx, ml.URL, "abc123", model.Thread{})
	require.NoError(t, err)
	assert.True(t, stored.Read)
}

func TestListThreadsMostRecentFirst(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	ml := listDefaults("dev@example.com")
	_, _, err := s.GetOrCreateMailingList(ctx, ml.URL, ml)
	require.NoError(t, err)

	old := threadDefaults(ml.URL, "old")
	old.DateActive = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := threadDefaults(ml.URL, "recent")
	recent.DateActive = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, d := range []model.Thread{old, recent} {
		_, _, err := s.GetOrCreateThread(ctx, ml.URL, d.ThreadID, d)
		require.NoError(t, err)
	}

	threads, err := s.ListThreads(ctx, ml.URL)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, "recent", threads[0].ThreadID)
	assert.Equal(t, "old", threads[1].ThreadID)
}

func TestListThreadsEmptyList(t *testing.T) {
	s := testutil.NewTestStore(t)

	threads, err := s.ListThreads(context.Background(), "http://example.com/api/list/nobody@example.com/")
	require.NoError(t, err)
	assert.Empty(t, threads)
}

func TestGetOrCreateSenderConcurrent(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	const workers = 8
	ids := make([]int64, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sender, _, err := s.GetOrCreateSender(ctx, "mm-42", model.Sender{
				Address:     "someone@example.com",
				DisplayName: "Someone",
			})
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = sender.ID
		}(i)
	}
	wg.Wait()

	// Every caller must end up on the same row, no matter who won
	// the creation race.
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
}

func TestGetOrCreateEmailRequiresSender(t *testing.T) {
	s := testutil.NewTestStore(t)

	_, _, err := s.GetOrCreateEmail(context.Background(), "hash-1", model.Email{
		URL: "http://example.com/api/email/hash-1/",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no resolved sender")
}

func TestEmailLifecycle(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	sender, _, err := s.GetOrCreateSender(ctx, "mm-1", model.Sender{Address: "a@example.com"})
	require.NoError(t, err)

	threadURL := "http://example.com/api/list/dev@example.com/thread/abc123/"
	defaults := model.Email{
		URL:           "http://example.com/api/email/hash-1/",
		MessageIDHash: "hash-1",
		ThreadURL:     threadURL,
		SenderID:      sender.ID,
		SenderName:    "A",
		Subject:       "hello",
		Date:          time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
		Content:       "body text",
	}

	email, created, err := s.GetOrCreateEmail(ctx, "hash-1", defaults)
	require.NoError(t, err)
	assert.True(t, created)

	_, created, err = s.GetOrCreateEmail(ctx, "hash-1", defaults)
	require.NoError(t, err)
	assert.False(t, created)

	emails, err := s.ListEmails(ctx, threadURL)
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, email.ID, emails[0].ID)
	assert.Equal(t, "body text", emails[0].Content)

	count, err := s.CountEmails(ctx, threadURL)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestListEmailsDateOrder(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	sender, _, err := s.GetOrCreateSender(ctx, "mm-1", model.Sender{Address: "a@example.com"})
	require.NoError(t, err)

	threadURL := "http://example.com/api/list/dev@example.com/thread/abc123/"
	for i, hash := range []string{"later", "earlier"} {
		date := time.Date(2026, 1, 20-i*10, 0, 0, 0, 0, time.UTC)
		_, _, err := s.GetOrCreateEmail(ctx, hash, model.Email{
			URL:           "http://example.com/api/email/" + hash + "/",
			MessageIDHash: hash,
			ThreadURL:     threadURL,
			SenderID:      sender.ID,
			Date:          date,
		})
		require.NoError(t, err)
	}

	emails, err := s.ListEmails(ctx, threadURL)
	require.NoError(t, err)
	require.Len(t, emails, 2)
	assert.Equal(t, "earlier", emails[0].MessageIDHash)
	assert.Equal(t, "later", emails[1].MessageIDHash)
}

func TestNotificationLifecycle(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	n := model.Notification{
		MailingList: "http://example.com/api/list/dev@example.com/",
		ThreadID:    "abc123",
		Message:     "New thread on dev@example.com: hello",
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, s.CreateNotification(ctx, n))

	unread, err := s.GetUnreadNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.NotEmpty(t, unread[0].ID)
	assert.False(t, unread[0].Read)

	require.NoError(t, s.MarkNotificationRead(ctx, unread[0].ID))

	unread, err = s.GetUnreadNotifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

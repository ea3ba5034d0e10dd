package manager_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxking/archive-reader/internal/hyperkitty"
	"github.com/maxking/archive-reader/internal/manager"
	"github.com/maxking/archive-reader/tests/testutil"
)

func TestValidateServerURL(t *testing.T) {
	valid := []string{
		"https://lists.mailman3.org/archives",
		"http://localhost:8000",
	}
	for _, raw := range valid {
		assert.NoError(t, manager.ValidateServerURL(raw), raw)
	}

	invalid := []string{
		"",
		"lists.mailman3.org",
		"ftp://lists.mailman3.org",
		"https://",
	}
	for _, raw := range invalid {
		assert.Error(t, manager.ValidateServerURL(raw), raw)
	}
}

func TestDiscoverListsRejectsBadURL(t *testing.T) {
	s := testutil.NewTestStore(t)
	lm := manager.NewListManager(hyperkitty.NewClient(), s)

	_, err := lm.DiscoverLists(context.Background(), "not-a-url")
	require.Error(t, err)
}

func TestDiscoverListsDoesNotPersist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count": 1, "results": [
			{"url": "http://example.com/api/list/dev@example.com/", "name": "dev@example.com"}
		]}`)
	}))
	defer srv.Close()

	s := testutil.NewTestStore(t)
	lm := manager.NewListManager(hyperkitty.NewClient(), s)
	ctx := context.Background()

	page, err := lm.DiscoverLists(ctx, srv.URL)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)

	// Discovery offers candidates; only Subscribe stores them.
	subscribed, err := lm.SubscribedLists(ctx)
	require.NoError(t, err)
	assert.Empty(t, subscribed)
}

func TestSubscribeIsIdempotent(t *testing.T) {
	s := testutil.NewTestStore(t)
	lm := manager.NewListManager(hyperkitty.NewClient(), s)
	ctx := context.Background()

	records := []hyperkitty.MailingListRecord{
		{
			URL:         "http://example.com/api/list/dev@example.com/",
			Name:        "dev@example.com",
			DisplayName: "Dev",
			Threads:     "http://example.com/api/list/dev@example.com/threads?format=json",
			Emails:      "http://example.com/api/list/dev@example.com/emails?format=json",
		},
		{
			URL:  "http://example.com/api/list/users@example.com/",
			Name: "users@example.com",
		},
	}

	first, err := lm.Subscribe(ctx, records)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "dev@example.com", first[0].Name)

	again, err := lm.Subscribe(ctx, records)
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, first[0].ID, again[0].ID)
	assert.Equal(t, first[1].ID, again[1].ID)

	all, err := lm.SubscribedLists(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

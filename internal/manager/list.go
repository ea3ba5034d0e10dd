package manager

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/maxking/archive-reader/internal/hyperkitty"
	"github.com/maxking/archive-reader/internal/log"
	"github.com/maxking/archive-reader/internal/model"
	"github.com/maxking/archive-reader/internal/store"
)

// ListManager bridges the remote archive and the local store for
// mailing-list level operations: discovering lists on a server and
// subscribing to them. The client and store are injected so the
// manager itself carries no server state.
type ListManager struct {
	client *hyperkitty.Client
	store  store.Store
	log    *logrus.Entry
}

// NewListManager creates a ListManager over the given client and store.
func NewListManager(client *hyperkitty.Client, s store.Store) *ListManager {
	return &ListManager{
		client: client,
		store:  s,
		log:    log.Component("manager"),
	}
}

// ValidateServerURL checks that raw looks like a usable archive base
// URL before any request is made with it.
func ValidateServerURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server URL %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("server URL %q has no host", raw)
	}
	return nil
}

// DiscoverLists fetches the mailing lists available on an arbitrary
// server. The result is not persisted; these are candidates the user
// may subscribe to, not subscriptions.
func (m *ListManager) DiscoverLists(ctx context.Context, serverURL string) (*hyperkitty.MailingListPage, error) {
	if err := ValidateServerURL(serverURL); err != nil {
		return nil, err
	}

	page, err := m.client.Lists(ctx, serverURL)
	if err != nil {
		return nil, err
	}

	m.log.WithFields(logrus.Fields{
		"server": serverURL,
		"count":  page.Count,
	}).Info("discovered mailing lists")
	return page, nil
}

// SubscribedLists returns the locally stored mailing lists.
func (m *ListManager) SubscribedLists(ctx context.Context) ([]model.MailingList, error) {
	return m.store.ListMailingLists(ctx)
}

// Subscribe persists the given list records and returns the stored
// rows in input order. Subscribing to an already-subscribed list is a
// no-op returning the existing row.
func (m *ListManager) Subscribe(ctx context.Context, records []hyperkitty.MailingListRecord) ([]model.MailingList, error) {
	subscribed := make([]model.MailingList, 0, len(records))
	for _, rec := range records {
		ml, created, err := m.store.GetOrCreateMailingList(
			ctx, rec.URL, mailingListFromRecord(rec),
		)
		if err != nil {
			return nil, fmt.Errorf("subscribing to %s: %w", rec.Name, err)
		}
		if created {
			m.log.WithField("list", ml.Name).Info("subscribed to mailing list")
		}
		subscribed = append(subscribed, *ml)
	}
	return subscribed, nil
}

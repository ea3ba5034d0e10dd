package store

import (
	"context"

	"github.com/maxking/archive-reader/internal/model"
)

// Store is the persistence contract for the archive cache. All
// creation goes through get-or-create operations keyed on the
// entities' natural unique keys, so re-reconciling the same remote
// content is always idempotent.
type Store interface {
	// === Mailing lists ===

	// GetOrCreateMailingList returns the list row matching url, or
	// creates one from defaults. The second return reports whether a
	// row was created.
	GetOrCreateMailingList(ctx context.Context, url string, defaults model.MailingList) (*model.MailingList, bool, error)

	// ListMailingLists returns every subscribed list, ordered by name.
	ListMailingLists(ctx context.Context) ([]model.MailingList, error)

	// === Threads ===

	// GetOrCreateThread returns the thread row matching
	// (mailingList, threadID), or creates one from defaults.
	GetOrCreateThread(ctx context.Context, mailingList, threadID string, defaults model.Thread) (*model.Thread, bool, error)

	// UpdateThreadActivity overwrites the mutable activity fields
	// (date_active, replies_total, votes_total, next/prev links) of
	// an existing thread row. Get-or-create never touches an existing
	// row, so reply-count growth is only visible through this call.
	UpdateThreadActivity(ctx context.Context, t *model.Thread) error

	// MarkThreadRead records locally that the thread was opened.
	MarkThreadRead(ctx context.Context, id int64) error

	// ListThreads returns all known threads of a list, most recently
	// active first.
	ListThreads(ctx context.Context, mailingListURL string) ([]model.Thread, error)

	// === Senders ===

	// GetOrCreateSender returns the sender row matching mailmanID, or
	// creates one from defaults. Two concurrent creations of the same
	// sender are resolved by letting the loser adopt the winner's
	// row; the uniqueness race is never surfaced to the caller.
	GetOrCreateSender(ctx context.Context, mailmanID string, defaults model.Sender) (*model.Sender, bool, error)

	// === Emails ===

	// GetOrCreateEmail returns the email row matching messageIDHash,
	// or creates one from defaults. defaults.SenderID must reference
	// a persisted sender.
	GetOrCreateEmail(ctx context.Context, messageIDHash string, defaults model.Email) (*model.Email, bool, error)

	// ListEmails returns all stored emails of a thread in date order.
	ListEmails(ctx context.Context, threadURL string) ([]model.Email, error)

	// CountEmails returns how many emails of a thread are stored.
	CountEmails(ctx context.Context, threadURL string) (int, error)

	// === Notifications ===

	CreateNotification(ctx context.Context, n model.Notification) error
	GetUnreadNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

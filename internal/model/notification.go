package model

import "time"

// Notification is an alert surfaced to the user about new activity
// found by a background refresh, e.g. new threads on a subscribed list.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// MailingList is the canonical URL of the list the activity
	// belongs to.
	MailingList string `json:"mailinglist"`

	// ThreadID identifies the thread the notification refers to,
	// when it refers to a single thread.
	ThreadID string `json:"thread_id"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at"`
}

package model

import "time"

// Email is a single archived message. Identity is the message_id_hash;
// an email is written once and never mutated or deleted, since archived
// content is immutable on the server.
type Email struct {
	ID int64 `db:"id"`

	// URL is the canonical API URL of the email.
	URL string `db:"url"`

	// MailingList is the owning list's canonical URL.
	MailingList string `db:"mailinglist"`

	// MessageID is the RFC 5322 Message-ID header value.
	MessageID string `db:"message_id"`

	// MessageIDHash is the server's hash of the Message-ID, used as
	// the stable unique key.
	MessageIDHash string `db:"message_id_hash"`

	// ThreadURL is the owning thread's canonical URL.
	ThreadURL string `db:"thread_url"`

	// SenderName is a denormalized copy of the sender's name for
	// display without a join.
	SenderName string `db:"sender_name"`

	// SenderID references the resolved Sender row. Emails are only
	// persisted after their sender exists.
	SenderID int64 `db:"sender_id"`

	Subject string    `db:"subject"`
	Date    time.Time `db:"date"`

	// ParentURL is empty for the root email of a thread.
	ParentURL string `db:"parent_url"`

	// Content is the email body as served by the archive.
	Content string `db:"content"`
}

package model

import "time"

// Thread is a root email plus its replies within one mailing list.
// Identity is (mailing-list URL, thread_id). Rows are created on
// first observation and updated in place when the remote reports a
// higher reply count or a later active date; they are never deleted.
type Thread struct {
	ID int64 `db:"id"`

	// URL is the canonical API URL of the thread.
	URL string `db:"url"`

	// MailingList is the owning list's canonical URL.
	MailingList string `db:"mailinglist"`

	// ThreadID is the server-assigned thread identifier, unique
	// within its mailing list.
	ThreadID string `db:"thread_id"`

	Subject string `db:"subject"`

	// DateActive is the timestamp of the last activity the remote
	// server has seen on this thread.
	DateActive time.Time `db:"date_active"`

	// StartingEmail is the URL of the thread's root email.
	StartingEmail string `db:"starting_email"`

	// EmailsURL is the thread's emails collection endpoint.
	EmailsURL string `db:"emails_url"`

	VotesTotal int `db:"votes_total"`

	// RepliesTotal is monotonically non-decreasing on the remote;
	// an increase means the thread has new emails to fetch.
	RepliesTotal int `db:"replies_total"`

	// NextThread and PrevThread are empty for the first/last thread
	// of a list.
	NextThread string `db:"next_thread"`
	PrevThread string `db:"prev_thread"`

	// Read records whether this thread has been opened in this
	// reader. Local state only; the remote knows nothing about it.
	Read bool `db:"read"`
}

// EmailTotal is the number of emails the remote reports for the
// thread: the starting email plus its replies.
func (t Thread) EmailTotal() int {
	return t.RepliesTotal + 1
}

package model

import "time"

// MailingList is a discussion list the user has subscribed to. Its
// canonical URL on the archive server is the identity; a list is
// stored once on subscription and its row is never deleted.
type MailingList struct {
	// ID is the local database row identifier.
	ID int64 `db:"id"`

	// URL is the canonical API URL of the list on its server.
	URL string `db:"url"`

	// Name is the posting address, e.g. "mailman-users@mailman3.org".
	Name string `db:"name"`

	// DisplayName is the human-readable list title.
	DisplayName string `db:"display_name"`

	// Description is the list's self-description.
	Description string `db:"description"`

	// SubjectPrefix is prepended to email subjects, e.g. "[Mailman-users] ".
	SubjectPrefix string `db:"subject_prefix"`

	// ArchivePolicy describes who may read the archive ("public", ...).
	ArchivePolicy string `db:"archive_policy"`

	// CreatedAt is when the list was created on the remote server.
	CreatedAt time.Time `db:"created_at"`

	// ThreadsURL is the list's threads collection endpoint.
	ThreadsURL string `db:"threads_url"`

	// EmailsURL is the list's emails collection endpoint.
	EmailsURL string `db:"emails_url"`
}

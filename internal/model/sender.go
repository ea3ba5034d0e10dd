package model

// Sender is the author of one or more archived emails, deduplicated
// across the whole store by their Mailman identifier. A row is created
// lazily the first time an email from the sender is persisted.
type Sender struct {
	ID int64 `db:"id"`

	// MailmanID is the server-wide unique identifier for this sender.
	MailmanID string `db:"mailman_id"`

	// Address is the sender's email address.
	Address string `db:"address"`

	// DisplayName is the name the sender posts under, when known.
	DisplayName string `db:"display_name"`

	// EmailsURL is the collection endpoint for all of this sender's
	// archived emails.
	EmailsURL string `db:"emails_url"`
}

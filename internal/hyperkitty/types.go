package hyperkitty

import "time"

// MailingListPage is one page of the /api/lists collection.
type MailingListPage struct {
	Count    int                 `json:"count"`
	Next     *string             `json:"next"`
	Previous *string             `json:"previous"`
	Results  []MailingListRecord `json:"results"`
}

// MailingListRecord is a single mailing list as served by the archive.
type MailingListRecord struct {
	URL           string    `json:"url"`
	Name          string    `json:"name"`
	DisplayName   string    `json:"display_name"`
	Description   string    `json:"description"`
	SubjectPrefix string    `json:"subject_prefix"`
	ArchivePolicy string    `json:"archive_policy"`
	CreatedAt     time.Time `json:"created_at"`
	Threads       string    `json:"threads"`
	Emails        string    `json:"emails"`
}

// ThreadsPage is one page of a list's threads collection.
type ThreadsPage struct {
	Count    int            `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []ThreadRecord `json:"results"`
}

// ThreadRecord is a single thread as served by the archive.
// NextThread and PrevThread are null for the first/last thread of a
// list.
type ThreadRecord struct {
	URL           string    `json:"url"`
	MailingList   string    `json:"mailinglist"`
	ThreadID      string    `json:"thread_id"`
	Subject       string    `json:"subject"`
	DateActive    time.Time `json:"date_active"`
	StartingEmail string    `json:"starting_email"`
	Emails        string    `json:"emails"`
	VotesTotal    int       `json:"votes_total"`
	RepliesCount  int       `json:"replies_count"`
	NextThread    *string   `json:"next_thread"`
	PrevThread    *string   `json:"prev_thread"`
}

// EmailsPage is one page of a thread's emails collection.
type EmailsPage struct {
	Count    int           `json:"count"`
	Next     *string       `json:"next"`
	Previous *string       `json:"previous"`
	Results  []EmailRecord `json:"results"`
}

// SenderRecord is the author block nested in an email record.
type SenderRecord struct {
	Address   string `json:"address"`
	MailmanID string `json:"mailman_id"`
	Emails    string `json:"emails"`
}

// EmailRecord is a single email as served by the archive. Collection
// pages carry the headers; Content is only populated when the email's
// own URL is fetched. Parent is null for a thread's root email.
type EmailRecord struct {
	URL           string       `json:"url"`
	MailingList   string       `json:"mailinglist"`
	MessageID     string       `json:"message_id"`
	MessageIDHash string       `json:"message_id_hash"`
	Thread        string       `json:"thread"`
	Sender        SenderRecord `json:"sender"`
	SenderName    string       `json:"sender_name"`
	Subject       string       `json:"subject"`
	Date          time.Time    `json:"date"`
	Parent        *string      `json:"parent"`
	Content       string       `json:"content"`
}

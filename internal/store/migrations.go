package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS mailinglist (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	url            TEXT NOT NULL UNIQUE,
	name           TEXT NOT NULL,
	display_name   TEXT NOT NULL DEFAULT '',
	description    TEXT NOT NULL DEFAULT '',
	subject_prefix TEXT NOT NULL DEFAULT '',
	archive_policy TEXT NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL,
	threads_url    TEXT NOT NULL,
	emails_url     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS thread (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	url            TEXT NOT NULL,
	mailinglist    TEXT NOT NULL,
	thread_id      TEXT NOT NULL,
	subject        TEXT NOT NULL DEFAULT '',
	date_active    DATETIME NOT NULL,
	starting_email TEXT NOT NULL DEFAULT '',
	emails_url     TEXT NOT NULL,
	votes_total    INTEGER NOT NULL DEFAULT 0,
	replies_total  INTEGER NOT NULL DEFAULT 0,
	next_thread    TEXT NOT NULL DEFAULT '',
	prev_thread    TEXT NOT NULL DEFAULT '',
	UNIQUE(mailinglist, thread_id)
);

CREATE TABLE IF NOT EXISTS sender (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	mailman_id   TEXT NOT NULL UNIQUE,
	address      TEXT NOT NULL DEFAULT '',
	display_name TEXT NOT NULL DEFAULT '',
	emails_url   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS email (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	url             TEXT NOT NULL,
	mailinglist     TEXT NOT NULL,
	message_id      TEXT NOT NULL,
	message_id_hash TEXT NOT NULL UNIQUE,
	thread_url      TEXT NOT NULL,
	sender_name     TEXT NOT NULL DEFAULT '',
	sender_id       INTEGER NOT NULL REFERENCES sender(id),
	subject         TEXT NOT NULL DEFAULT '',
	date            DATETIME NOT NULL,
	parent_url      TEXT NOT NULL DEFAULT '',
	content         TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_thread_mailinglist ON thread(mailinglist);
CREATE INDEX IF NOT EXISTS idx_thread_date_active ON thread(date_active);
CREATE INDEX IF NOT EXISTS idx_email_thread_url ON email(thread_url);
CREATE INDEX IF NOT EXISTS idx_email_url ON email(url);
CREATE INDEX IF NOT EXISTS idx_email_sender_id ON email(sender_id);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
ALTER TABLE thread ADD COLUMN read INTEGER NOT NULL DEFAULT 0;

CREATE TABLE IF NOT EXISTS notifications (
	id          TEXT PRIMARY KEY,
	mailinglist TEXT NOT NULL,
	thread_id   TEXT NOT NULL DEFAULT '',
	message     TEXT NOT NULL,
	read        INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);
CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}

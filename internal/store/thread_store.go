package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maxking/archive-reader/internal/model"
)

// GetOrCreateThread returns the thread stored under
// (mailingList, threadID), creating it from defaults when absent. An
// existing row is returned untouched; callers that need the remote's
// newer activity fields applied use UpdateThreadActivity.
func (s *SQLiteStore) GetOrCreateThread(
	ctx context.Context,
	mailingList, threadID string,
	defaults model.Thread,
) (*model.Thread, bool, error) {
	var t model.Thread
	err := s.db.GetContext(ctx, &t,
		"SELECT * FROM thread WHERE mailinglist = ? AND thread_id = ?",
		mailingList, threadID,
	)
	if err == nil {
		return &t, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("querying thread %s: %w", threadID, err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO thread (
			url, mailinglist, thread_id, subject, date_active,
			starting_email, emails_url, votes_total, replies_total,
			next_thread, prev_thread, read
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		defaults.URL, mailingList, threadID, defaults.Subject,
		defaults.DateActive.UTC(), defaults.StartingEmail,
		defaults.EmailsURL, defaults.VotesTotal, defaults.RepliesTotal,
		defaults.NextThread, defaults.PrevThread, boolToInt(defaults.Read),
	)
	if err != nil {
		return nil, false, fmt.Errorf("creating thread %s: %w", threadID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("reading thread row id: %w", err)
	}

	t = defaults
	t.ID = id
	t.MailingList = mailingList
	t.ThreadID = threadID
	return &t, true, nil
}

// UpdateThreadActivity overwrites the mutable activity fields of an
// existing thread row with the values carried by t.
func (s *SQLiteStore) UpdateThreadActivity(ctx context.Context, t *model.Thread) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE thread
		SET subject = ?, date_active = ?, votes_total = ?,
			replies_total = ?, next_thread = ?, prev_thread = ?
		WHERE id = ?`,
		t.Subject, t.DateActive.UTC(), t.VotesTotal,
		t.RepliesTotal, t.NextThread, t.PrevThread, t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating thread %s activity: %w", t.ThreadID, err)
	}
	return nil
}

// MarkThreadRead records that the thread was opened in this reader.
func (s *SQLiteStore) MarkThreadRead(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE thread SET read = 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("marking thread %d as read: %w", id, err)
	}
	return nil
}

// ListThreads returns all known threads of a mailing list, most
// recently active first.
func (s *SQLiteStore) ListThreads(ctx context.Context, mailingListURL string) ([]model.Thread, error) {
	var threads []model.Thread
	err := s.db.SelectContext(ctx, &threads,
		"SELECT * FROM thread WHERE mailinglist = ? ORDER BY date_active DESC",
		mailingListURL,
	)
	if err != nil {
		return nil, fmt.Errorf("querying threads for %s: %w", mailingListURL, err)
	}
	return threads, nil
}

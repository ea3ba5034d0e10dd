package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maxking/archive-reader/internal/model"
)

// GetOrCreateSender returns the sender stored under mailmanID,
// creating it from defaults when absent. When two callers race to
// create the same sender, the insert loser re-reads the winner's row;
// the uniqueness violation never reaches the caller.
func (s *SQLiteStore) GetOrCreateSender(
	ctx context.Context,
	mailmanID string,
	defaults model.Sender,
) (*model.Sender, bool, error) {
	var sender model.Sender
	err := s.db.GetContext(ctx, &sender,
		"SELECT * FROM sender WHERE mailman_id = ?", mailmanID,
	)
	if err == nil {
		return &sender, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("querying sender %s: %w", mailmanID, err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO sender (mailman_id, address, display_name, emails_url)
		VALUES (?, ?, ?, ?)`,
		mailmanID, defaults.Address, defaults.DisplayName, defaults.EmailsURL,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost the creation race; the winner's row is the one
			// every email must link to.
			err = s.db.GetContext(ctx, &sender,
				"SELECT * FROM sender WHERE mailman_id = ?", mailmanID,
			)
			if err != nil {
				return nil, false, fmt.Errorf(
					"re-reading sender %s after conflict: %w", mailmanID, err,
				)
			}
			return &sender, false, nil
		}
		return nil, false, fmt.Errorf("creating sender %s: %w", mailmanID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("reading sender row id: %w", err)
	}

	sender = defaults
	sender.ID = id
	sender.MailmanID = mailmanID
	return &sender, true, nil
}

// GetOrCreateEmail returns the email stored under messageIDHash,
// creating it from defaults when absent. Emails are persisted only
// after their sender is resolved, so defaults.SenderID must be set.
func (s *SQLiteStore) GetOrCreateEmail(
	ctx context.Context,
	messageIDHash string,
	defaults model.Email,
) (*model.Email, bool, error) {
	if defaults.SenderID == 0 {
		return nil, false, fmt.Errorf(
			"email %s has no resolved sender", messageIDHash,
		)
	}

	var email model.Email
	err := s.db.GetContext(ctx, &email,
		"SELECT * FROM email WHERE message_id_hash = ?", messageIDHash,
	)
	if err == nil {
		return &email, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("querying email %s: %w", messageIDHash, err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO email (
			url, mailinglist, message_id, message_id_hash, thread_url,
			sender_name, sender_id, subject, date, parent_url, content
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		defaults.URL, defaults.MailingList, defaults.MessageID,
		messageIDHash, defaults.ThreadURL, defaults.SenderName,
		defaults.SenderID, defaults.Subject, defaults.Date.UTC(),
		defaults.ParentURL, defaults.Content,
	)
	if err != nil {
		return nil, false, fmt.Errorf("creating email %s: %w", messageIDHash, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("reading email row id: %w", err)
	}

	email = defaults
	email.ID = id
	email.MessageIDHash = messageIDHash
	return &email, true, nil
}

// ListEmails returns all stored emails of a thread in date order.
func (s *SQLiteStore) ListEmails(ctx context.Context, threadURL string) ([]model.Email, error) {
	var emails []model.Email
	err := s.db.SelectContext(ctx, &emails,
		"SELECT * FROM email WHERE thread_url = ? ORDER BY date",
		threadURL,
	)
	if err != nil {
		return nil, fmt.Errorf("querying emails for %s: %w", threadURL, err)
	}
	return emails, nil
}

// CountEmails returns how many emails of a thread are stored locally.
func (s *SQLiteStore) CountEmails(ctx context.Context, threadURL string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM email WHERE thread_url = ?", threadURL,
	)
	if err != nil {
		return 0, fmt.Errorf("counting emails for %s: %w", threadURL, err)
	}
	return count, nil
}
